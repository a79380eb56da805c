package core

import (
	"context"
	"sync"
	"time"
)

// BlockingStrategy parks waiters until the producer signals. It holds a
// mutex and a generation channel: SignalAll closes the current channel
// to wake every parked waiter and installs a fresh one for the next
// generation. This is the only stateful strategy
type BlockingStrategy struct {
	mu     sync.Mutex
	signal chan struct{}
}

// NewBlockingStrategy creates a blocking wait strategy
func NewBlockingStrategy() *BlockingStrategy {
	return &BlockingStrategy{signal: make(chan struct{})}
}

// WaitFor parks the caller until the cursor reaches sequence
func (s *BlockingStrategy) WaitFor(ctx context.Context, cursor CursorSource, barrier Barrier, sequence int64) (int64, error) {
	// Fast path: no lock when the data is already available
	if current := cursor.Load(); current >= sequence {
		return current, nil
	}

	for {
		// Snapshot the generation channel before re-checking the
		// predicate. Any signal that lands after this point closes this
		// generation, so a publication between the cursor check and the
		// park below still wakes us.
		ch := s.waitChannel()

		if barrier.IsAlerted() {
			return 0, ErrAlerted
		}
		if current := cursor.Load(); current >= sequence {
			return current, nil
		}

		select {
		case <-ch:
			// Woken by SignalAll; re-validate the predicate
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// WaitForTimeout parks the caller until the cursor reaches sequence or
// the timeout elapses. On expiry it returns the current cursor value,
// which the caller must compare against sequence
func (s *BlockingStrategy) WaitForTimeout(ctx context.Context, cursor CursorSource, barrier Barrier, sequence int64, timeout time.Duration) (int64, error) {
	if current := cursor.Load(); current >= sequence {
		return current, nil
	}

	// One timer for the whole call: wakes between generations spend the
	// remaining budget instead of re-arming the full timeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		ch := s.waitChannel()

		if barrier.IsAlerted() {
			return 0, ErrAlerted
		}
		if current := cursor.Load(); current >= sequence {
			return current, nil
		}

		select {
		case <-ch:
			// Woken by SignalAll; re-validate the predicate
		case <-timer.C:
			return cursor.Load(), nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// SignalAll wakes every parked waiter. Each one re-validates its own
// predicate after waking
func (s *BlockingStrategy) SignalAll() {
	s.mu.Lock()
	close(s.signal)
	s.signal = make(chan struct{})
	s.mu.Unlock()
}

// waitChannel returns the current generation channel
func (s *BlockingStrategy) waitChannel() <-chan struct{} {
	s.mu.Lock()
	ch := s.signal
	s.mu.Unlock()
	return ch
}
