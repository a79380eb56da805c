package core

import (
	"context"
	"runtime"
	"time"
)

// YieldingStrategy polls the cursor in a loop, yielding the processor
// between checks. It is stateless and safely shared without
// synchronization
type YieldingStrategy struct{}

// NewYieldingStrategy creates a yielding wait strategy
func NewYieldingStrategy() *YieldingStrategy {
	return &YieldingStrategy{}
}

// WaitFor polls until the cursor reaches sequence, yielding between
// checks
func (s *YieldingStrategy) WaitFor(ctx context.Context, cursor CursorSource, barrier Barrier, sequence int64) (int64, error) {
	done := ctx.Done()
	for {
		if current := cursor.Load(); current >= sequence {
			return current, nil
		}
		if barrier.IsAlerted() {
			return 0, ErrAlerted
		}
		select {
		case <-done:
			return 0, ctx.Err()
		default:
		}
		runtime.Gosched()
	}
}

// WaitForTimeout polls until the cursor reaches sequence or the timeout
// elapses, returning the last-observed cursor value on expiry
func (s *YieldingStrategy) WaitForTimeout(ctx context.Context, cursor CursorSource, barrier Barrier, sequence int64, timeout time.Duration) (int64, error) {
	deadline := time.Now().Add(timeout)
	done := ctx.Done()
	for {
		current := cursor.Load()
		if current >= sequence {
			return current, nil
		}
		if barrier.IsAlerted() {
			return 0, ErrAlerted
		}
		select {
		case <-done:
			return 0, ctx.Err()
		default:
		}
		if !time.Now().Before(deadline) {
			return current, nil
		}
		runtime.Gosched()
	}
}

// SignalAll is a no-op: every waiter is actively polling
func (s *YieldingStrategy) SignalAll() {}
