package core

import (
	"context"
	"time"
)

// BusySpinStrategy polls the cursor in a tight loop without ever
// yielding the processor. It delivers the lowest and most consistent
// wake latency, but the spinning consumer should be pinned to a
// dedicated core or it starves everything else scheduled there.
// Stateless and safely shared without synchronization
type BusySpinStrategy struct{}

// NewBusySpinStrategy creates a busy-spin wait strategy
func NewBusySpinStrategy() *BusySpinStrategy {
	return &BusySpinStrategy{}
}

// WaitFor spins until the cursor reaches sequence
func (s *BusySpinStrategy) WaitFor(ctx context.Context, cursor CursorSource, barrier Barrier, sequence int64) (int64, error) {
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
	}
}

// WaitForTimeout spins until the cursor reaches sequence or the timeout
// elapses, returning the last-observed cursor value on expiry
func (s *BusySpinStrategy) WaitForTimeout(ctx context.Context, cursor CursorSource, barrier Barrier, sequence int64, timeout time.Duration) (int64, error) {
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
	}
}

// SignalAll is a no-op: every waiter is actively spinning
func (s *BusySpinStrategy) SignalAll() {}
