package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAlerted is returned by a wait when the barrier's alert flag is set.
// It signals cooperative cancellation: the caller must stop processing,
// not retry
var ErrAlerted = errors.New("sequencer: barrier alerted")

// CursorSource reports the highest published sequence. Load must provide
// acquire visibility so slot writes that happened before the publication
// are visible to the observer
type CursorSource interface {
	Load() int64
}

// Barrier exposes the cooperative cancellation flag observed by waiting
// consumers. The flag is level-triggered: it stays visible until the
// controller clears it
type Barrier interface {
	IsAlerted() bool
}

// WaitStrategy governs how a consumer waits for the cursor to reach a
// required sequence. One instance is shared by every consumer waiting on
// the same cursor
type WaitStrategy interface {
	// WaitFor blocks until cursor.Load() >= sequence and returns the
	// observed cursor value, which may exceed sequence. It fails with
	// ErrAlerted if the barrier is alerted, or with ctx.Err() if the
	// context is cancelled while waiting.
	WaitFor(ctx context.Context, cursor CursorSource, barrier Barrier, sequence int64) (int64, error)

	// WaitForTimeout is WaitFor bounded by a wall-clock timeout. If the
	// timeout elapses first it returns the last-observed cursor value
	// with a nil error; the caller detects expiry by comparing the
	// returned value against sequence.
	WaitForTimeout(ctx context.Context, cursor CursorSource, barrier Barrier, sequence int64, timeout time.Duration) (int64, error)

	// SignalAll wakes every goroutine parked in WaitFor. It is safe to
	// call concurrently with any other operation and never blocks
	// indefinitely. A no-op for strategies that poll instead of park.
	SignalAll()
}

// NewStrategy creates the wait strategy selected by t
func NewStrategy(t StrategyType) (WaitStrategy, error) {
	switch t {
	case StrategyBlocking:
		return NewBlockingStrategy(), nil
	case StrategyYielding:
		return NewYieldingStrategy(), nil
	case StrategyBusySpin:
		return NewBusySpinStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown wait strategy %q", t)
	}
}
