package sequencer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/creastat/sequencer/core"
)

// SequenceBarrier gates one consumer on the sequences it depends on: the
// publisher cursor directly, or the minimum progress of upstream
// consumers when dependencies are declared. It also owns the alert flag
// that cancels waiting consumers
type SequenceBarrier struct {
	strategy core.WaitStrategy
	source   core.CursorSource
	alerted  atomic.Bool
}

// NewSequenceBarrier creates a barrier over the publisher cursor. When
// dependencies are given the barrier waits on their minimum instead, so
// a consumer never overtakes the consumers it depends on
func NewSequenceBarrier(strategy core.WaitStrategy, cursor *core.Sequence, dependencies ...*core.Sequence) *SequenceBarrier {
	var source core.CursorSource = cursor
	if len(dependencies) > 0 {
		source = minimumSequence(dependencies)
	}
	return &SequenceBarrier{
		strategy: strategy,
		source:   source,
	}
}

// WaitFor blocks until the barrier's source reaches sequence, the
// barrier is alerted, or ctx is cancelled. On success it returns the
// observed source value, which may exceed sequence
func (b *SequenceBarrier) WaitFor(ctx context.Context, sequence int64) (int64, error) {
	if b.alerted.Load() {
		return 0, core.ErrAlerted
	}
	return b.strategy.WaitFor(ctx, b.source, b, sequence)
}

// WaitForTimeout waits like WaitFor, bounded by a wall-clock timeout. On
// expiry it returns the last-observed source value, still below sequence
func (b *SequenceBarrier) WaitForTimeout(ctx context.Context, sequence int64, timeout time.Duration) (int64, error) {
	if b.alerted.Load() {
		return 0, core.ErrAlerted
	}
	return b.strategy.WaitForTimeout(ctx, b.source, b, sequence, timeout)
}

// Alert sets the cancellation flag and wakes parked waiters so they
// observe it within one wake cycle
func (b *SequenceBarrier) Alert() {
	b.alerted.Store(true)
	b.strategy.SignalAll()
}

// ClearAlert makes the barrier usable again after an alert. The flag is
// level-triggered: waits keep failing until it is cleared
func (b *SequenceBarrier) ClearAlert() {
	b.alerted.Store(false)
}

// IsAlerted reports whether the alert flag is set
func (b *SequenceBarrier) IsAlerted() bool {
	return b.alerted.Load()
}

// Current returns the barrier source's current value
func (b *SequenceBarrier) Current() int64 {
	return b.source.Load()
}

// minimumSequence is a composite cursor source reporting the smallest of
// a set of sequences
type minimumSequence []*core.Sequence

// Load returns the minimum across all tracked sequences
func (m minimumSequence) Load() int64 {
	minimum := m[0].Load()
	for _, s := range m[1:] {
		if v := s.Load(); v < minimum {
			minimum = v
		}
	}
	return minimum
}
