package sequencer

import (
	"context"
	"runtime"

	"github.com/creastat/sequencer/core"
)

// Sequencer claims and publishes sequences for the single producer. The
// claim counter is deliberately unsynchronized: exactly one goroutine
// may claim and publish
type Sequencer struct {
	cursor   *core.Sequence
	strategy core.WaitStrategy
	size     int64
	next     int64
	gates    minimumSequence
}

// NewSequencer creates a sequencer over a ring of the given capacity
func NewSequencer(strategy core.WaitStrategy, capacity int) *Sequencer {
	return &Sequencer{
		cursor:   core.NewSequence(core.InitialSequence),
		strategy: strategy,
		size:     int64(capacity),
	}
}

// AddGate registers a consumer sequence the producer must never lap.
// Only the final consumers of the dependency graph need gates: every
// upstream consumer is at least as far along
func (s *Sequencer) AddGate(gate *core.Sequence) {
	s.gates = append(s.gates, gate)
}

// Cursor returns the publisher cursor
func (s *Sequencer) Cursor() *core.Sequence {
	return s.cursor
}

// Next claims the next sequence, waiting while the ring is full so the
// producer never overwrites a slot a gated consumer has not processed
func (s *Sequencer) Next(ctx context.Context) (int64, error) {
	next := s.next
	wrap := next - s.size

	if len(s.gates) > 0 {
		done := ctx.Done()
		for wrap > s.gates.Load() {
			select {
			case <-done:
				return 0, ctx.Err()
			default:
			}
			runtime.Gosched()
		}
	}

	s.next = next + 1
	return next, nil
}

// Publish makes every claimed sequence up to and including the given one
// visible to consumers, then wakes parked waiters
func (s *Sequencer) Publish(sequence int64) {
	s.cursor.Store(sequence)
	s.strategy.SignalAll()
}
