package sequencer

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/creastat/sequencer/core"
	"github.com/rs/zerolog"
)

// Handler processes ring slots in sequence order. OnSlot is called once
// per slot from the consumer's goroutine; endOfBatch marks the last slot
// of the batch that was available when the consumer woke
type Handler[T any] interface {
	OnSlot(ctx context.Context, sequence int64, slot T, endOfBatch bool) error
}

// HandlerFunc adapts a plain function to the Handler interface
type HandlerFunc[T any] func(ctx context.Context, sequence int64, slot T, endOfBatch bool) error

// OnSlot calls f
func (f HandlerFunc[T]) OnSlot(ctx context.Context, sequence int64, slot T, endOfBatch bool) error {
	return f(ctx, sequence, slot, endOfBatch)
}

// ConsumerConfig configures a single consumer
type ConsumerConfig[T any] struct {
	// Name identifies the consumer in logs and progress reports
	Name string

	// Ring holds the slots this consumer reads
	Ring *Ring[T]

	// Barrier gates this consumer on the cursor or on upstream consumers
	Barrier *SequenceBarrier

	// Handler receives every slot in sequence order
	Handler Handler[T]

	// Sequence tracks this consumer's progress. Created when nil
	Sequence *core.Sequence

	// Strategy is signalled after this consumer advances, waking any
	// downstream consumer parked on its progress
	Strategy core.WaitStrategy

	// SignalDownstream enables the post-advance signal. Only consumers
	// with dependents need it
	SignalDownstream bool

	// PinnedCPU pins the consumer's OS thread to one core; negative
	// disables pinning
	PinnedCPU int

	Logger zerolog.Logger
}

// Consumer drives one handler over the ring, tracking its own progress
type Consumer[T any] struct {
	config ConsumerConfig[T]
}

// NewConsumer creates a consumer positioned before the first sequence
func NewConsumer[T any](config ConsumerConfig[T]) *Consumer[T] {
	if config.Sequence == nil {
		config.Sequence = core.NewSequence(core.InitialSequence)
	}
	return &Consumer[T]{config: config}
}

// Name returns the consumer name
func (c *Consumer[T]) Name() string {
	return c.config.Name
}

// Sequence returns the consumer's progress counter
func (c *Consumer[T]) Sequence() *core.Sequence {
	return c.config.Sequence
}

// Run processes slots until the barrier is alerted, the context is
// cancelled, or the handler fails. An alert ends the run cleanly with a
// nil error
func (c *Consumer[T]) Run(ctx context.Context) (err error) {
	log := c.config.Logger.With().Str("consumer", c.config.Name).Logger()

	if c.config.PinnedCPU >= 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if pinErr := pinThread(c.config.PinnedCPU); pinErr != nil {
			log.Warn().Err(pinErr).Int("cpu", c.config.PinnedCPU).Msg("cpu pinning failed, continuing unpinned")
		} else {
			log.Debug().Int("cpu", c.config.PinnedCPU).Msg("pinned to cpu")
		}
	}

	// Surface handler panics as errors instead of killing the process
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("consumer %q panicked: %v", c.config.Name, r)
			log.Error().Err(err).Msg("handler panic")
		}
	}()

	log.Debug().Msg("consumer started")

	for {
		next := c.config.Sequence.Load() + 1

		available, waitErr := c.config.Barrier.WaitFor(ctx, next)
		if waitErr != nil {
			if errors.Is(waitErr, core.ErrAlerted) {
				log.Debug().Int64("sequence", c.config.Sequence.Load()).Msg("consumer halting on alert")
				return nil
			}
			return waitErr
		}

		for seq := next; seq <= available; seq++ {
			if handleErr := c.config.Handler.OnSlot(ctx, seq, c.config.Ring.Get(seq), seq == available); handleErr != nil {
				return fmt.Errorf("consumer %q: handler failed at sequence %d: %w", c.config.Name, seq, handleErr)
			}
		}

		c.config.Sequence.Store(available)
		if c.config.SignalDownstream {
			c.config.Strategy.SignalAll()
		}
	}
}
