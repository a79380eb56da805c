package sequencer

import (
	"context"
	"fmt"
	"sync"

	"github.com/creastat/sequencer/checkpoint"
	"github.com/creastat/sequencer/core"
	"github.com/rs/zerolog"
)

// Pipeline is an assembled single-producer/multi-consumer sequencing
// pipeline: one ring, one publisher cursor, and one consumer per
// registered handler, all sharing a wait strategy
type Pipeline[T any] struct {
	ring      *Ring[T]
	sequencer *Sequencer
	consumers []*Consumer[T]
	barriers  []*SequenceBarrier
	logger    zerolog.Logger
	store     checkpoint.Store

	mu      sync.Mutex
	started bool
	halted  bool
	wg      sync.WaitGroup
	errChan chan error
}

// Start launches one goroutine per consumer. A pipeline starts at most
// once; build a new one to run again
func (p *Pipeline[T]) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("pipeline already started")
	}
	p.started = true

	p.logger.Info().
		Int("consumers", len(p.consumers)).
		Int("bufferSize", p.ring.Size()).
		Msg("pipeline starting")

	for _, consumer := range p.consumers {
		p.wg.Add(1)
		go func(c *Consumer[T]) {
			defer p.wg.Done()
			if err := c.Run(ctx); err != nil {
				// Keep the first failure; later ones only repeat it
				select {
				case p.errChan <- err:
				default:
				}
			}
		}(consumer)
	}

	return nil
}

// Publish claims the next sequence, writes the slot, and makes it
// visible to consumers. Only one goroutine may publish
func (p *Pipeline[T]) Publish(ctx context.Context, slot T) error {
	seq, err := p.sequencer.Next(ctx)
	if err != nil {
		return err
	}
	p.ring.Set(seq, slot)
	p.sequencer.Publish(seq)
	return nil
}

// PublishBatch writes all slots, then publishes them with a single
// signal so parked consumers wake once per batch. If claiming is
// interrupted mid-batch, the slots already written are published before
// the error returns
func (p *Pipeline[T]) PublishBatch(ctx context.Context, slots []T) error {
	if len(slots) == 0 {
		return nil
	}

	last := core.InitialSequence
	for _, slot := range slots {
		seq, err := p.sequencer.Next(ctx)
		if err != nil {
			if last != core.InitialSequence {
				p.sequencer.Publish(last)
			}
			return err
		}
		p.ring.Set(seq, slot)
		last = seq
	}
	p.sequencer.Publish(last)
	return nil
}

// Halt alerts every barrier, waits for the consumers to stop, and
// persists final progress when a checkpoint store is configured. It
// returns the first consumer error, if any. Halting twice is a no-op
func (p *Pipeline[T]) Halt(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.halted {
		return nil
	}
	p.halted = true

	p.logger.Info().Msg("pipeline halting")

	for _, barrier := range p.barriers {
		barrier.Alert()
	}
	p.wg.Wait()

	var saveErr error
	if p.store != nil {
		if saveErr = p.store.SaveAll(ctx, p.Progress()); saveErr != nil {
			p.logger.Error().Err(saveErr).Msg("failed to persist final checkpoints")
		}
	}

	var runErr error
	select {
	case runErr = <-p.errChan:
	default:
	}

	if runErr != nil {
		p.logger.Error().Err(runErr).Msg("pipeline halted with error")
		return runErr
	}
	if saveErr != nil {
		return fmt.Errorf("failed to persist final checkpoints: %w", saveErr)
	}

	p.logger.Info().Int64("cursor", p.Cursor()).Msg("pipeline halted")
	return nil
}

// Cursor returns the highest published sequence
func (p *Pipeline[T]) Cursor() int64 {
	return p.sequencer.Cursor().Load()
}

// Progress returns each consumer's last processed sequence
func (p *Pipeline[T]) Progress() map[string]int64 {
	progress := make(map[string]int64, len(p.consumers))
	for _, c := range p.consumers {
		progress[c.Name()] = c.Sequence().Load()
	}
	return progress
}
