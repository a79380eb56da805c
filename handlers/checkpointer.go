package handlers

import (
	"context"
	"fmt"

	"github.com/creastat/sequencer"
	"github.com/creastat/sequencer/checkpoint"
	"github.com/rs/zerolog"
)

// CheckpointerConfig holds checkpointing handler configuration
type CheckpointerConfig[T any] struct {
	// Name keys the saved position in the store. Use the consumer name
	// so Pipeline.Halt and the handler write to the same row
	Name string

	// Next receives every slot before its position is saved
	Next sequencer.Handler[T]

	Store  checkpoint.Store
	Logger zerolog.Logger
}

// Checkpointer wraps another handler and persists the last handled
// sequence at each batch boundary. Positions are saved after the
// wrapped handler succeeds, so a restart replays at most one batch
type Checkpointer[T any] struct {
	config CheckpointerConfig[T]
}

// NewCheckpointer creates a new checkpointing handler
func NewCheckpointer[T any](config CheckpointerConfig[T]) *Checkpointer[T] {
	return &Checkpointer[T]{
		config: config,
	}
}

// OnSlot delegates to the wrapped handler, then saves progress when the
// batch ends. A failed save stops the consumer rather than silently
// widening the replay window
func (c *Checkpointer[T]) OnSlot(ctx context.Context, sequence int64, slot T, endOfBatch bool) error {
	if err := c.config.Next.OnSlot(ctx, sequence, slot, endOfBatch); err != nil {
		return err
	}

	if !endOfBatch {
		return nil
	}

	if err := c.config.Store.Save(ctx, c.config.Name, sequence); err != nil {
		c.config.Logger.Error().Err(err).Str("name", c.config.Name).Int64("sequence", sequence).Msg("failed to save checkpoint")
		return fmt.Errorf("checkpointer %q: %w", c.config.Name, err)
	}

	c.config.Logger.Debug().Str("name", c.config.Name).Int64("sequence", sequence).Msg("checkpoint saved")
	return nil
}
