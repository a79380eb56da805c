package handlers

import (
	"context"
	"fmt"

	"github.com/creastat/sequencer/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WebSocketSinkConfig holds WebSocket sink configuration
type WebSocketSinkConfig struct {
	Conn     *websocket.Conn
	StreamID string
	Logger   zerolog.Logger
}

// WebSocketSink streams processed slots to a WebSocket peer as slot
// frames, with a batch.end marker after the last slot of each batch
type WebSocketSink[T any] struct {
	config WebSocketSinkConfig
}

// NewWebSocketSink creates a new WebSocket sink handler
func NewWebSocketSink[T any](config WebSocketSinkConfig) *WebSocketSink[T] {
	return &WebSocketSink[T]{
		config: config,
	}
}

// OnSlot sends the slot to the peer. A write failure stops the owning
// consumer: a sink with a dead peer has nothing left to do
func (ws *WebSocketSink[T]) OnSlot(ctx context.Context, sequence int64, slot T, endOfBatch bool) error {
	logger := ws.config.Logger.With().Str("stream", ws.config.StreamID).Logger()

	if err := ws.writeFrame(protocol.NewSlotFrame(sequence, slot)); err != nil {
		logger.Error().Err(err).Int64("sequence", sequence).Msg("failed to send slot frame")
		return fmt.Errorf("websocket sink: %w", err)
	}

	if endOfBatch {
		if err := ws.writeFrame(protocol.NewBatchEndFrame(sequence)); err != nil {
			logger.Error().Err(err).Int64("sequence", sequence).Msg("failed to send batch end frame")
			return fmt.Errorf("websocket sink: %w", err)
		}
		logger.Debug().Int64("sequence", sequence).Msg("batch flushed to peer")
	}

	return nil
}

// SendHalt tells the peer no more slots will follow. Meant to be called
// after the pipeline halts
func (ws *WebSocketSink[T]) SendHalt(sequence int64) error {
	if err := ws.writeFrame(protocol.NewHaltFrame(sequence)); err != nil {
		return fmt.Errorf("websocket sink: %w", err)
	}
	return nil
}

// writeFrame encodes and writes one frame as a text message
func (ws *WebSocketSink[T]) writeFrame(frame *protocol.Frame) error {
	data, err := frame.Encode()
	if err != nil {
		return err
	}
	return ws.config.Conn.WriteMessage(websocket.TextMessage, data)
}
