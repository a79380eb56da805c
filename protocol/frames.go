package protocol

import (
	"fmt"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// FrameType defines pipeline-to-client frame types
type FrameType string

const (
	// Slot delivery
	FrameSlot FrameType = "slot" // One processed ring slot

	// Batch boundaries
	FrameBatchEnd FrameType = "batch.end" // Last slot of an available batch

	// Lifecycle
	FrameHalt FrameType = "halt" // Pipeline halted; no more slots follow
)

// Frame is the envelope for every message sent to a client
type Frame struct {
	Type      FrameType `json:"type"`
	Sequence  int64     `json:"sequence"`          // Sequence the frame refers to
	Payload   any       `json:"payload,omitempty"` // Slot value for slot frames
	Timestamp int64     `json:"timestamp"`         // Producer wall clock, unix ms
}

// NewSlotFrame creates a slot frame carrying one processed value
func NewSlotFrame(sequence int64, payload any) *Frame {
	return &Frame{
		Type:      FrameSlot,
		Sequence:  sequence,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewBatchEndFrame creates a marker for the last slot of a batch
func NewBatchEndFrame(sequence int64) *Frame {
	return &Frame{
		Type:      FrameBatchEnd,
		Sequence:  sequence,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewHaltFrame creates the final frame of a stream
func NewHaltFrame(sequence int64) *Frame {
	return &Frame{
		Type:      FrameHalt,
		Sequence:  sequence,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Encode serializes the frame for the wire
func (f *Frame) Encode() ([]byte, error) {
	data, err := sonnet.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", f.Type, err)
	}
	return data, nil
}

// DecodeFrame parses a frame received from the wire
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := sonnet.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return &f, nil
}
