package sequencer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/creastat/sequencer/core"
)

func noopHandler() Handler[int] {
	return HandlerFunc[int](func(ctx context.Context, sequence int64, slot int, endOfBatch bool) error {
		return nil
	})
}

// TestBuildRejectsEmptyPipeline tests that building without handlers
// fails validation
func TestBuildRejectsEmptyPipeline(t *testing.T) {
	_, err := NewBuilder[int]().Build()
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Details, "no handlers") {
		t.Errorf("Expected details to mention missing handlers, got %q", vErr.Details)
	}
}

// TestBuildRejectsNilHandler tests that a registered nil handler fails
// validation
func TestBuildRejectsNilHandler(t *testing.T) {
	_, err := NewBuilder[int]().Handle("sink", nil).Build()
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Details, `"sink"`) {
		t.Errorf("Expected details to name the handler, got %q", vErr.Details)
	}
}

// TestBuildRejectsDuplicateName tests that two handlers cannot share a
// name
func TestBuildRejectsDuplicateName(t *testing.T) {
	_, err := NewBuilder[int]().
		Handle("sink", noopHandler()).
		Handle("sink", noopHandler()).
		Build()
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Errorf("Expected duplicate registration error, got %v", err)
	}
}

// TestBuildRejectsUnknownDependency tests that a dependency must name a
// registered handler
func TestBuildRejectsUnknownDependency(t *testing.T) {
	_, err := NewBuilder[int]().
		Handle("sink", noopHandler(), "missing").
		Build()
	if err == nil || !strings.Contains(err.Error(), `unknown handler "missing"`) {
		t.Errorf("Expected unknown dependency error, got %v", err)
	}
}

// TestBuildRejectsSelfDependency tests that a handler cannot wait on
// itself
func TestBuildRejectsSelfDependency(t *testing.T) {
	_, err := NewBuilder[int]().
		Handle("sink", noopHandler(), "sink").
		Build()
	if err == nil || !strings.Contains(err.Error(), "depends on itself") {
		t.Errorf("Expected self dependency error, got %v", err)
	}
}

// TestBuildRejectsCycle tests that circular dependencies fail validation
func TestBuildRejectsCycle(t *testing.T) {
	_, err := NewBuilder[int]().
		Handle("a", noopHandler(), "c").
		Handle("b", noopHandler(), "a").
		Handle("c", noopHandler(), "b").
		Build()
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Details, "cycle") {
		t.Errorf("Expected details to mention a cycle, got %q", vErr.Details)
	}
}

// TestBuildRejectsInvalidBufferSize tests that the ring capacity must be
// a positive power of two
func TestBuildRejectsInvalidBufferSize(t *testing.T) {
	for _, size := range []int{0, -8, 3, 100} {
		_, err := NewBuilder[int]().
			WithBufferSize(size).
			Handle("sink", noopHandler()).
			Build()
		var vErr ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("Expected ValidationError for size %d, got %v", size, err)
		}
	}
}

// TestBuildRejectsUnknownStrategy tests that an unrecognized strategy
// type fails validation
func TestBuildRejectsUnknownStrategy(t *testing.T) {
	_, err := NewBuilder[int]().
		WithStrategy(core.StrategyType("sleeping")).
		Handle("sink", noopHandler()).
		Build()
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Details, `"sleeping"`) {
		t.Errorf("Expected details to name the strategy, got %q", vErr.Details)
	}
}

// TestBuildRejectsInvalidPins tests that pins must target registered
// handlers and non-negative cores
func TestBuildRejectsInvalidPins(t *testing.T) {
	_, err := NewBuilder[int]().
		Handle("sink", noopHandler()).
		PinHandler("missing", 0).
		Build()
	if err == nil || !strings.Contains(err.Error(), `unknown handler "missing"`) {
		t.Errorf("Expected unknown pin target error, got %v", err)
	}

	_, err = NewBuilder[int]().
		Handle("sink", noopHandler()).
		PinHandler("sink", -2).
		Build()
	if err == nil || !strings.Contains(err.Error(), "negative cpu") {
		t.Errorf("Expected negative cpu error, got %v", err)
	}
}

// TestBuildWiresDiamondTopology tests that a diamond of handlers builds
// with the right signalling and gating roles
func TestBuildWiresDiamondTopology(t *testing.T) {
	pipeline, err := NewBuilder[int]().
		WithBufferSize(8).
		Handle("decode", noopHandler()).
		Handle("enrich", noopHandler(), "decode").
		Handle("audit", noopHandler(), "decode").
		Handle("sink", noopHandler(), "enrich", "audit").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(pipeline.consumers) != 4 {
		t.Fatalf("Expected 4 consumers, got %d", len(pipeline.consumers))
	}

	// Only the leaf gates the producer
	if len(pipeline.sequencer.gates) != 1 {
		t.Errorf("Expected 1 producer gate, got %d", len(pipeline.sequencer.gates))
	}

	// Upstream consumers signal their dependents, the leaf does not
	wantSignal := map[string]bool{
		"decode": true,
		"enrich": true,
		"audit":  true,
		"sink":   false,
	}
	for _, c := range pipeline.consumers {
		if c.config.SignalDownstream != wantSignal[c.Name()] {
			t.Errorf("Consumer %q: expected SignalDownstream=%v", c.Name(), wantSignal[c.Name()])
		}
	}
}
