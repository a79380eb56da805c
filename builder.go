package sequencer

import (
	"fmt"

	"github.com/creastat/sequencer/checkpoint"
	"github.com/creastat/sequencer/core"
	"github.com/rs/zerolog"
)

// DefaultBufferSize is the ring capacity used when the builder is not
// given one
const DefaultBufferSize = 1024

// handlerConfig holds configuration for one registered handler
type handlerConfig[T any] struct {
	name    string
	handler Handler[T]
	after   []string
}

// Builder assembles a pipeline with a fluent API
type Builder[T any] struct {
	bufferSize int
	strategy   core.StrategyType
	logger     zerolog.Logger
	store      checkpoint.Store
	handlers   []handlerConfig[T]
	pins       map[string]int
}

// NewBuilder creates a pipeline builder with blocking waits and the
// default buffer size
func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{
		bufferSize: DefaultBufferSize,
		strategy:   core.StrategyBlocking,
		logger:     zerolog.Nop(),
		pins:       make(map[string]int),
	}
}

// WithBufferSize sets the ring capacity, which must be a positive power
// of two
func (b *Builder[T]) WithBufferSize(size int) *Builder[T] {
	b.bufferSize = size
	return b
}

// WithStrategy selects how consumers wait for published sequences
func (b *Builder[T]) WithStrategy(strategy core.StrategyType) *Builder[T] {
	b.strategy = strategy
	return b
}

// WithLogger sets the pipeline logger
func (b *Builder[T]) WithLogger(logger zerolog.Logger) *Builder[T] {
	b.logger = logger
	return b
}

// WithCheckpointStore persists final consumer progress when the pipeline
// halts
func (b *Builder[T]) WithCheckpointStore(store checkpoint.Store) *Builder[T] {
	b.store = store
	return b
}

// Handle registers a named handler. Handlers named in after must also be
// registered; this handler then consumes a slot only once all of them
// have processed it
func (b *Builder[T]) Handle(name string, handler Handler[T], after ...string) *Builder[T] {
	b.handlers = append(b.handlers, handlerConfig[T]{
		name:    name,
		handler: handler,
		after:   after,
	})
	return b
}

// PinHandler pins the named handler's consumer thread to a CPU core.
// Meant for busy-spin consumers, which need a dedicated core
func (b *Builder[T]) PinHandler(name string, cpu int) *Builder[T] {
	b.pins[name] = cpu
	return b
}

// Build validates the configuration and assembles the pipeline
func (b *Builder[T]) Build() (*Pipeline[T], error) {
	// Assemble the dependency graph
	graph := newDependencyGraph()
	for _, h := range b.handlers {
		if h.handler == nil {
			return nil, ValidationError{
				Message: "pipeline validation failed",
				Details: fmt.Sprintf("handler %q is nil", h.name),
			}
		}
		if err := graph.addNode(h.name, h.after); err != nil {
			return nil, fmt.Errorf("failed to register handler %q: %w", h.name, err)
		}
	}
	if err := graph.connect(); err != nil {
		return nil, fmt.Errorf("failed to wire handler dependencies: %w", err)
	}

	// Validate the topology
	if err := validateTopology(graph, b.bufferSize, b.pins); err != nil {
		return nil, err
	}

	strategy, err := core.NewStrategy(b.strategy)
	if err != nil {
		return nil, ValidationError{
			Message: "pipeline validation failed",
			Details: err.Error(),
		}
	}

	ring := NewRing[T](b.bufferSize)
	seq := NewSequencer(strategy, b.bufferSize)

	// Create every consumer's progress counter first so barriers can
	// reference upstream progress regardless of registration order
	sequences := make(map[string]*core.Sequence, len(b.handlers))
	for _, h := range b.handlers {
		sequences[h.name] = core.NewSequence(core.InitialSequence)
	}

	consumers := make([]*Consumer[T], 0, len(b.handlers))
	barriers := make([]*SequenceBarrier, 0, len(b.handlers))

	for _, h := range b.handlers {
		deps := graph.dependencies(h.name)
		upstream := make([]*core.Sequence, 0, len(deps))
		for _, dep := range deps {
			upstream = append(upstream, sequences[dep])
		}
		barrier := NewSequenceBarrier(strategy, seq.Cursor(), upstream...)

		pin, pinned := b.pins[h.name]
		if !pinned {
			pin = -1
		}

		consumer := NewConsumer(ConsumerConfig[T]{
			Name:             h.name,
			Ring:             ring,
			Barrier:          barrier,
			Handler:          h.handler,
			Sequence:         sequences[h.name],
			Strategy:         strategy,
			SignalDownstream: graph.hasDependents(h.name),
			PinnedCPU:        pin,
			Logger:           b.logger,
		})

		consumers = append(consumers, consumer)
		barriers = append(barriers, barrier)
	}

	// The producer gates only on the final consumers: everything
	// upstream of a leaf is at least as far along as the leaf itself
	for _, leaf := range graph.leaves() {
		seq.AddGate(sequences[leaf])
	}

	return &Pipeline[T]{
		ring:      ring,
		sequencer: seq,
		consumers: consumers,
		barriers:  barriers,
		logger:    b.logger,
		store:     b.store,
		errChan:   make(chan error, len(consumers)),
	}, nil
}
