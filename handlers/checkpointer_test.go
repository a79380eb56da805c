package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/creastat/sequencer"
	"github.com/rs/zerolog"
)

// memoryStore is an in-memory checkpoint store for tests
type memoryStore struct {
	mu        sync.Mutex
	positions map[string]int64
	saveErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{positions: make(map[string]int64)}
}

func (m *memoryStore) Save(ctx context.Context, name string, sequence int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.positions[name] = sequence
	return nil
}

func (m *memoryStore) SaveAll(ctx context.Context, positions map[string]int64) error {
	for name, sequence := range positions {
		if err := m.Save(ctx, name, sequence); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryStore) Load(ctx context.Context, name string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sequence, ok := m.positions[name]
	return sequence, ok, nil
}

func (m *memoryStore) Close() error { return nil }

// TestCheckpointerSavesOnBatchEnd tests that progress is persisted only
// at batch boundaries
func TestCheckpointerSavesOnBatchEnd(t *testing.T) {
	store := newMemoryStore()
	var handled []int64

	cp := NewCheckpointer[string](CheckpointerConfig[string]{
		Name: "sink",
		Next: sequencer.HandlerFunc[string](func(ctx context.Context, sequence int64, slot string, endOfBatch bool) error {
			handled = append(handled, sequence)
			return nil
		}),
		Store:  store,
		Logger: zerolog.Nop(),
	})

	ctx := context.Background()
	if err := cp.OnSlot(ctx, 3, "a", false); err != nil {
		t.Fatalf("OnSlot(3) failed: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "sink"); ok {
		t.Error("Should not save before the batch ends")
	}

	if err := cp.OnSlot(ctx, 4, "b", true); err != nil {
		t.Fatalf("OnSlot(4) failed: %v", err)
	}
	sequence, ok, _ := store.Load(ctx, "sink")
	if !ok || sequence != 4 {
		t.Errorf("Expected checkpoint 4, got %d (ok=%v)", sequence, ok)
	}

	if len(handled) != 2 || handled[0] != 3 || handled[1] != 4 {
		t.Errorf("Expected wrapped handler to see sequences [3 4], got %v", handled)
	}
}

// TestCheckpointerPropagatesHandlerError tests that a failing wrapped
// handler skips the save and surfaces its error unchanged
func TestCheckpointerPropagatesHandlerError(t *testing.T) {
	store := newMemoryStore()
	handlerErr := errors.New("slot rejected")

	cp := NewCheckpointer[string](CheckpointerConfig[string]{
		Name: "sink",
		Next: sequencer.HandlerFunc[string](func(ctx context.Context, sequence int64, slot string, endOfBatch bool) error {
			return handlerErr
		}),
		Store:  store,
		Logger: zerolog.Nop(),
	})

	err := cp.OnSlot(context.Background(), 5, "a", true)
	if !errors.Is(err, handlerErr) {
		t.Errorf("Expected handler error, got %v", err)
	}
	if _, ok, _ := store.Load(context.Background(), "sink"); ok {
		t.Error("Should not save when the wrapped handler fails")
	}
}

// TestCheckpointerSaveFailure tests that a failed save is reported so
// the consumer stops instead of running ahead of its checkpoints
func TestCheckpointerSaveFailure(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = errors.New("disk full")

	cp := NewCheckpointer[string](CheckpointerConfig[string]{
		Name: "sink",
		Next: sequencer.HandlerFunc[string](func(ctx context.Context, sequence int64, slot string, endOfBatch bool) error {
			return nil
		}),
		Store:  store,
		Logger: zerolog.Nop(),
	})

	err := cp.OnSlot(context.Background(), 2, "a", true)
	if err == nil {
		t.Fatal("Expected save error, got nil")
	}
	if !errors.Is(err, store.saveErr) {
		t.Errorf("Expected wrapped save error, got %v", err)
	}
}
