package sequencer

import "fmt"

// Ring is fixed-capacity, power-of-two slot storage indexed by sequence.
// The producer writes a slot before publishing its sequence through the
// cursor, so a consumer that has observed the sequence reads the slot
// safely
type Ring[T any] struct {
	slots []T
	mask  int64
}

// NewRing creates a ring with the given capacity. Capacity must be a
// positive power of two so sequences map to slots with a mask instead of
// a modulo; anything else is a programming error and panics
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic(fmt.Sprintf("ring capacity must be a positive power of two, got %d", capacity))
	}
	return &Ring[T]{
		slots: make([]T, capacity),
		mask:  int64(capacity) - 1,
	}
}

// Get returns the slot holding the given sequence
func (r *Ring[T]) Get(sequence int64) T {
	return r.slots[sequence&r.mask]
}

// Set writes the slot for the given sequence
func (r *Ring[T]) Set(sequence int64, value T) {
	r.slots[sequence&r.mask] = value
}

// Size returns the ring capacity
func (r *Ring[T]) Size() int {
	return len(r.slots)
}
