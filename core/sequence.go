package core

import "sync/atomic"

// InitialSequence is the cursor value before anything has been
// published. The first published sequence is 0.
const InitialSequence int64 = -1

// Sequence is an atomically accessed sequence counter padded to its own
// cache line so that hot counters owned by different goroutines do not
// false-share
type Sequence struct {
	_ [64]byte
	v atomic.Int64
	_ [56]byte
}

// NewSequence creates a sequence counter starting at initial
func NewSequence(initial int64) *Sequence {
	s := &Sequence{}
	s.v.Store(initial)
	return s
}

// Load returns the current value with acquire visibility
func (s *Sequence) Load() int64 {
	return s.v.Load()
}

// Store publishes a new value with release visibility
func (s *Sequence) Store(v int64) {
	s.v.Store(v)
}

// CompareAndSwap atomically replaces old with new and reports whether it
// succeeded
func (s *Sequence) CompareAndSwap(old, new int64) bool {
	return s.v.CompareAndSwap(old, new)
}
