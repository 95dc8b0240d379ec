package capture

import "sync"

// Slot is a single-value overwrite buffer between one producer and one
// consumer. Put never blocks: a value the consumer has not taken yet is
// superseded and handed to the release function. The consumer only ever
// sees the newest value.
type Slot[T any] struct {
	mu      sync.Mutex
	value   T
	full    bool
	dropped uint64
	release func(T)
	ready   chan struct{}
}

// NewSlot creates an empty slot. release is called on values that are
// overwritten before being taken, or left behind by Close; it may be nil.
func NewSlot[T any](release func(T)) *Slot[T] {
	return &Slot[T]{
		release: release,
		ready:   make(chan struct{}, 1),
	}
}

// Put stores v, replacing any value that has not been taken.
func (s *Slot[T]) Put(v T) {
	s.mu.Lock()
	old, had := s.value, s.full
	s.value, s.full = v, true
	if had {
		s.dropped++
	}
	s.mu.Unlock()

	if had && s.release != nil {
		s.release(old)
	}
	s.signal()
}

func (s *Slot[T]) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Take removes and returns the newest value. ok is false when the slot is
// empty. Ownership of the value passes to the caller.
func (s *Slot[T]) Take() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.full {
		return v, false
	}
	v, s.value, s.full = s.value, *new(T), false
	return v, true
}

// Ready signals, without blocking the producer, that a value may be
// available. A receive does not guarantee Take succeeds.
func (s *Slot[T]) Ready() <-chan struct{} {
	return s.ready
}

// Dropped returns how many values were overwritten before being taken.
func (s *Slot[T]) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close releases a value still held by the slot.
func (s *Slot[T]) Close() {
	if v, ok := s.Take(); ok && s.release != nil {
		s.release(v)
	}
}
