// Package arena provides pool-based bump allocation for objects whose lifetimes
// all end together. Values are addressed by stable Ref indices instead of raw
// pointers; Reset releases every allocation in a single operation.
//
// An Arena is not safe for concurrent use.
package arena

// Ref addresses a value allocated in an Arena. The zero Ref is never handed
// out, so it can be used as a "none" marker in intrusive lists.
type Ref uint32

// None is the reserved empty reference.
const None Ref = 0

// DefaultChunk is the number of values allocated per chunk when New is given
// a non-positive chunk size.
const DefaultChunk = 256

// Arena is a chunked bump allocator for values of type T. Chunks are never
// reallocated, so pointers returned by Get stay valid until Reset.
type Arena[T any] struct {
	chunks    [][]T
	chunkSize int
	count     int
}

// New creates an arena that grows chunkSize values at a time.
func New[T any](chunkSize int) *Arena[T] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunk
	}
	return &Arena[T]{chunkSize: chunkSize}
}

// Alloc copies v into the arena and returns its reference.
func (a *Arena[T]) Alloc(v T) Ref {
	slot := a.count + 1 // slot 0 backs None
	chunk, offset := slot/a.chunkSize, slot%a.chunkSize
	for chunk >= len(a.chunks) {
		a.chunks = append(a.chunks, make([]T, a.chunkSize))
	}
	a.chunks[chunk][offset] = v
	a.count++
	return Ref(slot)
}

// Get returns a pointer to the value behind ref. It panics on None or on a
// reference that was not allocated since the last Reset.
func (a *Arena[T]) Get(ref Ref) *T {
	slot := int(ref)
	if ref == None || slot > a.count {
		panic("arena: invalid reference")
	}
	return &a.chunks[slot/a.chunkSize][slot%a.chunkSize]
}

// Len reports the number of live allocations.
func (a *Arena[T]) Len() int { return a.count }

// Reset drops every allocation at once. References obtained before the reset
// must not be used afterwards.
func (a *Arena[T]) Reset() {
	a.chunks = nil
	a.count = 0
}
