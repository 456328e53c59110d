package cache

// TypedRingBuffer keeps the last n pushed values in insertion order.
// It is not safe for concurrent use.
type TypedRingBuffer[T any] struct {
	items []T
	head  int
	size  int
}

func NewTypedRingBuffer[T any](n int) *TypedRingBuffer[T] {
	return &TypedRingBuffer[T]{
		items: make([]T, n),
	}
}

func (r *TypedRingBuffer[T]) Len() int {
	return r.size
}

func (r *TypedRingBuffer[T]) Cap() int {
	return len(r.items)
}

// Push appends v. When the ring is full the oldest value is dropped and returned.
func (r *TypedRingBuffer[T]) Push(v T) (evicted T, ok bool) {

	if len(r.items) == 0 {
		return v, true
	}

	if r.size < len(r.items) {
		r.items[(r.head+r.size)%len(r.items)] = v
		r.size++
		return evicted, false
	}

	evicted = r.items[r.head]
	r.items[r.head] = v
	r.head = (r.head + 1) % len(r.items)

	return evicted, true
}

// Filter drops every value keep rejects, preserving the order of the rest.
func (r *TypedRingBuffer[T]) Filter(keep func(T) bool) {

	kept := make([]T, 0, r.size)
	for i := 0; i < r.size; i++ {
		it := r.items[(r.head+i)%len(r.items)]
		if keep(it) {
			kept = append(kept, it)
		}
	}

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}

	copy(r.items, kept)
	r.head = 0
	r.size = len(kept)
}
