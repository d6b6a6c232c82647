package collection

// RewindableIterator is a forward cursor over a slice that can be rewound to
// the most recently recorded checkpoint. Used by sequence matchers that need
// one-step lookahead without consuming the probed element.
type RewindableIterator[T any] struct {
	items      []T
	pos        int
	checkpoint int
}

// NewRewindableIterator creates a cursor positioned before the first element.
func NewRewindableIterator[T any](items []T) *RewindableIterator[T] {
	return &RewindableIterator[T]{items: items, checkpoint: -1}
}

// Next returns the next element and advances the cursor. The second result
// is false once the input is exhausted.
func (it *RewindableIterator[T]) Next() (T, bool) {
	if it.pos >= len(it.items) {
		var zero T
		return zero, false
	}
	v := it.items[it.pos]
	it.pos++
	return v, true
}

// Checkpoint records the current position for a later Rewind.
func (it *RewindableIterator[T]) Checkpoint() {
	it.checkpoint = it.pos
}

// Rewind restores the position recorded by the most recent Checkpoint.
// Calling Rewind without a prior Checkpoint is a programming error.
func (it *RewindableIterator[T]) Rewind() {
	if it.checkpoint < 0 {
		panic("collection: Rewind called without a checkpoint")
	}
	it.pos = it.checkpoint
}
