package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewindableIterator(t *testing.T) {
	t.Run("Next", func(t *testing.T) {
		it := NewRewindableIterator([]int{1, 2})
		v, ok := it.Next()
		assert.True(t, ok)
		assert.Equal(t, 1, v)
		v, ok = it.Next()
		assert.True(t, ok)
		assert.Equal(t, 2, v)
		_, ok = it.Next()
		assert.False(t, ok)
	})

	t.Run("CheckpointRewind", func(t *testing.T) {
		it := NewRewindableIterator([]int{1, 2, 3})
		it.Next()
		it.Checkpoint()
		it.Next()
		it.Next()
		it.Rewind()
		v, ok := it.Next()
		assert.True(t, ok)
		assert.Equal(t, 2, v)
	})

	t.Run("RewindKeepsLastCheckpoint", func(t *testing.T) {
		it := NewRewindableIterator([]int{1, 2, 3, 4})
		it.Checkpoint()
		it.Next()
		it.Checkpoint()
		it.Next()
		it.Next()
		it.Rewind()
		v, _ := it.Next()
		assert.Equal(t, 2, v)
		it.Rewind()
		v, _ = it.Next()
		assert.Equal(t, 2, v)
	})

	t.Run("RewindWithoutCheckpointPanics", func(t *testing.T) {
		it := NewRewindableIterator([]int{1})
		assert.Panics(t, func() { it.Rewind() })
	})
}
