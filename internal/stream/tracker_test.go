package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/stream"
)

func TestSequenceTracker(t *testing.T) {
	t.Parallel()

	t.Run("starts at sentinel", func(t *testing.T) {
		t.Parallel()

		tr := stream.NewSequenceTracker()
		assert.Equal(t, stream.NoSequence, tr.Last())
	})

	t.Run("records increasing sequences", func(t *testing.T) {
		t.Parallel()

		tr := stream.NewSequenceTracker()
		assert.True(t, tr.Record(0))
		assert.True(t, tr.Record(1))
		assert.True(t, tr.Record(5))
		assert.Equal(t, int64(5), tr.Last())
	})

	t.Run("ignores duplicates and lower sequences", func(t *testing.T) {
		t.Parallel()

		tr := stream.NewSequenceTracker()
		assert.True(t, tr.Record(3))
		assert.False(t, tr.Record(3))
		assert.False(t, tr.Record(2))
		assert.False(t, tr.Record(0))
		assert.Equal(t, int64(3), tr.Last())
	})

	t.Run("zero is a valid first sequence", func(t *testing.T) {
		t.Parallel()

		tr := stream.NewSequenceTracker()
		assert.True(t, tr.Record(0))
		assert.Equal(t, int64(0), tr.Last())
	})

	t.Run("reset returns to sentinel", func(t *testing.T) {
		t.Parallel()

		tr := stream.NewSequenceTracker()
		tr.Record(9)
		tr.Reset()
		assert.Equal(t, stream.NoSequence, tr.Last())
		assert.True(t, tr.Record(0))
	})
}
