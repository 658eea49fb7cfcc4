package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOAcrossGrowth(t *testing.T) {
	q := NewQueue[int](2)
	for i := 1; i <= 5; i++ {
		q.Enqueue(i)
	}
	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	q.Enqueue(6)
	q.Enqueue(7)
	assert.Equal(t, 6, q.Len())

	var got []int
	for !q.IsEmpty() {
		v, _ := q.Dequeue()
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7}, got)

	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestQueueZeroValueAndReset(t *testing.T) {
	var q Queue[string]
	q.Enqueue("a")
	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", head)

	q.Reset()
	assert.True(t, q.IsEmpty())
	_, ok = q.Peek()
	assert.False(t, ok)
}

func TestIteratorFilterFindCount(t *testing.T) {
	it := From([]int{1, 2, 3, 4, 5, 6})
	even := it.Filter(func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4, 6}, even.Collect())
	assert.Equal(t, 3, even.Count())

	v, ok := it.Find(func(v int) bool { return v > 4 })
	require.True(t, ok)
	assert.Equal(t, 5, v)

	_, ok = From[int](nil).First()
	assert.False(t, ok)
}
