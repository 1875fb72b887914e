package esmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func argIter(t *testing.T, args []string) Iter[string] {
	t.Helper()
	r := decode(t, execBuilder(4, args, nil, 3, nil))
	ev, ok := r.Event().(Exec)
	require.True(t, ok)
	return ev.Args()
}

func TestIterWalksInOrder(t *testing.T) {
	it := argIter(t, []string{"a", "b", "c"})
	assert.Equal(t, 3, it.Len())

	for _, want := range []string{"a", "b", "c"} {
		got, ok := it.Next()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := it.Next()
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok, "exhausted iterator must stay exhausted")
	assert.Equal(t, 0, it.Len())
}

func TestIterNth(t *testing.T) {
	it := argIter(t, []string{"a", "b", "c", "d", "e"})

	got, ok := it.Nth(2)
	require.True(t, ok)
	assert.Equal(t, "c", got)

	got, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, "d", got, "nth consumes everything up to and including its answer")

	_, ok = it.Nth(5)
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok, "failed nth exhausts the iterator")
}

func TestIterNthNegative(t *testing.T) {
	it := argIter(t, []string{"a", "b"})
	_, ok := it.Nth(-1)
	assert.False(t, ok)
}

func TestIterLast(t *testing.T) {
	it := argIter(t, []string{"a", "b", "c"})
	got, ok := it.Last()
	require.True(t, ok)
	assert.Equal(t, "c", got)
	_, ok = it.Next()
	assert.False(t, ok)

	empty := argIter(t, nil)
	_, ok = empty.Last()
	assert.False(t, ok)
}

func TestIterCountAfterPartialConsumption(t *testing.T) {
	it := argIter(t, []string{"a", "b", "c", "d", "e"})
	it.Next()
	it.Next()
	assert.Equal(t, 3, it.Count())
	_, ok := it.Next()
	assert.False(t, ok, "count consumes the iterator")
}

func TestIterCollect(t *testing.T) {
	it := argIter(t, []string{"a", "b", "c"})
	it.Next()
	assert.Equal(t, []string{"b", "c"}, it.Collect())

	empty := argIter(t, nil)
	assert.Nil(t, empty.Collect())
}

func TestIterEmptyNeverReads(t *testing.T) {
	it := newIter(0, func(i int) string {
		t.Fatalf("reader called with index %d on empty iterator", i)
		return ""
	})
	_, ok := it.Next()
	assert.False(t, ok)
	_, ok = it.Last()
	assert.False(t, ok)
	assert.Equal(t, 0, it.Count())
	assert.Nil(t, it.Collect())
}

func TestIterOutOfRangeNeverReads(t *testing.T) {
	reads := 0
	it := newIter(3, func(i int) string {
		require.Less(t, i, 3)
		reads++
		return "x"
	})
	_, ok := it.Nth(7)
	assert.False(t, ok)
	assert.Equal(t, 0, reads)
}

func TestIterNegativeCountClamps(t *testing.T) {
	it := newIter(-2, func(int) string { return "x" })
	assert.Equal(t, 0, it.Len())
	_, ok := it.Next()
	assert.False(t, ok)
}
