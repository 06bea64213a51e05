package iterutil

import (
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func rangeSeq(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

func TestChunkSizes(t *testing.T) {
	testCases := []struct {
		n        int
		size     int
		expected []int
	}{
		{n: 45, size: 19, expected: []int{19, 19, 7}},
		{n: 38, size: 19, expected: []int{19, 19}},
		{n: 1, size: 19, expected: []int{1}},
		{n: 0, size: 19, expected: nil},
		{n: 5, size: 1, expected: []int{1, 1, 1, 1, 1}},
	}

	for _, test := range testCases {
		var sizes []int
		for chunk := range Chunk(rangeSeq(test.n), test.size) {
			sizes = append(sizes, len(chunk))
		}
		require.Equal(t, test.expected, sizes, "n=%d size=%d", test.n, test.size)
	}
}

func TestChunkPreservesOrder(t *testing.T) {
	var flattened []int
	for chunk := range Chunk(rangeSeq(10), 3) {
		flattened = append(flattened, chunk...)
	}
	require.Equal(t, slices.Collect(rangeSeq(10)), flattened)
}

func TestChunkStopsEarly(t *testing.T) {
	pulled := 0
	var seq iter.Seq[int] = func(yield func(int) bool) {
		for i := 0; i < 100; i++ {
			pulled++
			if !yield(i) {
				return
			}
		}
	}

	for chunk := range Chunk(seq, 4) {
		require.Equal(t, []int{0, 1, 2, 3}, chunk)
		break
	}
	require.Equal(t, 4, pulled)
}

func TestChunkRestartable(t *testing.T) {
	chunks := Chunk(rangeSeq(5), 2)
	first := slices.Collect(chunks)
	second := slices.Collect(chunks)
	require.Equal(t, first, second)
	require.Len(t, first, 3)
}
