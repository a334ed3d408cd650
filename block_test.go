package columnar

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBlockLen(t *testing.T) {
	tests := []struct {
		name     string
		last     int
		count    int
		maxLen   int
		align    int
		size     uintptr
		expected int
	}{
		{"first block uses minimum", 0, 1, 0, 0, 8, 4},
		{"doubles previous", 4, 1, 0, 0, 8, 8},
		{"oversized request fits in one jump", 4, 100, 0, 0, 8, 100},
		{"clamped to max", 8, 1, 10, 0, 8, 10},
		{"request above max still fits", 8, 50, 10, 0, 8, 50},
		{"rounded to alignment", 0, 1, 0, 4096, 1, 4096},
		{"aligned value unchanged", 2048, 1, 0, 4096, 1, 4096},
		{"doubling near the ceiling is clamped", math.MaxInt/2 + 1, 1, 0, 0, 1, math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nextBlockLen(tt.last, tt.count, DefaultMinBlockLen, DefaultGrowthFactor, tt.maxLen, tt.align, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNextBlockLenOverflow(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("requires 64-bit int")
	}

	_, err := nextBlockLen(0, math.MaxInt, DefaultMinBlockLen, DefaultGrowthFactor, 0, 0, 8)
	assert.ErrorIs(t, err, ErrCapacityOverflow)

	_, err = nextBlockLen(0, math.MaxInt-1, DefaultMinBlockLen, DefaultGrowthFactor, 0, 4096, 1)
	assert.ErrorIs(t, err, ErrCapacityOverflow)

	_, err = blockBytes(math.MaxInt, 16)
	assert.ErrorIs(t, err, ErrCapacityOverflow)
}

func TestBlockBytes(t *testing.T) {
	n, err := blockBytes(10, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(80), n)

	n, err = blockBytes(math.MaxInt, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBlockCommitClipsCapacity(t *testing.T) {
	b := block[int]{buf: make([]int, 0, 8)}

	first := b.commit(3)
	second := b.commit(2)
	assert.Equal(t, 3, len(first))
	assert.Equal(t, 3, cap(first))
	assert.Equal(t, 3, b.remaining())

	second[0] = 42
	first = append(first, 7)
	assert.Equal(t, 42, second[0], "append on a committed slice must not overwrite its neighbour")
	assert.Equal(t, 7, first[3])
}
