package columnar

import (
	"math"
	"math/bits"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/columnar/internal/offheap"
)

// block is one fixed-capacity backing allocation. len(buf) is the committed
// length and cap(buf) the capacity; the base address never changes.
type block[T any] struct {
	buf   []T
	unmap func() error // non-nil for off-heap blocks

	// Charged when the block was allocated. Release refunds here, not to
	// whatever settings the region holds by then.
	budget  *Budget
	metrics *regionMetrics
}

func (b *block[T]) remaining() int {
	return cap(b.buf) - len(b.buf)
}

// commit extends the committed length by n and returns the new elements
// with their capacity clipped, so appending to the result never writes
// into the rest of the block.
func (b *block[T]) commit(n int) []T {
	start := len(b.buf)
	b.buf = b.buf[:start+n]
	return b.buf[start : start+n : start+n]
}

// allocFunc returns an empty buffer with capacity n and an optional
// function releasing it.
type allocFunc[T any] func(n int) ([]T, func() error, error)

func heapAlloc[T any](n int) ([]T, func() error, error) {
	return make([]T, 0, n), nil, nil
}

func offHeapAlloc(n int) ([]byte, func() error, error) {
	data, unmap, err := offheap.Map(n)
	if err != nil {
		return nil, nil, err
	}
	return data[:0], unmap, nil
}

// sizeOf returns the size of T in bytes.
func sizeOf[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// blockBytes returns n elements of size elemSize in bytes.
func blockBytes(n int, elemSize uintptr) (int64, error) {
	hi, lo := bits.Mul64(uint64(n), uint64(elemSize))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, errors.Wrapf(ErrCapacityOverflow, "%d elements of %d bytes", n, elemSize)
	}
	return int64(lo), nil
}

// nextBlockLen picks the capacity of a new block that must hold count
// elements, given the capacity of the previous block. The result is
// max(count, factor*last, minLen), clamped to maxLen (0 = unlimited) unless
// count alone exceeds it, and rounded up to a multiple of align when align > 1.
// A single oversized request gets a block that fits it in one jump.
func nextBlockLen(last, count, minLen, factor, maxLen, align int, elemSize uintptr) (int, error) {
	ceiling := math.MaxInt
	if elemSize > 0 {
		if c := uint64(math.MaxInt64) / uint64(elemSize); c < uint64(math.MaxInt) {
			ceiling = int(c)
		}
	}
	if count > ceiling {
		return 0, errors.Wrapf(ErrCapacityOverflow, "block of %d elements of %d bytes", count, elemSize)
	}

	next := minLen
	if last > 0 {
		if last > ceiling/factor {
			next = ceiling
		} else if last*factor > next {
			next = last * factor
		}
	}
	if maxLen > 0 && next > maxLen {
		next = maxLen
	}
	if next > ceiling {
		next = ceiling
	}
	if count > next {
		next = count
	}
	if align > 1 {
		if rem := next % align; rem != 0 {
			if next > ceiling-(align-rem) {
				return 0, errors.Wrapf(ErrCapacityOverflow, "aligning %d elements to %d", next, align)
			}
			next += align - rem
		}
	}
	return next, nil
}
