package columnar

import (
	"iter"
	"math"

	"github.com/pkg/errors"
)

// SliceRegion relocates []T values. Elements are first relocated through
// the inner region and then written into stable backing blocks; the
// returned slice has len == cap == len(source), so appending to it copies
// instead of overwriting neighbouring data.
type SliceRegion[T any] struct {
	region StableRegion[T]
	inner  Region[T]
	bulk   bool
}

// Slice returns a region for []T whose elements are relocated by inner.
// A nil inner means T has no owned payload.
func Slice[T any](inner Region[T]) *SliceRegion[T] {
	inner = orTrivial(inner)
	return &SliceRegion[T]{inner: inner, bulk: isTrivial(inner)}
}

// Configure implements Configurable.
func (r *SliceRegion[T]) Configure(s Settings) {
	r.region.Configure(s)
	configure(r.inner, s)
}

// Copy relocates *item. A nil slice stays nil.
func (r *SliceRegion[T]) Copy(item *[]T) ([]T, error) {
	src := *item
	if src == nil {
		return nil, nil
	}
	if r.bulk {
		return r.region.CopySlice(src)
	}
	dst, err := r.region.Alloc(len(src))
	if err != nil {
		return nil, err
	}
	for i := range src {
		v, err := r.inner.Copy(&src[i])
		if err != nil {
			r.region.unalloc(dst)
			return nil, err
		}
		dst[i] = v
	}
	return dst, nil
}

// ReserveItems counts the elements of every slice in items and reserves
// one block for all of them, then reserves the inner region for the
// elements themselves. items is iterated more than once.
func (r *SliceRegion[T]) ReserveItems(items iter.Seq[*[]T]) error {
	total := 0
	for s := range items {
		if total > math.MaxInt-len(*s) {
			return errors.Wrap(ErrCapacityOverflow, "reserving slice elements")
		}
		total += len(*s)
	}
	if err := r.region.Reserve(total); err != nil {
		return err
	}
	if r.bulk {
		return nil
	}
	return r.inner.ReserveItems(func(yield func(*T) bool) {
		for s := range items {
			for i := range *s {
				if !yield(&(*s)[i]) {
					return
				}
			}
		}
	})
}

func (r *SliceRegion[T]) Clear() {
	r.region.Clear()
	r.inner.Clear()
}

// Release releases the inner region, then the element blocks.
func (r *SliceRegion[T]) Release() {
	r.inner.Release()
	r.region.Release()
}

func (r *SliceRegion[T]) HeapSize(callback func(used, capacity int)) {
	r.inner.HeapSize(callback)
	r.region.HeapSize(callback)
}
