package columnar

import "iter"

// PointerRegion relocates *T values: the pointee is relocated through the
// inner region and stored in stable blocks, and the result points there.
// A nil pointer stays nil.
type PointerRegion[T any] struct {
	region StableRegion[T]
	inner  Region[T]
}

// Pointer returns a region for *T. A nil inner means T has no owned payload.
func Pointer[T any](inner Region[T]) *PointerRegion[T] {
	return &PointerRegion[T]{inner: orTrivial(inner)}
}

// Configure implements Configurable.
func (r *PointerRegion[T]) Configure(s Settings) {
	r.region.Configure(s)
	configure(r.inner, s)
}

func (r *PointerRegion[T]) Copy(item **T) (*T, error) {
	if *item == nil {
		return nil, nil
	}
	v, err := r.inner.Copy(*item)
	if err != nil {
		return nil, err
	}
	return r.region.Push(v)
}

func (r *PointerRegion[T]) ReserveItems(items iter.Seq[**T]) error {
	pointees := func(yield func(*T) bool) {
		for p := range items {
			if *p != nil && !yield(*p) {
				return
			}
		}
	}
	count := 0
	for range pointees {
		count++
	}
	if err := r.region.Reserve(count); err != nil {
		return err
	}
	return r.inner.ReserveItems(pointees)
}

func (r *PointerRegion[T]) Clear() {
	r.region.Clear()
	r.inner.Clear()
}

func (r *PointerRegion[T]) Release() {
	r.inner.Release()
	r.region.Release()
}

func (r *PointerRegion[T]) HeapSize(callback func(used, capacity int)) {
	r.inner.HeapSize(callback)
	r.region.HeapSize(callback)
}
