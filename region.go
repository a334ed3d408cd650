package columnar

import "iter"

// Region absorbs the owned payload of values of type T.
//
// Copy returns a header for item whose slices, strings and pointers refer
// to memory owned by the region rather than by item. The header is a
// read-only view: it must not be mutated, and it is valid only until the
// region is cleared or released. Clear keeps allocations for reuse,
// Release drops them. HeapSize reports each distinct allocation the region
// owns, in bytes.
type Region[T any] interface {
	Copy(item *T) (T, error)
	ReserveItems(items iter.Seq[*T]) error
	Clear()
	Release()
	HeapSize(callback func(used, capacity int))
}

// trivial marks regions whose Copy is a plain value copy, which lets
// sequences of them be relocated with one bulk copy.
type trivial interface {
	isTrivial()
}

func isTrivial(r any) bool {
	_, ok := r.(trivial)
	return ok
}

// CopyRegion is the region for types with no owned payload, such as
// numbers, bools and fixed-size arrays or structs of them.
type CopyRegion[T any] struct{}

// Trivial returns the region for a type with no owned payload.
func Trivial[T any]() CopyRegion[T] {
	return CopyRegion[T]{}
}

func (CopyRegion[T]) Copy(item *T) (T, error) {
	return *item, nil
}

func (CopyRegion[T]) ReserveItems(iter.Seq[*T]) error { return nil }

func (CopyRegion[T]) Clear() {}

func (CopyRegion[T]) Release() {}

func (CopyRegion[T]) HeapSize(func(used, capacity int)) {}

func (CopyRegion[T]) isTrivial() {}
