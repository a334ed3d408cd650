package columnar

import "iter"

// StructField relocates one owning field of a struct T. Build it with Field.
type StructField[T any] interface {
	relocate(dst, src *T) error
	reserve(items iter.Seq[*T]) error
	clear()
	release()
	heapSize(callback func(used, capacity int))
	configure(s Settings)
}

type field[T, F any] struct {
	get    func(*T) *F
	region Region[F]
}

// Field describes an owning field of T: get returns the field's address
// and region relocates its payload.
func Field[T, F any](get func(*T) *F, region Region[F]) StructField[T] {
	return &field[T, F]{get: get, region: orTrivial(region)}
}

func (f *field[T, F]) relocate(dst, src *T) error {
	v, err := f.region.Copy(f.get(src))
	if err != nil {
		return err
	}
	*f.get(dst) = v
	return nil
}

func (f *field[T, F]) reserve(items iter.Seq[*T]) error {
	return f.region.ReserveItems(project(items, f.get))
}

func (f *field[T, F]) clear()               { f.region.Clear() }
func (f *field[T, F]) release()             { f.region.Release() }
func (f *field[T, F]) configure(s Settings) { configure(f.region, s) }

func (f *field[T, F]) heapSize(callback func(used, capacity int)) {
	f.region.HeapSize(callback)
}

// StructRegion relocates a struct by copying it and then replacing each
// listed field with its relocated counterpart, in the order given. Fields
// that are not listed are copied by value, which is correct only for
// fields without owned payload.
type StructRegion[T any] struct {
	fields []StructField[T]
}

// Struct returns a region for T built from its owning fields.
func Struct[T any](fields ...StructField[T]) *StructRegion[T] {
	return &StructRegion[T]{fields: fields}
}

// Configure implements Configurable.
func (r *StructRegion[T]) Configure(s Settings) {
	for _, f := range r.fields {
		f.configure(s)
	}
}

func (r *StructRegion[T]) Copy(item *T) (T, error) {
	out := *item
	for _, f := range r.fields {
		if err := f.relocate(&out, item); err != nil {
			var zero T
			return zero, err
		}
	}
	return out, nil
}

func (r *StructRegion[T]) ReserveItems(items iter.Seq[*T]) error {
	for _, f := range r.fields {
		if err := f.reserve(items); err != nil {
			return err
		}
	}
	return nil
}

func (r *StructRegion[T]) Clear() {
	for _, f := range r.fields {
		f.clear()
	}
}

func (r *StructRegion[T]) Release() {
	for _, f := range r.fields {
		f.release()
	}
}

func (r *StructRegion[T]) HeapSize(callback func(used, capacity int)) {
	for _, f := range r.fields {
		f.heapSize(callback)
	}
}
