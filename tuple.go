package columnar

import "iter"

// Pair is a two-field tuple.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is a three-field tuple.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// PairRegion relocates each field of a Pair through its own region.
type PairRegion[A, B any] struct {
	first  Region[A]
	second Region[B]
}

// PairOf returns a region for Pair[A, B].
func PairOf[A, B any](first Region[A], second Region[B]) *PairRegion[A, B] {
	return &PairRegion[A, B]{first: orTrivial(first), second: orTrivial(second)}
}

// Configure implements Configurable.
func (r *PairRegion[A, B]) Configure(s Settings) {
	configure(r.first, s)
	configure(r.second, s)
}

func (r *PairRegion[A, B]) Copy(item *Pair[A, B]) (Pair[A, B], error) {
	return r.CopyPair(&item.First, &item.Second)
}

// CopyPair relocates a pair given as separate fields, for callers that do
// not hold a Pair value.
func (r *PairRegion[A, B]) CopyPair(a *A, b *B) (Pair[A, B], error) {
	first, err := r.first.Copy(a)
	if err != nil {
		return Pair[A, B]{}, err
	}
	second, err := r.second.Copy(b)
	if err != nil {
		return Pair[A, B]{}, err
	}
	return Pair[A, B]{First: first, Second: second}, nil
}

func (r *PairRegion[A, B]) ReserveItems(items iter.Seq[*Pair[A, B]]) error {
	if err := r.first.ReserveItems(project(items, func(p *Pair[A, B]) *A { return &p.First })); err != nil {
		return err
	}
	return r.second.ReserveItems(project(items, func(p *Pair[A, B]) *B { return &p.Second }))
}

func (r *PairRegion[A, B]) Clear() {
	r.first.Clear()
	r.second.Clear()
}

func (r *PairRegion[A, B]) Release() {
	r.first.Release()
	r.second.Release()
}

func (r *PairRegion[A, B]) HeapSize(callback func(used, capacity int)) {
	r.first.HeapSize(callback)
	r.second.HeapSize(callback)
}

// TripleRegion relocates each field of a Triple through its own region.
type TripleRegion[A, B, C any] struct {
	first  Region[A]
	second Region[B]
	third  Region[C]
}

// TripleOf returns a region for Triple[A, B, C].
func TripleOf[A, B, C any](first Region[A], second Region[B], third Region[C]) *TripleRegion[A, B, C] {
	return &TripleRegion[A, B, C]{first: orTrivial(first), second: orTrivial(second), third: orTrivial(third)}
}

// Configure implements Configurable.
func (r *TripleRegion[A, B, C]) Configure(s Settings) {
	configure(r.first, s)
	configure(r.second, s)
	configure(r.third, s)
}

func (r *TripleRegion[A, B, C]) Copy(item *Triple[A, B, C]) (Triple[A, B, C], error) {
	return r.CopyTriple(&item.First, &item.Second, &item.Third)
}

// CopyTriple relocates a triple given as separate fields.
func (r *TripleRegion[A, B, C]) CopyTriple(a *A, b *B, c *C) (Triple[A, B, C], error) {
	var out Triple[A, B, C]
	var err error
	if out.First, err = r.first.Copy(a); err != nil {
		return Triple[A, B, C]{}, err
	}
	if out.Second, err = r.second.Copy(b); err != nil {
		return Triple[A, B, C]{}, err
	}
	if out.Third, err = r.third.Copy(c); err != nil {
		return Triple[A, B, C]{}, err
	}
	return out, nil
}

func (r *TripleRegion[A, B, C]) ReserveItems(items iter.Seq[*Triple[A, B, C]]) error {
	if err := r.first.ReserveItems(project(items, func(t *Triple[A, B, C]) *A { return &t.First })); err != nil {
		return err
	}
	if err := r.second.ReserveItems(project(items, func(t *Triple[A, B, C]) *B { return &t.Second })); err != nil {
		return err
	}
	return r.third.ReserveItems(project(items, func(t *Triple[A, B, C]) *C { return &t.Third }))
}

func (r *TripleRegion[A, B, C]) Clear() {
	r.first.Clear()
	r.second.Clear()
	r.third.Clear()
}

func (r *TripleRegion[A, B, C]) Release() {
	r.first.Release()
	r.second.Release()
	r.third.Release()
}

func (r *TripleRegion[A, B, C]) HeapSize(callback func(used, capacity int)) {
	r.first.HeapSize(callback)
	r.second.HeapSize(callback)
	r.third.HeapSize(callback)
}

func orTrivial[T any](r Region[T]) Region[T] {
	if r == nil {
		return CopyRegion[T]{}
	}
	return r
}

// project maps a sequence of values to a sequence of one of their fields.
func project[T, F any](items iter.Seq[*T], field func(*T) *F) iter.Seq[*F] {
	return func(yield func(*F) bool) {
		for item := range items {
			if !yield(field(item)) {
				return
			}
		}
	}
}
