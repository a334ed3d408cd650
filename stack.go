package columnar

import (
	"iter"
	"math"

	"github.com/pkg/errors"
)

// Stack is an append-only sequence of T whose owned payload lives in a
// few large backing blocks instead of one allocation per slice or string.
//
// Headers are kept in a spine of stable blocks and every payload reachable
// from them is relocated by the stack's Region. Values read back share the
// stack's memory: treat them as read-only and do not use them after Clear
// or Release. Not goroutine-safe; see SafeStack.
type Stack[T any] struct {
	local    StableRegion[T]
	inner    Region[T]
	settings Settings
}

// New returns an empty stack relocating payload with inner. A nil inner
// means T has no owned payload. inner must not be shared with another stack.
// New panics if the metrics cannot be registered; use NewWithConfig to get
// the error instead.
func New[T any](inner Region[T], opts ...Option) *Stack[T] {
	s, err := newStack(inner, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// NewWithConfig validates cfg and returns a stack using it.
func NewWithConfig[T any](cfg Config, inner Region[T], opts ...Option) (*Stack[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newStack(inner, append([]Option{WithConfig(cfg)}, opts...)...)
}

func newStack[T any](inner Region[T], opts ...Option) (*Stack[T], error) {
	settings, err := newSettings(opts...)
	if err != nil {
		return nil, err
	}
	s := &Stack[T]{
		inner:    orTrivial(inner),
		settings: settings,
	}
	s.local.Configure(s.settings)
	configure(s.inner, s.settings)
	return s, nil
}

// Append relocates the payload of *item and stores its header. It returns
// the new length, so the item's index is the result minus one. On error
// nothing is stored.
func (s *Stack[T]) Append(item *T) (int, error) {
	v, err := s.inner.Copy(item)
	if err != nil {
		return 0, err
	}
	if _, err := s.local.Push(v); err != nil {
		return 0, err
	}
	return s.local.Len(), nil
}

// Get returns the header at index i.
func (s *Stack[T]) Get(i int) (T, error) {
	p, err := s.Ref(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// Ref returns the stable address of the header at index i. The address is
// unaffected by later appends.
func (s *Stack[T]) Ref(i int) (*T, error) {
	p, ok := s.local.At(i)
	if !ok {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d with length %d", i, s.local.Len())
	}
	return p, nil
}

// Len returns the number of stored items.
func (s *Stack[T]) Len() int {
	return s.local.Len()
}

// IsEmpty reports whether the stack holds no items.
func (s *Stack[T]) IsEmpty() bool {
	return s.local.Len() == 0
}

// All yields the stored headers in insertion order. The sequence may be
// ranged over any number of times.
func (s *Stack[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, p := range s.local.All() {
			if !yield(i, *p) {
				return
			}
		}
	}
}

// Reserve sizes the spine and the payload regions so that appending every
// item in items allocates at most one block per region. items is iterated
// more than once.
//
// Each region needs one block able to hold its whole share of items. Blocks
// retained by Clear are reused only if one of them is large enough on its
// own, so the first Clear and Reserve cycle may allocate a block the size of
// the batch; later cycles of the same size reuse it.
func (s *Stack[T]) Reserve(items iter.Seq[*T]) error {
	count := 0
	for range items {
		count++
	}
	if err := s.local.Reserve(count); err != nil {
		return err
	}
	return s.inner.ReserveItems(items)
}

// ReserveStacks sizes s to absorb every item currently held by stacks.
func (s *Stack[T]) ReserveStacks(stacks ...*Stack[T]) error {
	count := 0
	for _, other := range stacks {
		if count > math.MaxInt-other.Len() {
			return errors.Wrap(ErrCapacityOverflow, "reserving stacks")
		}
		count += other.Len()
	}
	if err := s.local.Reserve(count); err != nil {
		return err
	}
	return s.inner.ReserveItems(func(yield func(*T) bool) {
		for _, other := range stacks {
			for _, p := range other.local.All() {
				if !yield(p) {
					return
				}
			}
		}
	})
}

// Extend appends every item in items, stopping at the first error.
func (s *Stack[T]) Extend(items iter.Seq[*T]) error {
	for item := range items {
		if _, err := s.Append(item); err != nil {
			return err
		}
	}
	return nil
}

// CopyFrom clears s and appends every item of src.
func (s *Stack[T]) CopyFrom(src *Stack[T]) error {
	if src == s {
		return nil
	}
	s.Clear()
	if err := s.ReserveStacks(src); err != nil {
		return err
	}
	for _, p := range src.local.All() {
		if _, err := s.Append(p); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a new stack with the same settings holding a copy of every
// item. inner must be a fresh region of the same shape as the one s uses.
func (s *Stack[T]) Clone(inner Region[T]) (*Stack[T], error) {
	c := &Stack[T]{inner: orTrivial(inner), settings: s.settings}
	c.local.Configure(c.settings)
	configure(c.inner, c.settings)
	if err := c.CopyFrom(s); err != nil {
		c.Release()
		return nil, err
	}
	return c, nil
}

// RetainFrom keeps the items at index and beyond for which keep returns
// true. Only headers are compacted; payload memory of dropped items is
// reclaimed by the next Clear.
func (s *Stack[T]) RetainFrom(index int, keep func(*T) bool) {
	s.local.RetainFrom(index, keep)
}

// Clear empties the stack and keeps every block for reuse. Headers and
// payload read from the stack before Clear must no longer be used.
func (s *Stack[T]) Clear() {
	s.local.Clear()
	s.inner.Clear()
}

// Release drops every block held by the stack without visiting the stored
// items. The stack is empty and reusable afterwards.
func (s *Stack[T]) Release() {
	s.local.Release()
	s.inner.Release()
}

// Equal reports whether a and b hold the same items in the same order.
func Equal[T any](a, b *Stack[T], eq func(x, y T) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	next, stop := iter.Pull2(b.local.All())
	defer stop()
	for _, x := range a.local.All() {
		_, y, ok := next()
		if !ok || !eq(*x, *y) {
			return false
		}
	}
	return true
}

// Items returns a sequence of pointers to the elements of items, suitable
// for Reserve and Extend.
func Items[T any](items []T) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for i := range items {
			if !yield(&items[i]) {
				return
			}
		}
	}
}
