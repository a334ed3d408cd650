package columnar

import (
	"iter"
	"sync"
)

// SafeStack guards a Stack with a read-write mutex: mutations take the
// write lock, reads share the read lock. Values obtained under the read
// lock stay valid only until the next Clear or Release, so readers that
// keep them must coordinate with writers themselves.
type SafeStack[T any] struct {
	mu sync.RWMutex
	s  *Stack[T]
}

// NewSafe returns a goroutine-safe stack relocating payload with inner.
func NewSafe[T any](inner Region[T], opts ...Option) *SafeStack[T] {
	return &SafeStack[T]{s: New(inner, opts...)}
}

// Append thread-safely relocates *item and stores its header.
func (s *SafeStack[T]) Append(item *T) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.Append(item)
}

// Reserve thread-safely sizes the stack for items.
func (s *SafeStack[T]) Reserve(items iter.Seq[*T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.Reserve(items)
}

// RetainFrom thread-safely compacts the items at index and beyond.
func (s *SafeStack[T]) RetainFrom(index int, keep func(*T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.RetainFrom(index, keep)
}

// Clear thread-safely empties the stack, keeping its blocks.
func (s *SafeStack[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Clear()
}

// Release thread-safely drops every block.
func (s *SafeStack[T]) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Release()
}

// Get thread-safely returns the header at index i.
func (s *SafeStack[T]) Get(i int) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s.Get(i)
}

// Len thread-safely returns the number of stored items.
func (s *SafeStack[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s.Len()
}

// IsEmpty thread-safely reports whether the stack holds no items.
func (s *SafeStack[T]) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s.IsEmpty()
}

// Metrics thread-safely returns a snapshot of stack statistics.
func (s *SafeStack[T]) Metrics() StackMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s.Metrics()
}

// View runs fn with the read lock held. fn must not mutate the stack.
func (s *SafeStack[T]) View(fn func(*Stack[T])) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.s)
}
