package columnar

import (
	"iter"
	"math"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// StableRegion is an append-only sequence of elements held in backing
// blocks. Elements never move once written: a new block is allocated when
// the active one is full, and earlier blocks stay alive for reads until
// Clear or Release. Not goroutine-safe.
//
// The zero value is an empty region using DefaultConfig growth.
type StableRegion[T any] struct {
	blocks []block[T]
	active int // block receiving writes
	length int // committed elements across all blocks

	alloc    allocFunc[T] // nil means Go heap
	align    int          // block capacity granularity, 0 or 1 for none
	settings Settings
}

// Configure implements Configurable. Blocks already held stay charged to
// the budget and metrics that were in effect when they were allocated.
func (r *StableRegion[T]) Configure(s Settings) {
	r.settings = s
}

func (r *StableRegion[T]) zeroSized() bool {
	return sizeOf[T]() == 0
}

// Reserve ensures the next count elements can be written contiguously
// without allocating. Retained blocks are reused in order, but only one
// whose free space alone holds count; otherwise a new block is allocated.
func (r *StableRegion[T]) Reserve(count int) error {
	if count <= 0 {
		return nil
	}
	if r.zeroSized() {
		// Zero-size elements take no memory, only the count is bounded.
		if r.length > math.MaxInt-count {
			return errors.Wrapf(ErrCapacityOverflow, "%d zero-size elements on top of %d", count, r.length)
		}
		return nil
	}
	for r.active < len(r.blocks) {
		if r.blocks[r.active].remaining() >= count {
			return nil
		}
		if r.active == len(r.blocks)-1 {
			break
		}
		r.active++
	}
	return r.grow(count)
}

// grow appends a new block able to hold at least count elements and makes
// it active.
func (r *StableRegion[T]) grow(count int) error {
	last := 0
	if n := len(r.blocks); n > 0 {
		last = cap(r.blocks[n-1].buf)
	}
	size := sizeOf[T]()
	minLen, factor, maxLen := r.settings.Config.growth()
	n, err := nextBlockLen(last, count, minLen, factor, maxLen, r.align, size)
	if err != nil {
		return err
	}
	nbytes, err := blockBytes(n, size)
	if err != nil {
		return err
	}

	logger := r.settings.logger()
	if err := r.settings.Budget.Acquire(nbytes); err != nil {
		r.settings.metrics.rejected()
		level.Warn(logger).Log("msg", "backing block rejected by memory budget", "elems", n, "bytes", nbytes, "err", err)
		return err
	}

	allocate := r.alloc
	if allocate == nil {
		allocate = heapAlloc[T]
	}
	buf, unmap, err := allocate(n)
	if err != nil {
		r.settings.Budget.Release(nbytes)
		return errors.Wrapf(err, "allocate backing block of %d bytes", nbytes)
	}

	r.blocks = append(r.blocks, block[T]{
		buf:     buf,
		unmap:   unmap,
		budget:  r.settings.Budget,
		metrics: r.settings.metrics,
	})
	r.active = len(r.blocks) - 1
	r.settings.metrics.allocated(nbytes)
	level.Debug(logger).Log("msg", "allocated backing block", "elems", n, "bytes", nbytes, "blocks", len(r.blocks))
	return nil
}

// Alloc commits n contiguous elements and returns them with len == cap == n.
// The slice stays valid until Clear or Release.
func (r *StableRegion[T]) Alloc(n int) ([]T, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrCapacityOverflow, "negative element count %d", n)
	}
	if n == 0 {
		return []T{}, nil
	}
	if err := r.Reserve(n); err != nil {
		return nil, err
	}
	r.length += n
	if r.zeroSized() {
		return make([]T, n), nil
	}
	return r.blocks[r.active].commit(n), nil
}

// unalloc undoes the most recent Alloc when s is still the tail of the
// active block. Otherwise the elements stay committed as slack.
func (r *StableRegion[T]) unalloc(s []T) {
	n := len(s)
	if n == 0 {
		return
	}
	if r.zeroSized() {
		r.length -= n
		return
	}
	if r.active >= len(r.blocks) {
		return
	}
	b := &r.blocks[r.active]
	end := len(b.buf)
	if end < n || &b.buf[end-n] != &s[0] {
		return
	}
	clear(s)
	b.buf = b.buf[:end-n]
	r.length -= n
}

// CopySlice appends a copy of src. A nil src returns nil.
func (r *StableRegion[T]) CopySlice(src []T) ([]T, error) {
	if src == nil {
		return nil, nil
	}
	dst, err := r.Alloc(len(src))
	if err != nil {
		return nil, err
	}
	copy(dst, src)
	return dst, nil
}

// Push appends v and returns its stable address.
func (r *StableRegion[T]) Push(v T) (*T, error) {
	dst, err := r.Alloc(1)
	if err != nil {
		return nil, err
	}
	dst[0] = v
	return &dst[0], nil
}

// Len returns the number of committed elements.
func (r *StableRegion[T]) Len() int {
	return r.length
}

// NumBlocks returns the number of backing blocks held, including retained
// empty ones.
func (r *StableRegion[T]) NumBlocks() int {
	return len(r.blocks)
}

// Capacity returns the total element capacity of all blocks.
func (r *StableRegion[T]) Capacity() int {
	sum := 0
	for i := range r.blocks {
		sum += cap(r.blocks[i].buf)
	}
	return sum
}

// At returns the address of the i-th committed element.
func (r *StableRegion[T]) At(i int) (*T, bool) {
	if i < 0 || i >= r.length {
		return nil, false
	}
	if r.zeroSized() {
		return new(T), true
	}
	for j := range r.blocks {
		buf := r.blocks[j].buf
		if i < len(buf) {
			return &buf[i], true
		}
		i -= len(buf)
	}
	return nil, false
}

// All yields the committed elements in insertion order.
func (r *StableRegion[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		if r.zeroSized() {
			for i := 0; i < r.length; i++ {
				if !yield(i, new(T)) {
					return
				}
			}
			return
		}
		i := 0
		for j := range r.blocks {
			buf := r.blocks[j].buf
			for k := range buf {
				if !yield(i, &buf[k]) {
					return
				}
				i++
			}
		}
	}
}

// RetainFrom keeps the elements at positions >= index for which keep
// returns true, preserving order. Elements before index are untouched.
func (r *StableRegion[T]) RetainFrom(index int, keep func(*T) bool) {
	if index < 0 {
		index = 0
	}
	if index >= r.length {
		return
	}
	write := index
	for i, p := range r.All() {
		if i < index || !keep(p) {
			continue
		}
		if write != i {
			dst, _ := r.At(write)
			*dst = *p
		}
		write++
	}
	r.truncate(write)
}

// truncate drops every element at position >= n.
func (r *StableRegion[T]) truncate(n int) {
	if n >= r.length {
		return
	}
	r.length = n
	if r.zeroSized() {
		return
	}
	active := 0
	for j := range r.blocks {
		b := &r.blocks[j]
		if n >= len(b.buf) {
			n -= len(b.buf)
			if len(b.buf) > 0 {
				active = j
			}
			continue
		}
		clear(b.buf[n:])
		b.buf = b.buf[:n]
		if n > 0 {
			active = j
		}
		n = 0
	}
	r.active = active
}

// Clear zeroes committed elements and resets every block to empty. Blocks
// are kept and refilled in order by later writes.
func (r *StableRegion[T]) Clear() {
	for i := range r.blocks {
		b := &r.blocks[i]
		clear(b.buf)
		b.buf = b.buf[:0]
	}
	r.active = 0
	r.length = 0
}

// Release drops every block and refunds its budget charge. Elements are not
// visited. Off-heap blocks are unmapped, so anything still pointing into
// them must not be used afterwards. The region is empty and reusable.
func (r *StableRegion[T]) Release() {
	size := sizeOf[T]()
	for i := range r.blocks {
		b := &r.blocks[i]
		nbytes, _ := blockBytes(cap(b.buf), size)
		if b.unmap != nil {
			if err := b.unmap(); err != nil {
				level.Warn(r.settings.logger()).Log("msg", "failed to unmap off-heap block", "bytes", nbytes, "err", err)
			}
		}
		b.budget.Release(nbytes)
		b.metrics.released(nbytes)
	}
	r.blocks = nil
	r.active = 0
	r.length = 0
}

// HeapSize calls callback once per block with its used and total bytes.
func (r *StableRegion[T]) HeapSize(callback func(used, capacity int)) {
	size := int(sizeOf[T]())
	for i := range r.blocks {
		buf := r.blocks[i].buf
		callback(len(buf)*size, cap(buf)*size)
	}
}
