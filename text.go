package columnar

import (
	"iter"
	"math"
	"unsafe"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/pavanmanishd/columnar/internal/offheap"
)

// byteBlocks is the shared backing store of the text regions.
type byteBlocks struct {
	region StableRegion[byte]
}

func (b *byteBlocks) configure(s Settings) {
	b.region.Configure(s)
	b.region.alloc, b.region.align = nil, 0
	if !s.Config.OffHeapText {
		return
	}
	if !offHeapAligned(s.Config.MaxBlockLen) {
		level.Warn(s.logger()).Log("msg", "max block length is not page aligned, keeping text blocks on the Go heap", "max_block_len", s.Config.MaxBlockLen)
		return
	}
	if !offheap.Supported() {
		level.Warn(s.logger()).Log("msg", "off-heap text blocks not supported on this platform, using the Go heap")
		return
	}
	b.region.alloc = offHeapAlloc
	b.region.align = offheap.PageSize()
}

func (b *byteBlocks) reserve(lengths iter.Seq[int]) error {
	total := 0
	for n := range lengths {
		if total > math.MaxInt-n {
			return errors.Wrap(ErrCapacityOverflow, "reserving text bytes")
		}
		total += n
	}
	return b.region.Reserve(total)
}

// StringRegion relocates string contents into shared byte blocks. The
// returned strings alias the blocks, so they read as ordinary strings but
// change if the region is cleared and refilled.
type StringRegion struct {
	byteBlocks
}

// String returns a region for string values.
func String() *StringRegion {
	return &StringRegion{}
}

// Configure implements Configurable. With Config.OffHeapText the bytes are
// kept outside the Go heap and strings must not outlive Release.
func (r *StringRegion) Configure(s Settings) {
	r.configure(s)
}

func (r *StringRegion) Copy(item *string) (string, error) {
	src := *item
	if len(src) == 0 {
		return "", nil
	}
	dst, err := r.region.Alloc(len(src))
	if err != nil {
		return "", err
	}
	copy(dst, src)
	return unsafe.String(&dst[0], len(dst)), nil
}

func (r *StringRegion) ReserveItems(items iter.Seq[*string]) error {
	return r.reserve(func(yield func(int) bool) {
		for s := range items {
			if !yield(len(*s)) {
				return
			}
		}
	})
}

func (r *StringRegion) Clear() {
	r.region.Clear()
}

func (r *StringRegion) Release() {
	r.region.Release()
}

func (r *StringRegion) HeapSize(callback func(used, capacity int)) {
	r.region.HeapSize(callback)
}

// BytesRegion relocates []byte values with a single bulk copy each. A nil
// slice stays nil.
type BytesRegion struct {
	byteBlocks
}

// Bytes returns a region for []byte values.
func Bytes() *BytesRegion {
	return &BytesRegion{}
}

// Configure implements Configurable.
func (r *BytesRegion) Configure(s Settings) {
	r.configure(s)
}

func (r *BytesRegion) Copy(item *[]byte) ([]byte, error) {
	return r.region.CopySlice(*item)
}

func (r *BytesRegion) ReserveItems(items iter.Seq[*[]byte]) error {
	return r.reserve(func(yield func(int) bool) {
		for b := range items {
			if !yield(len(*b)) {
				return
			}
		}
	})
}

func (r *BytesRegion) Clear() {
	r.region.Clear()
}

func (r *BytesRegion) Release() {
	r.region.Release()
}

func (r *BytesRegion) HeapSize(callback func(used, capacity int)) {
	r.region.HeapSize(callback)
}
