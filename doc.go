// Package columnar stores structured Go values in a handful of large
// backing blocks instead of one heap allocation per slice or string.
//
// # Overview
//
// A collection of records such as
//
//	type Record struct {
//		ID   uint64
//		Tags []string
//	}
//
// normally costs one allocation for every Tags slice and one for every
// string in it. A Stack copies each record's payload into shared,
// geometrically grown blocks, one chain of blocks per payload type, so
// storing N records takes O(log N) allocations. This is useful for:
//
//   - Large in-memory batches that are built once and read many times
//   - Reducing garbage collection pressure from many small objects
//   - Reusing memory across batches with Clear
//
// # Basic Usage
//
//	region := columnar.Struct(
//		columnar.Field(func(r *Record) *[]string { return &r.Tags }, columnar.Slice[string](columnar.String())),
//	)
//	stack := columnar.New[Record](region)
//	defer stack.Release()
//
//	if _, err := stack.Append(&Record{ID: 7, Tags: []string{"a", "bb"}}); err != nil {
//		return err
//	}
//	rec, err := stack.Get(0)
//
// # Regions
//
// A Region describes how to relocate the payload owned by one type:
//
//   - Trivial for types without owned payload (numbers, fixed arrays)
//   - Slice for []T, relocating each element through an inner region
//   - String and Bytes for text
//   - Pointer for *T
//   - PairOf, TripleOf and Struct for products, one region per field
//
// Regions compose to mirror the shape of the stored type.
//
// # Read-only Views
//
// Values read from a stack look like ordinary Go values but share the
// stack's blocks. They must not be modified, and must not be used after
// Clear or Release. Slices are returned with len == cap, so an append on
// them copies instead of overwriting neighbouring data.
//
// # Memory Layout
//
// Each block has a fixed capacity and never moves. When the active block
// is full a new one is allocated with max(request, 2 x previous capacity)
// elements (see Config). Clear keeps every block and refills them in
// order; Release drops them. Zero-size element types never allocate.
//
// # Thread Safety
//
// Stack is not thread-safe. SafeStack wraps it with a read-write mutex. A
// Budget may be shared between stacks owned by different goroutines.
package columnar
