package columnar

import (
	"iter"
	"strings"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/columnar/internal/offheap"
)

type document struct {
	ID      uint64
	Title   string
	Body    []byte
	Tags    []string
	Parent  *string
	Weights [][]float64
}

func documentRegion() *StructRegion[document] {
	return Struct(
		Field(func(d *document) *string { return &d.Title }, Region[string](String())),
		Field(func(d *document) *[]byte { return &d.Body }, Region[[]byte](Bytes())),
		Field(func(d *document) *[]string { return &d.Tags }, Region[[]string](Slice[string](String()))),
		Field(func(d *document) **string { return &d.Parent }, Region[*string](Pointer[string](String()))),
		Field(func(d *document) *[][]float64 { return &d.Weights }, Region[[][]float64](Slice[[]float64](Slice[float64](nil)))),
	)
}

func TestRegionRoundTrip(t *testing.T) {
	parent := "root"
	docs := []document{
		{
			ID:      1,
			Title:   "first",
			Body:    []byte("hello"),
			Tags:    []string{"a", "bb", ""},
			Parent:  &parent,
			Weights: [][]float64{{1, 2}, nil, {}},
		},
		{ID: 2},
		{ID: 3, Title: "", Body: []byte{}, Tags: []string{}, Weights: [][]float64{}},
	}

	region := documentRegion()
	for i := range docs {
		got, err := region.Copy(&docs[i])
		require.NoError(t, err)
		if diff := cmp.Diff(docs[i], got); diff != "" {
			t.Errorf("document %d mismatch (-want +got):\n%s", i, diff)
		}

		// nil and empty stay distinguishable.
		assert.Equal(t, docs[i].Body == nil, got.Body == nil)
		assert.Equal(t, docs[i].Tags == nil, got.Tags == nil)
		assert.Equal(t, docs[i].Weights == nil, got.Weights == nil)
	}
	region.Release()
}

func TestRegionCopyOwnsPayload(t *testing.T) {
	src := document{
		Title: strings.Repeat("x", 10),
		Body:  []byte("abc"),
		Tags:  []string{"tag"},
	}
	region := documentRegion()
	got, err := region.Copy(&src)
	require.NoError(t, err)

	assert.NotSame(t, unsafe.StringData(src.Title), unsafe.StringData(got.Title))
	assert.NotSame(t, &src.Body[0], &got.Body[0])
	assert.NotSame(t, &src.Tags[0], &got.Tags[0])

	src.Body[0] = 'z'
	src.Tags[0] = "changed"
	assert.Equal(t, []byte("abc"), got.Body)
	assert.Equal(t, []string{"tag"}, got.Tags)
}

func TestSliceRegionClipsCapacity(t *testing.T) {
	region := Slice[string](String())
	a := []string{"x", "y"}
	b := []string{"z"}

	ga, err := region.Copy(&a)
	require.NoError(t, err)
	gb, err := region.Copy(&b)
	require.NoError(t, err)
	assert.Equal(t, len(ga), cap(ga))

	_ = append(ga, "w")
	assert.Equal(t, []string{"z"}, gb)
}

func TestSliceRegionTrivialInnerIsBulk(t *testing.T) {
	assert.True(t, Slice[int](nil).bulk)
	assert.True(t, Slice[int](Trivial[int]()).bulk)
	assert.False(t, Slice[string](String()).bulk)
}

func TestPairAndTriple(t *testing.T) {
	note := "n"
	pairs := PairOf[uint64, string](nil, String())
	p, err := pairs.CopyPair(ptr(uint64(5)), ptr("five"))
	require.NoError(t, err)
	assert.Equal(t, Pair[uint64, string]{First: 5, Second: "five"}, p)

	triples := TripleOf[int, []string, *string](nil, Slice[string](String()), Pointer[string](String()))
	src := Triple[int, []string, *string]{First: 1, Second: []string{"a", "b"}, Third: &note}
	got, err := triples.Copy(&src)
	require.NoError(t, err)
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("triple mismatch (-want +got):\n%s", diff)
	}
	assert.NotSame(t, src.Third, got.Third)

	got, err = triples.CopyTriple(&src.First, &src.Second, new(*string))
	require.NoError(t, err)
	assert.Nil(t, got.Third)
}

func TestPointerRegion(t *testing.T) {
	region := Pointer[[]int](Slice[int](nil))

	var nilPtr *[]int
	got, err := region.Copy(&nilPtr)
	require.NoError(t, err)
	assert.Nil(t, got)

	v := []int{1, 2, 3}
	src := &v
	got, err = region.Copy(&src)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, v, *got)
	assert.NotSame(t, &v[0], &(*got)[0])
}

func TestReserveItemsAllocatesOnce(t *testing.T) {
	items := [][]string{{"a", "bb"}, {"ccc"}, nil, {"dddd", "", "e"}}

	region := Slice[string](String())
	text := region.inner.(*StringRegion)
	require.NoError(t, region.ReserveItems(Items(items)))
	require.Equal(t, 1, region.region.NumBlocks())
	require.Equal(t, 1, text.region.NumBlocks())

	for i := range items {
		_, err := region.Copy(&items[i])
		require.NoError(t, err)
	}
	assert.Equal(t, 1, region.region.NumBlocks())
	assert.Equal(t, 1, text.region.NumBlocks())
	assert.Equal(t, 6, region.region.Len())
	assert.Equal(t, 11, text.region.Len())
}

func TestPointerReserveSkipsNil(t *testing.T) {
	items := make([]*string, 0, 40)
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			items = append(items, nil)
			continue
		}
		items = append(items, ptr(strings.Repeat("p", i)))
	}
	region := Pointer[string](String())
	inner := region.inner.(*StringRegion)
	require.NoError(t, region.ReserveItems(Items(items)))
	assert.Equal(t, 20, region.region.Capacity())

	for i := range items {
		_, err := region.Copy(&items[i])
		require.NoError(t, err)
	}
	assert.Equal(t, 1, region.region.NumBlocks())
	assert.Equal(t, 1, inner.region.NumBlocks())
	assert.Equal(t, 20, region.region.Len())
}

var errBoom = errors.New("boom")

// failingRegion fails the n-th copy.
type failingRegion struct {
	calls, failAt int
}

func (f *failingRegion) Copy(item *int) (int, error) {
	f.calls++
	if f.calls == f.failAt {
		return 0, errBoom
	}
	return *item, nil
}

func (f *failingRegion) ReserveItems(iter.Seq[*int]) error  { return nil }
func (f *failingRegion) Clear()                             {}
func (f *failingRegion) Release()                           {}
func (f *failingRegion) HeapSize(func(used, capacity int)) {}

func TestSliceRegionRollsBackOnError(t *testing.T) {
	region := Slice[int](&failingRegion{failAt: 2})
	require.False(t, region.bulk)

	src := []int{1, 2, 3}
	_, err := region.Copy(&src)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, region.region.Len())

	got, err := region.Copy(&src)
	require.NoError(t, err)
	assert.Equal(t, src, got)
	assert.Equal(t, 3, region.region.Len())
}

func TestStructRegionStopsAtFirstError(t *testing.T) {
	type pair struct {
		A, B int
	}
	region := Struct(
		Field(func(p *pair) *int { return &p.A }, Region[int](&failingRegion{failAt: 1})),
		Field(func(p *pair) *int { return &p.B }, nil),
	)
	_, err := region.Copy(&pair{A: 1, B: 2})
	assert.ErrorIs(t, err, errBoom)
}

func TestOffHeapText(t *testing.T) {
	if !offheap.Supported() {
		t.Skip("off-heap blocks not supported on this platform")
	}

	cfg := DefaultConfig()
	cfg.OffHeapText = true
	region := String()
	region.Configure(Settings{Config: cfg})

	words := []string{"alpha", "beta", strings.Repeat("g", 5000)}
	var got []string
	for i := range words {
		s, err := region.Copy(&words[i])
		require.NoError(t, err)
		got = append(got, s)
	}
	assert.Equal(t, words, got)
	assert.Zero(t, region.region.Capacity()%offheap.PageSize())
	for i := range region.region.blocks {
		assert.NotNil(t, region.region.blocks[i].unmap)
	}
	region.Release()
	assert.Zero(t, region.region.NumBlocks())
}

func ptr[T any](v T) *T {
	return &v
}

func TestOffHeapTextKeepsMaxBlockLen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OffHeapText = true
	cfg.MaxBlockLen = 16
	region := String()
	region.Configure(Settings{Config: cfg})
	defer region.Release()

	assert.Nil(t, region.region.alloc, "unaligned max keeps text on the Go heap")
	for i := 0; i < 20; i++ {
		v := strings.Repeat("t", 10)
		_, err := region.Copy(&v)
		require.NoError(t, err)
	}
	region.HeapSize(func(_, capacity int) {
		assert.LessOrEqual(t, capacity, 16)
	})

	// Switching off-heap text off again restores heap allocation.
	region.Configure(Settings{Config: DefaultConfig()})
	assert.Nil(t, region.region.alloc)
	assert.Zero(t, region.region.align)
}
