package columnar

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// HeapSize calls callback once per backing block held by the stack, spine
// first, with the used and total bytes of that block.
func (s *Stack[T]) HeapSize(callback func(used, capacity int)) {
	s.local.HeapSize(callback)
	s.inner.HeapSize(callback)
}

// SummedHeapSize returns the used and total bytes across all blocks.
func (s *Stack[T]) SummedHeapSize() (used, capacity int) {
	s.HeapSize(func(u, c int) {
		used += u
		capacity += c
	})
	return used, capacity
}

// Utilization returns the ratio of used to reserved bytes (0.0 to 1.0).
// Returns 0.0 if the stack holds no blocks.
func (s *Stack[T]) Utilization() float64 {
	used, capacity := s.SummedHeapSize()
	if capacity == 0 {
		return 0
	}
	return float64(used) / float64(capacity)
}

// Metrics returns a snapshot of stack statistics.
func (s *Stack[T]) Metrics() StackMetrics {
	m := StackMetrics{Len: s.Len()}
	s.HeapSize(func(used, capacity int) {
		m.Blocks++
		m.BytesUsed += used
		m.BytesReserved += capacity
	})
	if m.BytesReserved > 0 {
		m.Utilization = float64(m.BytesUsed) / float64(m.BytesReserved)
	}
	return m
}

// StackMetrics contains statistical information about a stack.
type StackMetrics struct {
	Len           int     // Items stored
	Blocks        int     // Backing blocks across spine and payload regions
	BytesUsed     int     // Bytes committed in blocks
	BytesReserved int     // Total block capacity in bytes
	Utilization   float64 // Ratio of used to reserved bytes (0.0-1.0)
}

func (m StackMetrics) String() string {
	return fmt.Sprintf("items=%d blocks=%d used=%s reserved=%s utilization=%.2f%%",
		m.Len, m.Blocks, humanize.IBytes(uint64(m.BytesUsed)), humanize.IBytes(uint64(m.BytesReserved)), m.Utilization*100)
}

// regionMetrics are shared by every StableRegion of a stack. A nil
// *regionMetrics records nothing.
type regionMetrics struct {
	blocksAllocated  prometheus.Counter
	bytesAllocated   prometheus.Counter
	bytesReserved    prometheus.Gauge
	budgetRejections prometheus.Counter
}

// newRegionMetrics creates the collectors and registers them with reg, if
// any. On error nothing stays registered.
func newRegionMetrics(reg prometheus.Registerer) (*regionMetrics, error) {
	m := &regionMetrics{
		blocksAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "columnar_blocks_allocated_total",
			Help: "Total number of backing blocks allocated.",
		}),
		bytesAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "columnar_block_bytes_allocated_total",
			Help: "Total bytes of backing blocks allocated.",
		}),
		bytesReserved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "columnar_block_bytes_reserved",
			Help: "Bytes of backing blocks currently held, including cleared ones.",
		}),
		budgetRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "columnar_budget_rejections_total",
			Help: "Total number of backing block allocations rejected by the memory budget.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	collectors := []prometheus.Collector{m.blocksAllocated, m.bytesAllocated, m.bytesReserved, m.budgetRejections}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			return nil, errors.Wrap(err, "register columnar metrics")
		}
	}
	return m, nil
}

func (m *regionMetrics) allocated(bytes int64) {
	if m == nil {
		return
	}
	m.blocksAllocated.Inc()
	m.bytesAllocated.Add(float64(bytes))
	m.bytesReserved.Add(float64(bytes))
}

func (m *regionMetrics) released(bytes int64) {
	if m == nil {
		return
	}
	m.bytesReserved.Sub(float64(bytes))
}

func (m *regionMetrics) rejected() {
	if m == nil {
		return
	}
	m.budgetRejections.Inc()
}
