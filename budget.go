package columnar

import (
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

// Budget caps the bytes of backing blocks held by one or more stacks.
// Blocks are charged when allocated and refunded on Release; Clear keeps
// the charge because blocks are retained.
//
// A Budget is safe for concurrent use, so stacks confined to different
// goroutines may share one. A nil *Budget imposes no limit.
type Budget struct {
	limit int64
	sem   *semaphore.Weighted // nil when unlimited
	used  atomic.Int64
}

// NewBudget returns a budget of limitBytes. A limit <= 0 only tracks usage.
func NewBudget(limitBytes int64) *Budget {
	b := &Budget{limit: limitBytes}
	if limitBytes > 0 {
		b.sem = semaphore.NewWeighted(limitBytes)
	}
	return b
}

// Acquire charges n bytes. It never blocks: when the limit would be
// exceeded it returns ErrMemoryLimitExceeded and charges nothing.
func (b *Budget) Acquire(n int64) error {
	if b == nil || n <= 0 {
		return nil
	}
	if b.sem != nil && !b.sem.TryAcquire(n) {
		return errors.Wrapf(ErrMemoryLimitExceeded, "requested %d bytes with %d of %d in use", n, b.used.Load(), b.limit)
	}
	b.used.Add(n)
	return nil
}

// Release refunds n bytes previously charged with Acquire.
func (b *Budget) Release(n int64) {
	if b == nil || n <= 0 {
		return
	}
	if b.sem != nil {
		b.sem.Release(n)
	}
	b.used.Sub(n)
}

// Used returns the bytes currently charged.
func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used.Load()
}

// Limit returns the configured limit, or 0 when unlimited.
func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}
