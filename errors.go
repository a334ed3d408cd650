package columnar

import (
	"github.com/pkg/errors"

	"github.com/pavanmanishd/columnar/internal/offheap"
)

var (
	// ErrMemoryLimitExceeded is returned when a new backing block would push
	// the configured Budget past its limit.
	ErrMemoryLimitExceeded = errors.New("columnar: memory limit exceeded")
	// ErrIndexOutOfRange is returned by Get and Ref for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("columnar: index out of range")
	// ErrCapacityOverflow is returned when element counts or block sizes
	// cannot be represented. It signals a broken internal invariant rather
	// than memory pressure.
	ErrCapacityOverflow = errors.New("columnar: capacity overflow")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("columnar: invalid config")
	// ErrOffHeapUnsupported is returned when off-heap text blocks are
	// requested on a platform without anonymous mappings.
	ErrOffHeapUnsupported = offheap.ErrUnsupported
)
