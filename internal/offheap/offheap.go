package offheap

import (
	"os"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned by Map on platforms without anonymous mappings.
var ErrUnsupported = errors.New("offheap: anonymous mappings are not supported on this platform")

// ErrInvalidSize is returned by Map for a non-positive size.
var ErrInvalidSize = errors.New("offheap: invalid mapping size")

// PageSize returns the granularity of mappings. Callers should size their
// requests in multiples of it to avoid wasting the tail of the last page.
func PageSize() int {
	return os.Getpagesize()
}

// Map returns size bytes of zeroed, writable memory and the function that
// releases it. The returned slice has len == cap == size.
func Map(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, ErrInvalidSize
	}
	data, unmap, err := osMapAnon(size)
	if err != nil {
		return nil, nil, err
	}
	return data[:size:size], func() error { return unmap(data) }, nil
}

// Supported reports whether Map can succeed on this platform.
func Supported() bool {
	return supported
}
