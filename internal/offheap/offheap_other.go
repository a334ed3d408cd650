//go:build !unix && !windows

package offheap

const supported = false

func osMapAnon(int) ([]byte, func([]byte) error, error) {
	return nil, nil, ErrUnsupported
}
