//go:build windows

package offheap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const supported = true

func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	// MEM_COMMIT is demand-paged, so untouched pages cost no physical memory.
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, err
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return data, func([]byte) error {
		return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
	}, nil
}
