// Package offheap allocates pointer-free byte blocks outside the Go heap.
//
// Memory returned by Map is invisible to the garbage collector. It must
// never hold Go pointers, and it must not be touched after its unmap
// function has run.
package offheap
