package slabarena

import (
	"math/bits"
	"unsafe"

	"github.com/pkg/errors"
)

// DefaultSlabSize is the default slab size of a HeapSource (4 KiB).
const DefaultSlabSize = 1 << 12

// maxHeapSlab bounds a single heap slab well below what the runtime can
// allocate, so oversized requests fail instead of crashing the process.
const maxHeapSlab = 1<<(bits.UintSize/2+8) - 1

// HeapSource allocates slabs from the Go heap. Slabs are at least the
// configured slab size; larger requests get a slab sized to fit.
// It holds no mutable state and is safe to share between arenas.
type HeapSource struct {
	slabSize uintptr
}

// NewHeapSource creates a HeapSource with the specified slab size.
// If slabSize <= 0, DefaultSlabSize is used. The size is rounded up to a
// power of two and is never smaller than HeaderSize.
func NewHeapSource(slabSize int) *HeapSource {
	if slabSize <= 0 {
		slabSize = DefaultSlabSize
	}
	size := max(uintptr(slabSize), HeaderSize)
	if size&(size-1) != 0 {
		size = 1 << bits.Len(uint(size))
	}
	return &HeapSource{slabSize: size}
}

// SlabSize returns the default slab size.
func (h *HeapSource) SlabSize() int {
	return int(h.slabSize)
}

// AllocSlab satisfies the SlabSource interface.
func (h *HeapSource) AllocSlab(min Layout) ([]byte, error) {
	size := max(min.Size, h.slabSize)
	if size > maxHeapSlab {
		return nil, errors.Wrapf(ErrSourceExhausted, "heap slab of %d bytes exceeds limit", size)
	}
	// Backing the block with uint64 words guarantees 8-byte alignment.
	words := make([]uint64, (size+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), size), nil
}

// DeallocSlab satisfies the SlabSource interface. Heap slabs are reclaimed
// by the garbage collector once nothing references them.
func (h *HeapSource) DeallocSlab([]byte, Layout) {}
