//go:build unix

package slabarena

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DefaultMmapSlabSize is the default slab size of an MmapSource (1 MiB).
const DefaultMmapSlabSize = 1 << 20

// MmapSource allocates slabs as anonymous private mappings outside the Go
// heap, so slab memory adds no garbage collector pressure. Released slabs are
// unmapped immediately; any pointer still referring into them becomes invalid.
// It holds no mutable state and is safe to share between arenas.
type MmapSource struct {
	slabSize int
	pageSize int
}

// NewMmapSource creates an MmapSource with the specified slab size.
// If slabSize <= 0, DefaultMmapSlabSize is used. Sizes are rounded up to
// the system page size.
func NewMmapSource(slabSize int) *MmapSource {
	if slabSize <= 0 {
		slabSize = DefaultMmapSlabSize
	}
	pageSize := unix.Getpagesize()
	return &MmapSource{
		slabSize: roundUp(slabSize, pageSize),
		pageSize: pageSize,
	}
}

// SlabSize returns the default slab size.
func (m *MmapSource) SlabSize() int {
	return m.slabSize
}

// AllocSlab satisfies the SlabSource interface.
func (m *MmapSource) AllocSlab(min Layout) ([]byte, error) {
	if min.Size > uintptr(math.MaxInt-m.pageSize) {
		return nil, errors.Wrapf(ErrLayoutOverflow, "mmap slab of %d bytes", min.Size)
	}
	size := max(roundUp(int(min.Size), m.pageSize), m.slabSize)
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceExhausted, "mmap %d bytes: %v", size, err)
	}
	return data, nil
}

// DeallocSlab satisfies the SlabSource interface.
func (m *MmapSource) DeallocSlab(block []byte, _ Layout) {
	// The block came from unix.Mmap; munmap only fails for foreign memory.
	if err := unix.Munmap(block); err != nil {
		panic(errors.Wrap(err, "arena: munmap slab"))
	}
}

func roundUp(n, multiple int) int {
	return (n + multiple - 1) / multiple * multiple
}
