//go:build !unix

package slabarena

import "github.com/pkg/errors"

// DefaultMmapSlabSize is the default slab size of an MmapSource (1 MiB).
const DefaultMmapSlabSize = 1 << 20

// MmapSource is unavailable on this platform; every AllocSlab call fails.
type MmapSource struct {
	slabSize int
}

// NewMmapSource creates an MmapSource that always reports exhaustion.
func NewMmapSource(slabSize int) *MmapSource {
	if slabSize <= 0 {
		slabSize = DefaultMmapSlabSize
	}
	return &MmapSource{slabSize: slabSize}
}

// SlabSize returns the default slab size.
func (m *MmapSource) SlabSize() int {
	return m.slabSize
}

// AllocSlab satisfies the SlabSource interface.
func (m *MmapSource) AllocSlab(Layout) ([]byte, error) {
	return nil, errors.Wrap(ErrSourceExhausted, "anonymous mappings are not supported on this platform")
}

// DeallocSlab satisfies the SlabSource interface.
func (m *MmapSource) DeallocSlab([]byte, Layout) {}
