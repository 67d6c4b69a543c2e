package slabarena

import (
	"unsafe"

	"github.com/pkg/errors"
)

// BufferSource hands out a caller-supplied buffer as a single slab. Once that
// slab has been released it can be handed out again.
type BufferSource struct {
	buf  []byte
	used bool
}

// NewBufferSource creates a BufferSource over buf.
func NewBufferSource(buf []byte) *BufferSource {
	return &BufferSource{buf: buf}
}

// AllocSlab satisfies the SlabSource interface.
func (b *BufferSource) AllocSlab(min Layout) ([]byte, error) {
	if b.used {
		return nil, errors.Wrap(ErrSourceExhausted, "buffer already in use")
	}
	if len(b.buf) == 0 {
		return nil, errors.Wrap(ErrSourceExhausted, "empty buffer")
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b.buf)))
	padding := -addr & (min.Align - 1)
	if padding > uintptr(len(b.buf)) || uintptr(len(b.buf))-padding < min.Size {
		return nil, errors.Wrapf(ErrSourceExhausted, "buffer of %d bytes cannot hold %d", len(b.buf), min.Size)
	}
	b.used = true
	return b.buf[padding:], nil
}

// DeallocSlab satisfies the SlabSource interface.
func (b *BufferSource) DeallocSlab([]byte, Layout) {
	b.used = false
}
