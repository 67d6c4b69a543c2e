package slabarena

import (
	"log/slog"
	"unsafe"
)

// Arena is a slab bump allocator. Not goroutine-safe.
// Use SyncArena for concurrent access.
//
// An Arena starts empty and acquires slabs from its SlabSource lazily, on the
// first allocation and whenever the current slab cannot hold a request.
type Arena struct {
	current  *slab // head of the slab chain, nil until the first allocation
	source   SlabSource
	logger   *slog.Logger
	released bool
}

// NewArena creates an empty Arena. Without WithSource it allocates slabs from
// a HeapSource.
func NewArena(opts ...Option) *Arena {
	o := buildOptions(opts)
	return &Arena{source: o.source, logger: o.logger}
}

// TryAllocRaw returns a pointer to l.Size bytes aligned to l.Align. The
// memory is not zeroed and stays valid until the arena is released.
// On failure the error is an *AllocError.
func (a *Arena) TryAllocRaw(l Layout) (unsafe.Pointer, error) {
	if err := l.validate(); err != nil {
		return nil, allocError(l, err)
	}

	// Fast path: bump into the current slab
	if p, ok := a.current.bumpNonAtomic(l); ok {
		return p, nil
	}

	// Slow path: need new slab
	return a.allocRawSlow(l)
}

func (a *Arena) allocRawSlow(l Layout) (unsafe.Pointer, error) {
	a.panicIfReleased()

	s, p, err := allocSlow(a.source, l, a.current)
	if err != nil {
		a.logger.Warn("arena: slab acquisition failed", "size", l.Size, "align", l.Align, "error", err)
		return nil, allocError(l, err)
	}
	a.current = s
	a.logger.Debug("arena: slab acquired", "seq", s.hdr.seq, "slab_size", s.hdr.size, "request", l.Size)
	return p, nil
}

// EnsureCapacity ensures the current slab can hold an allocation of l.
// If not, it acquires a new slab sized for l; the remainder of the old slab
// is abandoned.
func (a *Arena) EnsureCapacity(l Layout) error {
	if err := l.validate(); err != nil {
		return allocError(l, err)
	}
	a.panicIfReleased()
	if c := a.current; c != nil {
		if _, _, ok := c.fit(c.hdr.used, l); ok {
			return nil
		}
	}
	s, err := acquireSlab(a.source, l, a.current)
	if err != nil {
		return allocError(l, err)
	}
	a.current = s
	a.logger.Debug("arena: slab reserved", "seq", s.hdr.seq, "slab_size", s.hdr.size, "request", l.Size)
	return nil
}

// Release returns every slab to the source and makes the arena unusable.
// Any subsequent allocation will panic. Release is idempotent.
func (a *Arena) Release() {
	if a.released {
		return
	}
	n := releaseChain(a.source, a.current)
	a.current = nil
	a.released = true
	if n > 0 {
		a.logger.Debug("arena: released", "slabs", n)
	}
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	if a.released {
		panic("arena: use after Release()")
	}
}
