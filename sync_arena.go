package slabarena

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"
)

// SyncArena is a slab bump allocator safe for concurrent use.
//
// Allocations that fit in the current slab take no lock: goroutines race on
// the slab's bump offset with compare-and-swap. Acquiring a new slab is
// serialized by a mutex that also guards the SlabSource, so at most one
// goroutine talks to the source at a time.
type SyncArena struct {
	current atomic.Pointer[slab]

	mu       sync.Mutex // guards source, released and chain growth
	source   SlabSource
	released bool

	logger      *slog.Logger
	acquired    atomic.Uint64
	recheckHits atomic.Uint64
}

// NewSyncArena creates an empty SyncArena. Without WithSource it allocates
// slabs from a HeapSource.
func NewSyncArena(opts ...Option) *SyncArena {
	o := buildOptions(opts)
	return &SyncArena{source: o.source, logger: o.logger}
}

// TryAllocRaw returns a pointer to l.Size bytes aligned to l.Align. The
// memory is not zeroed and stays valid until the arena is released.
// On failure the error is an *AllocError.
func (s *SyncArena) TryAllocRaw(l Layout) (unsafe.Pointer, error) {
	if err := l.validate(); err != nil {
		return nil, allocError(l, err)
	}

	// The load is only a starting guess; the slow path re-reads under the lock.
	orig := s.current.Load()
	if p, ok := orig.bumpAtomic(l); ok {
		return p, nil
	}
	return s.allocRawSlow(l, orig)
}

func (s *SyncArena) allocRawSlow(l Layout, orig *slab) (unsafe.Pointer, error) {
	// After this lock is held, current cannot be changed by another goroutine.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panicIfReleased()

	// Another goroutine may have installed a slab since orig was loaded.
	// Try it before asking the source for a redundant one.
	head := s.current.Load()
	if head != orig {
		if p, ok := head.bumpAtomic(l); ok {
			s.recheckHits.Add(1)
			return p, nil
		}
	}

	next, p, err := allocSlow(s.source, l, head)
	if err != nil {
		s.logger.Warn("arena: slab acquisition failed", "size", l.Size, "align", l.Align, "error", err)
		return nil, allocError(l, err)
	}

	// The store publishes the fully initialized header; a goroutine that
	// loads next observes it initialized.
	s.current.Store(next)
	s.acquired.Add(1)
	s.logger.Debug("arena: slab acquired", "seq", next.hdr.seq, "slab_size", next.hdr.size, "request", l.Size)
	return p, nil
}

// EnsureCapacity ensures the current slab can hold an allocation of l.
// A concurrent allocation may still consume the space before the caller does.
func (s *SyncArena) EnsureCapacity(l Layout) error {
	if err := l.validate(); err != nil {
		return allocError(l, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panicIfReleased()

	head := s.current.Load()
	if head != nil {
		if _, _, ok := head.fit(head.usedBytes(), l); ok {
			return nil
		}
	}
	next, err := acquireSlab(s.source, l, head)
	if err != nil {
		return allocError(l, err)
	}
	s.current.Store(next)
	s.acquired.Add(1)
	s.logger.Debug("arena: slab reserved", "seq", next.hdr.seq, "slab_size", next.hdr.size, "request", l.Size)
	return nil
}

// Release returns every slab to the source and makes the arena unusable.
// It must not run concurrently with allocations. Release is idempotent.
func (s *SyncArena) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	n := releaseChain(s.source, s.current.Swap(nil))
	s.released = true
	if n > 0 {
		s.logger.Debug("arena: released", "slabs", n)
	}
}

// panicIfReleased panics if the arena has been released. Callers hold mu.
func (s *SyncArena) panicIfReleased() {
	if s.released {
		panic("arena: use after Release()")
	}
}
