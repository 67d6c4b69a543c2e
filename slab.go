package slabarena

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
)

// slabHeader occupies the first HeaderSize bytes of every slab. It holds no
// Go pointers, so it may live in memory the garbage collector does not scan.
type slabHeader struct {
	size uintptr // total bytes in the block, header included
	used uintptr // offset of the next free byte, never decreases
	seq  uintptr // 1-based position in the arena's chain
}

const (
	// HeaderSize is the number of bytes reserved at the start of each slab.
	HeaderSize = unsafe.Sizeof(slabHeader{})
	// HeaderAlign is the alignment every block returned by a SlabSource must satisfy.
	HeaderAlign = unsafe.Alignof(slabHeader{})
)

// slab is the Go-side descriptor of one block. It owns the block slice so a
// heap-backed block stays reachable, and owns the rest of the chain via next.
type slab struct {
	next  *slab
	block []byte
	hdr   *slabHeader
}

func newSlab(block []byte, next *slab) *slab {
	hdr := (*slabHeader)(unsafe.Pointer(unsafe.SliceData(block)))
	seq := uintptr(1)
	if next != nil {
		seq = next.hdr.seq + 1
	}
	*hdr = slabHeader{size: uintptr(len(block)), used: HeaderSize, seq: seq}
	return &slab{next: next, block: block, hdr: hdr}
}

// fit computes where an allocation of l would start and end if the slab's
// bump offset were used. It reports false when the request does not fit or
// the arithmetic would overflow.
func (s *slab) fit(used uintptr, l Layout) (start, end uintptr, ok bool) {
	addr, ok := addUintptr(uintptr(unsafe.Pointer(unsafe.SliceData(s.block))), used)
	if !ok {
		return 0, 0, false
	}
	padding := -addr & (l.Align - 1)
	if start, ok = addUintptr(used, padding); !ok {
		return 0, 0, false
	}
	if end, ok = addUintptr(start, l.Size); !ok {
		return 0, 0, false
	}
	if end > s.hdr.size {
		return 0, 0, false
	}
	// A zero-size allocation must still point inside the block.
	if start >= s.hdr.size {
		return 0, 0, false
	}
	return start, end, true
}

func (s *slab) at(off uintptr) unsafe.Pointer {
	return unsafe.Pointer(&s.block[off])
}

// bumpNonAtomic allocates l from s. The caller must have exclusive access to s.
func (s *slab) bumpNonAtomic(l Layout) (unsafe.Pointer, bool) {
	if s == nil {
		return nil, false
	}
	start, end, ok := s.fit(s.hdr.used, l)
	if !ok {
		return nil, false
	}
	s.hdr.used = end
	return s.at(start), true
}

// bumpAtomic allocates l from s while other goroutines may be doing the same.
// The used counter only partitions offsets, it does not guard memory contents.
func (s *slab) bumpAtomic(l Layout) (unsafe.Pointer, bool) {
	if s == nil {
		return nil, false
	}
	prev := atomic.LoadUintptr(&s.hdr.used)
	for {
		start, end, ok := s.fit(prev, l)
		if !ok {
			return nil, false
		}
		if atomic.CompareAndSwapUintptr(&s.hdr.used, prev, end) {
			return s.at(start), true
		}
		prev = atomic.LoadUintptr(&s.hdr.used)
	}
}

func (s *slab) usedBytes() uintptr {
	return atomic.LoadUintptr(&s.hdr.used)
}

// slabSizeFor returns the smallest slab that can hold a header followed by
// an allocation of l, including worst-case alignment padding. A zero-size
// request is sized as one byte so its start lies inside the block.
func slabSizeFor(l Layout) (uintptr, error) {
	var padding uintptr
	if l.Align > HeaderAlign {
		padding = l.Align - HeaderAlign
	}
	size, ok := addUintptr(HeaderSize, padding)
	if ok {
		size, ok = addUintptr(size, max(l.Size, 1))
	}
	if !ok {
		return 0, errors.Wrapf(ErrLayoutOverflow, "slab for %d bytes", l.Size)
	}
	return size, nil
}

// acquireSlab obtains a block from src large enough for l and links it in
// front of next. A block that violates the SlabSource contract panics.
func acquireSlab(src SlabSource, l Layout, next *slab) (*slab, error) {
	minSize, err := slabSizeFor(l)
	if err != nil {
		return nil, err
	}
	block, err := src.AllocSlab(Layout{Size: minSize, Align: HeaderAlign})
	if err != nil {
		return nil, err
	}
	if uintptr(len(block)) < minSize {
		panic(fmt.Sprintf("arena: slab source returned %d bytes for a %d byte request", len(block), minSize))
	}
	if uintptr(unsafe.Pointer(unsafe.SliceData(block)))&(HeaderAlign-1) != 0 {
		panic(fmt.Sprintf("arena: slab source returned a block not aligned to %d", HeaderAlign))
	}
	return newSlab(block, next), nil
}

// allocSlow acquires a new slab and performs l in it. The new slab is not yet
// visible to any other goroutine, so the bump needs no synchronization.
func allocSlow(src SlabSource, l Layout, next *slab) (*slab, unsafe.Pointer, error) {
	s, err := acquireSlab(src, l, next)
	if err != nil {
		return nil, nil, err
	}
	p, ok := s.bumpNonAtomic(l)
	if !ok {
		panic("arena: slab source produced an insufficiently sized slab")
	}
	return s, p, nil
}

// releaseChain returns every slab reachable from head to src and reports how
// many were released.
func releaseChain(src SlabSource, head *slab) int {
	n := 0
	for s := head; s != nil; {
		next := s.next
		size := s.hdr.size
		block := s.block
		s.next, s.block, s.hdr = nil, nil, nil
		src.DeallocSlab(block, Layout{Size: size, Align: HeaderAlign})
		n++
		s = next
	}
	return n
}

// chainMetrics walks the chain from head and sums its usage.
func chainMetrics(head *slab) ArenaMetrics {
	var m ArenaMetrics
	for s := head; s != nil; s = s.next {
		m.NumSlabs++
		m.Capacity += int(s.hdr.size)
		m.SizeInUse += int(s.usedBytes() - HeaderSize)
	}
	if m.Capacity > 0 {
		m.Utilization = float64(m.SizeInUse) / float64(m.Capacity)
	}
	return m
}
