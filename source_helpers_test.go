package slabarena

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
)

// recordingSource hands out slabs of exactly max(min.Size, slabSize) bytes
// and records every block so tests can check that each one comes back
// exactly once, with its original size.
type recordingSource struct {
	t        testing.TB
	slabSize uintptr
	limit    int // maximum number of AllocSlab successes, 0 for unlimited

	mu       sync.Mutex
	live     map[uintptr]uintptr // block address -> size
	blocks   []uintptr           // every block ever handed out, in order
	allocs   int
	deallocs int
}

func newRecordingSource(t testing.TB, slabSize uintptr) *recordingSource {
	return &recordingSource{t: t, slabSize: slabSize, live: make(map[uintptr]uintptr)}
}

func (r *recordingSource) AllocSlab(min Layout) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && r.allocs >= r.limit {
		return nil, errors.Wrap(ErrSourceExhausted, "recording source limit reached")
	}
	size := max(min.Size, r.slabSize)
	words := make([]uint64, (size+7)/8)
	block := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), size)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(block)))
	r.live[addr] = size
	r.blocks = append(r.blocks, addr)
	r.allocs++
	return block, nil
}

func (r *recordingSource) DeallocSlab(block []byte, l Layout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(block)))
	size, ok := r.live[addr]
	if !ok {
		r.t.Errorf("DeallocSlab(%#x): block not live", addr)
		return
	}
	if size != l.Size || uintptr(len(block)) != size {
		r.t.Errorf("DeallocSlab(%#x): size %d (len %d), allocated %d", addr, l.Size, len(block), size)
	}
	if l.Align != HeaderAlign {
		r.t.Errorf("DeallocSlab(%#x): align %d, want %d", addr, l.Align, HeaderAlign)
	}
	delete(r.live, addr)
	r.deallocs++
}

func (r *recordingSource) counts() (allocs, deallocs, live int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocs, r.deallocs, len(r.live)
}

func (r *recordingSource) block(i int) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blocks[i]
}

// shortSource violates the SlabSource contract by returning too little memory.
type shortSource struct{}

func (shortSource) AllocSlab(Layout) ([]byte, error) {
	return make([]byte, 8), nil
}

func (shortSource) DeallocSlab([]byte, Layout) {}

func addrOf[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}
