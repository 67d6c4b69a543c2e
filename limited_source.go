package slabarena

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// LimitedSource caps the total bytes of slabs outstanding from an underlying
// source. One LimitedSource may be shared by several arenas to give them a
// common memory budget; the underlying source must then be safe to share too.
//
// A request that would exceed the budget fails immediately with
// ErrSourceExhausted. It never waits for another arena to release memory.
type LimitedSource struct {
	src   SlabSource
	limit int64
	sem   *semaphore.Weighted
	inUse atomic.Int64
}

// NewLimitedSource wraps src with a budget of limitBytes.
func NewLimitedSource(src SlabSource, limitBytes int64) *LimitedSource {
	return &LimitedSource{
		src:   src,
		limit: limitBytes,
		sem:   semaphore.NewWeighted(limitBytes),
	}
}

// AllocSlab satisfies the SlabSource interface.
func (l *LimitedSource) AllocSlab(min Layout) ([]byte, error) {
	if int64(min.Size) < 0 || int64(min.Size) > l.limit {
		return nil, errors.Wrapf(ErrSourceExhausted, "slab of %d bytes exceeds budget of %d", min.Size, l.limit)
	}
	block, err := l.src.AllocSlab(min)
	if err != nil {
		return nil, err
	}
	// The actual size is only known after the underlying allocation.
	n := int64(len(block))
	if !l.sem.TryAcquire(n) {
		l.src.DeallocSlab(block, Layout{Size: uintptr(len(block)), Align: min.Align})
		return nil, errors.Wrapf(ErrSourceExhausted, "budget of %d bytes exhausted (%d in use)", l.limit, l.inUse.Load())
	}
	l.inUse.Add(n)
	return block, nil
}

// DeallocSlab satisfies the SlabSource interface.
func (l *LimitedSource) DeallocSlab(block []byte, layout Layout) {
	n := int64(len(block))
	l.src.DeallocSlab(block, layout)
	l.inUse.Add(-n)
	l.sem.Release(n)
}

// InUse returns the number of budgeted bytes currently held by arenas.
func (l *LimitedSource) InUse() int64 {
	return l.inUse.Load()
}

// Limit returns the budget in bytes.
func (l *LimitedSource) Limit() int64 {
	return l.limit
}
