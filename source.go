package slabarena

// SlabSource supplies and reclaims the blocks an arena carves allocations from.
//
// AllocSlab must return a block whose first byte is aligned to at least
// HeaderAlign and whose length is at least min.Size; it may return more. The
// length of the returned slice is the block's actual size. Failing to supply
// a block is an ordinary outcome and should be reported with an error
// wrapping ErrSourceExhausted.
//
// DeallocSlab receives exactly the slice AllocSlab returned, together with
// its effective layout, once the owning arena is released. It must not fail.
//
// Arenas never call a SlabSource from more than one goroutine at a time. A
// source shared between arenas must do its own locking.
type SlabSource interface {
	AllocSlab(min Layout) ([]byte, error)
	DeallocSlab(block []byte, l Layout)
}
