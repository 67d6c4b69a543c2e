package slabarena

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse   int     // Bytes handed out, alignment padding included, headers excluded
	Capacity    int     // Total bytes of all slabs, headers included
	NumSlabs    int     // Number of slabs in the chain
	Utilization float64 // Ratio of SizeInUse to Capacity (0.0-1.0)
}

// SizeInUse returns the number of bytes allocated from the arena's slabs.
// This includes internal fragmentation due to alignment.
func (a *Arena) SizeInUse() int {
	return a.Metrics().SizeInUse
}

// NumSlabs returns the number of slabs currently held by the arena.
func (a *Arena) NumSlabs() int {
	return a.Metrics().NumSlabs
}

// Capacity returns the total size (in bytes) of all slabs in the arena.
func (a *Arena) Capacity() int {
	return a.Metrics().Capacity
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	return a.Metrics().Utilization
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return chainMetrics(a.current)
}

// SyncArenaMetrics extends ArenaMetrics with slow-path counters.
type SyncArenaMetrics struct {
	ArenaMetrics
	SlabsAcquired uint64 // Slabs obtained from the source
	RecheckHits   uint64 // Slow-path entries served by a slab another goroutine installed
}

// SizeInUse returns the number of bytes allocated from the arena's slabs.
func (s *SyncArena) SizeInUse() int {
	return chainMetrics(s.current.Load()).SizeInUse
}

// NumSlabs returns the number of slabs currently held by the arena.
func (s *SyncArena) NumSlabs() int {
	return chainMetrics(s.current.Load()).NumSlabs
}

// Capacity returns the total size (in bytes) of all slabs in the arena.
func (s *SyncArena) Capacity() int {
	return chainMetrics(s.current.Load()).Capacity
}

// Utilization returns the ratio of bytes in use to total capacity.
func (s *SyncArena) Utilization() float64 {
	return chainMetrics(s.current.Load()).Utilization
}

// Metrics returns a snapshot of arena statistics. It is safe to call while
// other goroutines allocate; the figures are then approximate.
func (s *SyncArena) Metrics() SyncArenaMetrics {
	return SyncArenaMetrics{
		ArenaMetrics:  chainMetrics(s.current.Load()),
		SlabsAcquired: s.acquired.Load(),
		RecheckHits:   s.recheckHits.Load(),
	}
}
