// Package slabarena implements a slab bump allocator (memory arena) for Go.
//
// # Overview
//
// An arena hands out many small, same-lifetime objects from large blocks
// ("slabs") obtained from a pluggable SlabSource, and gives every slab back
// at once when it is released. This is particularly useful for:
//
//   - Parsers and compilers building ASTs or IR
//   - Graph builders allocating millions of nodes
//   - Request-scoped allocations with batch cleanup
//   - Reducing garbage collection pressure (with MmapSource)
//
// There is no per-object free, no compaction and no size classes.
//
// # Basic Usage
//
//	a := slabarena.NewArena()  // slabs from the Go heap, 4 KiB each
//	defer a.Release()          // return every slab at once
//
//	// Allocate typed values
//	n, err := slabarena.Alloc(a, Node{ID: 1})
//	ids, err := slabarena.AllocSlice(a, []uint32{1, 2, 3})
//	name, err := slabarena.AllocString(a, "main")
//
//	// Raw allocation with explicit size and alignment
//	p, err := a.TryAllocRaw(slabarena.Layout{Size: 64, Align: 16})
//
// # Thread Safety
//
// Arena is not goroutine-safe. SyncArena may be shared: allocations that fit
// in the current slab are lock-free, and only slab acquisition takes a lock:
//
//	s := slabarena.NewSyncArena(slabarena.WithSlabSize(1 << 16))
//	defer s.Release()
//
// Release must not run concurrently with allocations on either variant.
//
// # Slab Sources
//
//   - HeapSource: slabs from the Go heap, sized to a power of two
//   - MmapSource: off-heap anonymous mappings, unmapped on release
//   - BufferSource: a single caller-supplied buffer
//   - LimitedSource: a byte budget shared by several arenas
//
// # Failure Handling
//
// Allocation fails only when the source cannot supply a slab or a size
// computation would overflow; the error is an *AllocError wrapping
// ErrSourceExhausted or ErrLayoutOverflow. Wrap an arena in Infallible to
// route failures to a FailureHandler instead:
//
//	in := slabarena.NewInfallible(a, slabarena.PanicHandler)
//	n := slabarena.MustAlloc(in, Node{ID: 2})
//
// # Important Notes
//
//   - Allocated memory is only valid while the arena exists
//   - Memory is not zeroed by TryAllocRaw; the typed helpers initialize it
//   - Slab memory is not scanned by the garbage collector, so arena values
//     must not hold the only reference to heap objects
//   - Proper alignment is maintained for all allocations
//
// # Metrics and Monitoring
//
//	m := a.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	fmt.Printf("Slabs: %d\n", m.NumSlabs)
//
// The arenaprom subpackage exports these figures to Prometheus.
package slabarena
