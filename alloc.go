package slabarena

import (
	"iter"
	"unsafe"
)

// Allocator is the raw allocation capability shared by Arena, SyncArena and
// Infallible. The typed helpers in this file are built on it.
//
// Values placed in an arena live in memory the garbage collector does not
// scan. A T that holds Go pointers must not hold the only reference to the
// memory they point to.
type Allocator interface {
	TryAllocRaw(l Layout) (unsafe.Pointer, error)
}

// Alloc copies v into the arena and returns a pointer to the copy.
func Alloc[T any](a Allocator, v T) (*T, error) {
	p, err := a.TryAllocRaw(LayoutOf[T]())
	if err != nil {
		return nil, err
	}
	t := (*T)(p)
	*t = v
	return t, nil
}

// AllocWith reserves space for a T, then stores init() into it.
// init is not called when the allocation fails.
func AllocWith[T any](a Allocator, init func() T) (*T, error) {
	p, err := a.TryAllocRaw(LayoutOf[T]())
	if err != nil {
		return nil, err
	}
	t := (*T)(p)
	*t = init()
	return t, nil
}

// AllocZeroed returns a pointer to a zeroed T stored inside the arena.
func AllocZeroed[T any](a Allocator) (*T, error) {
	var zero T
	return Alloc(a, zero)
}

// AllocBytes returns a zeroed []byte of length n pointing into the arena.
// Returns nil if n <= 0.
func AllocBytes(a Allocator, n int) ([]byte, error) {
	return AllocSliceZeroed[byte](a, n)
}

// AllocSlice copies src into the arena. Returns nil if src is empty.
func AllocSlice[T any](a Allocator, src []T) ([]T, error) {
	if len(src) == 0 {
		return nil, nil
	}
	dst, err := allocSlice[T](a, len(src))
	if err != nil {
		return nil, err
	}
	copy(dst, src)
	return dst, nil
}

// AllocSliceZeroed allocates a slice of n zeroed elements inside the arena.
// Returns nil if n <= 0.
func AllocSliceZeroed[T any](a Allocator, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	s, err := allocSlice[T](a, n)
	if err != nil {
		return nil, err
	}
	clear(s)
	return s, nil
}

// AllocFromSeq reserves room for n elements and fills it from seq. If seq
// yields fewer than n values the returned slice is correspondingly shorter;
// values beyond n are not consumed. Returns nil if n <= 0.
func AllocFromSeq[T any](a Allocator, n int, seq iter.Seq[T]) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	s, err := allocSlice[T](a, n)
	if err != nil {
		return nil, err
	}
	i := 0
	for v := range seq {
		s[i] = v
		i++
		if i == n {
			break
		}
	}
	return s[:i], nil
}

// AllocString copies s into the arena and returns a string backed by the copy.
func AllocString(a Allocator, s string) (string, error) {
	if len(s) == 0 {
		return "", nil
	}
	b, err := allocSlice[byte](a, len(s))
	if err != nil {
		return "", err
	}
	copy(b, s)
	return unsafe.String(unsafe.SliceData(b), len(b)), nil
}

func allocSlice[T any](a Allocator, n int) ([]T, error) {
	l, err := ArrayLayout[T](n)
	if err != nil {
		return nil, &AllocError{Layout: LayoutOf[T](), Count: n, Err: err}
	}
	p, err := a.TryAllocRaw(l)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(p), n), nil
}
