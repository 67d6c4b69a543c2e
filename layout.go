package slabarena

import (
	"math/bits"
	"unsafe"

	"github.com/pkg/errors"
)

// Layout describes the size and alignment of a memory request.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// NewLayout returns a Layout after checking that align is a power of two.
func NewLayout(size, align uintptr) (Layout, error) {
	l := Layout{Size: size, Align: align}
	if err := l.validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LayoutOf returns the layout of a single T.
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{Size: unsafe.Sizeof(zero), Align: unsafe.Alignof(zero)}
}

// ArrayLayout returns the layout of n consecutive T values.
func ArrayLayout[T any](n int) (Layout, error) {
	if n < 0 {
		return Layout{}, errors.Wrapf(ErrInvalidLayout, "negative length %d", n)
	}
	elem := LayoutOf[T]()
	hi, lo := bits.Mul(uint(elem.Size), uint(n))
	if hi != 0 {
		return Layout{}, errors.Wrap(ErrLayoutOverflow, "array size")
	}
	return Layout{Size: uintptr(lo), Align: elem.Align}, nil
}

func (l Layout) validate() error {
	if l.Align == 0 || l.Align&(l.Align-1) != 0 {
		return errors.Wrapf(ErrInvalidLayout, "alignment %d is not a power of two", l.Align)
	}
	return nil
}

// addUintptr adds a and b, reporting false on overflow.
func addUintptr(a, b uintptr) (uintptr, bool) {
	s := a + b
	return s, s >= a
}
