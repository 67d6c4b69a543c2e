package slabarena

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSourceExhausted is returned when a SlabSource cannot supply a new slab.
	ErrSourceExhausted = errors.New("arena: slab source exhausted")
	// ErrLayoutOverflow is returned when a size or offset computation would overflow.
	ErrLayoutOverflow = errors.New("arena: layout overflows address space")
	// ErrInvalidLayout is returned for a zero or non power of two alignment, or a negative length.
	ErrInvalidLayout = errors.New("arena: invalid layout")
)

// AllocError describes a failed allocation request.
type AllocError struct {
	// Layout is the layout of the request. For an array whose total size
	// overflows it is the layout of one element and Count is set.
	Layout Layout
	Count  int
	Err    error
}

func (e *AllocError) Error() string {
	if e.Count > 0 {
		return fmt.Sprintf("arena: allocation of %d elements of %d bytes (align %d) failed: %v",
			e.Count, e.Layout.Size, e.Layout.Align, e.Err)
	}
	return fmt.Sprintf("arena: allocation of %d bytes (align %d) failed: %v", e.Layout.Size, e.Layout.Align, e.Err)
}

func (e *AllocError) Unwrap() error {
	return e.Err
}

func allocError(l Layout, err error) error {
	var ae *AllocError
	if errors.As(err, &ae) {
		return err
	}
	return &AllocError{Layout: l, Err: err}
}
