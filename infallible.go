package slabarena

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"unsafe"

	"github.com/pkg/errors"
)

// FailureHandler decides what happens when an infallible allocation fails.
// HandleAllocFailure must not return: it should panic, exit the process or
// otherwise abandon the calling goroutine.
//
// l is the layout of the failed request and err is the *AllocError.
type FailureHandler interface {
	HandleAllocFailure(l Layout, err error)
}

// FailureHandlerFunc adapts a function to a FailureHandler.
type FailureHandlerFunc func(l Layout, err error)

// HandleAllocFailure calls f(l, err).
func (f FailureHandlerFunc) HandleAllocFailure(l Layout, err error) {
	f(l, err)
}

// PanicHandler panics with an *AllocError describing the failed request.
var PanicHandler FailureHandler = FailureHandlerFunc(func(l Layout, err error) {
	panic(allocError(l, err))
})

// ExitHandler logs the failed request at error level and exits the process.
type ExitHandler struct {
	Logger *slog.Logger // defaults to slog.Default()
	Code   int          // exit status, defaults to 2

	exit func(int)
}

// HandleAllocFailure satisfies the FailureHandler interface.
func (h *ExitHandler) HandleAllocFailure(l Layout, err error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	code := h.Code
	if code == 0 {
		code = 2
	}
	attrs := []slog.Attr{
		slog.Uint64("size", uint64(l.Size)),
		slog.Uint64("align", uint64(l.Align)),
	}
	var ae *AllocError
	if errors.As(err, &ae) && ae.Count > 0 {
		attrs = append(attrs, slog.Int("count", ae.Count))
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	logger.LogAttrs(context.Background(), slog.LevelError, "arena: allocation failed", attrs...)
	exit := h.exit
	if exit == nil {
		exit = os.Exit
	}
	exit(code)
}

// Infallible wraps an Allocator so that allocation failures are routed to a
// FailureHandler instead of being returned.
type Infallible struct {
	a Allocator
	h FailureHandler
}

// NewInfallible wraps a. If h is nil, PanicHandler is used.
func NewInfallible(a Allocator, h FailureHandler) *Infallible {
	if h == nil {
		h = PanicHandler
	}
	return &Infallible{a: a, h: h}
}

// AllocRaw returns a pointer to l.Size bytes aligned to l.Align.
func (in *Infallible) AllocRaw(l Layout) unsafe.Pointer {
	p, err := in.a.TryAllocRaw(l)
	if err != nil {
		in.fail(err)
	}
	return p
}

// TryAllocRaw satisfies the Allocator interface. It never returns an error.
func (in *Infallible) TryAllocRaw(l Layout) (unsafe.Pointer, error) {
	return in.AllocRaw(l), nil
}

func (in *Infallible) fail(err error) {
	var ae *AllocError
	if !errors.As(err, &ae) {
		ae = &AllocError{Err: err}
	}
	in.h.HandleAllocFailure(ae.Layout, ae)
	panic("arena: FailureHandler returned")
}

// MustAlloc is the infallible form of Alloc.
func MustAlloc[T any](in *Infallible, v T) *T {
	t, err := Alloc(in.a, v)
	if err != nil {
		in.fail(err)
	}
	return t
}

// MustAllocWith is the infallible form of AllocWith.
func MustAllocWith[T any](in *Infallible, init func() T) *T {
	t, err := AllocWith(in.a, init)
	if err != nil {
		in.fail(err)
	}
	return t
}

// MustAllocBytes is the infallible form of AllocBytes.
func MustAllocBytes(in *Infallible, n int) []byte {
	b, err := AllocBytes(in.a, n)
	if err != nil {
		in.fail(err)
	}
	return b
}

// MustAllocSlice is the infallible form of AllocSlice.
func MustAllocSlice[T any](in *Infallible, src []T) []T {
	s, err := AllocSlice(in.a, src)
	if err != nil {
		in.fail(err)
	}
	return s
}

// MustAllocFromSeq is the infallible form of AllocFromSeq.
func MustAllocFromSeq[T any](in *Infallible, n int, seq iter.Seq[T]) []T {
	s, err := AllocFromSeq(in.a, n, seq)
	if err != nil {
		in.fail(err)
	}
	return s
}

// MustAllocString is the infallible form of AllocString.
func MustAllocString(in *Infallible, s string) string {
	str, err := AllocString(in.a, s)
	if err != nil {
		in.fail(err)
	}
	return str
}
