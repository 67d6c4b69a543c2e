package slabarena

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exhaustedArena(t *testing.T) *Arena {
	src := newRecordingSource(t, 64)
	src.limit = 1
	a := NewArena(WithSource(src))
	t.Cleanup(a.Release)
	return a
}

func TestInfallibleAllocates(t *testing.T) {
	a := NewArena()
	defer a.Release()
	in := NewInfallible(a, nil)

	n := MustAlloc(in, 42)
	w := MustAllocWith(in, func() string { return "node" })
	xs := MustAllocSlice(in, []uint16{1, 2, 3})
	ys := MustAllocFromSeq(in, 4, slices.Values([]int{7, 8}))
	b := MustAllocBytes(in, 3)
	s := MustAllocString(in, "name")

	assert.Equal(t, 42, *n)
	assert.Equal(t, "node", *w)
	assert.Equal(t, []uint16{1, 2, 3}, xs)
	assert.Equal(t, []int{7, 8}, ys)
	assert.Equal(t, []byte{0, 0, 0}, b)
	assert.Equal(t, "name", s)

	// Infallible is itself an Allocator.
	p, err := Alloc(in, 3.5)
	require.NoError(t, err)
	assert.Equal(t, 3.5, *p)
}

func TestInfalliblePanicHandler(t *testing.T) {
	a := exhaustedArena(t)
	in := NewInfallible(a, PanicHandler)
	_ = MustAlloc(in, [32]byte{})

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		var ae *AllocError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, LayoutOf[[64]byte](), ae.Layout)
		assert.True(t, errors.Is(err, ErrSourceExhausted))
	}()
	_ = MustAlloc(in, [64]byte{})
}

func TestInfallibleCustomHandler(t *testing.T) {
	type failure struct {
		layout Layout
		err    error
	}
	a := exhaustedArena(t)
	in := NewInfallible(a, FailureHandlerFunc(func(l Layout, err error) {
		panic(failure{l, err})
	}))
	_ = MustAllocBytes(in, 16)

	defer func() {
		f, ok := recover().(failure)
		require.True(t, ok)
		assert.Equal(t, Layout{Size: 100, Align: 1}, f.layout)
		assert.True(t, errors.Is(f.err, ErrSourceExhausted))
	}()
	_ = MustAllocBytes(in, 100)
}

func TestInfallibleLayoutOverflow(t *testing.T) {
	a := NewArena()
	defer a.Release()
	in := NewInfallible(a, PanicHandler)

	n := int(^uint(0) >> 1)
	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrLayoutOverflow))
		var ae *AllocError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, n, ae.Count)
		assert.Contains(t, err.Error(), fmt.Sprintf("allocation of %d elements of 8 bytes (align 8)", n))
		assert.NotContains(t, err.Error(), "allocation of 8 bytes")
		assert.Zero(t, a.NumSlabs())
	}()
	_ = MustAllocFromSeq(in, n, slices.Values([]uint64{1}))
}

func TestInfallibleHandlerMustNotReturn(t *testing.T) {
	a := exhaustedArena(t)
	in := NewInfallible(a, FailureHandlerFunc(func(Layout, error) {}))
	_ = in.AllocRaw(Layout{Size: 8, Align: 8})

	assert.PanicsWithValue(t, "arena: FailureHandler returned", func() {
		_ = in.AllocRaw(Layout{Size: 64, Align: 8})
	})
}

func TestExitHandlerArrayOverflow(t *testing.T) {
	type exited struct{ code int }
	var buf bytes.Buffer
	h := &ExitHandler{
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		exit:   func(code int) { panic(exited{code}) },
	}
	a := NewArena()
	defer a.Release()
	in := NewInfallible(a, h)

	defer func() {
		_, ok := recover().(exited)
		require.True(t, ok)
		out := buf.String()
		assert.Contains(t, out, "size=8")
		assert.Contains(t, out, fmt.Sprintf("count=%d", int(^uint(0)>>1)))
	}()
	_ = MustAllocFromSeq(in, int(^uint(0)>>1), slices.Values([]uint64{1}))
}

func TestExitHandler(t *testing.T) {
	type exited struct{ code int }
	var buf bytes.Buffer
	h := &ExitHandler{
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		exit:   func(code int) { panic(exited{code}) },
	}
	a := exhaustedArena(t)
	in := NewInfallible(a, h)
	_ = in.AllocRaw(Layout{Size: 8, Align: 8})

	defer func() {
		e, ok := recover().(exited)
		require.True(t, ok)
		assert.Equal(t, 2, e.code)
		out := buf.String()
		assert.Contains(t, out, "level=ERROR")
		assert.Contains(t, out, "size=128")
		assert.Contains(t, out, "align=8")
		assert.Contains(t, out, "slab source exhausted")
	}()
	_ = in.AllocRaw(Layout{Size: 128, Align: 8})
}
