package slabarena

import "log/slog"

type options struct {
	source   SlabSource
	slabSize int
	logger   *slog.Logger
}

// Option is a configuration option for Arena and SyncArena.
type Option func(*options)

// WithSource sets the slab source. It takes precedence over WithSlabSize.
func WithSource(src SlabSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithSlabSize sets the slab size of the default HeapSource.
func WithSlabSize(n int) Option {
	return func(o *options) {
		o.slabSize = n
	}
}

// WithLogger sets the logger used to report slab acquisition and release.
// Arenas log nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		o.source = NewHeapSource(o.slabSize)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
