package ioc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultMaxResolutionDepth bounds how deep a resolution chain may nest.
const DefaultMaxResolutionDepth = 100

// Option configures a Container.
type Option interface {
	apply(*options)
}

// options holds container configuration.
type options struct {
	logger       *zap.Logger
	introspector Introspector
	maxDepth     int
	registerer   prometheus.Registerer

	// onResolved is called after each key is resolved, nested keys included.
	onResolved func(key Key, instance any, duration time.Duration)

	// onError is called when a top-level resolution fails.
	onError func(key Key, err error)
}

// optionFunc adapts a function to Option.
type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

func defaultOptions() *options {
	return &options{
		logger:   zap.NewNop(),
		maxDepth: DefaultMaxResolutionDepth,
	}
}

// WithLogger sets the logger. Bindings, cache writes and failed
// resolutions are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	})
}

// WithIntrospector replaces the default reflection-based introspector.
func WithIntrospector(i Introspector) Option {
	return optionFunc(func(opts *options) {
		opts.introspector = i
	})
}

// WithMaxResolutionDepth bounds the resolution chain length. Zero or less
// disables the bound; circular dependencies are still detected.
func WithMaxResolutionDepth(depth int) Option {
	return optionFunc(func(opts *options) {
		opts.maxDepth = depth
	})
}

// WithRegisterer registers the container's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return optionFunc(func(opts *options) {
		opts.registerer = reg
	})
}

// OnResolved sets a callback invoked after every successful resolution.
// It runs inside the resolution; calls it makes on the container from the
// same goroutine join that resolution.
func OnResolved(fn func(key Key, instance any, duration time.Duration)) Option {
	return optionFunc(func(opts *options) {
		opts.onResolved = fn
	})
}

// OnError sets a callback invoked when a top-level resolution fails. It
// runs after the container lock is released.
func OnError(fn func(key Key, err error)) Option {
	return optionFunc(func(opts *options) {
		opts.onError = fn
	})
}
