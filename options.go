package jdelta

import "errors"

var (
	// ErrInvalidInput is returned when a root value is absent (the zero Value).
	ErrInvalidInput = errors.New("invalid input")

	// ErrResourceExceeded is returned when a comparison exceeds the configured
	// depth or node ceiling.
	ErrResourceExceeded = errors.New("resource exceeded")
)

// DefaultMaxDepth is the container nesting depth allowed unless WithMaxDepth
// says otherwise.
const DefaultMaxDepth = 512

type options struct {
	maxDepth int
	maxNodes int
}

func newOptions(opts []Option) options {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures Align and Build.
type Option func(*options)

// WithMaxDepth limits the container nesting depth of a comparison; the root
// is depth 0. A value <= 0 removes the limit.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithMaxNodes limits the number of nodes in the produced diff tree. A value
// <= 0, the default, removes the limit.
func WithMaxNodes(n int) Option {
	return func(o *options) { o.maxNodes = n }
}
