package lox

import (
	"io"
	"os"

	"github.com/deepnoodle-ai/lox/vm"
)

// Option configures interpretation or execution.
type Option func(*options)

type options struct {
	output    io.Writer
	trace     io.Writer
	stackSize int
	interval  *int
	observers []vm.Observer
}

func collectOptions(opts ...Option) *options {
	o := &options{output: os.Stdout}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) vmOpts() []vm.Option {
	opts := []vm.Option{vm.WithOutput(o.output)}
	if o.stackSize > 0 {
		opts = append(opts, vm.WithStackSize(o.stackSize))
	}
	if o.interval != nil {
		opts = append(opts, vm.WithContextCheckInterval(*o.interval))
	}
	if o.trace != nil {
		opts = append(opts, vm.WithTrace(o.trace))
	}
	for _, observer := range o.observers {
		opts = append(opts, vm.WithObserver(observer))
	}
	return opts
}

// WithOutput sets where token echoes and results are written. The default
// is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithTrace enables execution tracing to w.
func WithTrace(w io.Writer) Option {
	return func(o *options) {
		o.trace = w
	}
}

// WithStackSize sets the VM stack capacity.
func WithStackSize(size int) Option {
	return func(o *options) {
		o.stackSize = size
	}
}

// WithContextCheckInterval sets how many instructions run between checks
// for context cancellation.
func WithContextCheckInterval(interval int) Option {
	return func(o *options) {
		o.interval = &interval
	}
}

// WithObserver attaches an observer for VM execution events. This option
// is additive.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, observer)
	}
}
