package vm

import "io"

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithStackSize sets the capacity of the value stack. Pushing beyond it is
// a runtime error. Values <= 0 select DefaultStackSize.
func WithStackSize(size int) Option {
	return func(vm *VirtualMachine) {
		vm.stackSize = size
	}
}

// WithOutput sets the writer that OP_RETURN prints the result to. The
// default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.out = w
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done() during
// execution. The interval is specified in number of instructions. A value of 0
// disables deterministic checking, relying only on the callback registered
// with the context. The default is DefaultContextCheckInterval (1000).
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithObserver attaches an observer for VM execution events. It may be
// given more than once; observers are called in the order attached.
// Returning false from any observer method halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observers = append(vm.observers, attach(observer))
	}
}

// WithTrace writes the stack contents and the disassembly of each
// instruction to w before it executes.
func WithTrace(w io.Writer) Option {
	return WithObserver(NewTraceObserver(w))
}
