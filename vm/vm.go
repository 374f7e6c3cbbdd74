// Package vm provides a VirtualMachine that executes lox bytecode chunks.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/op"
)

const (
	// DefaultStackSize is the number of values the stack holds unless
	// WithStackSize says otherwise.
	DefaultStackSize = 256

	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// ErrHalted is returned when an observer stops execution.
var ErrHalted = errors.New("execution halted by observer")

type VirtualMachine struct {
	ip        int // instruction pointer
	sp        int // number of values on the stack
	halt      int32
	chunk     *bytecode.Chunk
	stack     []bytecode.Value
	stackSize int
	out       io.Writer
	result    bytecode.Value
	returned  bool
	steps     int64
	running   bool
	runMutex  sync.Mutex

	// contextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). A value of 0 relies only on the
	// cancellation callback registered with the context.
	contextCheckInterval int

	observers []*attachedObserver
}

// New creates a new Virtual Machine for the given chunk.
func New(chunk *bytecode.Chunk, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		chunk:                chunk,
		stackSize:            DefaultStackSize,
		out:                  os.Stdout,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.stackSize <= 0 {
		vm.stackSize = DefaultStackSize
	}
	vm.stack = make([]bytecode.Value, vm.stackSize)
	return vm
}

func (vm *VirtualMachine) start(ctx context.Context) (func() bool, error) {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return nil, fmt.Errorf("vm is already running")
	}
	vm.running = true
	vm.ip = 0
	vm.sp = 0
	vm.steps = 0
	vm.result = 0
	vm.returned = false
	for _, observer := range vm.observers {
		observer.lastLine = 0
	}
	// Halt execution when the context is cancelled
	atomic.StoreInt32(&vm.halt, 0)
	return context.AfterFunc(ctx, func() {
		atomic.StoreInt32(&vm.halt, 1)
	}), nil
}

func (vm *VirtualMachine) stop(release func() bool) {
	release()
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
}

// Run executes the chunk from its first instruction until OP_RETURN, a
// runtime error, or cancellation of ctx. A VM may be run again once the
// previous run has finished; each run starts with an empty stack.
func (vm *VirtualMachine) Run(ctx context.Context) (err error) {
	if vm.chunk == nil {
		return fmt.Errorf("no chunk available")
	}
	release, err := vm.start(ctx)
	if err != nil {
		return err
	}
	defer vm.stop(release)
	return vm.eval(ctx)
}

func (vm *VirtualMachine) eval(ctx context.Context) error {
	// Instruction counter for deterministic context checking
	var instructionCount int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()
	code := vm.chunk

	for vm.ip < code.Len() {

		if atomic.LoadInt32(&vm.halt) == 1 {
			return ctx.Err()
		}

		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					atomic.StoreInt32(&vm.halt, 1)
					return ctx.Err()
				default:
				}
			}
		}

		offset := vm.ip
		opcode, err := op.Decode(vm.fetch())
		if err != nil {
			return vm.runtimeError(offset, errz.ErrInvalidOpcode,
				"Instruction %d not recognized!", code.ByteAt(offset))
		}
		vm.steps++

		// Operands are checked before observers see the instruction
		if opcode == op.Constant {
			if err := vm.checkConstant(offset); err != nil {
				return err
			}
		}

		if len(vm.observers) > 0 {
			event := StepEvent{
				IP:         offset,
				Opcode:     opcode,
				OpcodeName: op.GetInfo(opcode).Name,
				Line:       code.LineAt(offset),
				StackDepth: vm.sp,
				Stack:      vm.stack[:vm.sp],
				Chunk:      code,
			}
			for _, observer := range vm.observers {
				if observer.wantsStep(event, vm.steps) && !observer.OnStep(event) {
					return vm.runtimeError(offset, ErrHalted, "%s", ErrHalted.Error())
				}
			}
		}

		switch opcode {
		case op.Constant:
			value := code.ConstantAt(int(vm.fetch()))
			if err := vm.push(offset, value); err != nil {
				return err
			}
		case op.Add, op.Subtract, op.Multiply, op.Divide:
			if vm.sp < 2 {
				return vm.underflow(offset, opcode)
			}
			b := vm.pop()
			a := vm.pop()
			vm.stack[vm.sp] = binaryOp(opcode, a, b)
			vm.sp++
		case op.Negate:
			if vm.sp < 1 {
				return vm.underflow(offset, opcode)
			}
			vm.stack[vm.sp-1] = -vm.stack[vm.sp-1]
		case op.Return:
			if vm.sp < 1 {
				return vm.underflow(offset, opcode)
			}
			value := vm.pop()
			vm.result = value
			vm.returned = true
			event := ReturnEvent{Value: value, Line: code.LineAt(offset), Steps: vm.steps}
			for _, observer := range vm.observers {
				if observer.config.ObserveReturns && !observer.OnReturn(event) {
					return vm.runtimeError(offset, ErrHalted, "%s", ErrHalted.Error())
				}
			}
			if _, err := fmt.Fprintln(vm.out, value.String()); err != nil {
				return err
			}
			return nil
		}
	}
	return vm.runtimeError(vm.ip, errz.ErrUnexpectedEnd, "reached end of chunk without %s", op.Return)
}

// checkConstant verifies that the OP_CONSTANT at offset has its operand
// and that the operand indexes into the constant pool.
func (vm *VirtualMachine) checkConstant(offset int) error {
	code := vm.chunk
	if offset+1 >= code.Len() {
		return vm.runtimeError(offset, errz.ErrUnexpectedEnd,
			"%s at offset %04d is missing its operand", op.Constant, offset)
	}
	idx := int(code.ByteAt(offset + 1))
	if _, ok := code.Constant(idx); !ok {
		return vm.runtimeError(offset, errz.ErrConstantIndex,
			"constant index %d out of range (pool has %d)", idx, code.ConstantCount())
	}
	return nil
}

func binaryOp(opcode op.Code, a, b bytecode.Value) bytecode.Value {
	switch opcode {
	case op.Add:
		return a + b
	case op.Subtract:
		return a - b
	case op.Multiply:
		return a * b
	default:
		return a / b
	}
}

// Result returns the value popped by the last OP_RETURN. The bool is false
// if the most recent run did not reach OP_RETURN or the VM is running.
func (vm *VirtualMachine) Result() (bytecode.Value, bool) {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running || !vm.returned {
		return 0, false
	}
	return vm.result, true
}

// TOS returns the top-of-stack value if there is one, without modifying the
// stack. This only works on a stopped VM. If the VM is running, (0, false)
// is returned.
func (vm *VirtualMachine) TOS() (bytecode.Value, bool) {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if !vm.running && vm.sp > 0 {
		return vm.stack[vm.sp-1], true
	}
	return 0, false
}

// Stack returns a copy of the values on the stack, bottom first.
func (vm *VirtualMachine) Stack() []bytecode.Value {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	result := make([]bytecode.Value, vm.sp)
	copy(result, vm.stack[:vm.sp])
	return result
}

// Steps returns the number of instructions executed by the most recent run.
func (vm *VirtualMachine) Steps() int64 {
	return vm.steps
}

// GetIP returns the current instruction pointer.
func (vm *VirtualMachine) GetIP() int {
	return vm.ip
}

func (vm *VirtualMachine) pop() bytecode.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VirtualMachine) push(offset int, value bytecode.Value) error {
	if vm.sp >= len(vm.stack) {
		return vm.runtimeError(offset, errz.ErrStackOverflow,
			"stack overflow (capacity %d)", len(vm.stack))
	}
	vm.stack[vm.sp] = value
	vm.sp++
	return nil
}

func (vm *VirtualMachine) fetch() byte {
	ip := vm.ip
	vm.ip++
	return vm.chunk.ByteAt(ip)
}

func (vm *VirtualMachine) underflow(offset int, opcode op.Code) error {
	return vm.runtimeError(offset, errz.ErrStackUnderflow,
		"stack underflow in %s (depth %d)", opcode, vm.sp)
}

func (vm *VirtualMachine) runtimeError(offset int, cause error, format string, args ...any) *errz.StructuredError {
	return errz.NewStructuredError(errz.ErrRuntime, fmt.Sprintf(format, args...), vm.chunk.LineAt(offset)).
		WithCause(cause)
}
