package vm

import (
	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/op"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	// Use for: detailed tracing, instruction-level debugging.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	// Use for: observers that only need the Return event.
	StepNone

	// StepSampled calls OnStep every N instructions.
	StepSampled

	// StepOnLine calls OnStep when the source line changes.
	StepOnLine
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool
}

// NewObserverConfig creates a config with safe defaults.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveReturns: true,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer is an interface for observing VM execution events. It can be
// used for tracing, profiling or stepping through a chunk without
// modifying the VM.
//
// Observer methods are called synchronously during VM execution.
// Implementations can embed NoOpObserver and override what they need.
type Observer interface {
	// Config returns the observer's configuration.
	// Called once when the observer is attached to the VM.
	Config() ObserverConfig

	// OnStep is called before an instruction executes, based on the
	// StepMode in the observer's config. Returns false to halt execution.
	OnStep(event StepEvent) bool

	// OnReturn is called when OP_RETURN pops the result, before it is
	// printed. Returns false to halt execution.
	OnReturn(event ReturnEvent) bool
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// IP is the offset of the instruction about to execute.
	IP int

	// Opcode is the operation being executed.
	Opcode op.Code

	// OpcodeName is the mnemonic of the opcode.
	OpcodeName string

	// Line is the source line of the instruction.
	Line int

	// StackDepth is the current depth of the value stack.
	StackDepth int

	// Stack holds the stack contents, bottom first. It aliases VM memory
	// and must not be retained or modified after OnStep returns.
	Stack []bytecode.Value

	// Chunk is the chunk being executed.
	Chunk *bytecode.Chunk
}

// ReturnEvent contains information about a completed run.
type ReturnEvent struct {
	// Value is the value popped by OP_RETURN.
	Value bytecode.Value

	// Line is the source line of the OP_RETURN instruction.
	Line int

	// Steps is the number of instructions executed, OP_RETURN included.
	Steps int64
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to provide default implementations
// for methods you don't need.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

// Ensure NoOpObserver implements Observer.
var _ Observer = NoOpObserver{}

type attachedObserver struct {
	Observer
	config   ObserverConfig
	lastLine int
}

func attach(observer Observer) *attachedObserver {
	return &attachedObserver{
		Observer: observer,
		config:   NormalizeConfig(observer.Config()),
	}
}

// wantsStep applies the step mode. step is the 1-based count of the
// instruction about to execute.
func (a *attachedObserver) wantsStep(event StepEvent, step int64) bool {
	switch a.config.StepMode {
	case StepAll:
		return true
	case StepSampled:
		return step%int64(a.config.SampleInterval) == 0
	case StepOnLine:
		if event.Line == a.lastLine {
			return false
		}
		a.lastLine = event.Line
		return true
	default:
		return false
	}
}
