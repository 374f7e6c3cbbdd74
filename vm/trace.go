package vm

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/lox/dis"
)

// TraceObserver prints a diagnostic line pair for every instruction: the
// stack contents bottom to top, then the disassembly of the instruction
// about to execute.
//
//	          [ 1.200000 ][ 3.400000 ]
//	0004    | OP_ADD
type TraceObserver struct {
	NoOpObserver
	w    io.Writer
	opts []dis.Option
	err  error
}

// NewTraceObserver returns a trace observer writing to w.
func NewTraceObserver(w io.Writer, opts ...dis.Option) *TraceObserver {
	return &TraceObserver{w: w, opts: opts}
}

func (t *TraceObserver) OnStep(event StepEvent) bool {
	var sb strings.Builder
	sb.WriteString("          ")
	for _, value := range event.Stack {
		sb.WriteString("[ ")
		sb.WriteString(value.String())
		sb.WriteString(" ]")
	}
	sb.WriteByte('\n')
	if _, err := io.WriteString(t.w, sb.String()); err != nil {
		t.err = fmt.Errorf("trace: %w", err)
		return false
	}
	if _, err := dis.PrintInstruction(t.w, event.Chunk, event.IP, t.opts...); err != nil {
		t.err = fmt.Errorf("trace: %w", err)
		return false
	}
	return true
}

// Err returns the write or decode error that stopped tracing, if any.
func (t *TraceObserver) Err() error {
	return t.err
}
