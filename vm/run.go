package vm

import (
	"context"

	"github.com/deepnoodle-ai/lox/bytecode"
)

// Run the given chunk in a new Virtual Machine and return the value that
// OP_RETURN produced.
func Run(ctx context.Context, chunk *bytecode.Chunk, options ...Option) (bytecode.Value, error) {
	machine := New(chunk, options...)
	if err := machine.Run(ctx); err != nil {
		return 0, err
	}
	result, _ := machine.Result()
	return result, nil
}
