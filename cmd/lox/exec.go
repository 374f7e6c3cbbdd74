package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/lox/vm"
)

type execResult struct {
	Name    string `json:"name"`
	ImageID string `json:"image_id,omitempty"`
	Value   string `json:"value"`
	Steps   int64  `json:"steps"`
}

func newExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec [file]",
		Short: "Run a chunk from assembly text or a " + ImageExt + " image",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.execHandler,
	}
}

func (a *app) execHandler(cmd *cobra.Command, args []string) error {
	if err := a.requireFormat("text", "json"); err != nil {
		return err
	}
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	chunk, img, err := loadChunk(in)
	if err != nil {
		return err
	}
	result := execResult{Name: chunkName(in)}
	if img != nil {
		result.ImageID = img.ID
		result.Name = img.Name
	}
	stats := chunk.Stats()
	a.log.Debug().Str("name", result.Name).Str("id", result.ImageID).
		Int("instructions", stats.InstructionCount).Int("constants", stats.ConstantCount).
		Msg("chunk loaded")

	out := cmd.OutOrStdout()
	vmOut, traceOut := out, out
	if a.jsonOutput() {
		// Keep stdout a single JSON document
		vmOut = io.Discard
		traceOut = cmd.ErrOrStderr()
	}
	opts := []vm.Option{
		vm.WithOutput(vmOut),
		vm.WithStackSize(a.cfg.VM.StackSize),
		vm.WithContextCheckInterval(a.cfg.VM.ContextCheckInterval),
	}
	if a.cfg.VM.Trace {
		opts = append(opts, vm.WithTrace(traceOut))
	}
	machine := vm.New(chunk, opts...)
	if err := machine.Run(cmd.Context()); err != nil {
		return err
	}
	value, _ := machine.Result()
	result.Value = value.String()
	result.Steps = machine.Steps()
	a.log.Debug().Str("value", result.Value).Int64("steps", result.Steps).Msg("run finished")

	if a.jsonOutput() {
		return writeJSON(out, result)
	}
	return nil
}
