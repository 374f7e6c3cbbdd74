package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/lox/asm"
	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/dis"
)

type disResult struct {
	Name         string            `json:"name"`
	ImageID      string            `json:"image_id,omitempty"`
	Stats        bytecode.Stats    `json:"stats"`
	Instructions []dis.Instruction `json:"instructions"`
}

func newDisCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble a chunk from assembly text or a " + ImageExt + " image",
		Long: `Disassemble a chunk from assembly text or a ` + ImageExt + ` image.

The text format prints one line per instruction. The json format adds
chunk statistics, and the asm format prints assembly text that the asm
command accepts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.disHandler,
	}
}

func (a *app) disHandler(cmd *cobra.Command, args []string) error {
	if err := a.requireFormat("text", "json", "asm"); err != nil {
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
	name := chunkName(in)
	var id string
	if img != nil {
		name = img.Name
		id = img.ID
	}

	out := cmd.OutOrStdout()
	switch a.cfg.Output.Format {
	case "json":
		instructions, err := dis.Disassemble(chunk)
		if err != nil {
			return err
		}
		return writeJSON(out, disResult{
			Name:         name,
			ImageID:      id,
			Stats:        chunk.Stats(),
			Instructions: instructions,
		})
	case "asm":
		text, err := asm.Format(chunk)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, text)
		return err
	default:
		return dis.Print(out, chunk, name, dis.WithColor(!color.NoColor))
	}
}
