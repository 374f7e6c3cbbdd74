package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/lox/asm"
	"github.com/deepnoodle-ai/lox/bytecode"
)

type asmResult struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Path   string         `json:"path"`
	Stats  bytecode.Stats `json:"stats"`
	Format string         `json:"format"`
}

func newAsmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asm [file]",
		Short: "Assemble a chunk into a " + ImageExt + " image",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.asmHandler,
	}
	cmd.Flags().StringP("write", "w", "", "Image path (default: input name with "+ImageExt+")")
	return cmd
}

func (a *app) asmHandler(cmd *cobra.Command, args []string) error {
	if err := a.requireFormat("text", "json"); err != nil {
		return err
	}
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	chunk, err := asm.AssembleString(in.text)
	if err != nil {
		return err
	}
	if err := chunk.Validate(); err != nil {
		return err
	}
	name := chunkName(in)
	img, err := bytecode.NewImage(name, chunk)
	if err != nil {
		return err
	}
	data, err := bytecode.MarshalImage(img)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("write")
	if path == "" {
		path = name + ImageExt
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	a.log.Debug().Str("id", img.ID).Str("path", path).Int("bytes", len(data)).Msg("image written")

	out := cmd.OutOrStdout()
	if a.jsonOutput() {
		return writeJSON(out, asmResult{
			ID:     img.ID,
			Name:   img.Name,
			Path:   path,
			Stats:  chunk.Stats(),
			Format: "cbor",
		})
	}
	stats := chunk.Stats()
	fmt.Fprintf(out, "%s: %d instructions, %d constants, %d bytes\n",
		path, stats.InstructionCount, stats.ConstantCount, len(data))
	return nil
}
