package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/lox"
)

func newTokensCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "List the tokens of a source file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.tokensHandler,
	}
	cmd.Flags().StringP("code", "c", "", "Code to scan")
	return cmd
}

func (a *app) tokensHandler(cmd *cobra.Command, args []string) error {
	if err := a.requireFormat("text", "json"); err != nil {
		return err
	}
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	tokens, scanErr := lox.Tokenize(in.text)
	out := cmd.OutOrStdout()
	if a.jsonOutput() {
		if err := writeJSON(out, tokens); err != nil {
			return err
		}
	} else {
		for _, tok := range tokens {
			fmt.Fprintf(out, "%4d %s\n", tok.Line, tok)
		}
	}
	return scanErr
}
