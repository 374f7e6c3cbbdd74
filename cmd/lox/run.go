package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/lox"
)

func (a *app) shouldRunRepl(cmd *cobra.Command, args []string) bool {
	if viper.GetBool("no-repl") || viper.GetBool("stdin") {
		return false
	}
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		return false
	}
	if len(args) > 0 {
		return false
	}
	return viper.GetBool("repl") || isInteractive(cmd)
}

// isInteractive reports whether the command reads the process stdin and
// both stdin and stdout are terminals.
func isInteractive(cmd *cobra.Command) bool {
	return cmd.InOrStdin() == io.Reader(os.Stdin) && isTerminalIO()
}

func (a *app) runHandler(cmd *cobra.Command, args []string) error {
	if a.shouldRunRepl(cmd, args) {
		if isInteractive(cmd) {
			a.log.Debug().Msg("starting interactive repl")
			return a.runInteractiveRepl(cmd.Context())
		}
		a.log.Debug().Msg("starting line repl")
		return a.runRepl(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	a.log.Debug().Str("input", in.name).Int("bytes", len(in.text)).Msg("interpreting")
	return lox.Interpret(cmd.Context(), in.text, a.loxOptions(cmd.OutOrStdout(), cmd.OutOrStdout())...)
}
