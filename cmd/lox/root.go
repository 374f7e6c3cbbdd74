package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var outputFormatsCompletion = []string{"json", "text", "asm"}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "lox [file]",
		Short: "Scan lox source and run lox bytecode",
		Long: `Scan lox source and run lox bytecode.

With a file argument the file is scanned and its tokens are echoed. With no
argument and a terminal on stdin and stdout an interactive REPL starts;
otherwise stdin is read and scanned once. With --repl, piped stdin is read
one line at a time as a REPL session.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: a.runHandler,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a lox.toml configuration file")
	pf.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.StringP("output", "o", "", "Output format (text, json, asm)")
	pf.Int("stack-size", 0, "VM stack capacity")
	pf.Bool("trace", false, "Trace VM execution")
	root.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp))

	root.Flags().StringP("code", "c", "", "Code to scan")
	root.Flags().Bool("stdin", false, "Read code from stdin")
	root.Flags().Bool("no-repl", false, "Disable the REPL")
	root.Flags().Bool("repl", false, "Run the line REPL on stdin even when it is not a terminal")

	viper.SetEnvPrefix("lox")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"config", "log-level", "no-color", "output", "stack-size", "trace"} {
		viper.BindPFlag(name, pf.Lookup(name))
	}
	for _, name := range []string{"code", "stdin", "no-repl", "repl"} {
		viper.BindPFlag(name, root.Flags().Lookup(name))
	}

	root.AddCommand(
		newCheckCmd(a),
		newTokensCmd(a),
		newAsmCmd(a),
		newExecCmd(a),
		newDisCmd(a),
		newVersionCmd(),
	)
	return root
}
