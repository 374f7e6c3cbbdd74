package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/lox"
	"github.com/deepnoodle-ai/lox/errz"
)

var red = color.New(color.FgRed).SprintFunc()

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

// describeError renders err the way the REPL and the command line report
// it: one "Compilation error: ..." or "Runtime error: ..." line per error.
func describeError(err error) string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		lines := make([]string, len(merr.Errors))
		for i, e := range merr.Errors {
			lines[i] = describeError(e)
		}
		return strings.Join(lines, "\n")
	}
	var se *errz.StructuredError
	if errors.As(err, &se) {
		switch se.Kind {
		case errz.ErrCompile:
			return "Compilation error: " + se.Message
		case errz.ErrRuntime:
			return "Runtime error: " + se.Message
		}
	}
	return err.Error()
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, red(describeError(err)))
}

func getOutputJSON(v any) ([]byte, error) {
	if color.NoColor {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}

func writeJSON(w io.Writer, v any) error {
	data, err := getOutputJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// input is source text and the name it is reported under.
type input struct {
	text string
	name string
}

// getInput determines what text a command works on. There are three
// possibilities:
//  1. --code <code>
//  2. --stdin (read code from stdin)
//  3. path as args[0]
//
// Commands without a --code flag read stdin when no path is given.
func getInput(cmd *cobra.Command, args []string) (input, error) {
	var codeFlagSet bool
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeFlagSet = true
	}
	var stdinFlagSet bool
	if f := cmd.Flags().Lookup("stdin"); f != nil && f.Changed {
		stdinFlagSet = true
	}
	pathSupplied := len(args) > 0
	if pathSupplied && (codeFlagSet || stdinFlagSet) {
		return input{}, errors.New("multiple input sources specified")
	} else if codeFlagSet && stdinFlagSet {
		return input{}, errors.New("multiple input sources specified")
	}
	switch {
	case pathSupplied:
		text, err := lox.ReadFile(args[0])
		if err != nil {
			return input{}, err
		}
		return input{text: text, name: filepath.Base(args[0])}, nil
	case codeFlagSet:
		code, _ := cmd.Flags().GetString("code")
		return input{text: code, name: "code"}, nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return input{}, err
		}
		return input{text: string(data), name: "stdin"}, nil
	}
}
