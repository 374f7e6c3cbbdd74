package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/lox"
)

const replBanner = "Lox REPL (press Ctrl+D or Ctrl+Z to finish):"

// runRepl is the line REPL used when stdin is not a terminal. It
// interprets one line at a time until in is exhausted. Errors are reported
// to errOut and the loop continues with the next line.
func (a *app) runRepl(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	fmt.Fprintln(out, replBanner)
	scanner := bufio.NewScanner(in)
	opts := a.loxOptions(out, out)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if err := lox.Interpret(ctx, line, opts...); err != nil {
			a.log.Debug().Err(err).Msg("line failed")
			printError(errOut, err)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "Error reading line: %v\n", err)
	}
	fmt.Fprintln(out)
	return nil
}
