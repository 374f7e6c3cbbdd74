package main

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/lox"
	"github.com/deepnoodle-ai/lox/errz"
)

type checkIssue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type checkResult struct {
	Name   string       `json:"name"`
	OK     bool         `json:"ok"`
	Issues []checkIssue `json:"issues"`
}

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Report every scanner error in a source file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.checkHandler,
	}
	cmd.Flags().StringP("code", "c", "", "Code to check")
	return cmd
}

func (a *app) checkHandler(cmd *cobra.Command, args []string) error {
	if err := a.requireFormat("text", "json"); err != nil {
		return err
	}
	in, err := getInput(cmd, args)
	if err != nil {
		return err
	}
	result := checkResult{Name: in.name, Issues: []checkIssue{}}
	checkErr := lox.Check(in.text)
	var merr *multierror.Error
	if errors.As(checkErr, &merr) {
		for _, e := range merr.Errors {
			var se *errz.StructuredError
			if errors.As(e, &se) {
				result.Issues = append(result.Issues, checkIssue{Line: se.Line, Message: se.Message})
			}
		}
	}
	result.OK = len(result.Issues) == 0
	a.log.Debug().Str("input", in.name).Int("issues", len(result.Issues)).Msg("checked")

	out := cmd.OutOrStdout()
	if a.jsonOutput() {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "%s:%d: %s\n", in.name, issue.Line, issue.Message)
		}
	}
	if !result.OK {
		return fmt.Errorf("%s: %d error(s)", in.name, len(result.Issues))
	}
	return nil
}
