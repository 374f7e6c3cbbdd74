package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/lox"
	"github.com/deepnoodle-ai/lox/config"
)

// app holds what every command needs once flags and configuration are
// resolved.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

// init loads lox.toml, overlays flags and LOX_* environment variables,
// then sets up colors and logging.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Find(viper.GetString("config"))
	if err != nil {
		return err
	}
	if viper.IsSet("log-level") {
		cfg.LogLevel = viper.GetString("log-level")
	}
	if viper.IsSet("stack-size") {
		cfg.VM.StackSize = viper.GetInt("stack-size")
	}
	if viper.IsSet("trace") {
		cfg.VM.Trace = viper.GetBool("trace")
	}
	if viper.IsSet("output") {
		cfg.Output.Format = strings.ToLower(viper.GetString("output"))
	}
	if viper.GetBool("no-color") {
		cfg.Output.Color = "never"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	switch cfg.Output.Color {
	case "never":
		color.NoColor = true
	case "always":
		color.NoColor = false
	}

	a.log, err = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	source := cfg.Path
	if source == "" {
		source = "defaults"
	}
	a.log.Debug().Str("config", source).Int("stack_size", cfg.VM.StackSize).
		Bool("trace", cfg.VM.Trace).Msg("configuration loaded")
	return nil
}

// loxOptions returns the interpreter options implied by the configuration.
func (a *app) loxOptions(out, trace io.Writer) []lox.Option {
	opts := []lox.Option{
		lox.WithOutput(out),
		lox.WithStackSize(a.cfg.VM.StackSize),
		lox.WithContextCheckInterval(a.cfg.VM.ContextCheckInterval),
	}
	if a.cfg.VM.Trace {
		opts = append(opts, lox.WithTrace(trace))
	}
	return opts
}

func (a *app) jsonOutput() bool {
	return a.cfg.Output.Format == "json"
}

func (a *app) requireFormat(formats ...string) error {
	for _, f := range formats {
		if a.cfg.Output.Format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q (want %s)", a.cfg.Output.Format, strings.Join(formats, " or "))
}
