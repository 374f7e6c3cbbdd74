// Package config handles lox.toml configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"
)

// FileName is the name of the configuration file searched for in the
// working directory. In the home directory it is hidden: ~/.lox.toml.
const FileName = "lox.toml"

// MaxStackSize bounds [vm] stack_size.
const MaxStackSize = 1 << 20

// Config represents a lox.toml configuration.
type Config struct {
	LogLevel string       `toml:"log_level"`
	VM       VMConfig     `toml:"vm"`
	Output   OutputConfig `toml:"output"`

	// Path is the file the configuration was loaded from, empty for the
	// built-in defaults.
	Path string `toml:"-"`
}

// VMConfig configures the virtual machine.
type VMConfig struct {
	StackSize            int  `toml:"stack_size"`
	Trace                bool `toml:"trace"`
	ContextCheckInterval int  `toml:"context_check_interval"`
}

// OutputConfig configures terminal output.
type OutputConfig struct {
	// Color is "auto", "always" or "never".
	Color string `toml:"color"`
	// Format is "text", "json" or "asm". Commands reject formats they
	// cannot produce.
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		VM: VMConfig{
			StackSize:            256,
			ContextCheckInterval: 1000,
		},
		Output: OutputConfig{
			Color:  "auto",
			Format: "text",
		},
	}
}

// Load parses the configuration file at path. Keys missing from the file
// keep their default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes configuration text over the defaults and validates it.
func Parse(text string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find loads the configuration from explicit when it is set. Otherwise it
// tries ./lox.toml and then ~/.lox.toml, falling back to Default when
// neither exists.
func Find(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	candidates := []string{FileName}
	if home, err := homedir.Dir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "."+FileName))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return Default(), nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.VM.StackSize < 1 || c.VM.StackSize > MaxStackSize {
		return fmt.Errorf("vm.stack_size must be between 1 and %d, got %d", MaxStackSize, c.VM.StackSize)
	}
	if c.VM.ContextCheckInterval < 0 {
		return fmt.Errorf("vm.context_check_interval must not be negative, got %d", c.VM.ContextCheckInterval)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid output.color %q", c.Output.Color)
	}
	switch c.Output.Format {
	case "text", "json", "asm":
	default:
		return fmt.Errorf("invalid output.format %q", c.Output.Format)
	}
	return nil
}
