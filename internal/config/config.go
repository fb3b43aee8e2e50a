package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/danielrainer/fish-shell/internal/input"
	"github.com/danielrainer/fish-shell/internal/input/keymap"
	"github.com/danielrainer/fish-shell/internal/input/mode"
	"github.com/danielrainer/fish-shell/internal/input/query"
	"github.com/danielrainer/fish-shell/internal/input/queue"
)

// Duration is a time.Duration written as a string ("30ms", "1s") in
// configuration files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete key reader configuration.
type Config struct {
	Input    InputConfig    `toml:"input"`
	Logging  LoggingConfig  `toml:"logging"`
	Bindings BindingsConfig `toml:"bindings"`
	Commands CommandsConfig `toml:"commands"`
}

// InputConfig holds the decoding and resolution settings.
type InputConfig struct {
	// EscapeTimeout is how long an incomplete escape sequence waits for its
	// next byte before it is decoded as far as it goes.
	// Default: 30ms
	EscapeTimeout Duration `toml:"escape_timeout"`

	// SequenceTimeout is how long an ambiguous key sequence waits for the
	// next key.
	// Default: 1s
	SequenceTimeout Duration `toml:"sequence_timeout"`

	// QueryTimeout bounds the wait for a terminal query reply.
	// Default: 2s
	QueryTimeout Duration `toml:"query_timeout"`

	// MaxSequenceBytes bounds an incomplete escape sequence.
	// Default: 256
	MaxSequenceBytes int `toml:"max_sequence_bytes"`

	// DefaultMode is the initial binding mode.
	// Default: "default"
	DefaultMode string `toml:"default_mode"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `toml:"level"`

	// File is the log file. Empty means stderr.
	File string `toml:"file"`
}

// BindingsConfig says where bindings come from.
type BindingsConfig struct {
	// Preset is the preset installed before binding files are loaded.
	// Default: "emacs"
	Preset string `toml:"preset"`

	// Files are binding files (TOML, JSON or YAML), loaded in order.
	Files []string `toml:"files"`

	// Watch reloads binding files when they change.
	Watch bool `toml:"watch"`
}

// CommandsConfig holds command settings.
type CommandsConfig struct {
	// Script is a Lua file defining extra commands.
	Script string `toml:"script"`

	// ScriptTimeout bounds each Lua command.
	// Default: 2s
	ScriptTimeout Duration `toml:"script_timeout"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			EscapeTimeout:    Duration{queue.DefaultEscapeTimeout},
			SequenceTimeout:  Duration{input.DefaultSequenceTimeout},
			QueryTimeout:     Duration{query.DefaultTimeout},
			MaxSequenceBytes: queue.DefaultMaxSequenceBytes,
			DefaultMode:      mode.Default,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Bindings: BindingsConfig{
			Preset: keymap.PresetEmacs,
		},
		Commands: CommandsConfig{
			ScriptTimeout: Duration{2 * time.Second},
		},
	}
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	for path, d := range map[string]Duration{
		"input.escape_timeout":    c.Input.EscapeTimeout,
		"input.sequence_timeout":  c.Input.SequenceTimeout,
		"input.query_timeout":     c.Input.QueryTimeout,
		"commands.script_timeout": c.Commands.ScriptTimeout,
	} {
		if d.Duration <= 0 {
			invalid(path, "must be positive", d.Duration)
		}
	}
	if c.Input.MaxSequenceBytes < 2 {
		invalid("input.max_sequence_bytes", "must be at least 2", c.Input.MaxSequenceBytes)
	}
	if err := mode.Validate(c.Input.DefaultMode); err != nil {
		invalid("input.default_mode", err.Error(), c.Input.DefaultMode)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		invalid("logging.level", "unknown level", c.Logging.Level)
	}
	if !slices.Contains(keymap.PresetNames(), c.Bindings.Preset) {
		invalid("bindings.preset", fmt.Sprintf("must be one of %v", keymap.PresetNames()), c.Bindings.Preset)
	}

	// Map iteration order varies; keep the message stable.
	slices.SortFunc(errs, func(a, b error) int {
		return strings.Compare(a.Error(), b.Error())
	})
	return errors.Join(errs...)
}
