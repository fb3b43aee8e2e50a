package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "KEYREADER_"

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envSetter func(c *Config, value string) error

// envMapping maps environment variables to the settings they override.
var envMapping = map[string]envSetter{
	"KEYREADER_ESCAPE_TIMEOUT":     durationSetter(func(c *Config) *Duration { return &c.Input.EscapeTimeout }),
	"KEYREADER_SEQUENCE_TIMEOUT":   durationSetter(func(c *Config) *Duration { return &c.Input.SequenceTimeout }),
	"KEYREADER_QUERY_TIMEOUT":      durationSetter(func(c *Config) *Duration { return &c.Input.QueryTimeout }),
	"KEYREADER_SCRIPT_TIMEOUT":     durationSetter(func(c *Config) *Duration { return &c.Commands.ScriptTimeout }),
	"KEYREADER_MAX_SEQUENCE_BYTES": intSetter(func(c *Config) *int { return &c.Input.MaxSequenceBytes }),
	"KEYREADER_DEFAULT_MODE":       stringSetter(func(c *Config) *string { return &c.Input.DefaultMode }),
	"KEYREADER_LOG_LEVEL":          stringSetter(func(c *Config) *string { return &c.Logging.Level }),
	"KEYREADER_LOG_FILE":           stringSetter(func(c *Config) *string { return &c.Logging.File }),
	"KEYREADER_PRESET":             stringSetter(func(c *Config) *string { return &c.Bindings.Preset }),
	"KEYREADER_SCRIPT":             stringSetter(func(c *Config) *string { return &c.Commands.Script }),
	"KEYREADER_WATCH":              boolSetter(func(c *Config) *bool { return &c.Bindings.Watch }),
	"KEYREADER_BINDINGS":           pathListSetter(func(c *Config) *[]string { return &c.Bindings.Files }),
}

// EnvNames returns the recognized environment variables, sorted.
func EnvNames() []string {
	names := make([]string, 0, len(envMapping))
	for name := range envMapping {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyEnv overrides settings from KEYREADER_ environment variables. Empty
// values are treated as set. Unparseable values are errors.
func ApplyEnv(c *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, name := range EnvNames() {
		val, ok := lookup(name)
		if !ok {
			continue
		}
		if err := envMapping[name](c, val); err != nil {
			return &ParseError{Path: name, Message: err.Error(), Err: err}
		}
	}
	return nil
}

// UnknownEnv returns KEYREADER_ variables in environ ("NAME=value" pairs)
// that map to no setting, so callers can warn about typos.
func UnknownEnv(environ []string) []string {
	var unknown []string
	for _, env := range environ {
		name, _, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if _, known := envMapping[name]; !known {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func durationSetter(field func(*Config) *Duration) envSetter {
	return func(c *Config, s string) error {
		d, err := time.ParseDuration(s)
		if err != nil {
			// Bare numbers are milliseconds.
			ms, intErr := strconv.Atoi(s)
			if intErr != nil {
				return err
			}
			d = time.Duration(ms) * time.Millisecond
		}
		field(c).Duration = d
		return nil
	}
}

func intSetter(field func(*Config) *int) envSetter {
	return func(c *Config, s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func stringSetter(field func(*Config) *string) envSetter {
	return func(c *Config, s string) error {
		*field(c) = s
		return nil
	}
}

func boolSetter(field func(*Config) *bool) envSetter {
	return func(c *Config, s string) error {
		switch strings.ToLower(s) {
		case "1", "true", "yes", "on":
			*field(c) = true
		case "0", "false", "no", "off", "":
			*field(c) = false
		default:
			return fmt.Errorf("invalid boolean %q", s)
		}
		return nil
	}
}

// pathListSetter splits on the OS path list separator.
func pathListSetter(field func(*Config) *[]string) envSetter {
	return func(c *Config, s string) error {
		var paths []string
		for _, p := range filepath.SplitList(s) {
			if p != "" {
				paths = append(paths, p)
			}
		}
		*field(c) = paths
		return nil
	}
}
