package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Load builds the configuration: defaults, then the TOML file at path (if
// path is not empty), then KEYREADER_ environment overrides. The result is
// validated.
//
// Relative binding files and scripts in the file are resolved against the
// file's directory.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := c.decode(path, bytes.NewReader(data)); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	for i, f := range c.Bindings.Files {
		c.Bindings.Files[i] = resolve(dir, f)
	}
	if c.Commands.Script != "" {
		c.Commands.Script = resolve(dir, c.Commands.Script)
	}
	return nil
}

// LoadReader decodes TOML from r over the defaults. It does not apply
// environment overrides or validate.
func LoadReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode("<reader>", r); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays TOML onto c. Unknown keys are errors.
func (c *Config) decode(source string, r io.Reader) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}

		var decErr *toml.DecodeError
		var strictErr *toml.StrictMissingError
		switch {
		case errors.As(err, &decErr):
			perr.Line, perr.Column = decErr.Position()
		case errors.As(err, &strictErr) && len(strictErr.Errors) > 0:
			perr.Line, perr.Column = strictErr.Errors[0].Position()
			perr.Message = "unknown setting " + strings.Join(strictErr.Errors[0].Key(), ".")
		}
		return perr
	}
	return nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
