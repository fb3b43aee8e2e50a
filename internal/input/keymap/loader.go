package keymap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Format is a binding file format.
type Format int

const (
	FormatTOML Format = iota
	FormatJSON
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ErrUnknownFormat is returned for files with an unrecognized extension.
var ErrUnknownFormat = errors.New("unknown binding file format")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// LoadError wraps an error with the binding file it came from.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader loads keymaps from binding files.
type Loader struct {
	// searchPaths are directories to search for binding files.
	searchPaths []string

	logger *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the loader's logger.
func WithLoaderLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// NewLoader creates a new loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddSearchPath adds a directory to search for binding files.
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// LoadFile loads a keymap from a file. Errors are *LoadError.
func (l *Loader) LoadFile(path string) (*Keymap, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	km, err := l.LoadReader(f, format)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	km.Source = path
	if km.Name == "" {
		km.Name = filepath.Base(path)
	}
	return km, nil
}

// LoadReader decodes a keymap. Unknown fields are rejected so typos in
// binding files surface as errors.
func (l *Loader) LoadReader(r io.Reader, format Format) (*Keymap, error) {
	var km Keymap

	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&km); err != nil {
			return nil, fmt.Errorf("decoding toml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&km); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&km); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return nil, ErrUnknownFormat
	}
	return &km, nil
}

// Files returns the binding files in the search paths.
func (l *Loader) Files() []string {
	var files []string
	for _, dir := range l.searchPaths {
		for _, pattern := range []string{"*.toml", "*.json", "*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				continue
			}
			files = append(files, matches...)
		}
	}
	return files
}

// LoadAll loads every binding file in the search paths. Files that fail are
// logged and skipped; their errors are returned joined.
func (l *Loader) LoadAll() ([]*Keymap, error) {
	return l.LoadFiles(l.Files()...)
}

// LoadFiles loads the given files, skipping those that fail.
func (l *Loader) LoadFiles(paths ...string) ([]*Keymap, error) {
	keymaps := make([]*Keymap, 0, len(paths))
	var errs []error

	for _, path := range paths {
		km, err := l.LoadFile(path)
		if err != nil {
			l.logger.Warn("skipping binding file", zap.String("path", path), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		keymaps = append(keymaps, km)
	}
	return keymaps, errors.Join(errs...)
}

// LoadInto loads the given files and registers their bindings into t.
// Valid bindings are registered even when other files or specs fail.
func (l *Loader) LoadInto(t *Table, paths ...string) error {
	keymaps, err := l.LoadFiles(paths...)
	errs := []error{err}

	for _, km := range keymaps {
		if applyErr := km.Apply(t); applyErr != nil {
			errs = append(errs, &LoadError{Path: km.Source, Err: applyErr})
		}
		l.logger.Debug("loaded bindings",
			zap.String("path", km.Source),
			zap.Int("specs", len(km.Bindings)))
	}
	return errors.Join(errs...)
}
