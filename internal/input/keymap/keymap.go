package keymap

import (
	"errors"
	"fmt"

	"github.com/danielrainer/fish-shell/internal/input/key"
)

// Spec is one binding as written in a binding file or preset list, before
// its key sequence is parsed.
type Spec struct {
	// Mode defaults to the keymap's mode, then to DefaultMode.
	Mode string `json:"mode,omitempty" toml:"mode,omitempty" yaml:"mode,omitempty"`

	// Keys is the key sequence, e.g. "ctrl-x ctrl-s" or "alt-left".
	Keys string `json:"keys" toml:"keys" yaml:"keys"`

	// Commands are run in order.
	Commands []string `json:"commands" toml:"commands" yaml:"commands"`

	// SetsMode switches the mode after the binding fires.
	SetsMode string `json:"sets_mode,omitempty" toml:"sets_mode,omitempty" yaml:"sets_mode,omitempty"`
}

// Keymap is a named set of bindings from one source: a file or a preset.
type Keymap struct {
	// Name identifies the keymap in errors and logs.
	Name string `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`

	// Mode is the default mode for specs that do not name one.
	Mode string `json:"mode,omitempty" toml:"mode,omitempty" yaml:"mode,omitempty"`

	// Preset marks the bindings as presets rather than user bindings.
	Preset bool `json:"preset,omitempty" toml:"preset,omitempty" yaml:"preset,omitempty"`

	// Bindings are the binding specs.
	Bindings []Spec `json:"bindings" toml:"bindings" yaml:"bindings"`

	// Source records where the keymap came from, e.g. a file path.
	Source string `json:"-" toml:"-" yaml:"-"`
}

// NewKeymap creates a keymap with the given name.
func NewKeymap(name string) *Keymap {
	return &Keymap{Name: name}
}

// ForMode sets the default mode for this keymap.
func (k *Keymap) ForMode(mode string) *Keymap {
	k.Mode = mode
	return k
}

// AsPreset marks the keymap's bindings as presets.
func (k *Keymap) AsPreset() *Keymap {
	k.Preset = true
	return k
}

// Add adds a binding.
func (k *Keymap) Add(keys string, commands ...string) *Keymap {
	k.Bindings = append(k.Bindings, Spec{Keys: keys, Commands: commands})
	return k
}

// AddSpec adds a fully configured binding.
func (k *Keymap) AddSpec(s Spec) *Keymap {
	k.Bindings = append(k.Bindings, s)
	return k
}

// SpecError reports a binding spec that could not be parsed or registered.
type SpecError struct {
	Keymap string
	Index  int
	Keys   string
	Err    error
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("%s: binding %d (%q): %v", e.Keymap, e.Index, e.Keys, e.Err)
}

func (e *SpecError) Unwrap() error {
	return e.Err
}

// Parse converts the specs into bindings. All invalid specs are reported,
// joined into one error.
func (k *Keymap) Parse() ([]Binding, error) {
	bindings := make([]Binding, 0, len(k.Bindings))
	var errs []error

	for i, s := range k.Bindings {
		b, err := k.parseSpec(s)
		if err != nil {
			errs = append(errs, &SpecError{Keymap: k.Name, Index: i, Keys: s.Keys, Err: err})
			continue
		}
		bindings = append(bindings, b)
	}
	return bindings, errors.Join(errs...)
}

func (k *Keymap) parseSpec(s Spec) (Binding, error) {
	seq, err := key.ParseSequence(s.Keys)
	if err != nil {
		if errors.Is(err, key.ErrEmptySpec) {
			return Binding{}, ErrEmptySequence
		}
		return Binding{}, err
	}
	if len(s.Commands) == 0 {
		return Binding{}, ErrNoCommands
	}

	mode := s.Mode
	if mode == "" {
		mode = k.Mode
	}
	if mode == "" {
		mode = DefaultMode
	}
	return Binding{
		Sequence: seq,
		Mode:     mode,
		Commands: s.Commands,
		SetsMode: s.SetsMode,
		User:     !k.Preset,
	}, nil
}

// Validate checks that every spec parses.
func (k *Keymap) Validate() error {
	_, err := k.Parse()
	return err
}

// Apply registers the keymap's valid bindings into t and returns the errors
// of the invalid ones. A preset binding never replaces a user binding for the
// same sequence.
func (k *Keymap) Apply(t *Table) error {
	bindings, err := k.Parse()
	for _, b := range bindings {
		if !b.User {
			if cur := t.Lookup(b.Mode, b.Sequence); cur != nil && cur.User {
				continue
			}
		}
		// Parse has already rejected what Register would.
		_ = t.Add(b)
	}
	return err
}

// Clone creates a deep copy of the keymap.
func (k *Keymap) Clone() *Keymap {
	c := *k
	c.Bindings = make([]Spec, len(k.Bindings))
	for i, s := range k.Bindings {
		s.Commands = append([]string(nil), s.Commands...)
		c.Bindings[i] = s
	}
	return &c
}
