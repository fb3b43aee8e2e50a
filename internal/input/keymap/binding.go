package keymap

import (
	"strings"

	"github.com/danielrainer/fish-shell/internal/input/key"
)

// DefaultMode is the mode bindings go to when none is given.
const DefaultMode = "default"

// Binding maps a key sequence, within one mode, to a list of commands.
type Binding struct {
	// Sequence is the key sequence that triggers this binding. Never empty.
	Sequence key.Sequence

	// Mode is the mode the binding is active in.
	Mode string

	// Commands are handed to the dispatcher in order.
	Commands []string

	// SetsMode is the mode to switch to after the binding fires, or "".
	SetsMode string

	// User distinguishes user bindings from presets.
	User bool
}

// Clone returns a deep copy.
func (b *Binding) Clone() *Binding {
	if b == nil {
		return nil
	}
	c := *b
	c.Sequence = b.Sequence.Clone()
	c.Commands = append([]string(nil), b.Commands...)
	return &c
}

// String renders the binding as a bind command line, e.g.
// "bind --mode insert --sets-mode default escape repaint".
func (b *Binding) String() string {
	var sb strings.Builder
	sb.WriteString("bind")
	if !b.User {
		sb.WriteString(" --preset")
	}
	if b.Mode != DefaultMode {
		sb.WriteString(" --mode ")
		sb.WriteString(b.Mode)
	}
	if b.SetsMode != "" {
		sb.WriteString(" --sets-mode ")
		sb.WriteString(b.SetsMode)
	}
	for i, k := range b.Sequence {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteByte(',')
		}
		sb.WriteString(k.String())
	}
	for _, c := range b.Commands {
		sb.WriteByte(' ')
		sb.WriteString(c)
	}
	return sb.String()
}
