package key

import "strings"

// Modifier represents keyboard modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModCtrl indicates the Control key.
	ModCtrl Modifier = 1 << 0

	// ModAlt indicates the Alt key (Option on macOS, or an ESC prefix).
	ModAlt Modifier = 1 << 1

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << 2

	// ModSuper indicates the Super key (Cmd on macOS, Win on Windows).
	ModSuper Modifier = 1 << 3
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasCtrl returns true if Control is pressed.
func (m Modifier) HasCtrl() bool {
	return m.Has(ModCtrl)
}

// HasAlt returns true if Alt is pressed.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// HasShift returns true if Shift is pressed.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasSuper returns true if Super is pressed.
func (m Modifier) HasSuper() bool {
	return m.Has(ModSuper)
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// String returns the modifier prefix in spec form, e.g. "ctrl-alt-".
// The order is fixed (ctrl, alt, shift, super) so equal sets print equally.
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}

	var sb strings.Builder
	if m.HasCtrl() {
		sb.WriteString("ctrl-")
	}
	if m.HasAlt() {
		sb.WriteString("alt-")
	}
	if m.HasShift() {
		sb.WriteString("shift-")
	}
	if m.HasSuper() {
		sb.WriteString("super-")
	}
	return sb.String()
}

// GoString returns a Go expression for the modifier set.
func (m Modifier) GoString() string {
	if m == ModNone {
		return "key.ModNone"
	}

	var parts []string
	if m.HasCtrl() {
		parts = append(parts, "key.ModCtrl")
	}
	if m.HasAlt() {
		parts = append(parts, "key.ModAlt")
	}
	if m.HasShift() {
		parts = append(parts, "key.ModShift")
	}
	if m.HasSuper() {
		parts = append(parts, "key.ModSuper")
	}
	return strings.Join(parts, "|")
}

// modifierNameMap maps modifier names (lowercase) to Modifier values.
var modifierNameMap = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"c":       ModCtrl,
	"alt":     ModAlt,
	"meta":    ModAlt,
	"a":       ModAlt,
	"m":       ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"s":       ModShift,
	"super":   ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"win":     ModSuper,
	"d":       ModSuper,
}

// ModifierFromName returns the Modifier for a given name (case-insensitive).
// Returns ModNone if the name is not recognized.
func ModifierFromName(name string) Modifier {
	return modifierNameMap[strings.ToLower(strings.TrimSpace(name))]
}

// FromXterm decodes the xterm/kitty modifier parameter (1 + bitmask) used in
// sequences such as CSI 1;5A. Values below 2 mean no modifiers.
func FromXterm(param int) Modifier {
	if param < 2 {
		return ModNone
	}
	bits := param - 1

	var m Modifier
	if bits&1 != 0 {
		m = m.With(ModShift)
	}
	if bits&2 != 0 {
		m = m.With(ModAlt)
	}
	if bits&4 != 0 {
		m = m.With(ModCtrl)
	}
	if bits&8 != 0 {
		m = m.With(ModSuper)
	}
	return m
}

// Xterm encodes m as an xterm modifier parameter. It is the inverse of FromXterm.
func (m Modifier) Xterm() int {
	bits := 0
	if m.HasShift() {
		bits |= 1
	}
	if m.HasAlt() {
		bits |= 2
	}
	if m.HasCtrl() {
		bits |= 4
	}
	if m.HasSuper() {
		bits |= 8
	}
	return bits + 1
}
