package key

import (
	"fmt"
	"strings"
)

// Name identifies a named (non-character) key.
// Character keys use NameNone and carry their code point in Key.Rune.
type Name uint8

const (
	// NameNone marks a character key.
	NameNone Name = iota

	// Special keys
	NameEscape
	NameEnter
	NameTab
	NameBackspace
	NameDelete
	NameInsert
	NameHome
	NameEnd
	NamePageUp
	NamePageDown

	// Arrow keys
	NameUp
	NameDown
	NameLeft
	NameRight

	// Function keys
	NameF1
	NameF2
	NameF3
	NameF4
	NameF5
	NameF6
	NameF7
	NameF8
	NameF9
	NameF10
	NameF11
	NameF12
)

var nameStrings = [...]string{
	NameNone:      "",
	NameEscape:    "escape",
	NameEnter:     "enter",
	NameTab:       "tab",
	NameBackspace: "backspace",
	NameDelete:    "delete",
	NameInsert:    "insert",
	NameHome:      "home",
	NameEnd:       "end",
	NamePageUp:    "pageup",
	NamePageDown:  "pagedown",
	NameUp:        "up",
	NameDown:      "down",
	NameLeft:      "left",
	NameRight:     "right",
	NameF1:        "f1",
	NameF2:        "f2",
	NameF3:        "f3",
	NameF4:        "f4",
	NameF5:        "f5",
	NameF6:        "f6",
	NameF7:        "f7",
	NameF8:        "f8",
	NameF9:        "f9",
	NameF10:       "f10",
	NameF11:       "f11",
	NameF12:       "f12",
}

// String returns the canonical lowercase name of the key.
func (n Name) String() string {
	if int(n) < len(nameStrings) {
		return nameStrings[n]
	}
	return fmt.Sprintf("Name(%d)", n)
}

// IsFunctionKey returns true if this is a function key (F1-F12).
func (n Name) IsFunctionKey() bool {
	return n >= NameF1 && n <= NameF12
}

// IsArrowKey returns true if this is an arrow key.
func (n Name) IsArrowKey() bool {
	return n >= NameUp && n <= NameRight
}

// FunctionKey returns the name of function key Fn, or NameNone if n is out of range.
func FunctionKey(n int) Name {
	if n < 1 || n > 12 {
		return NameNone
	}
	return NameF1 + Name(n-1)
}

// nameMap maps key names (lowercase) to Name values, including aliases.
var nameMap = map[string]Name{
	"escape":    NameEscape,
	"esc":       NameEscape,
	"enter":     NameEnter,
	"return":    NameEnter,
	"cr":        NameEnter,
	"tab":       NameTab,
	"backspace": NameBackspace,
	"bs":        NameBackspace,
	"delete":    NameDelete,
	"del":       NameDelete,
	"insert":    NameInsert,
	"ins":       NameInsert,
	"home":      NameHome,
	"end":       NameEnd,
	"pageup":    NamePageUp,
	"pgup":      NamePageUp,
	"pagedown":  NamePageDown,
	"pgdn":      NamePageDown,
	"up":        NameUp,
	"down":      NameDown,
	"left":      NameLeft,
	"right":     NameRight,
	"f1":        NameF1,
	"f2":        NameF2,
	"f3":        NameF3,
	"f4":        NameF4,
	"f5":        NameF5,
	"f6":        NameF6,
	"f7":        NameF7,
	"f8":        NameF8,
	"f9":        NameF9,
	"f10":       NameF10,
	"f11":       NameF11,
	"f12":       NameF12,
}

// NameFromString returns the Name for a key name (case-insensitive).
// Returns NameNone if the name is not recognized.
func NameFromString(s string) Name {
	return nameMap[strings.ToLower(strings.TrimSpace(s))]
}

// runeNames are characters that print as a word so they survive the "-" separator.
var runeNames = map[rune]string{
	' ': "space",
	'-': "minus",
	',': "comma",
}

var runeFromName = map[string]rune{
	"space": ' ',
	"minus": '-',
	"comma": ',',
}

// Key is the normalized identity of one logical keystroke: a character or a
// named key, each with a modifier set. Keys are comparable with ==.
type Key struct {
	// Name is the named key, or NameNone for character keys.
	Name Name

	// Rune is the code point for character keys.
	Rune rune

	// Mods holds the modifier flags.
	Mods Modifier
}

// Char creates a character key.
func Char(r rune, mods Modifier) Key {
	return Key{Rune: r, Mods: mods}
}

// Named creates a named key.
func Named(name Name, mods Modifier) Key {
	return Key{Name: name, Mods: mods}
}

// Ctrl is shorthand for a control-modified character.
func Ctrl(r rune) Key {
	return Char(r, ModCtrl)
}

// Alt is shorthand for an alt-modified character.
func Alt(r rune) Key {
	return Char(r, ModAlt)
}

// IsChar returns true if this is a character key.
func (k Key) IsChar() bool {
	return k.Name == NameNone
}

// IsNamed returns true if this is a named key.
func (k Key) IsNamed() bool {
	return k.Name != NameNone
}

// IsPlain returns true for an unmodified character, the kind of key that
// self-inserts when nothing is bound to it.
func (k Key) IsPlain() bool {
	return k.IsChar() && k.Mods == ModNone
}

// WithMods returns a copy of k with mods added.
func (k Key) WithMods(mods Modifier) Key {
	k.Mods = k.Mods.With(mods)
	return k
}

// String returns the canonical spec form, e.g. "a", "ctrl-x", "alt-left", "shift-tab".
// Parse(k.String()) == k for every key the parser can produce.
func (k Key) String() string {
	var sb strings.Builder
	sb.WriteString(k.Mods.String())

	switch {
	case k.IsNamed():
		sb.WriteString(k.Name.String())
	case runeNames[k.Rune] != "" && (k.Mods != ModNone || k.Rune != '-'):
		sb.WriteString(runeNames[k.Rune])
	default:
		sb.WriteRune(k.Rune)
	}
	return sb.String()
}

// GoString implements fmt.GoStringer for debugging.
func (k Key) GoString() string {
	if k.IsNamed() {
		return fmt.Sprintf("key.Named(%s, %s)", k.Name, k.Mods.GoString())
	}
	return fmt.Sprintf("key.Char(%q, %s)", k.Rune, k.Mods.GoString())
}

// Compare orders keys: character keys before named keys, then by code point
// or name, then by modifiers.
func Compare(a, b Key) int {
	switch {
	case a.Name != b.Name:
		if a.Name < b.Name {
			return -1
		}
		return 1
	case a.Rune != b.Rune:
		if a.Rune < b.Rune {
			return -1
		}
		return 1
	case a.Mods != b.Mods:
		if a.Mods < b.Mods {
			return -1
		}
		return 1
	}
	return 0
}
