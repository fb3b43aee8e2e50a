package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into a Key.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@", "-"
//   - Named keys: "enter", "escape", "tab", "backspace", "up", "f5"
//   - Dash-separated modifiers: "ctrl-x", "alt-left", "ctrl-alt-shift-f5", "alt--"
//   - Character names: "space", "minus", "comma"
//   - Vim-style: "<C-s>", "<A-f>", "<C-S-p>", "<CR>", "<Esc>"
//   - Plus-separated modifiers: "Ctrl+S", "Alt+F4"
func Parse(spec string) (Key, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Key{}, ErrEmptySpec
	}

	if utf8.RuneCountInString(spec) == 1 {
		r, _ := utf8.DecodeRuneInString(spec)
		return Char(r, ModNone), nil
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseVimStyle(spec[1 : len(spec)-1])
	}

	if strings.Contains(spec, "+") && !strings.HasSuffix(spec, "+") {
		return parseSeparated(spec, "+")
	}

	// "alt--" binds alt plus the minus character.
	if strings.HasSuffix(spec, "--") {
		mods, err := parseModifierList(strings.Split(spec[:len(spec)-2], "-"))
		if err != nil {
			return Key{}, err
		}
		return Char('-', mods), nil
	}

	return parseSeparated(spec, "-")
}

// parseVimStyle parses the inside of Vim-style notation like "C-s", "A-F4", "CR", "Esc".
func parseVimStyle(inner string) (Key, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Key{}, ErrInvalidSpec
	}

	parts := strings.Split(inner, "-")
	if len(parts) == 1 {
		return parseKeyWithModifiers(parts[0], ModNone)
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "c":
			mods = mods.With(ModCtrl)
		case "a", "m":
			mods = mods.With(ModAlt)
		case "s":
			mods = mods.With(ModShift)
		case "d":
			mods = mods.With(ModSuper)
		default:
			return Key{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
	}
	return parseKeyWithModifiers(parts[len(parts)-1], mods)
}

// parseSeparated parses "mod<sep>mod<sep>key".
func parseSeparated(spec, sep string) (Key, error) {
	parts := strings.Split(spec, sep)
	mods, err := parseModifierList(parts[:len(parts)-1])
	if err != nil {
		return Key{}, err
	}
	return parseKeyWithModifiers(parts[len(parts)-1], mods)
}

func parseModifierList(parts []string) (Modifier, error) {
	var mods Modifier
	for _, p := range parts {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return ModNone, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}
	return mods, nil
}

// parseKeyWithModifiers parses a key part with already-known modifiers.
func parseKeyWithModifiers(keyPart string, mods Modifier) (Key, error) {
	keyPart = strings.TrimSpace(keyPart)
	if keyPart == "" {
		return Key{}, ErrInvalidSpec
	}

	lower := strings.ToLower(keyPart)

	// Vim aliases for characters that cannot appear literally inside <...>.
	switch lower {
	case "lt":
		return Char('<', mods), nil
	case "gt":
		return Char('>', mods), nil
	case "bar":
		return Char('|', mods), nil
	case "bslash":
		return Char('\\', mods), nil
	}

	if r, ok := runeFromName[lower]; ok {
		return Char(r, mods), nil
	}
	if name := NameFromString(lower); name != NameNone {
		return Named(name, mods), nil
	}

	if utf8.RuneCountInString(keyPart) == 1 {
		r, _ := utf8.DecodeRuneInString(keyPart)
		if mods.HasCtrl() {
			r = unicode.ToLower(r)
		}
		return Char(r, mods), nil
	}

	return Key{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Key {
	k, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return k
}

// NormalizeSpec parses and re-formats a key specification to its canonical form.
func NormalizeSpec(spec string) (string, error) {
	k, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return k.String(), nil
}
