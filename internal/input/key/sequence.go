package key

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sequence is an ordered series of keys that together trigger a binding.
// Examples: "ctrl-x ctrl-s", "g g", "alt-left".
type Sequence []Key

// Seq builds a sequence from keys.
func Seq(keys ...Key) Sequence {
	return Sequence(keys)
}

// Len returns the number of keys in the sequence.
func (s Sequence) Len() int {
	return len(s)
}

// IsEmpty returns true if the sequence has no keys.
func (s Sequence) IsEmpty() bool {
	return len(s) == 0
}

// Equal returns true if two sequences contain the same keys in the same order.
func (s Sequence) Equal(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i, k := range s {
		if k != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix returns true if s starts with prefix. Every sequence has the
// empty prefix, and every sequence is a prefix of itself.
func (s Sequence) HasPrefix(prefix Sequence) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, k := range prefix {
		if s[i] != k {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share storage with s.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Append returns a new sequence with keys appended.
func (s Sequence) Append(keys ...Key) Sequence {
	out := make(Sequence, 0, len(s)+len(keys))
	out = append(out, s...)
	return append(out, keys...)
}

// String returns the space-separated spec form, e.g. "ctrl-x ctrl-s".
func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = k.String()
	}
	return strings.Join(parts, " ")
}

// AsText returns the sequence as plain text if every key is an unmodified
// character.
func (s Sequence) AsText() (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	var sb strings.Builder
	for _, k := range s {
		if !k.IsPlain() {
			return "", false
		}
		sb.WriteRune(k.Rune)
	}
	return sb.String(), true
}

// ParseSequence parses a key sequence string.
//
// Tokens are separated by whitespace or commas. A token that parses as one
// key spec ("ctrl-x", "up", "space", "<C-s>") is one key; a token containing
// Vim-style "<...>" groups is read continuously ("<C-x><C-s>", "d<CR>");
// any other token is one key per character ("gg", "qqqqqqqa").
func ParseSequence(s string) (Sequence, error) {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(tokens) == 0 {
		return nil, ErrEmptySpec
	}

	var seq Sequence
	for _, tok := range tokens {
		k, err := Parse(tok)
		switch {
		case err == nil:
			seq = append(seq, k)
		case strings.ContainsRune(tok, '<'):
			keys, err := parseContinuous(tok)
			if err != nil {
				return nil, err
			}
			seq = append(seq, keys...)
		case looksLikeSpec(tok):
			return nil, err
		default:
			for _, r := range tok {
				seq = append(seq, Char(r, ModNone))
			}
		}
	}
	return seq, nil
}

// looksLikeSpec reports whether a token that failed to parse was meant as a
// modified key ("ctrl-q", "ctrl+q") rather than literal text.
func looksLikeSpec(tok string) bool {
	for _, sep := range []string{"-", "+"} {
		if i := strings.Index(tok, sep); i > 0 && ModifierFromName(tok[:i]) != ModNone {
			return true
		}
	}
	return false
}

// parseContinuous reads a token mixing literal characters and <...> groups.
func parseContinuous(tok string) (Sequence, error) {
	var seq Sequence
	for i := 0; i < len(tok); {
		if tok[i] == '<' {
			if end := strings.IndexByte(tok[i:], '>'); end > 1 {
				k, err := Parse(tok[i : i+end+1])
				if err != nil {
					return nil, err
				}
				seq = append(seq, k)
				i += end + 1
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(tok[i:])
		seq = append(seq, Char(r, ModNone))
		i += size
	}
	return seq, nil
}

// MustParseSequence parses a sequence string and panics on error.
// Use only for known-valid sequences in initialization code.
func MustParseSequence(s string) Sequence {
	seq, err := ParseSequence(s)
	if err != nil {
		panic("invalid key sequence: " + s + ": " + err.Error())
	}
	return seq
}
