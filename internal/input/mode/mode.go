package mode

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Default is the mode a session starts in unless configured otherwise.
const Default = "default"

// ErrInvalidName is returned for mode names that cannot be used.
var ErrInvalidName = errors.New("invalid mode name")

// Validate checks that name can be used as a mode: non-empty, without
// whitespace or control characters.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if i := strings.IndexFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}); i >= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Change describes a mode transition.
type Change struct {
	From string
	To   string
}

func (c Change) String() string {
	return c.From + " -> " + c.To
}
