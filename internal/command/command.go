package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/danielrainer/fish-shell/internal/input/key"
)

// Command errors
var (
	ErrUnknownCommand    = errors.New("unknown command")
	ErrEmptyCommand      = errors.New("empty command")
	ErrUnterminatedQuote = errors.New("unterminated quote")
)

// Invocation is one command about to run.
type Invocation struct {
	// Name is the command name, the first word of the command line.
	Name string

	// Args are the remaining words.
	Args []string

	// Mode is the mode the binding matched in.
	Mode string

	// Keys are the keys that triggered the command.
	Keys key.Sequence
}

// Handler runs a command.
type Handler interface {
	Run(ctx context.Context, inv Invocation) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, inv Invocation) error

// Run implements Handler.
func (f HandlerFunc) Run(ctx context.Context, inv Invocation) error {
	return f(ctx, inv)
}

// Split breaks a command line into its name and arguments. Words are
// separated by whitespace; single quotes keep text literal, double quotes
// allow backslash escapes.
func Split(line string) (name string, args []string, err error) {
	words, err := splitWords(line)
	if err != nil {
		return "", nil, err
	}
	if len(words) == 0 {
		return "", nil, ErrEmptyCommand
	}
	return words[0], words[1:], nil
}

func splitWords(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote == '"':
			if r == '"' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, fmt.Errorf("%w in %q", ErrUnterminatedQuote, line)
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
