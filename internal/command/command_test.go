package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		line string
		name string
		args []string
	}{
		{"execute", "execute", []string{}},
		{"  kill-word  ", "kill-word", []string{}},
		{"commandline -i ' '", "commandline", []string{"-i", " "}},
		{`commandline -i "a \"b\""`, "commandline", []string{"-i", `a "b"`}},
		{`commandline -i 'it\s'`, "commandline", []string{"-i", `it\s`}},
		{`echo a\ b ''`, "echo", []string{"a b", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, args, err := Split(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestSplitErrors(t *testing.T) {
	_, _, err := Split("   ")
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, _, err = Split(`commandline -i 'x`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)

	_, _, err = Split(`commandline -i x\`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}
