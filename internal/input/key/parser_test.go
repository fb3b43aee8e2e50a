package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want Key
	}{
		{"a", Char('a', ModNone)},
		{"A", Char('A', ModNone)},
		{"-", Char('-', ModNone)},
		{"é", Char('é', ModNone)},
		{"enter", Named(NameEnter, ModNone)},
		{"Escape", Named(NameEscape, ModNone)},
		{"f5", Named(NameF5, ModNone)},
		{"space", Char(' ', ModNone)},
		{"ctrl-x", Ctrl('x')},
		{"ctrl-X", Ctrl('x')},
		{"alt-left", Named(NameLeft, ModAlt)},
		{"shift-tab", Named(NameTab, ModShift)},
		{"ctrl-alt-shift-f5", Named(NameF5, ModCtrl|ModAlt|ModShift)},
		{"alt--", Char('-', ModAlt)},
		{"alt-minus", Char('-', ModAlt)},
		{"ctrl-space", Char(' ', ModCtrl)},
		{"Ctrl+S", Ctrl('s')},
		{"Alt+F4", Named(NameF4, ModAlt)},
		{"<C-s>", Ctrl('s')},
		{"<A-f>", Alt('f')},
		{"<C-S-p>", Char('p', ModCtrl|ModShift)},
		{"<CR>", Named(NameEnter, ModNone)},
		{"<Esc>", Named(NameEscape, ModNone)},
		{"<lt>", Char('<', ModNone)},
		{"<Bar>", Char('|', ModNone)},
		{"  ctrl-c  ", Ctrl('c')},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		spec string
		want error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"hyper-x", ErrInvalidSpec},
		{"ctrl-nosuchkey", ErrInvalidSpec},
		{"<>", ErrInvalidSpec},
		{"<Q-x>", ErrInvalidSpec},
		{"ctrl-", ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := Parse(tt.spec)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMustParse(t *testing.T) {
	assert.Equal(t, Ctrl('a'), MustParse("ctrl-a"))
	assert.Panics(t, func() { MustParse("bogus-key-spec") })
}

func TestNormalizeSpec(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<C-x>", "ctrl-x"},
		{"Ctrl+Shift+P", "ctrl-shift-p"},
		{"Alt+Left", "alt-left"},
		{"<CR>", "enter"},
		{"meta-minus", "alt-minus"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeSpec(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	keys := []Key{
		Char('a', ModNone),
		Char('Z', ModNone),
		Char('-', ModNone),
		Char('-', ModCtrl|ModAlt),
		Char(' ', ModNone),
		Char(' ', ModCtrl),
		Char(',', ModAlt),
		Char('+', ModNone),
		Char('<', ModNone),
		Ctrl('w'),
		Alt('.'),
		Named(NameBackspace, ModAlt),
		Named(NamePageDown, ModShift),
		Named(NameF12, ModSuper|ModCtrl),
	}

	for _, k := range keys {
		t.Run(k.String(), func(t *testing.T) {
			got, err := Parse(k.String())
			require.NoError(t, err)
			assert.Equal(t, k, got)
		})
	}
}
