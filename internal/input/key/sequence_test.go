package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceEqual(t *testing.T) {
	a := Seq(Ctrl('x'), Ctrl('s'))

	assert.True(t, a.Equal(Seq(Ctrl('x'), Ctrl('s'))))
	assert.False(t, a.Equal(Seq(Ctrl('x'))))
	assert.False(t, a.Equal(Seq(Ctrl('s'), Ctrl('x'))))
	assert.True(t, Sequence(nil).Equal(Sequence{}))
}

func TestSequenceHasPrefix(t *testing.T) {
	s := MustParseSequence("ctrl-x ctrl-s")

	assert.True(t, s.HasPrefix(nil))
	assert.True(t, s.HasPrefix(Seq(Ctrl('x'))))
	assert.True(t, s.HasPrefix(s))
	assert.False(t, s.HasPrefix(Seq(Ctrl('s'))))
	assert.False(t, Seq(Ctrl('x')).HasPrefix(s))
}

func TestSequenceCloneAppend(t *testing.T) {
	s := Seq(Char('g', ModNone))
	c := s.Clone()
	c[0] = Char('h', ModNone)
	assert.Equal(t, Char('g', ModNone), s[0])

	longer := s.Append(Char('g', ModNone))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, longer.Len())
	assert.Nil(t, Sequence(nil).Clone())
}

func TestSequenceString(t *testing.T) {
	assert.Equal(t, "ctrl-x ctrl-s", Seq(Ctrl('x'), Ctrl('s')).String())
	assert.Equal(t, "g g", Seq(Char('g', ModNone), Char('g', ModNone)).String())
	assert.Equal(t, "", Sequence(nil).String())
}

func TestSequenceAsText(t *testing.T) {
	text, ok := MustParseSequence("qqa").AsText()
	assert.True(t, ok)
	assert.Equal(t, "qqa", text)

	_, ok = MustParseSequence("q ctrl-a").AsText()
	assert.False(t, ok)

	_, ok = Sequence(nil).AsText()
	assert.False(t, ok)
}

func TestParseSequence(t *testing.T) {
	tests := []struct {
		in   string
		want Sequence
	}{
		{"ctrl-x ctrl-s", Seq(Ctrl('x'), Ctrl('s'))},
		{"ctrl-x,ctrl-s", Seq(Ctrl('x'), Ctrl('s'))},
		{"g g", Seq(Char('g', ModNone), Char('g', ModNone))},
		{"gg", Seq(Char('g', ModNone), Char('g', ModNone))},
		{"up", Seq(Named(NameUp, ModNone))},
		{"escape [ A", Seq(Named(NameEscape, ModNone), Char('[', ModNone), Char('A', ModNone))},
		{"<C-x><C-s>", Seq(Ctrl('x'), Ctrl('s'))},
		{"d<CR>", Seq(Char('d', ModNone), Named(NameEnter, ModNone))},
		{"a<b", Seq(Char('a', ModNone), Char('<', ModNone), Char('b', ModNone))},
		{"alt-minus -", Seq(Char('-', ModAlt), Char('-', ModNone))},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSequence(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSequenceLiteralRun(t *testing.T) {
	seq, err := ParseSequence("qqqqqqqa")
	require.NoError(t, err)
	require.Len(t, seq, 8)
	for _, k := range seq[:7] {
		assert.Equal(t, Char('q', ModNone), k)
	}
	assert.Equal(t, Char('a', ModNone), seq[7])
}

func TestParseSequenceErrors(t *testing.T) {
	_, err := ParseSequence("")
	assert.ErrorIs(t, err, ErrEmptySpec)

	_, err = ParseSequence(" , ")
	assert.ErrorIs(t, err, ErrEmptySpec)

	_, err = ParseSequence("ctrl-nosuchkey")
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = ParseSequence("<C-x><Q-y>")
	assert.ErrorIs(t, err, ErrInvalidSpec)

	assert.Panics(t, func() { MustParseSequence("") })
}
