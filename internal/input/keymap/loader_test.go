package keymap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const tomlBindings = `
name = "mine"
mode = "insert"

[[bindings]]
keys = "ctrl-x ctrl-s"
commands = ["save"]

[[bindings]]
keys = "escape"
commands = ["repaint-mode"]
sets_mode = "default"
`

const jsonBindings = `{
  "name": "json",
  "bindings": [
    {"keys": "alt-left", "commands": ["prevd"]}
  ]
}`

const yamlBindings = `
mode: visual
preset: true
bindings:
  - keys: y
    commands: [yank, end-selection]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.toml", FormatTOML},
		{"a.JSON", FormatJSON},
		{"a.yaml", FormatYAML},
		{"a.yml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := FormatFromPath("a.ini")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoaderLoadReader(t *testing.T) {
	l := NewLoader()

	km, err := l.LoadReader(strings.NewReader(tomlBindings), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "mine", km.Name)
	assert.Equal(t, "insert", km.Mode)
	require.Len(t, km.Bindings, 2)
	assert.Equal(t, "default", km.Bindings[1].SetsMode)

	km, err = l.LoadReader(strings.NewReader(jsonBindings), FormatJSON)
	require.NoError(t, err)
	require.Len(t, km.Bindings, 1)
	assert.Equal(t, []string{"prevd"}, km.Bindings[0].Commands)

	km, err = l.LoadReader(strings.NewReader(yamlBindings), FormatYAML)
	require.NoError(t, err)
	assert.True(t, km.Preset)
	require.Len(t, km.Bindings, 1)
	assert.Equal(t, []string{"yank", "end-selection"}, km.Bindings[0].Commands)
}

func TestLoaderRejectsUnknownFields(t *testing.T) {
	l := NewLoader()

	_, err := l.LoadReader(strings.NewReader("[[bindings]]\nkey = \"a\"\n"), FormatTOML)
	assert.Error(t, err)

	_, err = l.LoadReader(strings.NewReader(`{"bindings": [{"keys": "a", "command": "x"}]}`), FormatJSON)
	assert.Error(t, err)

	_, err = l.LoadReader(strings.NewReader("bindings:\n  - keys: a\n    cmd: x\n"), FormatYAML)
	assert.Error(t, err)
}

func TestLoaderLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nameless.json", `{"bindings": [{"keys": "a", "commands": ["x"]}]}`)

	km, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, km.Source)
	assert.Equal(t, "nameless.json", km.Name)

	_, err = NewLoader().LoadFile(filepath.Join(dir, "missing.toml"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.toml", tomlBindings)
	writeFile(t, dir, "b.json", jsonBindings)
	writeFile(t, dir, "c.yml", yamlBindings)
	writeFile(t, dir, "broken.toml", "this is not toml [")
	writeFile(t, dir, "notes.txt", "ignored")

	l := NewLoader(WithLoaderLogger(zaptest.NewLogger(t)))
	l.AddSearchPath(dir)

	assert.Len(t, l.Files(), 4)

	keymaps, err := l.LoadAll()
	require.Error(t, err)
	assert.Len(t, keymaps, 3)
	assert.Contains(t, err.Error(), "broken.toml")
}

func TestLoaderLoadInto(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.toml", tomlBindings)
	bad := writeFile(t, dir, "bad.json", `{"bindings": [{"keys": "ctrl-", "commands": ["x"]}, {"keys": "z", "commands": ["zz"]}]}`)

	tbl := NewTable()
	err := NewLoader().LoadInto(tbl, good, bad)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, bad, loadErr.Path)

	assert.Equal(t, 3, tbl.Len())
	b := tbl.Lookup("insert", seq("escape"))
	require.NotNil(t, b)
	assert.Equal(t, DefaultMode, b.SetsMode)
	assert.True(t, b.User)
	assert.NotNil(t, tbl.Lookup(DefaultMode, seq("z")))
}
