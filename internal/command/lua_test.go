package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/danielrainer/fish-shell/internal/input/key"
	"github.com/danielrainer/fish-shell/internal/input/keymap"
)

func newLua(t *testing.T, opts ...LuaOption) (*LuaExecutor, *Registry) {
	t.Helper()
	r := NewRegistry()
	opts = append([]LuaOption{WithLuaLogger(zaptest.NewLogger(t))}, opts...)
	e := NewLuaExecutor(r, opts...)
	t.Cleanup(e.Close)
	return e, r
}

func TestLuaCommand(t *testing.T) {
	buf := NewBuffer()
	e, r := newLua(t, WithBuffer(buf))

	require.NoError(t, e.LoadString(`
		keyreader.command("shout", function(inv)
			keyreader.insert(string.upper(inv.args[1]) .. "@" .. inv.mode .. ":" .. inv.keys)
		end)
	`))
	assert.Equal(t, []string{"shout"}, e.Commands())
	require.True(t, r.Has("shout"))

	require.NoError(t, r.Exec(context.Background(), "shout hi", "default", key.MustParseSequence("alt-s")))
	assert.Equal(t, "HI@default:alt-s", buf.String())
}

func TestLuaCommandErrors(t *testing.T) {
	e, r := newLua(t)
	require.NoError(t, e.LoadString(`
		keyreader.command("refuse", function() return "not today" end)
		keyreader.command("boom", function() error("broken") end)
	`))

	ctx := context.Background()
	err := r.Exec(ctx, "refuse", "default", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not today")

	err = r.Exec(ctx, "boom", "default", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestLuaTimeout(t *testing.T) {
	e, r := newLua(t, WithLuaTimeout(20*time.Millisecond))
	require.NoError(t, e.LoadString(`keyreader.command("spin", function() while true do end end)`))

	err := r.Exec(context.Background(), "spin", "default", nil)
	assert.Error(t, err)
}

func TestLuaBind(t *testing.T) {
	tbl := keymap.NewTable()
	e, _ := newLua(t, WithBinder(tbl.Add))

	require.NoError(t, e.LoadString(`
		keyreader.bind{keys = "ctrl-x ctrl-s", commands = {"save", "repaint"}}
		keyreader.bind{keys = "j k", mode = "insert", commands = "cancel", sets_mode = "default"}
	`))

	b := tbl.Lookup(keymap.DefaultMode, key.MustParseSequence("ctrl-x ctrl-s"))
	require.NotNil(t, b)
	assert.Equal(t, []string{"save", "repaint"}, b.Commands)
	assert.True(t, b.User)

	b = tbl.Lookup("insert", key.MustParseSequence("j k"))
	require.NotNil(t, b)
	assert.Equal(t, "default", b.SetsMode)

	assert.Error(t, e.LoadString(`keyreader.bind{keys = "", commands = "x"}`))
}

func TestLuaBindDisabled(t *testing.T) {
	e, _ := newLua(t)
	assert.Error(t, e.LoadString(`keyreader.bind{keys = "a", commands = "x"}`))
}

func TestLuaSandbox(t *testing.T) {
	e, _ := newLua(t)
	assert.Error(t, e.LoadString(`io.open("/etc/passwd")`))
	assert.Error(t, e.LoadString(`os.exit(1)`))
	assert.Error(t, e.LoadString(`dofile("x.lua")`))
}

func TestLuaLoadFileAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.lua")
	require.NoError(t, os.WriteFile(path, []byte(`keyreader.command("noop", function() keyreader.log("ran") end)`), 0o644))

	r := NewRegistry()
	e := NewLuaExecutor(r)
	require.NoError(t, e.LoadFile(path))
	require.NoError(t, r.Exec(context.Background(), "noop", "default", nil))

	e.Close()
	e.Close()
	assert.False(t, r.Has("noop"))
	assert.ErrorIs(t, e.LoadString("x = 1"), ErrLuaClosed)
}
