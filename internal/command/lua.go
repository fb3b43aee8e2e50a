package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/danielrainer/fish-shell/internal/input/key"
	"github.com/danielrainer/fish-shell/internal/input/keymap"
)

// DefaultLuaTimeout bounds a single script command.
const DefaultLuaTimeout = 2 * time.Second

// ErrLuaClosed is returned when the executor is used after Close.
var ErrLuaClosed = errors.New("lua executor is closed")

// Binder registers a binding created by a script.
type Binder func(b keymap.Binding) error

// LuaOption configures a LuaExecutor.
type LuaOption func(*LuaExecutor)

// WithLuaTimeout sets the timeout for each script command.
func WithLuaTimeout(d time.Duration) LuaOption {
	return func(e *LuaExecutor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLuaLogger sets the executor's logger.
func WithLuaLogger(l *zap.Logger) LuaOption {
	return func(e *LuaExecutor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBuffer lets scripts read and edit the command buffer.
func WithBuffer(b *Buffer) LuaOption {
	return func(e *LuaExecutor) {
		e.buffer = b
	}
}

// WithBinder lets scripts add bindings.
func WithBinder(fn Binder) LuaOption {
	return func(e *LuaExecutor) {
		e.binder = fn
	}
}

// LuaExecutor runs commands defined in Lua scripts. Scripts get the base,
// table, string and math libraries and a "keyreader" module:
//
//	keyreader.command(name, fn)  -- register fn(inv) as command name
//	keyreader.bind{keys=..., commands={...}, mode=..., sets_mode=...}
//	keyreader.insert(text)       -- insert into the command buffer
//	keyreader.line()             -- the command buffer contents
//	keyreader.log(msg)
//
// The Lua state is not goroutine-safe; calls are serialized by a mutex.
type LuaExecutor struct {
	mu       sync.Mutex
	L        *lua.LState
	registry *Registry
	buffer   *Buffer
	binder   Binder
	timeout  time.Duration
	logger   *zap.Logger
	commands []string
	closed   bool
}

// NewLuaExecutor creates an executor that registers script commands in r.
func NewLuaExecutor(r *Registry, opts ...LuaOption) *LuaExecutor {
	e := &LuaExecutor{
		registry: r,
		timeout:  DefaultLuaTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(e.L)
	lua.OpenTable(e.L)
	lua.OpenString(e.L)
	lua.OpenMath(e.L)

	// No file access from scripts.
	for _, name := range []string{"dofile", "loadfile", "require"} {
		e.L.SetGlobal(name, lua.LNil)
	}

	e.L.SetGlobal("keyreader", e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"command": e.luaCommand,
		"bind":    e.luaBind,
		"insert":  e.luaInsert,
		"line":    e.luaLine,
		"log":     e.luaLog,
	}))
	return e
}

// LoadFile runs a script file.
func (e *LuaExecutor) LoadFile(path string) error {
	return e.do(context.Background(), func() error {
		return e.L.DoFile(path)
	})
}

// LoadString runs script source.
func (e *LuaExecutor) LoadString(code string) error {
	return e.do(context.Background(), func() error {
		return e.L.DoString(code)
	})
}

// Commands returns the names the scripts registered, in order.
func (e *LuaExecutor) Commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.commands...)
}

// Close releases the Lua state and unregisters the script commands.
func (e *LuaExecutor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for _, name := range e.commands {
		e.registry.Unregister(name)
	}
	e.L.Close()
}

// do runs fn holding the lock, with a timeout and panic recovery.
func (e *LuaExecutor) do(ctx context.Context, fn func() error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrLuaClosed
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

func (e *LuaExecutor) luaCommand(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	e.registry.Register(name, HandlerFunc(func(ctx context.Context, inv Invocation) error {
		return e.call(ctx, fn, inv)
	}))
	e.commands = append(e.commands, name)
	e.logger.Debug("lua command registered", zap.String("command", name))
	return 0
}

func (e *LuaExecutor) call(ctx context.Context, fn *lua.LFunction, inv Invocation) error {
	return e.do(ctx, func() error {
		err := e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, e.invocationTable(inv))
		if err != nil {
			return fmt.Errorf("lua command %s: %w", inv.Name, err)
		}
		ret := e.L.Get(-1)
		e.L.Pop(1)
		if s, ok := ret.(lua.LString); ok && s != "" {
			return fmt.Errorf("lua command %s: %s", inv.Name, string(s))
		}
		return nil
	})
}

func (e *LuaExecutor) invocationTable(inv Invocation) *lua.LTable {
	L := e.L
	t := L.NewTable()
	t.RawSetString("name", lua.LString(inv.Name))
	t.RawSetString("mode", lua.LString(inv.Mode))
	t.RawSetString("keys", lua.LString(inv.Keys.String()))

	args := L.NewTable()
	for _, a := range inv.Args {
		args.Append(lua.LString(a))
	}
	t.RawSetString("args", args)
	return t
}

func (e *LuaExecutor) luaBind(L *lua.LState) int {
	spec := L.CheckTable(1)
	if e.binder == nil {
		L.RaiseError("binding from scripts is not enabled")
		return 0
	}

	seq, err := key.ParseSequence(lua.LVAsString(spec.RawGetString("keys")))
	if err != nil {
		L.RaiseError("bind: %v", err)
		return 0
	}

	var commands []string
	switch cmds := spec.RawGetString("commands").(type) {
	case lua.LString:
		commands = []string{string(cmds)}
	case *lua.LTable:
		cmds.ForEach(func(_, v lua.LValue) {
			commands = append(commands, lua.LVAsString(v))
		})
	}

	b := keymap.Binding{
		Sequence: seq,
		Mode:     lua.LVAsString(spec.RawGetString("mode")),
		Commands: commands,
		SetsMode: lua.LVAsString(spec.RawGetString("sets_mode")),
		User:     true,
	}
	if err := e.binder(b); err != nil {
		L.RaiseError("bind: %v", err)
	}
	return 0
}

func (e *LuaExecutor) luaInsert(L *lua.LState) int {
	text := L.CheckString(1)
	if e.buffer != nil {
		e.buffer.Insert(text)
	}
	return 0
}

func (e *LuaExecutor) luaLine(L *lua.LState) int {
	if e.buffer == nil {
		L.Push(lua.LString(""))
	} else {
		L.Push(lua.LString(e.buffer.String()))
	}
	return 1
}

func (e *LuaExecutor) luaLog(L *lua.LState) int {
	e.logger.Info("lua", zap.String("message", L.CheckString(1)))
	return 0
}
