package app

import (
	"go.uber.org/zap"

	"github.com/danielrainer/fish-shell/internal/command"
	"github.com/danielrainer/fish-shell/internal/input"
	"github.com/danielrainer/fish-shell/internal/input/keymap"
	"github.com/danielrainer/fish-shell/internal/input/mode"
	"github.com/danielrainer/fish-shell/internal/input/query"
	"github.com/danielrainer/fish-shell/internal/input/queue"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initQueue,
		b.initCommands,
		b.initBindings,
		b.initResolver,
		b.initWatcher,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

func (b *bootstrapper) initQueue() error {
	app := b.app
	in := app.cfg.Input

	app.queue = queue.New(app.opts.Source,
		queue.WithEscapeTimeout(in.EscapeTimeout.Duration),
		queue.WithMaxSequenceBytes(in.MaxSequenceBytes),
		queue.WithLogger(app.logger.Named("queue")))

	if app.opts.Probe != nil {
		app.queries = query.New(app.opts.Probe, app.queue,
			query.WithTimeout(app.cfg.Input.QueryTimeout.Duration),
			query.WithLogger(app.logger.Named("query")))
	}
	b.initOrder = append(b.initOrder, "queue")
	return nil
}

// initCommands sets up the registry and built-ins. The script is loaded
// later, once there is a table for it to bind into.
func (b *bootstrapper) initCommands() error {
	app := b.app
	logger := app.logger.Named("command")

	app.registry = command.NewRegistry(
		command.WithRegistryLogger(logger),
		command.WithFallback(command.HandlerFunc(app.unknownCommand)))
	app.builtins = &command.Builtins{Out: app.opts.Out, Logger: logger}
	app.builtins.Register(app.registry)

	b.initOrder = append(b.initOrder, "commands")
	return nil
}

// initBindings builds the table: preset first, then script bindings, then
// binding files.
func (b *bootstrapper) initBindings() error {
	app := b.app
	app.table = keymap.NewTable()
	app.scripted = keymap.NewTable()
	app.loader = keymap.NewLoader(keymap.WithLoaderLogger(app.logger.Named("keymap")))

	if err := keymap.LoadPreset(app.table, app.cfg.Bindings.Preset); err != nil {
		return &InitError{Component: "bindings", Err: err}
	}

	if script := app.cfg.Commands.Script; script != "" {
		app.lua = command.NewLuaExecutor(app.registry,
			command.WithLuaTimeout(app.cfg.Commands.ScriptTimeout.Duration),
			command.WithLuaLogger(app.logger.Named("lua")),
			command.WithBuffer(app.builtins.Buffer),
			command.WithBinder(app.bindFromScript))
		b.initOrder = append(b.initOrder, "lua")
		if err := app.lua.LoadFile(script); err != nil {
			return &InitError{Component: "script", Err: err}
		}
	}

	// Files that fail are skipped; the rest still apply.
	if err := app.loader.LoadInto(app.table, app.cfg.Bindings.Files...); err != nil {
		app.logger.Warn("some binding files failed to load", zap.Error(err))
	}
	app.logger.Info("bindings loaded",
		zap.String("preset", app.cfg.Bindings.Preset),
		zap.Int("files", len(app.cfg.Bindings.Files)),
		zap.Int("bindings", app.table.Len()))

	b.initOrder = append(b.initOrder, "bindings")
	return nil
}

func (b *bootstrapper) initResolver() error {
	app := b.app

	app.modes = mode.NewManager(app.cfg.Input.DefaultMode)
	app.modes.OnChange(func(c mode.Change) {
		app.logger.Debug("mode changed", zap.Stringer("change", c))
	})

	opts := []input.Option{input.WithLogger(app.logger.Named("resolver"))}
	if app.queries != nil {
		opts = append(opts, input.WithQueries(app.queries))
	}
	app.resolver = input.NewResolver(app.queue, app.table, app.modes, input.Config{
		SequenceTimeout: app.cfg.Input.SequenceTimeout.Duration,
		DefaultMode:     app.cfg.Input.DefaultMode,
	}, opts...)

	hooks := input.NewHookManager()
	if app.opts.Echo {
		hooks.RegisterWithOptions(echoHook{app: app}, "echo", input.HookPriorityLow)
	}
	app.session = input.NewSession(app.resolver, app.registry,
		input.WithSessionLogger(app.logger.Named("session")),
		input.WithHooks(hooks))

	b.initOrder = append(b.initOrder, "resolver")
	return nil
}

// initWatcher watches the binding files. The watcher rebuilds from the
// preset and script bindings, so it needs a copy of the table without the
// files.
func (b *bootstrapper) initWatcher() error {
	app := b.app
	if !app.cfg.Bindings.Watch || len(app.cfg.Bindings.Files) == 0 {
		return nil
	}

	base := keymap.NewTable()
	if err := keymap.LoadPreset(base, app.cfg.Bindings.Preset); err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	base.Merge(app.scripted)

	w, err := keymap.NewWatcher(app.loader, base, app.cfg.Bindings.Files,
		keymap.WithWatcherLogger(app.logger.Named("watcher")))
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	app.watcher = w
	b.initOrder = append(b.initOrder, "watcher")
	return nil
}

// cleanup performs cleanup in reverse initialization order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "watcher":
			if b.app.watcher != nil {
				_ = b.app.watcher.Close()
				b.app.watcher = nil
			}
		case "lua":
			if b.app.lua != nil {
				b.app.lua.Close()
				b.app.lua = nil
			}
		}
	}
}
