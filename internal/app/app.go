// Package app wires the key reader together: the input queue, binding
// table, resolver, query coordinator, command registry and binding file
// watcher, and runs them until input ends.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielrainer/fish-shell/internal/command"
	"github.com/danielrainer/fish-shell/internal/config"
	"github.com/danielrainer/fish-shell/internal/input"
	"github.com/danielrainer/fish-shell/internal/input/keymap"
	"github.com/danielrainer/fish-shell/internal/input/mode"
	"github.com/danielrainer/fish-shell/internal/input/query"
	"github.com/danielrainer/fish-shell/internal/input/queue"
	"github.com/danielrainer/fish-shell/internal/input/source"
)

// Options configures the application.
type Options struct {
	// Config holds the settings. Nil means config.Default().
	Config *config.Config

	// Source is the raw input.
	Source source.Source

	// Probe receives terminal queries. Nil disables queries.
	Probe io.Writer

	// Out receives executed command lines and, with Echo, resolutions.
	Out io.Writer

	// Echo prints every resolution to Out.
	Echo bool

	// HandleSignals turns SIGINT into an interrupt and SIGTERM into
	// shutdown while Run is active.
	HandleSignals bool

	Logger *zap.Logger
}

// Application is the central coordinator for the key reader components.
type Application struct {
	opts   Options
	cfg    *config.Config
	logger *zap.Logger

	queue    *queue.Queue
	modes    *mode.Manager
	table    *keymap.Table
	scripted *keymap.Table
	loader   *keymap.Loader
	watcher  *keymap.Watcher
	queries  *query.Coordinator
	resolver *input.Resolver
	session  *input.Session

	registry *command.Registry
	builtins *command.Builtins
	lua      *command.LuaExecutor

	running   atomic.Bool
	closeOnce sync.Once
}

// New creates an Application and initializes its components.
func New(opts Options) (*Application, error) {
	if opts.Source == nil {
		return nil, ErrNoSource
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	app := &Application{
		opts:   opts,
		cfg:    opts.Config,
		logger: opts.Logger,
	}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Run resolves and dispatches input until it ends, a command stops the
// session, or ctx is done. Binding file reloads are staged into the session
// as they arrive.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		app.probe()
		err := app.session.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if app.watcher != nil {
		g.Go(func() error {
			app.watchReloads(ctx)
			return nil
		})
	}

	if app.opts.HandleSignals {
		g.Go(func() error {
			app.handleSignals(ctx, cancel)
			return nil
		})
	}

	err := g.Wait()
	app.logger.Info("session finished", zap.Any("metrics", app.resolver.Metrics().Snapshot()))
	return err
}

// probe asks the terminal for its primary device attributes. The reply is
// consumed by the resolver before the first key is matched.
func (app *Application) probe() {
	if app.queries == nil {
		return
	}
	_, err := app.queries.Issue(query.PrimaryDeviceAttribute, func(r query.Reply) {
		if r.TimedOut {
			app.logger.Info("terminal did not answer device attributes query", zap.Duration("waited", r.Elapsed))
			return
		}
		app.logger.Info("terminal device attributes",
			zap.String("payload", string(r.Payload)),
			zap.Duration("elapsed", r.Elapsed))
	})
	if err != nil {
		app.logger.Warn("device attributes query failed", zap.Error(err))
	}
}

func (app *Application) watchReloads(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-app.watcher.Reloads():
			if !ok {
				return
			}
			if r.Err != nil {
				app.logger.Warn("some binding files failed to load", zap.Error(r.Err))
			}
			app.session.Stage(r.Table)
		}
	}
}

func (app *Application) handleSignals(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			app.logger.Debug("signal", zap.Stringer("signal", sig))
			if sig == syscall.SIGINT {
				app.session.Interrupt()
				continue
			}
			cancel()
			return
		}
	}
}

// Close releases the watcher and the script state. It is safe to call more
// than once.
func (app *Application) Close() error {
	var err error
	app.closeOnce.Do(func() {
		if app.watcher != nil {
			err = app.watcher.Close()
		}
		if app.lua != nil {
			app.lua.Close()
		}
	})
	if err != nil {
		return fmt.Errorf("closing watcher: %w", err)
	}
	return nil
}

// Session returns the input session.
func (app *Application) Session() *input.Session {
	return app.session
}

// Resolver returns the resolver.
func (app *Application) Resolver() *input.Resolver {
	return app.resolver
}

// Registry returns the command registry.
func (app *Application) Registry() *command.Registry {
	return app.registry
}

// Buffer returns the command buffer the built-in commands edit.
func (app *Application) Buffer() *command.Buffer {
	return app.builtins.Buffer
}

// Modes returns the mode manager.
func (app *Application) Modes() *mode.Manager {
	return app.modes
}

// Watcher returns the binding file watcher, or nil when watching is off.
func (app *Application) Watcher() *keymap.Watcher {
	return app.watcher
}
