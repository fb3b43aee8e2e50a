package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/danielrainer/fish-shell/internal/input"
	"github.com/danielrainer/fish-shell/internal/input/key"
)

// Names of the commands the registry runs for resolutions that are not
// bindings.
const (
	SelfInsertCommand = "self-insert"
	EOFCommand        = "exit"
	InterruptCommand  = "cancel-commandline"
)

// Registry maps command names to handlers and dispatches resolutions to
// them. It implements input.Dispatcher.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	fallback Handler
	logger   *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the registry's logger.
func WithRegistryLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFallback sets the handler for commands nobody registered. Without
// one, unknown commands fail with ErrUnknownCommand.
func WithFallback(h Handler) RegistryOption {
	return func(r *Registry) {
		r.fallback = h
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		handlers: make(map[string]Handler),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register sets the handler for a command name, replacing any previous one.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// RegisterFunc registers a function as a handler.
func (r *Registry) RegisterFunc(name string, fn func(ctx context.Context, inv Invocation) error) {
	r.Register(name, HandlerFunc(fn))
}

// Unregister removes the handler for a command name.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handlers[name]
	delete(r.handlers, name)
	return ok
}

// Get returns the handler for a command name, or nil.
func (r *Registry) Get(name string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[name]
}

// Has reports whether a command name is registered.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exec parses and runs one command line.
func (r *Registry) Exec(ctx context.Context, line, mode string, keys key.Sequence) error {
	name, args, err := Split(line)
	if err != nil {
		return err
	}
	return r.run(ctx, Invocation{Name: name, Args: args, Mode: mode, Keys: keys})
}

func (r *Registry) run(ctx context.Context, inv Invocation) error {
	r.mu.RLock()
	h, ok := r.handlers[inv.Name]
	fallback := r.fallback
	r.mu.RUnlock()

	if !ok {
		if fallback == nil {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, inv.Name)
		}
		h = fallback
	}
	return h.Run(ctx, inv)
}

// Dispatch runs the commands of a resolution in order. A command returning
// input.ErrStop stops the rest and is returned as is; other failures are
// collected and the remaining commands still run.
//
// Self-inserts, end of input and interrupts run SelfInsertCommand,
// EOFCommand and InterruptCommand when those are registered.
func (r *Registry) Dispatch(ctx context.Context, res input.Resolution) error {
	switch res.Kind {
	case input.ResolvedBinding:
		var errs []error
		for _, line := range res.Commands {
			if err := r.Exec(ctx, line, res.Mode, res.Keys); err != nil {
				if errors.Is(err, input.ErrStop) {
					return err
				}
				r.logger.Debug("command failed", zap.String("command", line), zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", line, err))
			}
		}
		return errors.Join(errs...)

	case input.ResolvedSelfInsert:
		return r.runOptional(ctx, SelfInsertCommand, res)
	case input.ResolvedEOF:
		return r.runOptional(ctx, EOFCommand, res)
	case input.ResolvedInterrupt:
		return r.runOptional(ctx, InterruptCommand, res)
	default:
		return nil
	}
}

func (r *Registry) runOptional(ctx context.Context, name string, res input.Resolution) error {
	h := r.Get(name)
	if h == nil {
		return nil
	}
	return h.Run(ctx, Invocation{Name: name, Mode: res.Mode, Keys: res.Keys})
}
