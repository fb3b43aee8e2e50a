package input

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielrainer/fish-shell/internal/input/keymap"
)

// ErrStop may be returned by a Dispatcher to end Session.Run without error.
var ErrStop = errors.New("stop session")

// Dispatcher executes resolutions. It receives the command list and mode
// exactly as resolved.
type Dispatcher interface {
	Dispatch(ctx context.Context, res Resolution) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, res Resolution) error

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, res Resolution) error {
	return f(ctx, res)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session's logger.
func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHooks sets the hook manager.
func WithHooks(h *HookManager) SessionOption {
	return func(s *Session) {
		if h != nil {
			s.hooks = h
		}
	}
}

// Session drives a Resolver and hands each resolution to a Dispatcher.
// Binding tables staged from other goroutines are swapped in between
// resolution attempts.
type Session struct {
	id         uuid.UUID
	resolver   *Resolver
	dispatcher Dispatcher
	hooks      *HookManager
	logger     *zap.Logger

	staged atomic.Pointer[keymap.Table]
}

// NewSession creates a session. A nil dispatcher discards resolutions.
func NewSession(resolver *Resolver, dispatcher Dispatcher, opts ...SessionOption) *Session {
	if dispatcher == nil {
		dispatcher = DispatcherFunc(func(context.Context, Resolution) error { return nil })
	}

	s := &Session{
		id:         uuid.New(),
		resolver:   resolver,
		dispatcher: dispatcher,
		hooks:      NewHookManager(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.Stringer("session", s.id))
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Resolver returns the session's resolver.
func (s *Session) Resolver() *Resolver {
	return s.resolver
}

// Hooks returns the hook manager.
func (s *Session) Hooks() *HookManager {
	return s.hooks
}

// Stage schedules t to replace the binding table before the next attempt.
// A later Stage before that replaces an earlier one. Safe to call from any
// goroutine.
func (s *Session) Stage(t *keymap.Table) {
	s.staged.Store(t)
}

// Interrupt interrupts the current or next attempt. Safe to call from any
// goroutine.
func (s *Session) Interrupt() {
	s.resolver.Interrupt()
}

// Step applies any staged table, resolves once and dispatches the result.
// The returned error is the dispatcher's.
func (s *Session) Step(ctx context.Context) (Resolution, error) {
	if t := s.staged.Swap(nil); t != nil {
		s.resolver.SetTable(t)
		s.resolver.Metrics().RecordReload()
		s.logger.Info("binding table swapped", zap.Int("bindings", t.Len()))
	}

	res := s.resolver.Next()

	if s.hooks.RunBeforeDispatch(&res) {
		s.resolver.Metrics().RecordHookConsumption()
		return res, nil
	}

	start := time.Now()
	err := s.dispatcher.Dispatch(ctx, res)
	s.resolver.Metrics().RecordDispatch(time.Since(start), err)

	s.hooks.RunAfterDispatch(&res, err)
	return res, err
}

// Run resolves and dispatches until end of input, ctx is done, or the
// dispatcher returns ErrStop. Other dispatch errors are logged and the loop
// continues. Cancelling ctx interrupts a blocked read.
func (s *Session) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.Interrupt)
	defer stop()

	s.logger.Debug("session started")
	defer s.logger.Debug("session ended")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := s.Step(ctx)
		switch {
		case errors.Is(err, ErrStop):
			return nil
		case err != nil:
			s.logger.Warn("dispatch failed",
				zap.Stringer("resolution", res),
				zap.Error(err))
		}

		if res.Kind == ResolvedEOF {
			return nil
		}
	}
}
