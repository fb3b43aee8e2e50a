package input

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielrainer/fish-shell/internal/input/key"
	"github.com/danielrainer/fish-shell/internal/input/keymap"
	"github.com/danielrainer/fish-shell/internal/input/mode"
	"github.com/danielrainer/fish-shell/internal/input/query"
	"github.com/danielrainer/fish-shell/internal/input/queue"
)

// DefaultSequenceTimeout is how long an ambiguous sequence waits for its
// next key.
const DefaultSequenceTimeout = 1000 * time.Millisecond

// Config configures the resolver.
type Config struct {
	// SequenceTimeout is how long to wait for the next key of a sequence
	// that could still grow into a longer binding.
	// Default: 1000ms
	SequenceTimeout time.Duration

	// DefaultMode is the initial mode (default: "default").
	DefaultMode string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SequenceTimeout: DefaultSequenceTimeout,
		DefaultMode:     mode.Default,
	}
}

// ResolutionKind tags a Resolution.
type ResolutionKind uint8

const (
	// ResolvedBinding means a binding matched.
	ResolvedBinding ResolutionKind = iota + 1

	// ResolvedSelfInsert means no binding matched; the key inserts itself.
	ResolvedSelfInsert

	// ResolvedEOF means input has ended.
	ResolvedEOF

	// ResolvedInterrupt means input was interrupted from outside.
	ResolvedInterrupt
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolvedBinding:
		return "binding"
	case ResolvedSelfInsert:
		return "self-insert"
	case ResolvedEOF:
		return "eof"
	case ResolvedInterrupt:
		return "interrupt"
	default:
		return fmt.Sprintf("ResolutionKind(%d)", uint8(k))
	}
}

// Resolution is the outcome of one resolution attempt.
type Resolution struct {
	Kind ResolutionKind

	// Commands are the bound commands, for ResolvedBinding.
	Commands []string

	// Keys are the keys consumed. A self-insert consumes exactly one.
	Keys key.Sequence

	// Mode is the mode the attempt ran in; commands run under it.
	Mode string

	// NextMode is the mode after the resolution. It differs from Mode
	// when the binding switched modes.
	NextMode string

	// Binding is the matched binding, for ResolvedBinding.
	Binding *keymap.Binding
}

// Key returns the first consumed key, the one a self-insert inserts.
func (r Resolution) Key() (key.Key, bool) {
	if len(r.Keys) == 0 {
		return key.Key{}, false
	}
	return r.Keys[0], true
}

// ModeChanged reports whether the resolution switched modes.
func (r Resolution) ModeChanged() bool {
	return r.NextMode != r.Mode
}

func (r Resolution) String() string {
	switch r.Kind {
	case ResolvedBinding:
		s := fmt.Sprintf("%s [%s] -> %s", r.Keys, r.Mode, strings.Join(r.Commands, "; "))
		if r.ModeChanged() {
			s += " (mode " + r.NextMode + ")"
		}
		return s
	case ResolvedSelfInsert:
		return fmt.Sprintf("%s [%s] self-insert", r.Keys, r.Mode)
	default:
		return r.Kind.String()
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithQueries attaches a query coordinator. While it has a query
// outstanding, the resolver waits for the reply before matching keys.
func WithQueries(c *query.Coordinator) Option {
	return func(r *Resolver) {
		r.queries = c
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// Resolver turns queued events into resolutions: the longest binding of the
// current mode that the input matches, or a self-inserted key.
//
// A Resolver is driven by a single goroutine. Interrupt may be called from
// any goroutine.
type Resolver struct {
	q       *queue.Queue
	table   *keymap.Table
	modes   *mode.Manager
	queries *query.Coordinator
	config  Config
	logger  *zap.Logger
	metrics *Metrics
}

// NewResolver creates a resolver reading from q. A nil table or mode
// manager gets an empty table or a manager starting in config.DefaultMode.
func NewResolver(q *queue.Queue, table *keymap.Table, modes *mode.Manager, config Config, opts ...Option) *Resolver {
	if config.SequenceTimeout <= 0 {
		config.SequenceTimeout = DefaultSequenceTimeout
	}
	if config.DefaultMode == "" {
		config.DefaultMode = mode.Default
	}
	if table == nil {
		table = keymap.NewTable()
	}
	if modes == nil {
		modes = mode.NewManager(config.DefaultMode)
	}

	r := &Resolver{
		q:       q,
		table:   table,
		modes:   modes,
		config:  config,
		logger:  zap.NewNop(),
		metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the binding table in use.
func (r *Resolver) Table() *keymap.Table {
	return r.table
}

// SetTable replaces the binding table. Call it only between attempts.
func (r *Resolver) SetTable(t *keymap.Table) {
	if t != nil {
		r.table = t
	}
}

// Modes returns the mode manager.
func (r *Resolver) Modes() *mode.Manager {
	return r.modes
}

// Metrics returns the metrics recorder.
func (r *Resolver) Metrics() *Metrics {
	return r.metrics
}

// Interrupt wakes a blocked Next, which then reports ResolvedInterrupt.
// Safe to call from any goroutine.
func (r *Resolver) Interrupt() {
	r.q.Interrupt()
}

// Next runs one resolution attempt starting at the queue's commit cursor.
// It blocks until a resolution is available.
func (r *Resolver) Next() Resolution {
	res := r.next()
	r.metrics.RecordResolution(res.Kind)
	return res
}

func (r *Resolver) next() Resolution {
	for {
		if r.queries != nil && r.queries.Wait() {
			r.metrics.RecordQueryWait()
			continue
		}

		r.q.Restart()
		ev, st := r.q.Peek(time.Time{})
		if st == queue.StatusWouldBlock {
			continue
		}

		current := r.modes.Current()
		switch ev.Kind {
		case queue.KindEOF:
			// Not consumed: every later attempt also sees the end.
			return Resolution{Kind: ResolvedEOF, Mode: current, NextMode: current}
		case queue.KindInterrupt:
			r.consume(1)
			return Resolution{Kind: ResolvedInterrupt, Mode: current, NextMode: current}
		case queue.KindCheckpoint, queue.KindQueryResponse:
			r.logger.Debug("skipping event", zap.Stringer("event", ev))
			r.consume(1)
			continue
		case queue.KindKey:
			return r.match(current, ev.Key)
		}
	}
}

// match collects keys starting with first and picks the longest binding
// they complete.
func (r *Resolver) match(current string, first key.Key) Resolution {
	soFar := key.Sequence{first}
	var best *keymap.Binding

	for {
		exact, longer := r.table.Probe(current, soFar)
		if exact != nil {
			best = exact
		}
		if !longer {
			break
		}

		r.metrics.RecordAmbiguityWait()
		r.logger.Debug("waiting for sequence",
			zap.Stringer("keys", soFar),
			zap.String("mode", current),
			zap.Bool("have_match", best != nil))

		ev, st := r.q.PeekAt(len(soFar), time.Now().Add(r.config.SequenceTimeout))
		if st == queue.StatusWouldBlock {
			r.metrics.RecordSequenceTimeout()
			r.logger.Debug("sequence timed out", zap.Stringer("keys", soFar))
			break
		}
		if st != queue.StatusOK || !ev.IsKey() {
			break
		}
		soFar = append(soFar, ev.Key)
	}

	if best == nil {
		r.consume(1)
		return Resolution{
			Kind:     ResolvedSelfInsert,
			Keys:     key.Sequence{first},
			Mode:     current,
			NextMode: current,
		}
	}

	r.consume(len(best.Sequence))
	next := current
	if best.SetsMode != "" {
		if _, err := r.modes.Switch(best.SetsMode); err != nil {
			r.logger.Warn("binding sets invalid mode",
				zap.Stringer("binding", best),
				zap.Error(err))
		} else {
			next = best.SetsMode
		}
	}

	return Resolution{
		Kind:     ResolvedBinding,
		Commands: append([]string(nil), best.Commands...),
		Keys:     best.Sequence.Clone(),
		Mode:     current,
		NextMode: next,
		Binding:  best,
	}
}

// consume commits the first n events of the attempt.
func (r *Resolver) consume(n int) {
	r.q.Restart()
	r.q.AdvancePeek(n)
	r.q.Commit()
}
