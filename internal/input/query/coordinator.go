package query

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielrainer/fish-shell/internal/input/queue"
)

// DefaultTimeout is how long a query waits for its reply.
const DefaultTimeout = 2 * time.Second

// ErrQueryPending is returned when a query is issued while another one is
// outstanding.
var ErrQueryPending = errors.New("query already pending")

// Reply is the outcome of a query.
type Reply struct {
	ID    ID
	Token uuid.UUID

	// Payload is the reply body, without the escape sequence framing.
	Payload []byte

	// TimedOut is set when no reply arrived in time or the wait was
	// interrupted.
	TimedOut bool

	// Elapsed is the time from issue to completion.
	Elapsed time.Duration
}

// DoneFunc receives the outcome of a query. It runs on the reading
// goroutine and may issue the next query.
type DoneFunc func(Reply)

// Stats counts query outcomes.
type Stats struct {
	Issued   int
	Answered int
	TimedOut int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout sets how long a query waits for its reply.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

type pending struct {
	id     ID
	token  uuid.UUID
	issued time.Time
	done   DoneFunc
}

// Coordinator tracks the outstanding query. Issue and Wait run on the
// queue's reading goroutine; Pending and Stats may be called from anywhere.
type Coordinator struct {
	w       io.Writer
	q       *queue.Queue
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	pending *pending
	stats   Stats
}

// New creates a coordinator that writes probes to w and reads replies from
// q. A nil w skips writing, for terminals driven by something else.
func New(w io.Writer, q *queue.Queue, opts ...Option) *Coordinator {
	c := &Coordinator{
		w:       w,
		q:       q,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue writes the probe for id and marks it pending. done is called once
// with the reply or the timeout.
func (c *Coordinator) Issue(id ID, done DoneFunc) (uuid.UUID, error) {
	if !id.Valid() {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownQuery, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrQueryPending, c.pending.id)
	}

	if c.w != nil {
		if _, err := c.w.Write(id.Probe()); err != nil {
			return uuid.Nil, fmt.Errorf("writing %s probe: %w", id, err)
		}
	}

	p := &pending{id: id, token: uuid.New(), issued: time.Now(), done: done}
	if id == CursorPosition {
		c.q.ExpectCursorReport(true)
	}
	c.pending = p
	c.stats.Issued++

	c.logger.Debug("query issued", zap.Stringer("query", id), zap.Stringer("token", p.token))
	return p.token, nil
}

// Pending returns the outstanding query, if any.
func (c *Coordinator) Pending() (ID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return 0, false
	}
	return c.pending.id, true
}

// Wait blocks until the outstanding query is answered, times out, or is
// interrupted. Events other than the reply stay in the queue. It reports
// whether a query was outstanding.
//
// The queue's peek cursor must be at its commit cursor.
func (c *Coordinator) Wait() bool {
	c.mu.Lock()
	p := c.pending
	c.mu.Unlock()
	if p == nil {
		return false
	}

	deadline := p.issued.Add(c.timeout)
	for off := 0; ; off++ {
		ev, st := c.q.PeekAt(off, deadline)
		if st != queue.StatusOK {
			c.finish(p, nil, true)
			return true
		}

		switch ev.Kind {
		case queue.KindQueryResponse:
			if ev.Reply != p.id.Reply() {
				continue
			}
			c.q.Take(off)
			c.finish(p, ev.Payload, false)
			return true
		case queue.KindInterrupt, queue.KindEOF:
			// Left in place for the resolver to report.
			c.finish(p, nil, true)
			return true
		}
	}
}

// Cancel abandons the outstanding query, reporting it as timed out.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	p := c.pending
	c.mu.Unlock()
	if p != nil {
		c.finish(p, nil, true)
	}
}

// Stats returns the query counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Coordinator) finish(p *pending, payload []byte, timedOut bool) {
	c.mu.Lock()
	if c.pending != p {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	if p.id == CursorPosition {
		c.q.ExpectCursorReport(false)
	}
	if timedOut {
		c.stats.TimedOut++
	} else {
		c.stats.Answered++
	}
	c.mu.Unlock()

	r := Reply{
		ID:       p.id,
		Token:    p.token,
		Payload:  payload,
		TimedOut: timedOut,
		Elapsed:  time.Since(p.issued),
	}
	if timedOut {
		c.logger.Debug("query timed out", zap.Stringer("query", p.id), zap.Duration("elapsed", r.Elapsed))
	} else {
		c.logger.Debug("query answered",
			zap.Stringer("query", p.id),
			zap.ByteString("payload", payload),
			zap.Duration("elapsed", r.Elapsed))
	}
	if p.done != nil {
		p.done(r)
	}
}
