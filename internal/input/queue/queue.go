// Package queue buffers input events between the terminal and the resolver.
//
// The queue keeps two cursors into its buffer. Events before the commit
// cursor are consumed and may be discarded; events between commit and peek
// have been looked at by the current resolution attempt and are kept so
// Restart can replay them. Invariant: commit <= peek <= len(events).
//
// Bytes read from the Source enter as KindRawByte and are decoded lazily,
// only when a peek reaches them.
package queue

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/danielrainer/fish-shell/internal/input/decode"
	"github.com/danielrainer/fish-shell/internal/input/source"
)

// Status is the outcome of PeekAt.
type Status int

const (
	// StatusOK means an event was returned.
	StatusOK Status = iota

	// StatusWouldBlock means the deadline passed before an event was available.
	StatusWouldBlock

	// StatusClosed means the position is past the end of input.
	StatusClosed
)

const (
	// DefaultEscapeTimeout is how long an incomplete escape sequence waits
	// for its next byte.
	DefaultEscapeTimeout = 30 * time.Millisecond

	// DefaultMaxSequenceBytes bounds an incomplete escape sequence.
	DefaultMaxSequenceBytes = 256

	// compactThreshold is how many consumed events may pile up before the
	// buffer is shifted down.
	compactThreshold = 1024
)

// Option configures a Queue.
type Option func(*Queue)

// WithEscapeTimeout sets the wait for the next byte of an escape sequence.
func WithEscapeTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.escapeTimeout = d
		}
	}
}

// WithMaxSequenceBytes sets the longest incomplete sequence kept before it
// degrades to literal keys.
func WithMaxSequenceBytes(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxSequenceBytes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// Queue is the input event queue. It is owned by a single reader; only
// Interrupt may be called from other goroutines.
type Queue struct {
	src              source.Source
	dec              *decode.Decoder
	logger           *zap.Logger
	escapeTimeout    time.Duration
	maxSequenceBytes int

	events []Event
	commit int
	peek   int
	closed bool

	interrupted atomic.Bool
}

// New creates a queue reading from src. src may be nil for a queue fed only
// through Push; such a queue reports WouldBlock for reads with a deadline and
// end of input for reads without one.
func New(src source.Source, opts ...Option) *Queue {
	q := &Queue{
		src:              src,
		dec:              decode.New(),
		logger:           zap.NewNop(),
		escapeTimeout:    DefaultEscapeTimeout,
		maxSequenceBytes: DefaultMaxSequenceBytes,
		events:           make([]Event, 0, 64),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push appends an event at the tail.
func (q *Queue) Push(ev Event) {
	q.events = append(q.events, ev)
}

// PushBytes appends raw input bytes.
func (q *Queue) PushBytes(data []byte) {
	for _, b := range data {
		q.events = append(q.events, RawByteEvent(b))
	}
}

// PushFront inserts an event at the peek cursor so it is the next event the
// current attempt sees.
func (q *Queue) PushFront(ev Event) {
	q.events = append(q.events, Event{})
	copy(q.events[q.peek+1:], q.events[q.peek:])
	q.events[q.peek] = ev
}

// PeekAt returns the event at peek+offset without advancing. If it is not
// buffered yet, PeekAt reads from the source until deadline; a zero deadline
// waits indefinitely.
func (q *Queue) PeekAt(offset int, deadline time.Time) (Event, Status) {
	i := q.peek + offset
	for {
		if i < len(q.events) {
			if q.events[i].Kind == KindRawByte {
				q.decodeAt(i)
				continue
			}
			return q.events[i], StatusOK
		}
		if q.closed {
			return EOFEvent(), StatusClosed
		}
		if st := q.fill(deadline); st != StatusOK {
			return Event{}, st
		}
	}
}

// Peek is PeekAt(0, deadline).
func (q *Queue) Peek(deadline time.Time) (Event, Status) {
	return q.PeekAt(0, deadline)
}

// AdvancePeek moves the peek cursor forward by n buffered events.
func (q *Queue) AdvancePeek(n int) {
	q.peek += n
	if q.peek > len(q.events) {
		q.peek = len(q.events)
	}
}

// Commit consumes everything before the peek cursor.
func (q *Queue) Commit() {
	q.commit = q.peek
	q.compact()
}

// Restart moves the peek cursor back to the commit cursor so the next
// attempt sees the same events again.
func (q *Queue) Restart() {
	q.peek = q.commit
}

// Take removes and returns the buffered event at peek+offset, leaving the
// events around it in order. The event must already have been peeked.
func (q *Queue) Take(offset int) (Event, bool) {
	i := q.peek + offset
	if offset < 0 || i >= len(q.events) || q.events[i].Kind == KindRawByte {
		return Event{}, false
	}
	ev := q.events[i]
	q.events = append(q.events[:i], q.events[i+1:]...)
	return ev, true
}

// Pending returns the number of buffered, unconsumed events.
func (q *Queue) Pending() int {
	return len(q.events) - q.commit
}

// Lookahead returns how far the peek cursor is past the commit cursor.
func (q *Queue) Lookahead() int {
	return q.peek - q.commit
}

// Closed reports whether the source has reached end of input.
func (q *Queue) Closed() bool {
	return q.closed
}

// Interrupt injects an interrupt event ahead of pending reads and wakes a
// blocked read. Safe to call from any goroutine.
func (q *Queue) Interrupt() {
	q.interrupted.Store(true)
	if in, ok := q.src.(source.Interrupter); ok {
		in.Interrupt()
	}
}

// ExpectCursorReport tells the decoder whether a cursor position query is
// outstanding.
func (q *Queue) ExpectCursorReport(on bool) {
	q.dec.ExpectCursorReport(on)
}

// fill appends at most one event from the source.
func (q *Queue) fill(deadline time.Time) Status {
	if q.interrupted.Swap(false) {
		q.events = append(q.events, InterruptEvent())
		return StatusOK
	}
	if q.closed {
		return StatusClosed
	}
	if q.src == nil {
		if deadline.IsZero() {
			q.close()
			return StatusOK
		}
		return StatusWouldBlock
	}

	for {
		b, st := q.src.TryRead(deadline)
		switch st {
		case source.OK:
			q.events = append(q.events, RawByteEvent(b))
		case source.WouldBlock:
			return StatusWouldBlock
		case source.EOF:
			q.close()
		case source.Interrupted:
			// A wakeup whose interrupt was already delivered.
			if !q.interrupted.Swap(false) {
				continue
			}
			q.events = append(q.events, InterruptEvent())
		}
		return StatusOK
	}
}

func (q *Queue) close() {
	q.closed = true
	q.events = append(q.events, EOFEvent())
	q.logger.Debug("input closed")
}

// decodeAt decodes the run of raw bytes starting at i, replacing at least
// events[i] with a decoded event.
func (q *Queue) decodeAt(i int) {
	for {
		j := i
		for j < len(q.events) && q.events[j].Kind == KindRawByte {
			j++
		}
		buf := make([]byte, j-i)
		for k := range buf {
			buf[k] = q.events[i+k].Byte
		}

		res := q.dec.Decode(buf)
		if res.Status == decode.Complete {
			q.splice(i, res.Consumed, res.Tokens)
			if len(res.Tokens) == 1 && res.Consumed > 1 {
				q.logger.Debug("decoded sequence",
					zap.ByteString("bytes", buf[:res.Consumed]),
					zap.Stringer("token", res.Tokens[0]))
			}
			return
		}

		// Incomplete. Give up if the run is too long or already followed
		// by something that is not a byte; otherwise wait briefly for more.
		if len(buf) >= q.maxSequenceBytes || j < len(q.events) ||
			q.fill(time.Now().Add(q.escapeTimeout)) != StatusOK {
			q.logger.Debug("flushing incomplete sequence", zap.ByteString("bytes", buf))
			q.splice(i, len(buf), q.dec.Flush(buf))
			return
		}
	}
}

// splice replaces n events at i with the decoded tokens.
func (q *Queue) splice(i, n int, tokens []decode.Token) {
	repl := make([]Event, len(tokens))
	for k, t := range tokens {
		repl[k] = fromToken(t)
	}

	tail := append([]Event(nil), q.events[i+n:]...)
	q.events = append(append(q.events[:i], repl...), tail...)
}

func (q *Queue) compact() {
	switch {
	case q.commit == len(q.events):
		q.events = q.events[:0]
		q.commit, q.peek = 0, 0
	case q.commit >= compactThreshold:
		n := copy(q.events, q.events[q.commit:])
		clear(q.events[n:])
		q.events = q.events[:n]
		q.peek -= q.commit
		q.commit = 0
	}
}
