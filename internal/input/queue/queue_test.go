package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielrainer/fish-shell/internal/input/decode"
	"github.com/danielrainer/fish-shell/internal/input/key"
	"github.com/danielrainer/fish-shell/internal/input/source"
)

func soon() time.Time {
	return time.Now().Add(50 * time.Millisecond)
}

// drain peeks and commits events one by one until end of input.
func drain(t *testing.T, q *Queue) []string {
	t.Helper()
	var out []string
	for {
		ev, st := q.Peek(time.Time{})
		require.NotEqual(t, StatusWouldBlock, st)
		if ev.Kind == KindEOF {
			return out
		}
		out = append(out, ev.String())
		q.AdvancePeek(1)
		q.Commit()
	}
}

func TestQueueCursors(t *testing.T) {
	q := New(nil)
	for _, ev := range KeyEvents(key.MustParseSequence("a b c")...) {
		q.Push(ev)
	}

	ev, st := q.PeekAt(0, time.Time{})
	require.Equal(t, StatusOK, st)
	assert.Equal(t, key.Char('a', key.ModNone), ev.Key)

	ev, _ = q.PeekAt(2, time.Time{})
	assert.Equal(t, key.Char('c', key.ModNone), ev.Key)

	q.AdvancePeek(2)
	assert.Equal(t, 2, q.Lookahead())
	ev, _ = q.Peek(time.Time{})
	assert.Equal(t, key.Char('c', key.ModNone), ev.Key)

	q.Restart()
	assert.Equal(t, 0, q.Lookahead())
	ev, _ = q.Peek(time.Time{})
	assert.Equal(t, key.Char('a', key.ModNone), ev.Key)

	q.AdvancePeek(1)
	q.Commit()
	assert.Equal(t, 2, q.Pending())
	q.Restart()
	ev, _ = q.Peek(time.Time{})
	assert.Equal(t, key.Char('b', key.ModNone), ev.Key)
}

func TestQueueRestartReplaysIdentically(t *testing.T) {
	q := New(source.NewScript().Write("ab\x1b[Ac"))

	read := func() []Event {
		var out []Event
		for i := 0; i < 4; i++ {
			ev, st := q.PeekAt(i, soon())
			require.Equal(t, StatusOK, st)
			out = append(out, ev)
		}
		return out
	}

	first := read()
	q.Restart()
	assert.Equal(t, first, read())
	assert.Equal(t, key.Named(key.NameUp, key.ModNone), first[2].Key)
}

func TestQueueNilSourceExhausted(t *testing.T) {
	q := New(nil)

	_, st := q.Peek(soon())
	assert.Equal(t, StatusWouldBlock, st)

	ev, st := q.Peek(time.Time{})
	assert.Equal(t, StatusOK, st)
	assert.Equal(t, KindEOF, ev.Kind)

	_, st = q.PeekAt(1, time.Time{})
	assert.Equal(t, StatusClosed, st)
	assert.True(t, q.Closed())
}

func TestQueueDecodesLazily(t *testing.T) {
	s := source.NewScript().Write("x\x1b[1;5Dy").Close()
	q := New(s)

	assert.Equal(t, []string{"x", "ctrl-left", "y"}, drain(t, q))
}

func TestQueueEscapeTimeout(t *testing.T) {
	// A lone ESC followed by a long pause is the escape key; a quick
	// following byte makes it alt.
	s := source.NewScript().
		Write("\x1b").Pause(time.Hour).Write("a").
		Write("\x1bb").
		Close()
	q := New(s, WithEscapeTimeout(10*time.Millisecond))

	assert.Equal(t, []string{"escape", "a", "alt-b"}, drain(t, q))
}

func TestQueueIncompleteSequenceDegrades(t *testing.T) {
	s := source.NewScript().Write("\x1b[1;").Pause(time.Hour).Write("z").Close()
	q := New(s, WithEscapeTimeout(5*time.Millisecond))

	assert.Equal(t, []string{"escape", "[", "1", ";", "z"}, drain(t, q))
}

func TestQueueMaxSequenceBytes(t *testing.T) {
	s := source.NewScript().Write("\x1b]11;aaaaaaaa").Close()
	q := New(s, WithMaxSequenceBytes(4))

	got := drain(t, q)
	require.NotEmpty(t, got)
	assert.Equal(t, "escape", got[0])
	assert.Equal(t, "]", got[1])
	assert.Len(t, got, len("\x1b]11;aaaaaaaa"))
}

func TestQueueSequenceCutByEOF(t *testing.T) {
	q := New(source.NewScript().Write("\x1b[").Close())
	assert.Equal(t, []string{"alt-["}, drain(t, q))
}

func TestQueueEveryByteDelivered(t *testing.T) {
	in := "ok\xff\x1b[99x\xc3"
	q := New(source.NewScript().Write(in).Close())

	got := drain(t, q)
	assert.Equal(t, []string{"o", "k", string(rune(decode.InvalidByteBase + 0xff)),
		"escape", "[", "9", "9", "x", string(rune(decode.InvalidByteBase + 0xc3))}, got)
}

func TestQueueTakeLeavesOthersInOrder(t *testing.T) {
	s := source.NewScript().Write("a\x1b[?62c").Write("b").Close()
	q := New(s)

	ev, _ := q.PeekAt(0, time.Time{})
	assert.Equal(t, "a", ev.String())
	ev, _ = q.PeekAt(1, time.Time{})
	require.Equal(t, KindQueryResponse, ev.Kind)
	assert.Equal(t, decode.ReplyDeviceAttributes, ev.Reply)

	taken, ok := q.Take(1)
	require.True(t, ok)
	assert.Equal(t, "62", string(taken.Payload))

	_, ok = q.Take(5)
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, drain(t, q))
}

func TestQueueCursorReportNeedsPendingQuery(t *testing.T) {
	q := New(source.NewScript().Write("\x1b[5;10R\x1b[5;10R").Close())

	q.ExpectCursorReport(true)
	ev, _ := q.Peek(time.Time{})
	assert.Equal(t, KindQueryResponse, ev.Kind)
	q.AdvancePeek(1)
	q.Commit()

	q.ExpectCursorReport(false)
	ev, _ = q.Peek(time.Time{})
	assert.Equal(t, KindKey, ev.Kind)
	assert.Equal(t, key.NameF3, ev.Key.Name)
}

func TestQueueInterrupt(t *testing.T) {
	s := source.NewScript().Write("a")
	q := New(s)

	q.Interrupt()
	ev, st := q.Peek(time.Time{})
	require.Equal(t, StatusOK, st)
	assert.Equal(t, KindInterrupt, ev.Kind)
	q.AdvancePeek(1)
	q.Commit()

	// The script's own wakeup is not reported twice.
	ev, _ = q.Peek(time.Time{})
	assert.Equal(t, "a", ev.String())
}

func TestQueuePushFront(t *testing.T) {
	q := New(nil)
	q.Push(KeyEvent(key.Char('b', key.ModNone)))
	q.PushFront(CheckpointEvent())

	ev, _ := q.Peek(time.Time{})
	assert.Equal(t, KindCheckpoint, ev.Kind)
	ev, _ = q.PeekAt(1, time.Time{})
	assert.Equal(t, "b", ev.String())
}

func TestQueueCompacts(t *testing.T) {
	q := New(nil)
	for i := 0; i < compactThreshold+10; i++ {
		q.Push(KeyEvent(key.Char('x', key.ModNone)))
	}
	q.AdvancePeek(compactThreshold + 5)
	q.Commit()

	assert.Equal(t, 5, q.Pending())
	assert.Equal(t, 0, q.Lookahead())
	assert.Len(t, q.events, 5)
}

func TestQueuePushBytes(t *testing.T) {
	q := New(nil)
	q.PushBytes([]byte("\x1bOP"))
	q.Push(EOFEvent())

	ev, _ := q.Peek(time.Time{})
	assert.Equal(t, key.Named(key.NameF1, key.ModNone), ev.Key)
}
