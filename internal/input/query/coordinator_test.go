package query

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/danielrainer/fish-shell/internal/input/decode"
	"github.com/danielrainer/fish-shell/internal/input/key"
	"github.com/danielrainer/fish-shell/internal/input/queue"
	"github.com/danielrainer/fish-shell/internal/input/source"
)

type recorder struct {
	replies []Reply
}

func (r *recorder) done(rep Reply) {
	r.replies = append(r.replies, rep)
}

func newCoordinator(t *testing.T, script *source.Script, opts ...Option) (*Coordinator, *queue.Queue, *bytes.Buffer) {
	t.Helper()
	q := queue.New(script)
	var out bytes.Buffer
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(&out, q, opts...), q, &out
}

func peekKeys(t *testing.T, q *queue.Queue, n int) []key.Key {
	t.Helper()
	var keys []key.Key
	for i := 0; i < n; i++ {
		ev, st := q.PeekAt(i, time.Now().Add(10*time.Millisecond))
		require.Equal(t, queue.StatusOK, st)
		require.Equal(t, queue.KindKey, ev.Kind, "event %d is %s", i, ev)
		keys = append(keys, ev.Key)
	}
	return keys
}

func TestIssueWritesProbe(t *testing.T) {
	c, _, out := newCoordinator(t, source.NewScript())

	token, err := c.Issue(PrimaryDeviceAttribute, nil)
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", token.String())
	assert.Equal(t, "\x1b[c", out.String())

	id, ok := c.Pending()
	assert.True(t, ok)
	assert.Equal(t, PrimaryDeviceAttribute, id)
}

func TestIssueExclusive(t *testing.T) {
	c, _, out := newCoordinator(t, source.NewScript())

	_, err := c.Issue(PrimaryDeviceAttribute, nil)
	require.NoError(t, err)

	_, err = c.Issue(CursorPosition, nil)
	assert.ErrorIs(t, err, ErrQueryPending)
	assert.Equal(t, "\x1b[c", out.String())
}

func TestIssueUnknown(t *testing.T) {
	c, _, _ := newCoordinator(t, source.NewScript())
	_, err := c.Issue(ID(99), nil)
	assert.ErrorIs(t, err, ErrUnknownQuery)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("tty gone")
}

func TestIssueWriteError(t *testing.T) {
	c := New(failingWriter{}, queue.New(nil))
	_, err := c.Issue(XTVersion, nil)
	require.Error(t, err)

	_, ok := c.Pending()
	assert.False(t, ok)
}

func TestWaitKeepsKeysAroundReply(t *testing.T) {
	script := source.NewScript().Write("ab\x1b[?64;1cd")
	c, q, _ := newCoordinator(t, script)

	var rec recorder
	_, err := c.Issue(PrimaryDeviceAttribute, rec.done)
	require.NoError(t, err)

	assert.True(t, c.Wait())
	require.Len(t, rec.replies, 1)
	assert.False(t, rec.replies[0].TimedOut)
	assert.Equal(t, PrimaryDeviceAttribute, rec.replies[0].ID)
	assert.Equal(t, []byte("64;1"), rec.replies[0].Payload)

	assert.Equal(t, key.MustParseSequence("a b d"), key.Sequence(peekKeys(t, q, 3)))
	assert.Equal(t, 0, q.Lookahead())

	_, ok := c.Pending()
	assert.False(t, ok)
	assert.False(t, c.Wait())
}

func TestWaitTimeout(t *testing.T) {
	script := source.NewScript().Write("x").Pause(time.Hour).Write("\x1b[?62c")
	c, q, _ := newCoordinator(t, script, WithTimeout(20*time.Millisecond))

	var rec recorder
	_, err := c.Issue(PrimaryDeviceAttribute, rec.done)
	require.NoError(t, err)

	assert.True(t, c.Wait())
	require.Len(t, rec.replies, 1)
	assert.True(t, rec.replies[0].TimedOut)
	assert.Nil(t, rec.replies[0].Payload)

	assert.Equal(t, []key.Key{key.Char('x', key.ModNone)}, peekKeys(t, q, 1))
	assert.Equal(t, Stats{Issued: 1, TimedOut: 1}, c.Stats())
}

func TestWaitInterrupted(t *testing.T) {
	script := source.NewScript().Pause(time.Hour)
	c, q, _ := newCoordinator(t, script)

	var rec recorder
	_, err := c.Issue(BackgroundColor, rec.done)
	require.NoError(t, err)

	q.Interrupt()
	assert.True(t, c.Wait())
	require.Len(t, rec.replies, 1)
	assert.True(t, rec.replies[0].TimedOut)

	ev, st := q.Peek(time.Now())
	require.Equal(t, queue.StatusOK, st)
	assert.Equal(t, queue.KindInterrupt, ev.Kind)
}

func TestWaitSkipsOtherReplies(t *testing.T) {
	script := source.NewScript().Write("\x1b]11;rgb:0/0/0\x1b\\q\x1b[?1u")
	c, q, _ := newCoordinator(t, script)

	var rec recorder
	_, err := c.Issue(KittyKeyboard, rec.done)
	require.NoError(t, err)

	c.Wait()
	require.Len(t, rec.replies, 1)
	assert.Equal(t, []byte("1"), rec.replies[0].Payload)

	ev, st := q.PeekAt(0, time.Now())
	require.Equal(t, queue.StatusOK, st)
	assert.Equal(t, queue.KindQueryResponse, ev.Kind)
	assert.Equal(t, decode.ReplyBackgroundColor, ev.Reply)

	ev, _ = q.PeekAt(1, time.Now())
	assert.Equal(t, key.Char('q', key.ModNone), ev.Key)
}

func TestCursorPositionReply(t *testing.T) {
	script := source.NewScript().Write("\x1b[5;10R").Write("\x1b[1;5R")
	c, q, out := newCoordinator(t, script)

	var rec recorder
	_, err := c.Issue(CursorPosition, rec.done)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[6n", out.String())

	c.Wait()
	require.Len(t, rec.replies, 1)
	row, col, err := ParseCursorPosition(rec.replies[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, 5, row)
	assert.Equal(t, 10, col)

	// With no query outstanding the same shape is ctrl-f3.
	assert.Equal(t, []key.Key{key.Named(key.NameF3, key.ModCtrl)}, peekKeys(t, q, 1))
}

func TestDoneMayIssueNext(t *testing.T) {
	script := source.NewScript().Write("\x1b[?62c\x1bP>|xterm(390)\x1b\\")
	c, _, out := newCoordinator(t, script)

	var rec recorder
	_, err := c.Issue(PrimaryDeviceAttribute, func(r Reply) {
		rec.done(r)
		_, err := c.Issue(XTVersion, rec.done)
		assert.NoError(t, err)
	})
	require.NoError(t, err)

	c.Wait()
	c.Wait()
	require.Len(t, rec.replies, 2)
	assert.Equal(t, XTVersion, rec.replies[1].ID)
	assert.Equal(t, []byte("xterm(390)"), rec.replies[1].Payload)
	assert.Equal(t, "\x1b[c\x1b[>0q", out.String())
	assert.Equal(t, Stats{Issued: 2, Answered: 2}, c.Stats())
}

func TestCancel(t *testing.T) {
	c, _, _ := newCoordinator(t, source.NewScript())

	var rec recorder
	_, err := c.Issue(XTVersion, rec.done)
	require.NoError(t, err)

	c.Cancel()
	c.Cancel()
	require.Len(t, rec.replies, 1)
	assert.True(t, rec.replies[0].TimedOut)

	_, err = c.Issue(XTVersion, nil)
	assert.NoError(t, err)
}

func TestParseID(t *testing.T) {
	for _, id := range []ID{PrimaryDeviceAttribute, CursorPosition, XTVersion, KittyKeyboard, BackgroundColor} {
		got, err := ParseID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, got)
		assert.NotEmpty(t, id.Probe())
	}

	_, err := ParseID("nope")
	assert.ErrorIs(t, err, ErrUnknownQuery)
	assert.Equal(t, "ID(0)", ID(0).String())
}

func TestParseCursorPositionErrors(t *testing.T) {
	for _, payload := range []string{"", "5", "a;1", "1;b"} {
		_, _, err := ParseCursorPosition([]byte(payload))
		assert.Error(t, err, payload)
	}
}
