package input

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/danielrainer/fish-shell/internal/input/queue"
	"github.com/danielrainer/fish-shell/internal/input/source"
)

type collector struct {
	got []Resolution
	err error
}

func (c *collector) Dispatch(_ context.Context, res Resolution) error {
	c.got = append(c.got, res)
	return c.err
}

func TestSessionRunUntilEOF(t *testing.T) {
	tbl := newTable(t, bind{keys: "ctrl-a", command: "beginning-of-line"})
	q := queue.New(source.NewScript().Write("\x01hi").Close())
	var c collector

	s := NewSession(newResolver(t, q, tbl), &c, WithSessionLogger(zaptest.NewLogger(t)))
	require.NoError(t, s.Run(context.Background()))

	require.Len(t, c.got, 4)
	requireBinding(t, c.got[0], "beginning-of-line")
	requireSelfInsert(t, c.got[1], 'h')
	requireSelfInsert(t, c.got[2], 'i')
	assert.Equal(t, ResolvedEOF, c.got[3].Kind)

	snap := s.Resolver().Metrics().Snapshot()
	assert.Equal(t, uint64(4), snap.Resolutions())
	assert.Equal(t, uint64(1), snap.Bindings)
	assert.Equal(t, uint64(2), snap.SelfInserts)
}

func TestSessionDispatcherStop(t *testing.T) {
	q := pushed("a b c")
	var n int
	d := DispatcherFunc(func(context.Context, Resolution) error {
		n++
		if n == 2 {
			return ErrStop
		}
		return nil
	})

	s := NewSession(newResolver(t, q, nil), d)
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, q.Pending())
}

func TestSessionDispatchErrorsContinue(t *testing.T) {
	c := collector{err: errors.New("unknown command")}
	s := NewSession(newResolver(t, pushed("a b"), nil), &c)

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, c.got, 3)
	assert.Equal(t, uint64(3), s.Resolver().Metrics().Snapshot().DispatchErrors)
}

func TestSessionCancelInterruptsRead(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	rd := source.NewReader(pr)
	defer rd.Close()

	var c collector
	s := NewSession(newResolver(t, queue.New(rd), nil), &c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	_, err := pw.Write([]byte("x"))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	require.NotEmpty(t, c.got)
	requireSelfInsert(t, c.got[0], 'x')
	assert.Equal(t, ResolvedInterrupt, c.got[len(c.got)-1].Kind)
}

func TestSessionStageSwapsTable(t *testing.T) {
	var c collector
	s := NewSession(newResolver(t, pushed("k k"), nil), &c)

	_, err := s.Step(context.Background())
	require.NoError(t, err)
	requireSelfInsert(t, c.got[0], 'k')

	s.Stage(newTable(t, bind{keys: "j", command: "old"}))
	s.Stage(newTable(t, bind{keys: "k", command: "kill"}))

	res, err := s.Step(context.Background())
	require.NoError(t, err)
	requireBinding(t, res, "kill")
	assert.Equal(t, uint64(1), s.Resolver().Metrics().Snapshot().Reloads)
}

func TestSessionHooks(t *testing.T) {
	var c collector
	hooks := NewHookManager()
	var order []string

	hooks.RegisterWithOptions(FuncHook{
		BeforeFunc: func(res *Resolution) bool {
			order = append(order, "low")
			return false
		},
	}, "low", HookPriorityLow)
	hooks.RegisterWithOptions(FuncHook{
		BeforeFunc: func(res *Resolution) bool {
			order = append(order, "high")
			k, _ := res.Key()
			return k.Rune == 'x'
		},
		AfterFunc: func(res *Resolution, err error) {
			order = append(order, "after")
		},
	}, "high", HookPriorityHigh)
	hooks.Register(LoggingHook{Logger: zaptest.NewLogger(t)})

	s := NewSession(newResolver(t, pushed("x y"), nil), &c, WithHooks(hooks))

	_, err := s.Step(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.got)
	assert.Equal(t, []string{"high"}, order)

	_, err = s.Step(context.Background())
	require.NoError(t, err)
	require.Len(t, c.got, 1)
	assert.Equal(t, []string{"high", "high", "low", "after"}, order)
	assert.Equal(t, uint64(1), s.Resolver().Metrics().Snapshot().HookConsumptions)
}

func TestHookManagerRegistration(t *testing.T) {
	m := NewHookManager()
	id := m.Register(BaseHook{})
	m.RegisterWithOptions(BaseHook{}, "named", HookPriorityNormal)
	m.RegisterWithOptions(BaseHook{}, "named", HookPriorityLowest)
	assert.Equal(t, 2, m.Count())

	assert.True(t, m.UnregisterByName("named"))
	assert.False(t, m.UnregisterByName("named"))
	assert.True(t, m.Unregister(id))
	assert.Equal(t, 0, m.Count())
}

func TestSessionID(t *testing.T) {
	a := NewSession(newResolver(t, pushed(""), nil), nil)
	b := NewSession(newResolver(t, pushed(""), nil), nil)
	assert.NotEqual(t, a.ID(), b.ID())
}
