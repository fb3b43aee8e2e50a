package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/danielrainer/fish-shell/internal/input"
	"github.com/danielrainer/fish-shell/internal/input/key"
)

type recorder struct {
	calls []Invocation
	err   error
}

func (r *recorder) Run(_ context.Context, inv Invocation) error {
	r.calls = append(r.calls, inv)
	return r.err
}

func binding(keys string, commands ...string) input.Resolution {
	return input.Resolution{
		Kind:     input.ResolvedBinding,
		Commands: commands,
		Keys:     key.MustParseSequence(keys),
		Mode:     "default",
		NextMode: "default",
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}

	assert.False(t, r.Has("execute"))
	r.Register("execute", rec)
	r.RegisterFunc("cancel", func(context.Context, Invocation) error { return nil })

	assert.True(t, r.Has("execute"))
	assert.Same(t, rec, r.Get("execute"))
	assert.Equal(t, []string{"cancel", "execute"}, r.Names())

	assert.True(t, r.Unregister("execute"))
	assert.False(t, r.Unregister("execute"))
	assert.Nil(t, r.Get("execute"))
}

func TestRegistryDispatchRunsCommandsInOrder(t *testing.T) {
	r := NewRegistry(WithRegistryLogger(zaptest.NewLogger(t)))
	var order []string
	for _, name := range []string{"first", "second"} {
		r.RegisterFunc(name, func(_ context.Context, inv Invocation) error {
			order = append(order, inv.Name+":"+inv.Keys.String())
			return nil
		})
	}

	require.NoError(t, r.Dispatch(context.Background(), binding("ctrl-x ctrl-e", "first", "second")))
	assert.Equal(t, []string{"first:ctrl-x ctrl-e", "second:ctrl-x ctrl-e"}, order)
}

func TestRegistryDispatchPassesArgs(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}
	r.Register("commandline", rec)

	require.NoError(t, r.Dispatch(context.Background(), binding("ctrl-space", "commandline -i ' '")))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{"-i", " "}, rec.calls[0].Args)
	assert.Equal(t, "default", rec.calls[0].Mode)
}

func TestRegistryDispatchUnknownCommand(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}
	r.Register("known", rec)

	err := r.Dispatch(context.Background(), binding("a", "missing", "known"))
	require.ErrorIs(t, err, ErrUnknownCommand)
	assert.Len(t, rec.calls, 1, "later commands still run")
}

func TestRegistryFallback(t *testing.T) {
	fallback := &recorder{}
	r := NewRegistry(WithFallback(fallback))

	require.NoError(t, r.Dispatch(context.Background(), binding("a", "anything at all")))
	require.Len(t, fallback.calls, 1)
	assert.Equal(t, "anything", fallback.calls[0].Name)
	assert.Equal(t, []string{"at", "all"}, fallback.calls[0].Args)
}

func TestRegistryDispatchStop(t *testing.T) {
	r := NewRegistry()
	after := &recorder{}
	r.Register("stop", &recorder{err: input.ErrStop})
	r.Register("after", after)

	err := r.Dispatch(context.Background(), binding("ctrl-d", "stop", "after"))
	assert.True(t, errors.Is(err, input.ErrStop))
	assert.Empty(t, after.calls)
}

func TestRegistryDispatchNonBindings(t *testing.T) {
	r := NewRegistry()
	insert := &recorder{}
	eof := &recorder{}
	r.Register(SelfInsertCommand, insert)
	r.Register(EOFCommand, eof)

	ctx := context.Background()
	require.NoError(t, r.Dispatch(ctx, input.Resolution{
		Kind: input.ResolvedSelfInsert,
		Keys: key.Seq(key.Char('x', key.ModNone)),
		Mode: "insert",
	}))
	require.NoError(t, r.Dispatch(ctx, input.Resolution{Kind: input.ResolvedEOF}))
	// Nothing registered for interrupts.
	require.NoError(t, r.Dispatch(ctx, input.Resolution{Kind: input.ResolvedInterrupt}))

	require.Len(t, insert.calls, 1)
	assert.Equal(t, "x", insert.calls[0].Keys.String())
	assert.Equal(t, "insert", insert.calls[0].Mode)
	assert.Len(t, eof.calls, 1)
}
