package source

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReaderReadsUntilEOF(t *testing.T) {
	rd := NewReader(strings.NewReader("hello"), WithLogger(zaptest.NewLogger(t)), WithChunkSize(2))
	defer rd.Close()

	got, st := readAll(rd, time.Time{})
	assert.Equal(t, "hello", got)
	assert.Equal(t, EOF, st)
	assert.NoError(t, rd.Err())
}

func TestReaderDeadline(t *testing.T) {
	pr, pw := io.Pipe()
	rd := NewReader(pr)
	defer rd.Close()

	start := time.Now()
	_, st := rd.TryRead(start.Add(20 * time.Millisecond))
	assert.Equal(t, WouldBlock, st)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	go func() {
		_, _ = pw.Write([]byte("z"))
	}()
	b, st := rd.TryRead(time.Now().Add(time.Second))
	require.Equal(t, OK, st)
	assert.Equal(t, byte('z'), b)

	// An expired deadline returns at once when nothing is buffered.
	_, st = rd.TryRead(time.Now().Add(-time.Second))
	assert.Equal(t, WouldBlock, st)
}

func TestReaderInterrupt(t *testing.T) {
	pr, _ := io.Pipe()
	rd := NewReader(pr)
	defer rd.Close()

	done := make(chan Status, 1)
	go func() {
		_, st := rd.TryRead(time.Time{})
		done <- st
	}()

	time.Sleep(10 * time.Millisecond)
	rd.Interrupt()

	select {
	case st := <-done:
		assert.Equal(t, Interrupted, st)
	case <-time.After(time.Second):
		t.Fatal("TryRead was not interrupted")
	}
}

func TestReaderCloseStopsPump(t *testing.T) {
	pr, pw := io.Pipe()
	rd := NewReader(pr)

	require.NoError(t, rd.Close())
	require.NoError(t, rd.Close())
	_, err := pw.Write([]byte("x"))
	assert.Error(t, err)
}
