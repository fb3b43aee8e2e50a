package source

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// Terminal is a Source backed by the controlling terminal. tcell's Tty puts
// the device into raw mode on Start and restores it on Stop; bytes are
// delivered unprocessed so escape decoding stays with the input queue.
//
// Terminal also implements io.Writer for terminal query probes.
type Terminal struct {
	tty    tcell.Tty
	reader *Reader
	logger *zap.Logger

	mu       sync.Mutex
	onResize func()
	stopped  bool
}

// OpenTerminal opens /dev/tty.
func OpenTerminal(opts ...Option) (*Terminal, error) {
	tty, err := tcell.NewDevTty()
	if err != nil {
		return nil, fmt.Errorf("open tty: %w", err)
	}
	return NewTerminal(tty, opts...)
}

// NewTerminal starts tty and begins reading from it.
func NewTerminal(tty tcell.Tty, opts ...Option) (*Terminal, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := tty.Start(); err != nil {
		return nil, fmt.Errorf("start tty: %w", err)
	}

	t := &Terminal{
		tty:    tty,
		logger: o.logger,
	}
	tty.NotifyResize(t.resized)
	t.reader = NewReader(tty, opts...)

	t.logger.Debug("terminal started")
	return t, nil
}

func (t *Terminal) resized() {
	t.mu.Lock()
	cb := t.onResize
	t.mu.Unlock()

	t.logger.Debug("terminal resized")
	if cb != nil {
		cb()
	}
}

// OnResize registers a callback run when the terminal window changes size.
func (t *Terminal) OnResize(cb func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResize = cb
}

// TryRead implements Source.
func (t *Terminal) TryRead(deadline time.Time) (byte, Status) {
	return t.reader.TryRead(deadline)
}

// Interrupt implements Interrupter.
func (t *Terminal) Interrupt() {
	t.reader.Interrupt()
}

// Write sends bytes to the terminal.
func (t *Terminal) Write(p []byte) (int, error) {
	return t.tty.Write(p)
}

// Close restores the terminal mode and releases the device.
func (t *Terminal) Close() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	t.tty.NotifyResize(nil)

	// Drain wakes the pump's pending Read.
	err := t.tty.Drain()
	err = errors.Join(err, t.tty.Stop())
	err = errors.Join(err, t.reader.Close())

	t.logger.Debug("terminal stopped", zap.Error(err))
	return err
}
