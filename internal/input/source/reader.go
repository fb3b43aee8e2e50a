package source

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reader adapts an io.Reader to Source. A pump goroutine reads chunks in the
// background so TryRead can honor deadlines and interrupts.
type Reader struct {
	r      io.Reader
	logger *zap.Logger

	chunks    chan []byte
	interrupt chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	// Owned by the reading goroutine.
	pending []byte
	eof     bool

	errMu sync.Mutex
	err   error
}

// NewReader starts a pump over r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	rd := &Reader{
		r:         r,
		logger:    o.logger,
		chunks:    make(chan []byte, 16),
		interrupt: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	rd.wg.Add(1)
	go rd.pump(o.chunkSize)
	return rd
}

func (rd *Reader) pump(size int) {
	defer rd.wg.Done()
	defer close(rd.chunks)

	for {
		select {
		case <-rd.done:
			return
		default:
		}

		buf := make([]byte, size)
		n, err := rd.r.Read(buf)
		if n > 0 {
			select {
			case rd.chunks <- buf[:n]:
			case <-rd.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				rd.logger.Warn("input read failed", zap.Error(err))
				rd.errMu.Lock()
				rd.err = err
				rd.errMu.Unlock()
			}
			return
		}
	}
}

// TryRead implements Source.
func (rd *Reader) TryRead(deadline time.Time) (byte, Status) {
	if len(rd.pending) > 0 {
		return rd.pop(), OK
	}
	if rd.eof {
		return 0, EOF
	}

	// An interrupt that is already posted wins over buffered chunks.
	select {
	case <-rd.interrupt:
		return 0, Interrupted
	default:
	}

	var timeout <-chan time.Time
	if !deadline.IsZero() {
		d := time.Until(deadline)
		if d <= 0 {
			select {
			case chunk, ok := <-rd.chunks:
				return rd.receive(chunk, ok)
			default:
				return 0, WouldBlock
			}
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case chunk, ok := <-rd.chunks:
		return rd.receive(chunk, ok)
	case <-rd.interrupt:
		return 0, Interrupted
	case <-timeout:
		return 0, WouldBlock
	}
}

func (rd *Reader) receive(chunk []byte, ok bool) (byte, Status) {
	if !ok {
		rd.eof = true
		return 0, EOF
	}
	rd.pending = chunk
	return rd.pop(), OK
}

func (rd *Reader) pop() byte {
	b := rd.pending[0]
	rd.pending = rd.pending[1:]
	return b
}

// Interrupt wakes a blocked TryRead. It is safe to call from any goroutine.
// Repeated interrupts before the next read collapse into one.
func (rd *Reader) Interrupt() {
	select {
	case rd.interrupt <- struct{}{}:
	default:
	}
}

// Err returns the read error that stopped the pump, if it was not EOF.
func (rd *Reader) Err() error {
	rd.errMu.Lock()
	defer rd.errMu.Unlock()
	return rd.err
}

// Close stops the pump. If the underlying reader is an io.Closer it is
// closed so a blocked Read returns; Close waits for the pump to exit.
func (rd *Reader) Close() error {
	var err error
	rd.closeOnce.Do(func() {
		close(rd.done)
		if c, ok := rd.r.(io.Closer); ok {
			err = c.Close()
		}
		rd.wg.Wait()
	})
	return err
}
