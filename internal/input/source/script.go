package source

import (
	"sync"
	"time"
)

type step struct {
	data []byte
	gap  time.Duration
	eof  bool
}

// Script is a scripted Source for tests and replay. Gaps between writes are
// virtual: a read whose deadline is closer than the remaining gap returns
// WouldBlock immediately and the gap shrinks by the time the caller was
// willing to wait. No real sleeping happens, so timeout paths are
// deterministic.
//
// When the script runs out, reads with a deadline return WouldBlock and reads
// without one return EOF. Close ends the script with an explicit EOF.
type Script struct {
	mu          sync.Mutex
	steps       []step
	interrupted bool
	reads       int
}

// NewScript creates an empty script.
func NewScript() *Script {
	return &Script{}
}

// Write queues bytes that are available immediately after what precedes them.
func (s *Script) Write(data string) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, step{data: []byte(data)})
	return s
}

// Pause delays the next Write by d.
func (s *Script) Pause(d time.Duration) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, step{gap: d})
	return s
}

// Close ends the script with EOF.
func (s *Script) Close() *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, step{eof: true})
	return s
}

// Interrupt implements Interrupter.
func (s *Script) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interrupted = true
}

// Reads returns how many bytes have been delivered.
func (s *Script) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// TryRead implements Source.
func (s *Script) TryRead(deadline time.Time) (byte, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.interrupted {
		s.interrupted = false
		return 0, Interrupted
	}

	for len(s.steps) > 0 {
		st := &s.steps[0]
		switch {
		case st.eof:
			return 0, EOF
		case st.gap > 0:
			if deadline.IsZero() {
				s.steps = s.steps[1:]
				continue
			}
			budget := time.Until(deadline)
			if budget < st.gap {
				if budget > 0 {
					st.gap -= budget
				}
				return 0, WouldBlock
			}
			s.steps = s.steps[1:]
		case len(st.data) == 0:
			s.steps = s.steps[1:]
		default:
			b := st.data[0]
			st.data = st.data[1:]
			s.reads++
			return b, OK
		}
	}

	if deadline.IsZero() {
		return 0, EOF
	}
	return 0, WouldBlock
}
