// Package source provides the byte producers the input queue reads from.
//
// Every producer implements Source, a single TryRead method with an explicit
// deadline, so the queue has exactly one place where it can block.
package source

import (
	"fmt"
	"time"
)

// Status is the outcome of a TryRead call.
type Status int

const (
	// OK means a byte was read.
	OK Status = iota

	// WouldBlock means the deadline passed with no data.
	WouldBlock

	// EOF means the source is exhausted.
	EOF

	// Interrupted means Interrupt was called while (or before) reading.
	Interrupted
)

var statusNames = [...]string{
	OK:          "ok",
	WouldBlock:  "would-block",
	EOF:         "eof",
	Interrupted: "interrupted",
}

// String returns the status name.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", s)
}

// Source produces raw terminal input bytes.
type Source interface {
	// TryRead returns the next byte, blocking until deadline at most.
	// A zero deadline blocks until data, EOF or an interrupt.
	TryRead(deadline time.Time) (byte, Status)
}

// Interrupter is implemented by sources whose blocked reads can be woken
// from another goroutine.
type Interrupter interface {
	Interrupt()
}
