package queue

import (
	"fmt"

	"github.com/danielrainer/fish-shell/internal/input/decode"
	"github.com/danielrainer/fish-shell/internal/input/key"
)

// Kind tags an Event.
type Kind uint8

const (
	// KindKey is a decoded keystroke.
	KindKey Kind = iota

	// KindRawByte is an input byte not yet decoded.
	KindRawByte

	// KindQueryResponse is a terminal reply to a capability query.
	KindQueryResponse

	// KindEOF marks the end of input.
	KindEOF

	// KindCheckpoint marks a commit point and carries no input.
	KindCheckpoint

	// KindInterrupt is injected when input is interrupted from outside.
	KindInterrupt
)

var kindNames = [...]string{
	KindKey:           "key",
	KindRawByte:       "raw-byte",
	KindQueryResponse: "query-response",
	KindEOF:           "eof",
	KindCheckpoint:    "checkpoint",
	KindInterrupt:     "interrupt",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Event is one item in the queue.
type Event struct {
	Kind Kind

	// Key is set for KindKey.
	Key key.Key

	// Byte is set for KindRawByte.
	Byte byte

	// Reply and Payload are set for KindQueryResponse.
	Reply   decode.ReplyID
	Payload []byte
}

// KeyEvent creates a key event.
func KeyEvent(k key.Key) Event {
	return Event{Kind: KindKey, Key: k}
}

// KeyEvents creates one key event per key.
func KeyEvents(keys ...key.Key) []Event {
	events := make([]Event, len(keys))
	for i, k := range keys {
		events[i] = KeyEvent(k)
	}
	return events
}

// RawByteEvent creates an undecoded byte event.
func RawByteEvent(b byte) Event {
	return Event{Kind: KindRawByte, Byte: b}
}

// ResponseEvent creates a query response event.
func ResponseEvent(reply decode.ReplyID, payload []byte) Event {
	return Event{Kind: KindQueryResponse, Reply: reply, Payload: payload}
}

// EOFEvent creates an end-of-input event.
func EOFEvent() Event {
	return Event{Kind: KindEOF}
}

// CheckpointEvent creates a checkpoint marker.
func CheckpointEvent() Event {
	return Event{Kind: KindCheckpoint}
}

// InterruptEvent creates an interrupt event.
func InterruptEvent() Event {
	return Event{Kind: KindInterrupt}
}

func fromToken(t decode.Token) Event {
	if t.IsReply() {
		return ResponseEvent(t.Reply, t.Payload)
	}
	return KeyEvent(t.Key)
}

// IsKey returns true for key events.
func (e Event) IsKey() bool {
	return e.Kind == KindKey
}

// String returns a readable form for logging.
func (e Event) String() string {
	switch e.Kind {
	case KindKey:
		return e.Key.String()
	case KindRawByte:
		return fmt.Sprintf("raw(%#02x)", e.Byte)
	case KindQueryResponse:
		return fmt.Sprintf("response(%s %q)", e.Reply, e.Payload)
	default:
		return e.Kind.String()
	}
}
