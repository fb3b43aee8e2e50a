package decode

import (
	"fmt"

	"github.com/danielrainer/fish-shell/internal/input/key"
)

// ReplyID identifies the kind of terminal reply a token carries.
type ReplyID uint8

const (
	// ReplyNone marks a key token.
	ReplyNone ReplyID = iota

	// ReplyDeviceAttributes is the primary device attribute reply: CSI ? ... c
	ReplyDeviceAttributes

	// ReplyCursorPosition is the cursor position report: CSI row ; col R
	ReplyCursorPosition

	// ReplyXTVersion is the terminal name and version: DCS > | text ST
	ReplyXTVersion

	// ReplyKittyKeyboard is the kitty keyboard flags reply: CSI ? flags u
	ReplyKittyKeyboard

	// ReplyBackgroundColor is the OSC 11 color reply: OSC 11 ; rgb:... ST
	ReplyBackgroundColor

	// ReplyOther is any other well-formed terminal report (mouse, focus,
	// paste markers, unrecognized OSC/DCS strings).
	ReplyOther
)

var replyNames = [...]string{
	ReplyNone:             "none",
	ReplyDeviceAttributes: "primary-device-attribute",
	ReplyCursorPosition:   "cursor-position",
	ReplyXTVersion:        "xtversion",
	ReplyKittyKeyboard:    "kitty-keyboard",
	ReplyBackgroundColor:  "background-color",
	ReplyOther:            "other",
}

// String returns the reply name.
func (r ReplyID) String() string {
	if int(r) < len(replyNames) {
		return replyNames[r]
	}
	return fmt.Sprintf("ReplyID(%d)", r)
}

// Token is one decoded unit: a key, or a terminal reply with its payload.
type Token struct {
	Key     key.Key
	Reply   ReplyID
	Payload []byte
}

// KeyToken wraps a key.
func KeyToken(k key.Key) Token {
	return Token{Key: k}
}

// ReplyToken creates a reply token.
func ReplyToken(id ReplyID, payload []byte) Token {
	return Token{Reply: id, Payload: payload}
}

// IsReply returns true if the token is a terminal reply rather than a key.
func (t Token) IsReply() bool {
	return t.Reply != ReplyNone
}

// String returns a readable form for logging.
func (t Token) String() string {
	if t.IsReply() {
		return fmt.Sprintf("reply(%s %q)", t.Reply, t.Payload)
	}
	return t.Key.String()
}
