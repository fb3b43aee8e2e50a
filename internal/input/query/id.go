package query

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielrainer/fish-shell/internal/input/decode"
)

// ID identifies a query kind.
type ID uint8

const (
	// PrimaryDeviceAttribute asks for DA1; every terminal answers it.
	PrimaryDeviceAttribute ID = iota + 1

	// CursorPosition asks for a cursor position report.
	CursorPosition

	// XTVersion asks for the terminal name and version.
	XTVersion

	// KittyKeyboard asks for the kitty keyboard protocol flags.
	KittyKeyboard

	// BackgroundColor asks for the background color.
	BackgroundColor
)

type idInfo struct {
	name  string
	probe string
	reply decode.ReplyID
}

var ids = map[ID]idInfo{
	PrimaryDeviceAttribute: {"primary-device-attribute", "\x1b[c", decode.ReplyDeviceAttributes},
	CursorPosition:         {"cursor-position", "\x1b[6n", decode.ReplyCursorPosition},
	XTVersion:              {"xtversion", "\x1b[>0q", decode.ReplyXTVersion},
	KittyKeyboard:          {"kitty-keyboard", "\x1b[?u", decode.ReplyKittyKeyboard},
	BackgroundColor:        {"background-color", "\x1b]11;?\x1b\\", decode.ReplyBackgroundColor},
}

// ErrUnknownQuery is returned for an ID or name that is not a query.
var ErrUnknownQuery = errors.New("unknown query")

func (id ID) String() string {
	if info, ok := ids[id]; ok {
		return info.name
	}
	return fmt.Sprintf("ID(%d)", uint8(id))
}

// Valid reports whether id is a known query.
func (id ID) Valid() bool {
	_, ok := ids[id]
	return ok
}

// Probe returns the bytes written to the terminal.
func (id ID) Probe() []byte {
	return []byte(ids[id].probe)
}

// Reply returns the decoded reply kind that answers id.
func (id ID) Reply() decode.ReplyID {
	return ids[id].reply
}

// ParseID parses a query name as printed by ID.String.
func ParseID(name string) (ID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for id, info := range ids {
		if info.name == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQuery, name)
}

// ParseCursorPosition parses a cursor position reply payload ("row;col").
// Rows and columns are 1-based.
func ParseCursorPosition(payload []byte) (row, col int, err error) {
	r, c, ok := bytes.Cut(payload, []byte(";"))
	if !ok {
		return 0, 0, fmt.Errorf("malformed cursor position %q", payload)
	}
	if row, err = strconv.Atoi(string(r)); err != nil {
		return 0, 0, fmt.Errorf("cursor row: %w", err)
	}
	if col, err = strconv.Atoi(string(c)); err != nil {
		return 0, 0, fmt.Errorf("cursor column: %w", err)
	}
	return row, col, nil
}
