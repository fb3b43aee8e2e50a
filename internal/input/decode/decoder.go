package decode

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"github.com/danielrainer/fish-shell/internal/input/key"
)

const (
	esc = 0x1b
	bel = 0x07
	del = 0x7f
)

// InvalidByteBase is the start of the private-use range invalid UTF-8 bytes
// are mapped into.
const InvalidByteBase = 0xF600

// Status reports whether a decode attempt produced a result.
type Status int

const (
	// Complete means Consumed bytes decoded into Tokens.
	Complete Status = iota

	// NeedMore means the bytes are a valid prefix of a longer sequence.
	NeedMore
)

// Result is the outcome of Decoder.Decode.
type Result struct {
	Status   Status
	Consumed int
	Tokens   []Token
}

func complete(n int, tokens ...Token) Result {
	return Result{Status: Complete, Consumed: n, Tokens: tokens}
}

var needMore = Result{Status: NeedMore}

// Decoder decodes terminal input. The zero value is ready to use.
type Decoder struct {
	cursorReport bool
}

// New creates a decoder.
func New() *Decoder {
	return &Decoder{}
}

// ExpectCursorReport tells the decoder whether a cursor position query is
// outstanding. CSI row;col R is a cursor report only while one is; otherwise
// it is a modified F3.
func (d *Decoder) ExpectCursorReport(on bool) {
	d.cursorReport = on
}

// Decode decodes the sequence at the start of buf.
func (d *Decoder) Decode(buf []byte) Result {
	if len(buf) == 0 {
		return needMore
	}

	b := buf[0]
	switch {
	case b == esc:
		return d.decodeEscape(buf)
	case b < utf8.RuneSelf:
		return complete(1, KeyToken(byteKey(b)))
	default:
		return decodeUTF8(buf)
	}
}

// Flush degrades buf to literal keys in original order. A lone ESC becomes
// escape; an ESC and one other byte become that key with alt.
func (d *Decoder) Flush(buf []byte) []Token {
	if len(buf) == 2 && buf[0] == esc && buf[1] != esc {
		return []Token{KeyToken(literal(buf[1:2])[0].Key.WithMods(key.ModAlt))}
	}
	return literal(buf)
}

func literal(buf []byte) []Token {
	tokens := make([]Token, 0, len(buf))
	for len(buf) > 0 {
		b := buf[0]
		if b < utf8.RuneSelf {
			tokens = append(tokens, KeyToken(byteKey(b)))
			buf = buf[1:]
			continue
		}
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size <= 1 {
			r, size = InvalidByteBase+rune(b), 1
		}
		tokens = append(tokens, KeyToken(key.Char(r, key.ModNone)))
		buf = buf[size:]
	}
	return tokens
}

// byteKey maps a single ASCII byte to its key.
func byteKey(b byte) key.Key {
	switch {
	case b == 0:
		return key.Char(' ', key.ModCtrl)
	case b == '\t':
		return key.Named(key.NameTab, key.ModNone)
	case b == '\r':
		return key.Named(key.NameEnter, key.ModNone)
	case b == esc:
		return key.Named(key.NameEscape, key.ModNone)
	case b == del:
		return key.Named(key.NameBackspace, key.ModNone)
	case b <= 0x1a:
		return key.Ctrl(rune('a' + b - 1))
	case b < 0x20:
		// 0x1c-0x1f: ctrl-\ ctrl-] ctrl-^ ctrl-_
		return key.Ctrl(rune(b + 0x40))
	default:
		return key.Char(rune(b), key.ModNone)
	}
}

func decodeUTF8(buf []byte) Result {
	if !utf8.FullRune(buf) {
		return needMore
	}
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		return complete(1, KeyToken(key.Char(InvalidByteBase+rune(buf[0]), key.ModNone)))
	}
	return complete(size, KeyToken(key.Char(r, key.ModNone)))
}

func (d *Decoder) decodeEscape(buf []byte) Result {
	if len(buf) < 2 {
		return needMore
	}

	switch buf[1] {
	case '[':
		return d.decodeCSI(buf)
	case 'O':
		return decodeSS3(buf)
	case ']':
		return decodeOSC(buf)
	case 'P':
		return decodeDCS(buf)
	case esc:
		// ESC ESC [ A: some terminals send alt as a second ESC prefix.
		if len(buf) < 3 {
			return needMore
		}
		if buf[2] != '[' && buf[2] != 'O' {
			return complete(1, KeyToken(byteKey(esc)))
		}
		inner := d.Decode(buf[1:])
		if inner.Status == NeedMore {
			return needMore
		}
		if len(inner.Tokens) == 1 && !inner.Tokens[0].IsReply() {
			return complete(inner.Consumed+1, KeyToken(inner.Tokens[0].Key.WithMods(key.ModAlt)))
		}
		return complete(1, KeyToken(byteKey(esc)))
	}

	inner := d.Decode(buf[1:])
	if inner.Status == NeedMore {
		return needMore
	}
	return complete(inner.Consumed+1, KeyToken(inner.Tokens[0].Key.WithMods(key.ModAlt)))
}

func decodeSS3(buf []byte) Result {
	if len(buf) < 3 {
		return needMore
	}

	var name key.Name
	mods := key.ModNone
	switch c := buf[2]; c {
	case 'A':
		name = key.NameUp
	case 'B':
		name = key.NameDown
	case 'C':
		name = key.NameRight
	case 'D':
		name = key.NameLeft
	case 'H':
		name = key.NameHome
	case 'F':
		name = key.NameEnd
	case 'P', 'Q', 'R', 'S':
		name = key.FunctionKey(int(c-'P') + 1)
	case 'a', 'b', 'c', 'd':
		// rxvt ctrl-arrows
		name = []key.Name{key.NameUp, key.NameDown, key.NameRight, key.NameLeft}[c-'a']
		mods = key.ModCtrl
	case 'M':
		name = key.NameEnter
	default:
		return complete(3, literal(buf[:3])...)
	}
	return complete(3, KeyToken(key.Named(name, mods)))
}

// csiParams splits "1;5" into numbers. Kitty sub-parameters ("97:65") keep
// only their first field. Missing values are 0.
func csiParams(raw []byte) []int {
	if len(raw) == 0 {
		return nil
	}
	fields := bytes.Split(raw, []byte{';'})
	params := make([]int, len(fields))
	for i, f := range fields {
		if j := bytes.IndexByte(f, ':'); j >= 0 {
			f = f[:j]
		}
		n, _ := strconv.Atoi(string(f))
		params[i] = n
	}
	return params
}

func param(params []int, index, defaultValue int) int {
	if index < len(params) && params[index] > 0 {
		return params[index]
	}
	return defaultValue
}

var tildeKeys = map[int]key.Name{
	1:  key.NameHome,
	2:  key.NameInsert,
	3:  key.NameDelete,
	4:  key.NameEnd,
	5:  key.NamePageUp,
	6:  key.NamePageDown,
	7:  key.NameHome,
	8:  key.NameEnd,
	11: key.NameF1,
	12: key.NameF2,
	13: key.NameF3,
	14: key.NameF4,
	15: key.NameF5,
	17: key.NameF6,
	18: key.NameF7,
	19: key.NameF8,
	20: key.NameF9,
	21: key.NameF10,
	23: key.NameF11,
	24: key.NameF12,
}

var letterKeys = map[byte]key.Name{
	'A': key.NameUp,
	'B': key.NameDown,
	'C': key.NameRight,
	'D': key.NameLeft,
	'H': key.NameHome,
	'F': key.NameEnd,
	'P': key.NameF1,
	'Q': key.NameF2,
	'R': key.NameF3,
	'S': key.NameF4,
}

func (d *Decoder) decodeCSI(buf []byte) Result {
	// ESC [ params intermediates final
	i := 2
	for ; i < len(buf); i++ {
		c := buf[i]
		if c >= 0x40 && c <= 0x7e {
			break
		}
		if c < 0x20 || c > 0x3f {
			// Not a CSI byte: the prefix was literal input.
			return complete(i, literal(buf[:i])...)
		}
	}
	if i >= len(buf) {
		return needMore
	}

	n := i + 1
	raw := buf[2:i]
	final := buf[i]

	if len(raw) > 0 && (raw[0] == '?' || raw[0] == '>' || raw[0] == '<' || raw[0] == '=') {
		payload := append([]byte(nil), raw[1:]...)
		switch {
		case raw[0] == '?' && final == 'c':
			return complete(n, ReplyToken(ReplyDeviceAttributes, payload))
		case raw[0] == '?' && final == 'u':
			return complete(n, ReplyToken(ReplyKittyKeyboard, payload))
		default:
			return complete(n, ReplyToken(ReplyOther, append([]byte(nil), buf[:n]...)))
		}
	}

	// Intermediate bytes only appear in reports we do not decode as keys.
	if bytes.ContainsAny(raw, " !\"#$%&'()*+,-./") {
		return complete(n, ReplyToken(ReplyOther, append([]byte(nil), buf[:n]...)))
	}

	params := csiParams(raw)
	mods := key.FromXterm(param(params, 1, 1))

	switch final {
	case 'R':
		if d.cursorReport && len(params) == 2 {
			return complete(n, ReplyToken(ReplyCursorPosition, append([]byte(nil), raw...)))
		}
		return complete(n, KeyToken(key.Named(key.NameF3, mods)))
	case 'Z':
		return complete(n, KeyToken(key.Named(key.NameTab, mods.With(key.ModShift))))
	case '~':
		code := param(params, 0, 0)
		if code == 200 || code == 201 {
			return complete(n, ReplyToken(ReplyOther, append([]byte(nil), buf[:n]...)))
		}
		if name, ok := tildeKeys[code]; ok {
			return complete(n, KeyToken(key.Named(name, mods)))
		}
	case 'u':
		return complete(n, KeyToken(kittyKey(param(params, 0, 0), mods)))
	case 'I', 'O':
		// focus in/out
		return complete(n, ReplyToken(ReplyOther, append([]byte(nil), buf[:n]...)))
	default:
		if name, ok := letterKeys[final]; ok {
			return complete(n, KeyToken(key.Named(name, mods)))
		}
	}

	return complete(n, literal(buf[:n])...)
}

// kittyKey maps a kitty keyboard protocol code point to a key.
func kittyKey(code int, mods key.Modifier) key.Key {
	switch code {
	case 27:
		return key.Named(key.NameEscape, mods)
	case 13:
		return key.Named(key.NameEnter, mods)
	case 9:
		return key.Named(key.NameTab, mods)
	case 127, 8:
		return key.Named(key.NameBackspace, mods)
	}
	r := rune(code)
	if mods.HasShift() && r >= 'a' && r <= 'z' {
		// Same key as legacy input reports for shift+letter.
		return key.Char(r-'a'+'A', mods.Without(key.ModShift))
	}
	return key.Char(r, mods)
}

// stringEnd finds the terminator of an OSC or DCS string starting at from.
// It returns where the payload ends and the index just past the terminator,
// or -1, -1 if the string is unterminated. ESC \ always terminates; BEL only
// when allowBEL is set.
func stringEnd(buf []byte, from int, allowBEL bool) (payloadEnd, end int) {
	for i := from; i < len(buf); i++ {
		switch {
		case allowBEL && buf[i] == bel:
			return i, i + 1
		case buf[i] == esc && i+1 < len(buf) && buf[i+1] == '\\':
			return i, i + 2
		}
	}
	return -1, -1
}

func decodeOSC(buf []byte) Result {
	payloadEnd, end := stringEnd(buf, 2, true)
	if end < 0 {
		return needMore
	}
	body := buf[2:payloadEnd]
	if rest, ok := bytes.CutPrefix(body, []byte("11;")); ok {
		return complete(end, ReplyToken(ReplyBackgroundColor, append([]byte(nil), rest...)))
	}
	return complete(end, ReplyToken(ReplyOther, append([]byte(nil), buf[:end]...)))
}

func decodeDCS(buf []byte) Result {
	payloadEnd, end := stringEnd(buf, 2, false)
	if end < 0 {
		return needMore
	}
	body := buf[2:payloadEnd]
	if rest, ok := bytes.CutPrefix(body, []byte(">|")); ok {
		return complete(end, ReplyToken(ReplyXTVersion, append([]byte(nil), rest...)))
	}
	return complete(end, ReplyToken(ReplyOther, append([]byte(nil), buf[:end]...)))
}
