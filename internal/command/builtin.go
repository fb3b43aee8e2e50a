package command

import (
	"context"
	"fmt"
	"io"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/danielrainer/fish-shell/internal/input"
	"github.com/danielrainer/fish-shell/internal/input/key"
)

// Buffer is a single-line command buffer with a cursor.
type Buffer struct {
	mu     sync.Mutex
	text   []rune
	cursor int
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// String returns the buffer contents.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.text)
}

// Cursor returns the cursor position in runes.
func (b *Buffer) Cursor() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// Len returns the buffer length in runes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.text)
}

// Insert inserts s at the cursor and moves the cursor past it.
func (b *Buffer) Insert(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rs := []rune(s)
	text := make([]rune, 0, len(b.text)+len(rs))
	text = append(text, b.text[:b.cursor]...)
	text = append(text, rs...)
	text = append(text, b.text[b.cursor:]...)
	b.text = text
	b.cursor += len(rs)
}

// Move moves the cursor by delta, clamped to the buffer.
func (b *Buffer) Move(delta int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = clamp(b.cursor+delta, 0, len(b.text))
}

// MoveTo sets the cursor, clamped to the buffer.
func (b *Buffer) MoveTo(pos int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = clamp(pos, 0, len(b.text))
}

// Delete removes n runes after the cursor, or -n before it when n is
// negative. It returns the removed text.
func (b *Buffer) Delete(n int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	start, end := b.cursor, b.cursor+n
	if n < 0 {
		start, end = b.cursor+n, b.cursor
	}
	start = clamp(start, 0, len(b.text))
	end = clamp(end, 0, len(b.text))

	removed := string(b.text[start:end])
	b.text = append(b.text[:start:start], b.text[end:]...)
	b.cursor = start
	return removed
}

// WordStart returns the start of the word before the cursor.
func (b *Buffer) WordStart() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.cursor
	for i > 0 && unicode.IsSpace(b.text[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(b.text[i-1]) {
		i--
	}
	return i
}

// WordEnd returns the end of the word after the cursor.
func (b *Buffer) WordEnd() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.cursor
	for i < len(b.text) && unicode.IsSpace(b.text[i]) {
		i++
	}
	for i < len(b.text) && !unicode.IsSpace(b.text[i]) {
		i++
	}
	return i
}

// Reset empties the buffer and returns what it held.
func (b *Buffer) Reset() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := string(b.text)
	b.text = nil
	b.cursor = 0
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Builtins holds what the built-in commands act on.
type Builtins struct {
	Buffer *Buffer

	// Out receives executed lines, one per line.
	Out io.Writer

	Logger *zap.Logger

	// killed is the last text removed by a kill command.
	killed string
}

// Register installs the built-in commands into r.
func (b *Builtins) Register(r *Registry) {
	if b.Buffer == nil {
		b.Buffer = NewBuffer()
	}
	if b.Out == nil {
		b.Out = io.Discard
	}
	if b.Logger == nil {
		b.Logger = zap.NewNop()
	}

	buf := b.Buffer
	simple := func(name string, fn func()) {
		r.RegisterFunc(name, func(context.Context, Invocation) error {
			fn()
			return nil
		})
	}

	r.RegisterFunc(SelfInsertCommand, b.selfInsert)
	r.RegisterFunc("commandline", b.commandline)
	r.RegisterFunc("execute", b.execute)
	r.RegisterFunc("delete-or-exit", b.deleteOrExit)
	r.RegisterFunc("exit", func(context.Context, Invocation) error {
		return input.ErrStop
	})

	simple("backward-char", func() { buf.Move(-1) })
	simple("forward-char", func() { buf.Move(1) })
	simple("forward-single-char", func() { buf.Move(1) })
	simple("beginning-of-line", func() { buf.MoveTo(0) })
	simple("end-of-line", func() { buf.MoveTo(buf.Len()) })
	simple("beginning-of-buffer", func() { buf.MoveTo(0) })
	simple("end-of-buffer", func() { buf.MoveTo(buf.Len()) })
	simple("backward-word", func() { buf.MoveTo(buf.WordStart()) })
	simple("forward-word", func() { buf.MoveTo(buf.WordEnd()) })
	simple("backward-delete-char", func() { buf.Delete(-1) })
	simple("delete-char", func() { buf.Delete(1) })
	simple("kill-line", func() { b.killed = buf.Delete(buf.Len() - buf.Cursor()) })
	simple("backward-kill-line", func() { b.killed = buf.Delete(-buf.Cursor()) })
	simple("kill-whole-line", func() { b.killed = buf.Reset() })
	simple("kill-word", func() { b.killed = buf.Delete(buf.WordEnd() - buf.Cursor()) })
	simple("backward-kill-word", func() { b.killed = buf.Delete(buf.WordStart() - buf.Cursor()) })
	simple("yank", func() { buf.Insert(b.killed) })
	simple("cancel-commandline", func() { buf.Reset() })
	simple("insert-space-literal", func() { buf.Insert(" ") })

	// Commands that only matter to a real line editor.
	for _, name := range []string{"repaint-mode", "repaint", "cancel", "clear-screen", "begin-selection", "end-selection"} {
		simple(name, func() {})
	}
}

func (b *Builtins) selfInsert(_ context.Context, inv Invocation) error {
	if len(inv.Keys) == 0 {
		return nil
	}
	k := inv.Keys[0]
	if !k.IsChar() || k.Mods.Has(key.ModCtrl|key.ModAlt|key.ModSuper) {
		b.Logger.Debug("not inserting key", zap.Stringer("key", k))
		return nil
	}
	b.Buffer.Insert(string(k.Rune))
	return nil
}

// commandline supports "commandline -i TEXT" (insert) and
// "commandline -r TEXT" (replace).
func (b *Builtins) commandline(_ context.Context, inv Invocation) error {
	if len(inv.Args) != 2 {
		return fmt.Errorf("commandline: expected a flag and text, got %d args", len(inv.Args))
	}
	switch inv.Args[0] {
	case "-i", "--insert":
		b.Buffer.Insert(inv.Args[1])
	case "-r", "--replace":
		b.Buffer.Reset()
		b.Buffer.Insert(inv.Args[1])
	default:
		return fmt.Errorf("commandline: unknown flag %q", inv.Args[0])
	}
	return nil
}

func (b *Builtins) execute(context.Context, Invocation) error {
	line := b.Buffer.Reset()
	_, err := fmt.Fprintln(b.Out, line)
	return err
}

func (b *Builtins) deleteOrExit(context.Context, Invocation) error {
	if b.Buffer.Len() == 0 {
		return input.ErrStop
	}
	b.Buffer.Delete(1)
	return nil
}
