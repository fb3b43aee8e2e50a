package main

import (
	"bytes"
	"errors"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/danielrainer/fish-shell/internal/input/source"
)

// terminalInput is the input source and the place output goes.
type terminalInput struct {
	src   source.Source
	probe io.Writer
	out   io.Writer
	close func() error
}

// openInput picks the input. With a terminal on stdin the controlling tty
// is opened in raw mode and queries can be sent to it; otherwise stdin is
// read as a byte stream. useStdin reads stdin even when it is a terminal.
func openInput(useStdin bool) (*terminalInput, error) {
	fd := int(os.Stdin.Fd())
	isTTY := term.IsTerminal(fd)
	opts := []source.Option{source.WithLogger(logger.Named("source"))}

	switch {
	case isTTY && !useStdin:
		t, err := source.OpenTerminal(opts...)
		if err != nil {
			return nil, err
		}
		return &terminalInput{src: t, probe: t, out: crlfWriter{os.Stdout}, close: t.Close}, nil

	case isTTY:
		restore, err := source.MakeRaw(fd)
		if err != nil {
			return nil, err
		}
		in, release, err := pollableStdin(fd)
		if err != nil {
			_ = restore()
			return nil, err
		}
		rd := source.NewReader(in, opts...)
		return rawStdinInput(rd, func() error {
			err := restore()
			release()
			return err
		}, os.Stdout), nil

	default:
		rd := source.NewReader(os.Stdin, opts...)
		return &terminalInput{src: rd, out: os.Stdout, close: rd.Close}, nil
	}
}

// rawStdinInput reads a raw terminal on stdin. Replies to queries would be
// mixed into that input, so none are sent. restore runs before the reader
// is closed.
func rawStdinInput(rd *source.Reader, restore func() error, out io.Writer) *terminalInput {
	return &terminalInput{src: rd, out: crlfWriter{out}, close: func() error {
		return errors.Join(restore(), rd.Close())
	}}
}

// crlfWriter turns \n into \r\n for a terminal in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
