package chat

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when the chat screen is started without an
// interactive terminal.
var ErrNotTerminal = errors.New("chat needs an interactive terminal")

// Terminal holds a terminal in raw mode for the lifetime of a chat session.
type Terminal struct {
	in    int
	out   *os.File
	state *term.State
}

// OpenTerminal switches in to raw mode. Keys arrive unbuffered and Ctrl-C is
// delivered as a byte instead of a signal.
func OpenTerminal(in, out *os.File) (*Terminal, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) || !term.IsTerminal(int(out.Fd())) {
		return nil, ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}
	return &Terminal{in: fd, out: out, state: state}, nil
}

// Size reports the current width and height of the output terminal.
func (t *Terminal) Size() (width, height int, err error) {
	return term.GetSize(int(t.out.Fd()))
}

// Close leaves the cursor below the chat screen and restores the terminal.
func (t *Terminal) Close() error {
	_, _ = io.WriteString(t.out, "\r\n")
	return term.Restore(t.in, t.state)
}
