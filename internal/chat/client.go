package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	readBufferSize = 1024
	timeLayout     = "15:04"
	resizeInterval = 250 * time.Millisecond
)

type eventKind int

const (
	eventNetwork eventKind = iota
	eventNetworkError
	eventKeys
	eventInputDone
)

type event struct {
	kind eventKind
	text string
	keys []key
}

// SizeFunc reports the terminal size in columns and rows.
type SizeFunc func() (width, height int, err error)

// Client is the full-screen terminal front end for the relay. Every chunk read
// from the connection becomes one timestamped history line.
type Client struct {
	out   io.Writer
	clock clockwork.Clock
	size  SizeFunc
}

// New creates a client drawing to out. A nil size uses an 80x24 screen.
func New(out io.Writer, clock clockwork.Clock, size SizeFunc) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if size == nil {
		size = func() (int, int, error) { return defaultWidth, defaultHeight, nil }
	}
	return &Client{out: out, clock: clock, size: size}
}

// Dial connects to addr and runs the client until the connection ends or the
// user quits.
func (c *Client) Dial(ctx context.Context, addr string, in io.Reader) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("could not connect to %s (is the relay running?): %w", addr, err)
	}
	return c.Run(ctx, conn, in)
}

// Run drives the client over conn, reading raw keys from in. Enter sends the
// prompt in a single write without a trailing newline, and Ctrl-C quits. If in
// is an io.Closer it is closed on return.
func (c *Client) Run(ctx context.Context, conn net.Conn, in io.Reader) error {
	defer conn.Close()
	if closer, ok := in.(io.Closer); ok {
		defer closer.Close()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan event)
	emit := func(ev event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go readNetwork(conn, emit)
	go readKeys(in, emit)

	view := &screen{}
	c.resize(view)
	view.push(c.stamp("Connected to server"))
	if err := view.draw(c.out); err != nil {
		return err
	}

	ticker := c.clock.NewTicker(resizeInterval)
	defer ticker.Stop()

	for {
		var ev event
		select {
		case ev = <-events:
		case <-ticker.Chan():
			if c.resize(view) {
				if err := view.draw(c.out); err != nil {
					return err
				}
			}
			continue
		case <-ctx.Done():
			return nil
		}

		quit := false
		switch ev.kind {
		case eventNetwork:
			view.push(c.stamp(ev.text))
		case eventNetworkError:
			view.push(c.stamp("Network error: " + ev.text))
			quit = true
		case eventKeys:
			quit = c.handleKeys(view, conn, ev.keys)
		case eventInputDone:
			return nil
		}

		c.resize(view)
		if err := view.draw(c.out); err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// handleKeys edits the prompt and reports whether the client should quit.
func (c *Client) handleKeys(view *screen, conn net.Conn, keys []key) bool {
	for _, k := range keys {
		switch k.kind {
		case keyRune:
			view.prompt = append(view.prompt, k.r)
		case keyBackspace:
			if n := len(view.prompt); n > 0 {
				view.prompt = view.prompt[:n-1]
			}
		case keyEnter:
			if len(view.prompt) == 0 {
				continue
			}
			text := string(view.prompt)
			view.prompt = view.prompt[:0]
			if _, err := conn.Write([]byte(text)); err != nil {
				view.push(c.stamp("Network error: " + err.Error()))
				return true
			}
			view.push(c.stamp(text))
		case keyInterrupt:
			return true
		}
	}
	return false
}

func (c *Client) resize(view *screen) bool {
	width, height, err := c.size()
	if err != nil {
		width, height = 0, 0
	}
	return view.resize(width, height)
}

func (c *Client) stamp(text string) string {
	return fmt.Sprintf("[%s] %s", c.clock.Now().Format(timeLayout), text)
}

func readNetwork(conn net.Conn, emit func(event) bool) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if !emit(event{kind: eventNetwork, text: strings.ToValidUTF8(string(buf[:n]), "�")}) {
				return
			}
		}
		if err != nil {
			text := "Read error: " + err.Error()
			if errors.Is(err, io.EOF) {
				text = "Connection closed by server"
			}
			emit(event{kind: eventNetworkError, text: text})
			return
		}
	}
}

func readKeys(in io.Reader, emit func(event) bool) {
	var dec keyDecoder
	buf := make([]byte, 256)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if keys := dec.feed(buf[:n]); len(keys) > 0 {
				if !emit(event{kind: eventKeys, keys: keys}) {
					return
				}
			}
		}
		if err != nil {
			emit(event{kind: eventInputDone})
			return
		}
	}
}
