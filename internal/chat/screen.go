package chat

import (
	"fmt"
	"io"
	"strings"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	border        = "─"
)

// screen is the full-screen chat view: message history on top, a border and
// the input prompt on the last two rows.
type screen struct {
	width   int
	height  int
	history []string
	prompt  []rune
}

func (s *screen) resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}
	if width == s.width && height == s.height {
		return false
	}
	s.width, s.height = width, height
	return true
}

func (s *screen) push(line string) {
	s.history = append(s.history, line)
}

// lines lays out one string per terminal row. History scrolls so the newest
// messages fit above the border; rows are cut at the screen width.
func (s *screen) lines() []string {
	rows := make([]string, 0, s.height)

	visible := s.height - 2
	if visible < 0 {
		visible = 0
	}
	history := s.history
	if len(history) > visible {
		history = history[len(history)-visible:]
	}
	for _, line := range history {
		rows = append(rows, truncate(line, s.width))
	}
	for len(rows) < visible {
		rows = append(rows, "")
	}

	if s.height >= 2 {
		rows = append(rows, strings.Repeat(border, s.width))
	}
	if s.height >= 1 {
		rows = append(rows, s.visiblePrompt())
	}
	return rows
}

// visiblePrompt is the tail of the prompt, leaving one column for the cursor.
func (s *screen) visiblePrompt() string {
	p := s.prompt
	if len(p) >= s.width {
		p = p[len(p)-s.width+1:]
	}
	return string(p)
}

// draw repaints the whole screen and parks the cursor after the prompt.
func (s *screen) draw(w io.Writer) error {
	var b strings.Builder
	b.WriteString("\x1b[2J")
	for i, row := range s.lines() {
		fmt.Fprintf(&b, "\x1b[%d;1H%s", i+1, row)
	}
	fmt.Fprintf(&b, "\x1b[%d;%dH", s.height, len([]rune(s.visiblePrompt()))+1)

	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
