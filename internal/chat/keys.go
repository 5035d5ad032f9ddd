package chat

import "unicode/utf8"

type keyKind int

const (
	keyRune keyKind = iota
	keyEnter
	keyBackspace
	keyInterrupt
)

type key struct {
	kind keyKind
	r    rune
}

const (
	ctrlC     = 0x03
	ctrlH     = 0x08
	escape    = 0x1b
	backspace = 0x7f
)

// keyDecoder turns raw terminal input into keys. Input may split a rune or an
// escape sequence across reads, so incomplete tails are kept for the next feed.
type keyDecoder struct {
	pending []byte
}

func (d *keyDecoder) feed(p []byte) []key {
	buf := append(d.pending, p...)
	var keys []key

	for len(buf) > 0 {
		b := buf[0]
		switch {
		case b == '\r' || b == '\n':
			keys = append(keys, key{kind: keyEnter})
			buf = buf[1:]
		case b == backspace || b == ctrlH:
			keys = append(keys, key{kind: keyBackspace})
			buf = buf[1:]
		case b == ctrlC:
			keys = append(keys, key{kind: keyInterrupt})
			buf = buf[1:]
		case b == escape:
			n, ok := escapeLen(buf)
			if !ok {
				d.pending = append([]byte(nil), buf...)
				return keys
			}
			// Cursor keys and the like are not bound.
			buf = buf[n:]
		case b < 0x20:
			buf = buf[1:]
		default:
			if !utf8.FullRune(buf) {
				d.pending = append([]byte(nil), buf...)
				return keys
			}
			r, size := utf8.DecodeRune(buf)
			buf = buf[size:]
			if r == utf8.RuneError && size == 1 {
				continue
			}
			keys = append(keys, key{kind: keyRune, r: r})
		}
	}

	d.pending = nil
	return keys
}

// escapeLen returns the length of the escape sequence at the start of buf.
// ok is false when more bytes are needed to tell.
func escapeLen(buf []byte) (n int, ok bool) {
	if len(buf) < 2 {
		return 0, false
	}
	switch buf[1] {
	case '[':
		// CSI: parameter and intermediate bytes, then one final byte.
		for i := 2; i < len(buf); i++ {
			if buf[i] >= 0x40 && buf[i] <= 0x7e {
				return i + 1, true
			}
		}
		return 0, false
	case 'O':
		if len(buf) < 3 {
			return 0, false
		}
		return 3, true
	default:
		return 1, true
	}
}
