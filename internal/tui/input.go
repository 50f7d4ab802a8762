package tui

import (
	"errors"
	"os"
	"time"
)

// keyTimeout is how long a single input poll waits before giving the main
// loop a chance to re-render and re-check child state, mirroring the
// original curses program's stdscr.timeout(100).
const keyTimeout = 100 * time.Millisecond

// MouseButton identifies which button (or wheel direction) a mouse event
// reports, decoded from an SGR mouse sequence (`\x1b[<Cb;Cx;Cy M`).
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// MouseEvent is a decoded SGR mouse report.
type MouseEvent struct {
	Button   MouseButton
	X, Y     int // 1-based, as reported by the terminal
	Released bool
	Double   bool
}

// Event is one unit of input: either a plain key byte, a decoded mouse
// event, or neither (the 100ms poll simply timed out).
type Event struct {
	Key      byte
	HasKey   bool
	Mouse    *MouseEvent
	TimedOut bool
}

// reader decodes raw bytes from stdin into Events, recognizing SGR mouse
// sequences and collapsing rapid repeated clicks on the same cell into a
// double-click, the way the original curses BSTATE_DBLCLICK flag did.
type reader struct {
	stdin       *os.File
	lastClickAt time.Time
	lastClickXY [2]int
}

func newReader(stdin *os.File) *reader {
	return &reader{stdin: stdin}
}

const doubleClickWindow = 400 * time.Millisecond

// Next blocks for at most keyTimeout waiting for one byte of input, then
// decodes it (and, for escape sequences, any immediately-following bytes)
// into an Event.
func (r *reader) Next() (Event, error) {
	r.stdin.SetReadDeadline(time.Now().Add(keyTimeout))
	var b [1]byte
	n, err := r.stdin.Read(b[:])
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return Event{TimedOut: true}, nil
		}
		return Event{}, err
	}
	if n == 0 {
		return Event{TimedOut: true}, nil
	}

	if b[0] != 0x1b {
		return Event{Key: b[0], HasKey: true}, nil
	}

	return r.decodeEscape()
}

// decodeEscape is called right after an ESC byte. It recognizes:
//   - arrow keys: ESC [ A/B/C/D
//   - SGR mouse reports: ESC [ < Cb ; Cx ; Cy (M|m)
//
// Anything else is reported as a bare ESC key (HasKey with Key=0x1b),
// matching the original program treating an unrecognized escape as itself.
func (r *reader) decodeEscape() (Event, error) {
	seq, err := r.readWithDeadline(2)
	if err != nil || len(seq) < 2 || seq[0] != '[' {
		return Event{Key: 0x1b, HasKey: true}, nil
	}

	switch seq[1] {
	case 'A':
		return Event{Key: KeyUp, HasKey: true}, nil
	case 'B':
		return Event{Key: KeyDown, HasKey: true}, nil
	case '<':
		return r.decodeSGRMouse()
	default:
		return Event{Key: 0x1b, HasKey: true}, nil
	}
}

// readWithDeadline reads up to n bytes, each bounded by a short deadline so
// a stray ESC byte with nothing following it doesn't hang the session.
func (r *reader) readWithDeadline(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		r.stdin.SetReadDeadline(time.Now().Add(20 * time.Millisecond))
		var b [1]byte
		m, err := r.stdin.Read(b[:])
		if err != nil {
			return out, err
		}
		if m == 0 {
			continue
		}
		out = append(out, b[0])
	}
	return out, nil
}

// decodeSGRMouse reads the remainder of an SGR mouse report after "ESC [ <"
// and decodes it into an Event.
func (r *reader) decodeSGRMouse() (Event, error) {
	var cb, cx, cy int
	var final byte

	if _, err := r.readField(&cb, ';'); err != nil {
		return Event{}, nil
	}
	if _, err := r.readField(&cx, ';'); err != nil {
		return Event{}, nil
	}
	if f, err := r.readField(&cy, 0); err != nil {
		return Event{}, nil
	} else {
		final = f
	}

	ev := MouseEvent{X: cx, Y: cy, Released: final == 'm'}
	switch {
	case cb&64 != 0 && cb&1 != 0:
		ev.Button = MouseWheelDown
	case cb&64 != 0:
		ev.Button = MouseWheelUp
	case cb&3 == 0:
		ev.Button = MouseLeft
	case cb&3 == 1:
		ev.Button = MouseRight
	default:
		ev.Button = MouseNone
	}

	if ev.Button == MouseLeft && !ev.Released {
		now := time.Now()
		if now.Sub(r.lastClickAt) < doubleClickWindow && r.lastClickXY == [2]int{cx, cy} {
			ev.Double = true
		}
		r.lastClickAt = now
		r.lastClickXY = [2]int{cx, cy}
	}

	return Event{Mouse: &ev}, nil
}

// readField reads decimal digits until stop (or, if stop is 0, until a
// non-digit terminal byte M/m) and parses them into *dst, returning the
// terminal byte that ended the field.
func (r *reader) readField(dst *int, stop byte) (byte, error) {
	val := 0
	for {
		b, err := r.readWithDeadline(1)
		if err != nil || len(b) == 0 {
			return 0, errors.New("short read")
		}
		c := b[0]
		if c == stop && stop != 0 {
			*dst = val
			return c, nil
		}
		if c == 'M' || c == 'm' {
			*dst = val
			return c, nil
		}
		if c < '0' || c > '9' {
			return 0, errors.New("bad field")
		}
		val = val*10 + int(c-'0')
	}
}

// Keyboard key codes used alongside plain ASCII bytes.
const (
	KeyUp   byte = 0xF0
	KeyDown byte = 0xF1
)
