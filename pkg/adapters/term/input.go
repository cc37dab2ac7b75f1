package term

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/apkaudio/openair/pkg/ports"
)

// SGR extended mouse reporting (1006) with button-drag tracking (1002).
const (
	mouseEnable  = "\x1b[?1002h\x1b[?1006h"
	mouseDisable = "\x1b[?1006l\x1b[?1002l"
)

// Key identifies a non-printing key decoded from the input stream.
type Key int

const (
	KeyNone Key = iota
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackTab
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyCtrlC
)

// EventKind discriminates decoded terminal input events.
type EventKind int

const (
	EventKey EventKind = iota
	EventMouseDown
	EventMouseDrag
	EventMouseUp
	EventMouseWheel
)

// Event is one decoded input event. Mouse positions are screen cell
// coordinates with the origin at the top-left corner.
type Event struct {
	Kind   EventKind
	Rune   rune
	Key    Key
	Pos    ports.Point
	Button ports.Button
	// Steps is the wheel detent count, positive away from the user.
	Steps int
	Shift bool
	Ctrl  bool
}

// Input decodes raw terminal bytes into events. When the source is a real
// terminal, Run switches it to raw mode and turns on mouse reporting for
// its duration.
type Input struct {
	in  io.Reader
	out io.Writer
}

// NewInput wires a decoder to a byte source and the terminal's output
// stream. Pass os.Stdin and os.Stdout for a live terminal; any reader
// works for scripted input.
func NewInput(in io.Reader, out io.Writer) *Input {
	return &Input{in: in, out: out}
}

// Run reads input until ctx is cancelled or the source is exhausted,
// calling emit for every decoded event. Events are emitted from Run's
// goroutine, in input order.
func (i *Input) Run(ctx context.Context, emit func(Event)) error {
	if f, ok := i.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer term.Restore(int(f.Fd()), state)
		fmt.Fprint(i.out, mouseEnable)
		defer fmt.Fprint(i.out, mouseDisable)
	}

	type chunk struct {
		data []byte
		err  error
	}
	reads := make(chan chunk)
	go func() {
		defer close(reads)
		for {
			buf := make([]byte, 256)
			n, err := i.in.Read(buf)
			select {
			case reads <- chunk{data: buf[:n], err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var pending []byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, open := <-reads:
			if !open {
				return nil
			}
			pending = append(pending, c.data...)
			for len(pending) > 0 {
				ev, n, ok := decode(pending)
				if n == 0 {
					break
				}
				pending = pending[n:]
				if ok {
					emit(ev)
				}
			}
			// Raw reads deliver escape sequences whole, so a chunk
			// ending in a lone ESC is the key itself, not a prefix.
			if len(pending) == 1 && pending[0] == 0x1b {
				pending = pending[:0]
				emit(Event{Kind: EventKey, Key: KeyEscape})
			}
			if c.err != nil {
				if errors.Is(c.err, io.EOF) {
					return nil
				}
				return c.err
			}
		}
	}
}

// decode parses the first input sequence in buf. consumed is zero when buf
// holds an incomplete sequence; ok is false for bytes with no mapping,
// which are consumed and skipped.
func decode(buf []byte) (ev Event, consumed int, ok bool) {
	if len(buf) == 0 {
		return Event{}, 0, false
	}
	switch b := buf[0]; {
	case b == 0x1b:
		return decodeEscape(buf)
	case b == '\r' || b == '\n':
		return Event{Kind: EventKey, Key: KeyEnter}, 1, true
	case b == '\t':
		return Event{Kind: EventKey, Key: KeyTab}, 1, true
	case b == 0x7f || b == 0x08:
		return Event{Kind: EventKey, Key: KeyBackspace}, 1, true
	case b == 0x03:
		return Event{Kind: EventKey, Key: KeyCtrlC}, 1, true
	case b < 0x20:
		return Event{}, 1, false
	default:
		if !utf8.FullRune(buf) && len(buf) < utf8.UTFMax {
			return Event{}, 0, false
		}
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError {
			return Event{}, size, false
		}
		return Event{Kind: EventKey, Rune: r}, size, true
	}
}

func decodeEscape(buf []byte) (Event, int, bool) {
	if len(buf) == 1 {
		return Event{}, 0, false
	}
	if buf[1] != '[' {
		return Event{Kind: EventKey, Key: KeyEscape}, 1, true
	}
	// CSI: ESC [ parameter bytes, terminated by a byte in '@'..'~'.
	i := 2
	for i < len(buf) && (buf[i] < '@' || buf[i] > '~') {
		i++
	}
	if i == len(buf) {
		return Event{}, 0, false
	}
	final := buf[i]
	params := string(buf[2:i])
	n := i + 1
	if rest, found := strings.CutPrefix(params, "<"); found {
		return decodeMouse(rest, final, n)
	}
	return decodeCSI(params, final, n)
}

func decodeCSI(params string, final byte, n int) (Event, int, bool) {
	ev := Event{Kind: EventKey}
	// A "1;m" parameter block carries a modifier mask offset by one.
	if _, mods, found := strings.Cut(params, ";"); found {
		if m, err := strconv.Atoi(mods); err == nil {
			ev.Shift = (m-1)&1 != 0
			ev.Ctrl = (m-1)&4 != 0
		}
	}
	switch final {
	case 'A':
		ev.Key = KeyUp
	case 'B':
		ev.Key = KeyDown
	case 'C':
		ev.Key = KeyRight
	case 'D':
		ev.Key = KeyLeft
	case 'H':
		ev.Key = KeyHome
	case 'Z':
		ev.Key = KeyBackTab
	default:
		return Event{}, n, false
	}
	return ev, n, true
}

// decodeMouse parses an SGR mouse report: "<b;x;y" with final 'M' for
// press or motion and 'm' for release. Coordinates are 1-based.
func decodeMouse(params string, final byte, n int) (Event, int, bool) {
	parts := strings.Split(params, ";")
	if len(parts) != 3 {
		return Event{}, n, false
	}
	b, err1 := strconv.Atoi(parts[0])
	x, err2 := strconv.Atoi(parts[1])
	y, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return Event{}, n, false
	}
	ev := Event{
		Pos:   ports.Point{X: float64(x - 1), Y: float64(y - 1)},
		Shift: b&4 != 0,
		Ctrl:  b&16 != 0,
	}
	switch {
	case b&64 != 0:
		ev.Kind = EventMouseWheel
		if b&1 == 0 {
			ev.Steps = 1
		} else {
			ev.Steps = -1
		}
	case b&32 != 0:
		ev.Kind = EventMouseDrag
	case final == 'm':
		ev.Kind = EventMouseUp
	default:
		ev.Kind = EventMouseDown
	}
	if b&3 == 2 {
		ev.Button = ports.ButtonSecondary
	}
	return ev, n, true
}
