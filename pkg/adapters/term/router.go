package term

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/apkaudio/openair/pkg/ports"
)

// Locator maps screen positions onto composed widgets. The composition
// engine's Panel satisfies it.
type Locator interface {
	Topics() []string
	Region(topic string) (ports.Rect, bool)
	WidgetAt(pos ports.Point) (string, bool)
}

// GestureSink queues gestures onto the panel goroutine. The application
// facade satisfies it.
type GestureSink interface {
	Gesture(topic string, g ports.Gesture) error
}

// Router translates decoded terminal events into widget gestures.
//
// Mouse: the primary button drags the widget under the cursor, Shift held
// during the drag engages fine adjustment, Ctrl-click or the secondary
// button follows the widget's own binding (reset on plain controls, mode
// toggle on composites), and the wheel nudges the widget under the cursor.
//
// Keyboard: Tab and Shift-Tab move focus through the widgets in build
// order; Up and Down nudge the focused widget; Home resets it; Space and
// m click it with the primary and secondary button; Enter opens manual
// entry on it, where typed text confirms with Enter or discards with
// Escape. Ctrl-C and q invoke the quit callback.
type Router struct {
	panel  Locator
	sink   GestureSink
	logger *slog.Logger
	quit   func()

	focus int
	// drag pins move events to the widget the press landed on, even when
	// the pointer leaves its region mid-drag.
	drag       string
	dragOrigin ports.Point
	editing    string
	editBuf    strings.Builder
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithQuit sets the callback invoked on the quit keys.
func WithQuit(fn func()) RouterOption {
	return func(r *Router) { r.quit = fn }
}

// WithRouterLogger sets the structured logger.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(r *Router) { r.logger = l }
}

// NewRouter binds terminal events to a composed panel.
func NewRouter(panel Locator, sink GestureSink, opts ...RouterOption) *Router {
	r := &Router{panel: panel, sink: sink, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle processes one decoded event. Call it from a single goroutine,
// normally the Input.Run loop.
func (r *Router) Handle(ev Event) {
	if ev.Kind == EventKey {
		r.handleKey(ev)
		return
	}
	r.handleMouse(ev)
}

func (r *Router) handleMouse(ev Event) {
	mods := eventMods(ev)
	switch ev.Kind {
	case EventMouseDown:
		t, ok := r.panel.WidgetAt(ev.Pos)
		if !ok {
			return
		}
		region, _ := r.panel.Region(t)
		// Reset presses are one-shot and never start a drag; a fine
		// modifier held from the press does.
		if ev.Button == ports.ButtonPrimary && mods&ports.ModReset == 0 {
			r.drag = t
			r.dragOrigin = region.Min
		}
		r.send(t, ports.Gesture{
			Kind:   ports.GestureDown,
			Pos:    local(ev.Pos, region.Min),
			Button: ev.Button,
			Mods:   mods,
		})

	case EventMouseDrag:
		if r.drag == "" {
			return
		}
		r.send(r.drag, ports.Gesture{
			Kind: ports.GestureMove,
			Pos:  local(ev.Pos, r.dragOrigin),
			Mods: mods,
		})

	case EventMouseUp:
		if r.drag == "" {
			return
		}
		t, origin := r.drag, r.dragOrigin
		r.drag = ""
		r.send(t, ports.Gesture{
			Kind: ports.GestureUp,
			Pos:  local(ev.Pos, origin),
		})

	case EventMouseWheel:
		t, ok := r.panel.WidgetAt(ev.Pos)
		if !ok {
			return
		}
		region, _ := r.panel.Region(t)
		r.send(t, ports.Gesture{
			Kind:  ports.GestureWheel,
			Pos:   local(ev.Pos, region.Min),
			Steps: ev.Steps,
			Mods:  mods,
		})
	}
}

func (r *Router) handleKey(ev Event) {
	if r.editing != "" {
		r.handleEditKey(ev)
		return
	}

	switch {
	case ev.Key == KeyCtrlC || ev.Rune == 'q':
		if r.quit != nil {
			r.quit()
		}

	case ev.Key == KeyTab:
		r.moveFocus(1)
	case ev.Key == KeyBackTab:
		r.moveFocus(-1)

	case ev.Key == KeyUp:
		r.nudgeFocused(1, eventMods(ev))
	case ev.Key == KeyDown:
		r.nudgeFocused(-1, eventMods(ev))

	case ev.Key == KeyHome:
		t, pos, ok := r.focused()
		if !ok {
			return
		}
		r.send(t, ports.Gesture{Kind: ports.GestureDown, Pos: pos, Mods: ports.ModReset})

	case ev.Key == KeyEnter:
		t, pos, ok := r.focused()
		if !ok {
			return
		}
		r.editing = t
		r.editBuf.Reset()
		r.send(t, ports.Gesture{Kind: ports.GestureDown, Pos: pos, Mods: ports.ModEdit})

	case ev.Rune == ' ':
		r.clickFocused(ports.ButtonPrimary)
	case ev.Rune == 'm':
		r.clickFocused(ports.ButtonSecondary)
	}
}

func (r *Router) handleEditKey(ev Event) {
	switch {
	case ev.Key == KeyEnter:
		text := r.editBuf.String()
		// The widget rejects unparsable entries and stays editing, so
		// the buffer is only surrendered once the text will parse.
		if _, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err != nil {
			r.logger.Debug("manual entry rejected", "topic", r.editing, "text", text)
			r.editBuf.Reset()
			return
		}
		t := r.editing
		r.editing = ""
		r.send(t, ports.Gesture{Kind: ports.GestureConfirm, Text: text})

	case ev.Key == KeyEscape:
		t := r.editing
		r.editing = ""
		r.send(t, ports.Gesture{Kind: ports.GestureCancel})

	case ev.Key == KeyBackspace:
		s := r.editBuf.String()
		r.editBuf.Reset()
		if len(s) > 0 {
			r.editBuf.WriteString(s[:len(s)-1])
		}

	case ev.Kind == EventKey && ev.Rune != 0:
		r.editBuf.WriteRune(ev.Rune)
	}
}

func (r *Router) moveFocus(step int) {
	topics := r.panel.Topics()
	if len(topics) == 0 {
		return
	}
	r.focus = (r.focus + step + len(topics)) % len(topics)
	r.logger.Debug("focus moved", "topic", topics[r.focus])
}

// focused returns the focused topic and the center of its region in
// widget-local coordinates.
func (r *Router) focused() (string, ports.Point, bool) {
	topics := r.panel.Topics()
	if len(topics) == 0 {
		return "", ports.Point{}, false
	}
	if r.focus >= len(topics) {
		r.focus = 0
	}
	t := topics[r.focus]
	region, ok := r.panel.Region(t)
	if !ok {
		return "", ports.Point{}, false
	}
	return t, ports.Point{X: region.Width() / 2, Y: region.Height() / 2}, true
}

func (r *Router) nudgeFocused(steps int, mods ports.Modifier) {
	t, pos, ok := r.focused()
	if !ok {
		return
	}
	r.send(t, ports.Gesture{Kind: ports.GestureWheel, Pos: pos, Steps: steps, Mods: mods})
}

func (r *Router) clickFocused(b ports.Button) {
	t, pos, ok := r.focused()
	if !ok {
		return
	}
	r.send(t, ports.Gesture{Kind: ports.GestureDown, Pos: pos, Button: b})
	r.send(t, ports.Gesture{Kind: ports.GestureUp, Pos: pos, Button: b})
}

func (r *Router) send(t string, g ports.Gesture) {
	if err := r.sink.Gesture(t, g); err != nil {
		r.logger.Warn("gesture dropped", "topic", t, "err", err)
	}
}

func eventMods(ev Event) ports.Modifier {
	var mods ports.Modifier
	if ev.Shift {
		mods |= ports.ModFine
	}
	if ev.Ctrl {
		mods |= ports.ModReset
	}
	return mods
}

func local(pos, origin ports.Point) ports.Point {
	return ports.Point{X: pos.X - origin.X, Y: pos.Y - origin.Y}
}
