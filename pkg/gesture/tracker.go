// Package gesture implements the shared widget interaction state machine:
// Idle -> Dragging -> Idle for pointer gestures, with an orthogonal
// Idle -> Editing -> Idle cycle for scoped manual text entry.
//
// The logic is a reusable strategy invoked by each concrete widget rather
// than behavior inherited from a base type; widgets own one Tracker each
// and wire it to their state-mirror registration.
package gesture

import (
	"strconv"
	"strings"

	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/ports"
)

// State is the tracker's interaction state.
type State int

const (
	Idle State = iota
	Dragging
	Editing
)

// Config tunes sensitivity and reset behavior for one widget.
type Config struct {
	// PixelRange is the drag distance in pixels that traverses the full
	// value range. Zero means 100.
	PixelRange float64

	// FineFactor divides sensitivity while the fine modifier is held.
	// Zero means 10.
	FineFactor float64

	// FinePitch is an additional fixed divisor applied always, for
	// widgets configured with a fine-pitch mode. Zero or one disables it.
	FinePitch float64

	// WheelFraction is the fraction of the range one wheel detent moves.
	// Zero means 0.05.
	WheelFraction float64

	// Reference is the reset target. NaN or an unset zero-range config
	// falls back to the midpoint of the model's range.
	Reference float64

	// HasReference marks Reference as explicitly configured.
	HasReference bool
}

// Tracker runs the gesture state machine for a single widget.
type Tracker struct {
	cfg   Config
	model *domain.ValueModel

	// apply routes a raw value through set-then-publish (the widget's
	// PublishLocal path). broadcast publishes the current value
	// unconditionally (the reset path).
	apply     func(raw float64)
	broadcast func()

	state    State
	startY   float64
	startVal float64
}

// NewTracker builds a tracker over a model. apply is invoked for every
// value-changing gesture step; broadcast for reset gestures.
func NewTracker(model *domain.ValueModel, cfg Config, apply func(raw float64), broadcast func()) *Tracker {
	if cfg.PixelRange <= 0 {
		cfg.PixelRange = 100
	}
	if cfg.FineFactor <= 0 {
		cfg.FineFactor = 10
	}
	if cfg.FinePitch <= 0 {
		cfg.FinePitch = 1
	}
	if cfg.WheelFraction <= 0 {
		cfg.WheelFraction = 0.05
	}
	if !cfg.HasReference {
		cfg.Reference = (model.Min() + model.Max()) / 2
	}
	return &Tracker{cfg: cfg, model: model, apply: apply, broadcast: broadcast}
}

// State returns the current interaction state.
func (t *Tracker) State() State { return t.state }

// Reference returns the resolved reset target.
func (t *Tracker) Reference() float64 { return t.cfg.Reference }

func (t *Tracker) divisor(mods ports.Modifier) float64 {
	d := t.cfg.FinePitch
	if mods&ports.ModFine != 0 {
		d *= t.cfg.FineFactor
	}
	return d
}

// Handle feeds one input event through the state machine.
func (t *Tracker) Handle(g ports.Gesture) error {
	if t.state == Editing {
		switch g.Kind {
		case ports.GestureConfirm:
			return t.confirm(g.Text)
		case ports.GestureCancel:
			t.state = Idle
		}
		// Everything else, wheel included, is ignored while editing.
		return nil
	}

	switch g.Kind {
	case ports.GestureDown:
		switch {
		case g.Mods&ports.ModEdit != 0:
			t.state = Editing
		case g.Mods&ports.ModReset != 0 || g.Button == ports.ButtonSecondary:
			// Reset never transitions through Dragging and publishes
			// exactly once regardless of prior state.
			t.model.ResetTo(t.cfg.Reference)
			t.broadcast()
		default:
			t.state = Dragging
			t.startY = g.Pos.Y
			t.startVal = t.model.Current()
		}

	case ports.GestureMove:
		if t.state != Dragging {
			return nil
		}
		perPixel := t.model.Span() / t.cfg.PixelRange / t.divisor(g.Mods)
		t.apply(t.startVal + (t.startY-g.Pos.Y)*perPixel)

	case ports.GestureUp:
		if t.state == Dragging {
			t.state = Idle
		}

	case ports.GestureWheel:
		t.apply(t.model.Current() + float64(g.Steps)*t.model.Span()*t.cfg.WheelFraction)

	case ports.GestureConfirm, ports.GestureCancel:
		// Only meaningful while editing.
	}
	return nil
}

func (t *Tracker) confirm(text string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		// The edit stays open with the bad input rejected.
		return &domain.InvalidValueError{Raw: text}
	}
	t.state = Idle
	t.apply(v)
	return nil
}
