package ports

import "github.com/apkaudio/openair/pkg/domain"

// Button identifies the pointer button of a gesture.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Modifier is a bitmask of active gesture modifiers. The mapping from
// physical keys is owned by the input adapter; the engine only sees the
// logical roles.
type Modifier uint8

const (
	// ModFine reduces drag sensitivity for precise adjustment.
	ModFine Modifier = 1 << iota
	// ModReset requests a jump to the widget's reference point.
	ModReset
	// ModEdit requests scoped manual text entry.
	ModEdit
)

// GestureKind discriminates the events a widget can receive.
type GestureKind int

const (
	GestureDown GestureKind = iota
	GestureMove
	GestureUp
	GestureWheel
	// GestureConfirm completes manual entry with the typed text.
	GestureConfirm
	// GestureCancel abandons manual entry with no publish.
	GestureCancel
)

// Gesture is one raw input event, already translated into canvas
// coordinates by the input adapter.
type Gesture struct {
	Kind   GestureKind
	Pos    Point
	Button Button
	Mods   Modifier
	// Steps is the wheel detent count, positive away from the user.
	Steps int
	// Text is the manual-entry buffer on GestureConfirm.
	Text string
}

// Widget is any live control composed onto a panel: it renders itself via
// the Canvas capability, translates raw gestures into value changes, and
// exposes the ValueModel it owns.
type Widget interface {
	// Render draws the widget from its current model and configuration.
	// It is pure given those inputs and safe to call redundantly.
	Render() error

	// HandleGesture feeds one input event through the widget's state
	// machine. Must be called from the UI goroutine.
	HandleGesture(g Gesture) error

	// Value returns the model the widget owns. For composites this is
	// the aggregate (master) model.
	Value() *domain.ValueModel

	// Topic returns the resolved hierarchical address the widget is
	// registered under.
	Topic() string

	// Close releases the widget's registrations. Idempotent.
	Close() error
}
