package widget

import (
	"context"
	"fmt"
	"math"

	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/gesture"
	"github.com/apkaudio/openair/pkg/mirror"
	"github.com/apkaudio/openair/pkg/ports"
)

// Knob sweep: 270 degrees starting at the lower-left.
const (
	knobStartAngle = 225.0
	knobSweep      = 270.0
)

// KnobConfig enumerates the accepted properties of a knob node.
type KnobConfig struct {
	RangeConfig `mapstructure:",squash"`

	Label          string   `mapstructure:"label"`
	ShowLabel      *bool    `mapstructure:"show_label"`
	Reference      *float64 `mapstructure:"reference"`
	FinePitch      float64  `mapstructure:"fine_pitch"`
	IndicatorColor string   `mapstructure:"indicator_color"`
}

// Knob is a rotary control driven by vertical drags.
type Knob struct {
	cfg    KnobConfig
	theme  domain.Theme
	canvas ports.Canvas

	model   *domain.ValueModel
	tracker *gesture.Tracker
	topic   string
	reg     *mirror.Registration

	h struct {
		ring    ports.Handle
		arc     ports.Handle
		pointer ports.Handle
		label   ports.Handle
		value   ports.Handle
	}
}

// NewKnob builds a knob, registers it with the state mirror under topic,
// and wires its model's change hook to a redraw so that local and remote
// updates render through the same path.
func NewKnob(ctx context.Context, cfg KnobConfig, theme domain.Theme, canvas ports.Canvas, m *mirror.Mirror, topic string) (*Knob, error) {
	cfg.applyDefaults()
	model, err := cfg.RangeConfig.model(topic)
	if err != nil {
		return nil, err
	}
	reg, err := m.Register(ctx, topic, model)
	if err != nil {
		return nil, err
	}
	k := NewEmbeddedKnob(cfg, theme, canvas, model,
		func(raw float64) { _, _ = m.PublishLocal(context.Background(), topic, raw) },
		func() { _ = m.Broadcast(context.Background(), topic) },
	)
	k.topic = topic
	k.reg = reg
	return k, nil
}

// NewEmbeddedKnob builds a knob over an existing model without registering
// any topic. Composites use this to surface a knob while keeping the single
// registration (and therefore the single publication per gesture) to
// themselves.
func NewEmbeddedKnob(cfg KnobConfig, theme domain.Theme, canvas ports.Canvas, model *domain.ValueModel, apply func(raw float64), broadcast func()) *Knob {
	cfg.applyDefaults()
	k := &Knob{cfg: cfg, theme: theme, canvas: canvas, model: model}
	gcfg := gesture.Config{FinePitch: cfg.FinePitch}
	if cfg.Reference != nil {
		gcfg.Reference = *cfg.Reference
		gcfg.HasReference = true
	}
	k.tracker = gesture.NewTracker(model, gcfg, apply, broadcast)
	model.OnChange(func(float64) { _ = k.Render() })
	return k
}

// Value returns the owned model.
func (k *Knob) Value() *domain.ValueModel { return k.model }

// Topic returns the registered topic, empty for embedded knobs.
func (k *Knob) Topic() string { return k.topic }

// HandleGesture feeds one input event through the knob's tracker.
func (k *Knob) HandleGesture(g ports.Gesture) error { return k.tracker.Handle(g) }

// Close releases the mirror registration. Idempotent; a no-op for
// embedded knobs.
func (k *Knob) Close() error {
	if k.reg != nil {
		k.reg.Unregister()
	}
	return nil
}

// Render draws the knob from the current model value and configuration.
// It is safe to call redundantly; every element is replaced in place.
func (k *Knob) Render() error {
	b := k.canvas.Bounds()
	cx := b.Min.X + b.Width()/2
	cy := b.Min.Y + b.Height()/2
	r := math.Min(b.Width(), b.Height())/2 - 2
	if r <= 0 {
		r = 1
	}

	norm := 0.0
	if span := k.model.Span(); span > 0 {
		norm = (k.model.Current() - k.model.Min()) / span
	}

	ring := ports.Geometry{
		Rect:   ports.Rect{Min: ports.Point{X: cx - r, Y: cy - r}, Max: ports.Point{X: cx + r, Y: cy + r}},
		Start:  knobStartAngle,
		Extent: -knobSweep,
	}
	if err := shape(k.canvas, &k.h.ring, ports.ShapeArc, ring, ports.Style{Stroke: k.theme.Secondary, StrokeWidth: 3}); err != nil {
		return err
	}

	indicator := k.cfg.IndicatorColor
	if indicator == "" {
		indicator = k.theme.Accent
	}
	arc := ring
	arc.Extent = -knobSweep * norm
	if err := shape(k.canvas, &k.h.arc, ports.ShapeArc, arc, ports.Style{Stroke: indicator, StrokeWidth: 3}); err != nil {
		return err
	}

	angle := (knobStartAngle - knobSweep*norm) * math.Pi / 180
	tip := ports.Point{X: cx + r*0.8*math.Cos(angle), Y: cy - r*0.8*math.Sin(angle)}
	pointer := ports.Geometry{Rect: ports.Rect{Min: ports.Point{X: cx, Y: cy}, Max: tip}}
	if err := shape(k.canvas, &k.h.pointer, ports.ShapeLine, pointer, ports.Style{Stroke: k.theme.Handle, StrokeWidth: 2}); err != nil {
		return err
	}

	if k.cfg.Label != "" && (k.cfg.ShowLabel == nil || *k.cfg.ShowLabel) {
		pos := ports.Point{X: cx, Y: b.Min.Y}
		if err := text(k.canvas, &k.h.label, pos, k.cfg.Label, ports.Style{Fill: k.theme.Foreground, Anchor: "n"}); err != nil {
			return err
		}
	}

	valuePos := ports.Point{X: cx, Y: b.Max.Y}
	return text(k.canvas, &k.h.value, valuePos, fmt.Sprintf("%.0f", k.model.Current()), ports.Style{Fill: k.theme.Foreground, Anchor: "s"})
}
