package widget

import (
	"context"
	"math"

	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/mirror"
	"github.com/apkaudio/openair/pkg/ports"
)

// MeterKnobConfig enumerates the accepted properties of a meter-with-knob
// node. Keys prefixed knob_ tune the embedded knob.
type MeterKnobConfig struct {
	RangeConfig `mapstructure:",squash"`

	Label          string   `mapstructure:"label"`
	KnobSize       float64  `mapstructure:"knob_size"`
	KnobIndicator  string   `mapstructure:"knob_indicator_color"`
	Reference      *float64 `mapstructure:"reference"`
	FinePitch      float64  `mapstructure:"fine_pitch"`
	NeedleColor    string   `mapstructure:"needle_color"`
	ScaleThickness float64  `mapstructure:"scale_thickness"`
}

// MeterKnob is a composite: a needle meter with a knob embedded at its
// pivot point. Meter and knob share one ValueModel, and the composite holds
// the single state-mirror registration; the embedded knob publishes only
// through it. This is the direct fix for the defect class where a composite
// and its visual sub-elements all registered and published independently.
type MeterKnob struct {
	cfg    MeterKnobConfig
	theme  domain.Theme
	canvas ports.Canvas

	model *domain.ValueModel
	topic string
	reg   *mirror.Registration
	knob  *Knob

	h struct {
		scale  ports.Handle
		needle ports.Handle
		label  ports.Handle
	}
}

// NewMeterKnob builds the composite and registers exactly one topic.
func NewMeterKnob(ctx context.Context, cfg MeterKnobConfig, theme domain.Theme, canvas ports.Canvas, m *mirror.Mirror, fullPath string) (*MeterKnob, error) {
	cfg.applyDefaults()
	model, err := cfg.RangeConfig.model(fullPath)
	if err != nil {
		return nil, err
	}
	reg, err := m.Register(ctx, fullPath, model)
	if err != nil {
		return nil, err
	}

	mk := &MeterKnob{cfg: cfg, theme: theme, canvas: canvas, model: model, topic: fullPath, reg: reg}

	b := canvas.Bounds()
	size := cfg.KnobSize
	if size <= 0 {
		size = math.Min(b.Width(), b.Height()) * 0.3
	}
	pivot := mk.pivot(b)
	knobRegion := ports.Rect{
		Min: ports.Point{X: pivot.X - size/2, Y: pivot.Y - size/2},
		Max: ports.Point{X: pivot.X + size/2, Y: pivot.Y + size/2},
	}
	child, err := canvas.Embed(knobRegion)
	if err != nil {
		reg.Unregister()
		return nil, err
	}

	knobCfg := KnobConfig{
		RangeConfig:    cfg.RangeConfig,
		Reference:      cfg.Reference,
		FinePitch:      cfg.FinePitch,
		IndicatorColor: cfg.KnobIndicator,
	}
	mk.knob = NewEmbeddedKnob(knobCfg, theme, child, model,
		func(raw float64) { _, _ = m.PublishLocal(context.Background(), fullPath, raw) },
		func() { _ = m.Broadcast(context.Background(), fullPath) },
	)

	// The embedded knob already redraws itself on model changes; this
	// observer keeps the needle in step through the identical hook.
	model.OnChange(func(float64) { _ = mk.renderMeter() })
	return mk, nil
}

func (mk *MeterKnob) pivot(b ports.Rect) ports.Point {
	return ports.Point{X: b.Min.X + b.Width()/2, Y: b.Max.Y - b.Height()*0.25}
}

// Value returns the shared model.
func (mk *MeterKnob) Value() *domain.ValueModel { return mk.model }

// Topic returns the composite's registered topic.
func (mk *MeterKnob) Topic() string { return mk.topic }

// HandleGesture forwards interaction to the embedded knob, the composite's
// single interactive element.
func (mk *MeterKnob) HandleGesture(g ports.Gesture) error { return mk.knob.HandleGesture(g) }

// Close releases the single registration. Idempotent.
func (mk *MeterKnob) Close() error {
	mk.reg.Unregister()
	return nil
}

// Render draws the meter scale, the needle, and the embedded knob.
func (mk *MeterKnob) Render() error {
	if err := mk.renderMeter(); err != nil {
		return err
	}
	return mk.knob.Render()
}

func (mk *MeterKnob) renderMeter() error {
	b := mk.canvas.Bounds()
	pivot := mk.pivot(b)
	r := math.Min(b.Width()/2, b.Height()*0.7) - 2
	if r <= 0 {
		r = 1
	}

	thickness := mk.cfg.ScaleThickness
	if thickness <= 0 {
		thickness = 2
	}
	scale := ports.Geometry{
		Rect: ports.Rect{
			Min: ports.Point{X: pivot.X - r, Y: pivot.Y - r},
			Max: ports.Point{X: pivot.X + r, Y: pivot.Y + r},
		},
		Start:  135,
		Extent: -90,
	}
	if err := shape(mk.canvas, &mk.h.scale, ports.ShapeArc, scale, ports.Style{Stroke: mk.theme.Secondary, StrokeWidth: thickness}); err != nil {
		return err
	}

	norm := 0.0
	if span := mk.model.Span(); span > 0 {
		norm = (mk.model.Current() - mk.model.Min()) / span
	}
	angle := (135 - 90*norm) * math.Pi / 180
	needleColor := mk.cfg.NeedleColor
	if needleColor == "" {
		needleColor = mk.theme.Accent
	}
	tip := ports.Point{X: pivot.X + r*0.95*math.Cos(angle), Y: pivot.Y - r*0.95*math.Sin(angle)}
	needle := ports.Geometry{Rect: ports.Rect{Min: pivot, Max: tip}}
	if err := shape(mk.canvas, &mk.h.needle, ports.ShapeLine, needle, ports.Style{Stroke: needleColor, StrokeWidth: 2}); err != nil {
		return err
	}

	if mk.cfg.Label == "" {
		return nil
	}
	return text(mk.canvas, &mk.h.label, ports.Point{X: pivot.X, Y: b.Min.Y}, mk.cfg.Label, ports.Style{Fill: mk.theme.Foreground, Anchor: "n"})
}
