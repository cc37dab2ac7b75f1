package widget

import (
	"context"
	"fmt"

	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/gesture"
	"github.com/apkaudio/openair/pkg/mirror"
	"github.com/apkaudio/openair/pkg/ports"
)

// FaderConfig enumerates the accepted properties of a fader node.
type FaderConfig struct {
	RangeConfig `mapstructure:",squash"`

	Label        string   `mapstructure:"label"`
	Reference    *float64 `mapstructure:"reference"`
	FinePitch    float64  `mapstructure:"fine_pitch"`
	ShowTicks    bool     `mapstructure:"show_ticks"`
	TickInterval float64  `mapstructure:"tick_interval"`
}

// Fader is a vertical linear control.
type Fader struct {
	cfg    FaderConfig
	theme  domain.Theme
	canvas ports.Canvas

	model   *domain.ValueModel
	tracker *gesture.Tracker
	topic   string
	reg     *mirror.Registration

	h struct {
		track  ports.Handle
		handle ports.Handle
		label  ports.Handle
		value  ports.Handle
		ticks  []ports.Handle
	}
}

// NewFader builds a fader and registers it with the state mirror.
func NewFader(ctx context.Context, cfg FaderConfig, theme domain.Theme, canvas ports.Canvas, m *mirror.Mirror, topic string) (*Fader, error) {
	cfg.applyDefaults()
	model, err := cfg.RangeConfig.model(topic)
	if err != nil {
		return nil, err
	}
	reg, err := m.Register(ctx, topic, model)
	if err != nil {
		return nil, err
	}
	f := &Fader{cfg: cfg, theme: theme, canvas: canvas, model: model, topic: topic, reg: reg}
	gcfg := gesture.Config{FinePitch: cfg.FinePitch}
	if cfg.Reference != nil {
		gcfg.Reference = *cfg.Reference
		gcfg.HasReference = true
	}
	f.tracker = gesture.NewTracker(model, gcfg,
		func(raw float64) { _, _ = m.PublishLocal(context.Background(), topic, raw) },
		func() { _ = m.Broadcast(context.Background(), topic) },
	)
	model.OnChange(func(float64) { _ = f.Render() })
	return f, nil
}

// Value returns the owned model.
func (f *Fader) Value() *domain.ValueModel { return f.model }

// Topic returns the registered topic.
func (f *Fader) Topic() string { return f.topic }

// HandleGesture feeds one input event through the fader's tracker.
func (f *Fader) HandleGesture(g ports.Gesture) error { return f.tracker.Handle(g) }

// Close releases the mirror registration. Idempotent.
func (f *Fader) Close() error {
	f.reg.Unregister()
	return nil
}

// yForValue maps a value onto the track in canvas coordinates.
func (f *Fader) yForValue(b ports.Rect, v float64) float64 {
	norm := 0.0
	if span := f.model.Span(); span > 0 {
		norm = (v - f.model.Min()) / span
	}
	top := b.Min.Y + 10
	bottom := b.Max.Y - 10
	return bottom - norm*(bottom-top)
}

// Render draws the fader from the current model value and configuration.
func (f *Fader) Render() error {
	b := f.canvas.Bounds()
	cx := b.Min.X + b.Width()/2

	track := ports.Geometry{Rect: ports.Rect{
		Min: ports.Point{X: cx, Y: b.Min.Y + 10},
		Max: ports.Point{X: cx, Y: b.Max.Y - 10},
	}}
	if err := shape(f.canvas, &f.h.track, ports.ShapeLine, track, ports.Style{Stroke: f.theme.Track, StrokeWidth: 4}); err != nil {
		return err
	}

	if f.cfg.ShowTicks {
		if err := f.renderTicks(b); err != nil {
			return err
		}
	}

	y := f.yForValue(b, f.model.Current())
	hw := b.Width() * 0.4
	handleGeom := ports.Geometry{Rect: ports.Rect{
		Min: ports.Point{X: cx - hw/2, Y: y - 4},
		Max: ports.Point{X: cx + hw/2, Y: y + 4},
	}}
	if err := shape(f.canvas, &f.h.handle, ports.ShapeRect, handleGeom, ports.Style{Fill: f.theme.Handle}); err != nil {
		return err
	}

	if f.cfg.Label != "" {
		if err := text(f.canvas, &f.h.label, ports.Point{X: cx, Y: b.Min.Y}, f.cfg.Label, ports.Style{Fill: f.theme.Foreground, Anchor: "n"}); err != nil {
			return err
		}
	}
	return text(f.canvas, &f.h.value, ports.Point{X: cx, Y: b.Max.Y}, fmt.Sprintf("%.0f", f.model.Current()), ports.Style{Fill: f.theme.Foreground, Anchor: "s"})
}

func (f *Fader) renderTicks(b ports.Rect) error {
	interval := f.cfg.TickInterval
	if interval <= 0 {
		interval = f.model.Span() / 10
	}
	if interval <= 0 {
		return nil
	}
	steps := int(f.model.Span()/interval) + 1
	for i := 0; i < steps; i++ {
		v := f.model.Min() + float64(i)*interval
		y := f.yForValue(b, v)
		geom := ports.Geometry{Rect: ports.Rect{
			Min: ports.Point{X: b.Min.X, Y: y},
			Max: ports.Point{X: b.Max.X, Y: y},
		}}
		if i >= len(f.h.ticks) {
			f.h.ticks = append(f.h.ticks, ports.NoHandle)
		}
		if err := shape(f.canvas, &f.h.ticks[i], ports.ShapeLine, geom, ports.Style{Stroke: f.theme.Tick, StrokeWidth: 1}); err != nil {
			return err
		}
	}
	return nil
}
