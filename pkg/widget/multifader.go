package widget

import (
	"context"
	"fmt"

	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/mirror"
	"github.com/apkaudio/openair/pkg/ports"
	"github.com/apkaudio/openair/pkg/topic"
)

// Mode selects how a composite renders and routes interaction.
type Mode int

const (
	// ModeAggregate surfaces a single handle deriving from the mean of
	// the channels; dragging it moves every channel.
	ModeAggregate Mode = iota
	// ModePerChannel exposes one interactive strip per channel.
	ModePerChannel
)

// MultiFaderConfig enumerates the accepted properties of a multichannel
// fader node.
type MultiFaderConfig struct {
	RangeConfig `mapstructure:",squash"`

	Label           string    `mapstructure:"label"`
	Channels        int       `mapstructure:"channels"`
	ChannelDefaults []float64 `mapstructure:"channel_defaults"`
	// PublishChannels exposes one topic per channel under the composite's
	// own path. The channels still publish only through the composite's
	// registrations, never their own.
	PublishChannels bool    `mapstructure:"publish_channels"`
	WheelFraction   float64 `mapstructure:"wheel_fraction"`
	ShowTicks       bool    `mapstructure:"show_ticks"`
	TickInterval    float64 `mapstructure:"tick_interval"`
}

// MultiFader is a composite instrument: one master handle driving several
// dependent channels while preserving their relative offsets.
type MultiFader struct {
	cfg    MultiFaderConfig
	theme  domain.Theme
	canvas ports.Canvas

	state       *domain.CompositeState
	mode        Mode
	m           *mirror.Mirror
	topic       string
	childTopics []string
	reg         *mirror.Registration
	childRegs   []*mirror.Registration

	// syncing suppresses the master observer while a local gesture is
	// already driving the children, preventing circular updates.
	syncing bool

	dragging  bool
	dragChild int
	startY    float64
	startVal  float64

	h struct {
		tracks  []ports.Handle
		markers []ports.Handle
		cap     ports.Handle
		label   ports.Handle
	}
}

// NewMultiFader builds the composite, registers its master topic and, when
// configured, one topic per channel. This is the only registration surface
// for the whole composite: its visual sub-elements never register
// independently, which is what keeps a single gesture at a single
// publication.
func NewMultiFader(ctx context.Context, cfg MultiFaderConfig, theme domain.Theme, canvas ports.Canvas, m *mirror.Mirror, fullPath string) (*MultiFader, error) {
	cfg.applyDefaults()
	if cfg.Channels <= 0 {
		cfg.Channels = 4
	}
	if cfg.WheelFraction <= 0 {
		cfg.WheelFraction = 0.05
	}

	master, err := cfg.RangeConfig.model(fullPath)
	if err != nil {
		return nil, err
	}
	children := make([]*domain.ValueModel, cfg.Channels)
	for i := range children {
		def := cfg.Min
		if i < len(cfg.ChannelDefaults) {
			def = cfg.ChannelDefaults[i]
		}
		children[i], err = domain.NewValueModel(cfg.Min, cfg.Max, def, false)
		if err != nil {
			return nil, domain.NewConfigError(fullPath, "channel %d: %v", i, err)
		}
	}

	f := &MultiFader{
		cfg:       cfg,
		theme:     theme,
		canvas:    canvas,
		state:     domain.NewCompositeState(master, children),
		m:         m,
		topic:     fullPath,
		dragChild: -1,
	}

	reg, err := m.Register(ctx, fullPath, master)
	if err != nil {
		return nil, err
	}
	f.reg = reg

	if cfg.PublishChannels {
		for i, ch := range children {
			childTopic := topic.Join(fullPath, fmt.Sprintf("ch_%d", i+1))
			creg, err := m.Register(ctx, childTopic, ch)
			if err != nil {
				f.Close()
				return nil, err
			}
			f.childTopics = append(f.childTopics, childTopic)
			f.childRegs = append(f.childRegs, creg)

			idx := i
			ch.OnChange(func(float64) {
				if !f.syncing {
					// Remote change addressed to this channel: recompute
					// its offset, leave master and siblings untouched.
					f.state.ReanchorChild(idx)
				}
				_ = f.Render()
			})
		}
	} else {
		for _, ch := range children {
			ch.OnChange(func(float64) { _ = f.Render() })
		}
	}

	master.OnChange(func(float64) {
		if !f.syncing {
			// Remote change addressed to the master topic: children
			// follow their stored offsets.
			f.syncing = true
			f.state.SyncChildren()
			f.syncing = false
		}
		_ = f.Render()
	})

	return f, nil
}

// Value returns the aggregate (master) model.
func (f *MultiFader) Value() *domain.ValueModel { return f.state.Master() }

// State exposes the composite coupling for inspection.
func (f *MultiFader) State() *domain.CompositeState { return f.state }

// Topic returns the composite's registered master topic.
func (f *MultiFader) Topic() string { return f.topic }

// Mode returns the current interaction mode.
func (f *MultiFader) Mode() Mode { return f.mode }

// Close releases every registration held by the composite. Idempotent.
func (f *MultiFader) Close() error {
	if f.reg != nil {
		f.reg.Unregister()
	}
	for _, r := range f.childRegs {
		r.Unregister()
	}
	return nil
}

// applyMasterDelta drives a local aggregate-mode step: every channel moves
// by the requested delta (clamping at its own boundary, truncating its
// offset), the master follows within its range, and exactly the changed
// topics publish, master first.
func (f *MultiFader) applyMasterDelta(delta float64) {
	prevMaster := f.state.Master().Current()
	prev := make([]float64, len(f.state.Children()))
	for i, c := range f.state.Children() {
		prev[i] = c.Current()
	}

	f.syncing = true
	applied := f.state.ApplyMasterDelta(delta)
	f.syncing = false

	ctx := context.Background()
	if applied != prevMaster {
		_ = f.m.Broadcast(ctx, f.topic)
	}
	for i, ct := range f.childTopics {
		if f.state.Children()[i].Current() != prev[i] {
			_ = f.m.Broadcast(ctx, ct)
		}
	}
	_ = f.Render()
}

// applyChild drives a local per-channel step: only the touched channel
// moves and, when exposed, only its topic publishes.
func (f *MultiFader) applyChild(i int, raw float64) {
	prev := f.state.Children()[i].Current()
	f.syncing = true
	applied := f.state.SetChild(i, raw)
	f.syncing = false
	if applied != prev && i < len(f.childTopics) {
		_ = f.m.Broadcast(context.Background(), f.childTopics[i])
	}
	_ = f.Render()
}

func (f *MultiFader) yForValue(b ports.Rect, v float64) float64 {
	norm := 0.0
	if span := f.state.Master().Span(); span > 0 {
		norm = (v - f.state.Master().Min()) / span
	}
	top := b.Min.Y + 20
	bottom := b.Max.Y - 20
	return bottom - norm*(bottom-top)
}

func (f *MultiFader) valueForY(b ports.Rect, y float64) float64 {
	top := b.Min.Y + 20
	bottom := b.Max.Y - 20
	if bottom == top {
		return f.state.Master().Min()
	}
	norm := (bottom - y) / (bottom - top)
	return f.state.Master().Min() + norm*f.state.Master().Span()
}

func (f *MultiFader) channelAt(b ports.Rect, x float64) int {
	n := len(f.state.Children())
	if n == 0 || b.Width() <= 0 {
		return -1
	}
	i := int((x - b.Min.X) / (b.Width() / float64(n)))
	if i < 0 || i >= n {
		return -1
	}
	return i
}

// HandleGesture routes one input event. The mode toggle is a dedicated
// gesture (secondary press; input adapters also map double-click to it) and
// never alters any value.
func (f *MultiFader) HandleGesture(g ports.Gesture) error {
	b := f.canvas.Bounds()
	master := f.state.Master()

	switch g.Kind {
	case ports.GestureDown:
		if g.Button == ports.ButtonSecondary {
			if f.mode == ModeAggregate {
				f.mode = ModePerChannel
			} else {
				f.mode = ModeAggregate
			}
			return f.Render()
		}
		if f.mode == ModePerChannel {
			if i := f.channelAt(b, g.Pos.X); i >= 0 {
				f.dragChild = i
				f.startY = g.Pos.Y
				f.startVal = f.state.Children()[i].Current()
				return nil
			}
		}
		f.dragging = true
		f.startY = g.Pos.Y
		f.startVal = master.Current()

	case ports.GestureMove:
		if f.dragChild >= 0 {
			raw := f.startVal + f.valueForY(b, g.Pos.Y) - f.valueForY(b, f.startY)
			f.applyChild(f.dragChild, raw)
			return nil
		}
		if f.dragging {
			target := f.startVal + f.valueForY(b, g.Pos.Y) - f.valueForY(b, f.startY)
			f.applyMasterDelta(target - master.Current())
		}

	case ports.GestureUp:
		f.dragging = false
		f.dragChild = -1

	case ports.GestureWheel:
		delta := float64(g.Steps) * master.Span() * f.cfg.WheelFraction
		f.applyMasterDelta(delta)
	}
	return nil
}

// Render draws every channel strip, each channel's marker, and the master
// cap. In per-channel mode the cap is drawn hollow so the strips read as
// the interactive surface.
func (f *MultiFader) Render() error {
	b := f.canvas.Bounds()
	n := len(f.state.Children())
	if n == 0 {
		return nil
	}
	stripW := b.Width() / float64(n)

	for i := 0; i < n; i++ {
		x := b.Min.X + float64(i)*stripW + stripW/2
		geom := ports.Geometry{Rect: ports.Rect{
			Min: ports.Point{X: x, Y: b.Min.Y + 20},
			Max: ports.Point{X: x, Y: b.Max.Y - 20},
		}}
		if i >= len(f.h.tracks) {
			f.h.tracks = append(f.h.tracks, ports.NoHandle)
		}
		if err := shape(f.canvas, &f.h.tracks[i], ports.ShapeLine, geom, ports.Style{Stroke: f.theme.Track, StrokeWidth: 4}); err != nil {
			return err
		}
	}

	for i, c := range f.state.Children() {
		x := b.Min.X + float64(i)*stripW + stripW/2
		y := f.yForValue(b, c.Current())
		geom := ports.Geometry{Rect: ports.Rect{
			Min: ports.Point{X: x - stripW*0.3, Y: y},
			Max: ports.Point{X: x + stripW*0.3, Y: y},
		}}
		if i >= len(f.h.markers) {
			f.h.markers = append(f.h.markers, ports.NoHandle)
		}
		if err := shape(f.canvas, &f.h.markers[i], ports.ShapeLine, geom, ports.Style{Stroke: f.theme.Accent, StrokeWidth: 3}); err != nil {
			return err
		}
	}

	capStyle := ports.Style{Fill: f.theme.Handle}
	if f.mode == ModePerChannel {
		capStyle = ports.Style{Stroke: f.theme.Handle, StrokeWidth: 1}
	}
	y := f.yForValue(b, f.state.Master().Current())
	capGeom := ports.Geometry{Rect: ports.Rect{
		Min: ports.Point{X: b.Min.X, Y: y - 6},
		Max: ports.Point{X: b.Max.X, Y: y + 6},
	}}
	if err := shape(f.canvas, &f.h.cap, ports.ShapeRect, capGeom, capStyle); err != nil {
		return err
	}

	if f.cfg.Label != "" {
		if err := text(f.canvas, &f.h.label, ports.Point{X: b.Min.X + b.Width()/2, Y: b.Min.Y}, f.cfg.Label, ports.Style{Fill: f.theme.Foreground, Anchor: "n"}); err != nil {
			return err
		}
	}
	return nil
}
