package widget

import (
	"context"
	"time"

	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/mirror"
	"github.com/apkaudio/openair/pkg/ports"
)

const actuatorFrame = 16 * time.Millisecond

// ActuatorConfig enumerates the accepted properties of an actuator node.
type ActuatorConfig struct {
	Label string `mapstructure:"label"`
	// Duration is the open/close transition time in milliseconds.
	Duration float64 `mapstructure:"duration_ms"`
	// Default is the initial state: 0 closed, 1 open.
	Default   float64 `mapstructure:"default"`
	OpenColor string  `mapstructure:"open_color"`
}

// Actuator is a two-state control with a smooth open/close transition. The
// logical value flips atomically and publishes once; the transition is
// purely visual, computed on an independent goroutine that only posts
// redraw callbacks to the UI scheduler. A new gesture or a remote update
// cancels the running animation and restarts it from the current
// interpolated position.
type Actuator struct {
	cfg    ActuatorConfig
	theme  domain.Theme
	canvas ports.Canvas
	sched  ports.Scheduler

	model *domain.ValueModel
	topic string
	reg   *mirror.Registration
	m     *mirror.Mirror

	// progress is the rendered interpolation position in [0,1].
	// UI goroutine only.
	progress float64
	cancel   context.CancelFunc

	h struct {
		frame   ports.Handle
		shutter ports.Handle
		label   ports.Handle
	}
}

// NewActuator builds the actuator and registers it with the state mirror.
func NewActuator(ctx context.Context, cfg ActuatorConfig, theme domain.Theme, canvas ports.Canvas, m *mirror.Mirror, sched ports.Scheduler, fullPath string) (*Actuator, error) {
	if cfg.Duration <= 0 {
		cfg.Duration = 250
	}
	model, err := domain.NewValueModel(0, 1, cfg.Default, false)
	if err != nil {
		return nil, err
	}
	reg, err := m.Register(ctx, fullPath, model)
	if err != nil {
		return nil, err
	}
	a := &Actuator{
		cfg:      cfg,
		theme:    theme,
		canvas:   canvas,
		sched:    sched,
		model:    model,
		topic:    fullPath,
		reg:      reg,
		m:        m,
		progress: model.Current(),
	}
	// Local toggles and remote messages drive the animation through the
	// same change hook.
	model.OnChange(func(v float64) { a.animateTo(v) })
	return a, nil
}

// Value returns the owned model.
func (a *Actuator) Value() *domain.ValueModel { return a.model }

// Topic returns the registered topic.
func (a *Actuator) Topic() string { return a.topic }

// Progress returns the rendered interpolation position. UI goroutine only.
func (a *Actuator) Progress() float64 { return a.progress }

// HandleGesture toggles the actuator on a primary press. One toggle is one
// publication; the animation itself never publishes.
func (a *Actuator) HandleGesture(g ports.Gesture) error {
	if g.Kind != ports.GestureDown || g.Button != ports.ButtonPrimary {
		return nil
	}
	target := 1.0
	if a.model.Current() >= 0.5 {
		target = 0
	}
	_, err := a.m.PublishLocal(context.Background(), a.topic, target)
	return err
}

// Close stops any running animation and releases the registration.
func (a *Actuator) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.reg.Unregister()
	return nil
}

// animateTo starts the transition toward target from the current
// interpolated position, cancelling any animation in flight. Must be
// called from the UI goroutine (the model change hook guarantees this for
// both origins).
func (a *Actuator) animateTo(target float64) {
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	from := a.progress
	dur := time.Duration(a.cfg.Duration) * time.Millisecond

	go func() {
		start := time.Now()
		ticker := time.NewTicker(actuatorFrame)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t := float64(time.Since(start)) / float64(dur)
				if t > 1 {
					t = 1
				}
				p := from + (target-from)*t
				a.sched.Post(func() {
					a.progress = p
					_ = a.Render()
				})
				if t >= 1 {
					return
				}
			}
		}
	}()
}

// Render draws the frame and the shutter at the current interpolation
// position.
func (a *Actuator) Render() error {
	b := a.canvas.Bounds()
	frame := ports.Geometry{Rect: b}
	if err := shape(a.canvas, &a.h.frame, ports.ShapeRect, frame, ports.Style{Stroke: a.theme.Secondary, StrokeWidth: 1}); err != nil {
		return err
	}

	openColor := a.cfg.OpenColor
	if openColor == "" {
		openColor = a.theme.Accent
	}
	// The shutter rises with progress: closed fills the frame, open
	// leaves it clear.
	top := b.Min.Y + b.Height()*a.progress
	shutter := ports.Geometry{Rect: ports.Rect{
		Min: ports.Point{X: b.Min.X, Y: top},
		Max: b.Max,
	}}
	if err := shape(a.canvas, &a.h.shutter, ports.ShapeRect, shutter, ports.Style{Fill: openColor}); err != nil {
		return err
	}

	if a.cfg.Label == "" {
		return nil
	}
	center := ports.Point{X: b.Min.X + b.Width()/2, Y: b.Min.Y + b.Height()/2}
	return text(a.canvas, &a.h.label, center, a.cfg.Label, ports.Style{Fill: a.theme.Foreground, Anchor: "center"})
}
