// Package compose walks the declarative widget tree, resolves each node's
// topic, instantiates the matching widget variant, and wires parent-child
// canvas embedding.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/mirror"
	"github.com/apkaudio/openair/pkg/ports"
	"github.com/apkaudio/openair/pkg/topic"
	"github.com/apkaudio/openair/pkg/widget"
)

// Deps carries the shared collaborators threaded into every widget at
// construction time. There is no ambient lookup.
type Deps struct {
	Mirror *mirror.Mirror
	Theme  domain.Theme
	Sched  ports.Scheduler
	Logger *slog.Logger
	Hooks  domain.LifecycleHooks
}

// BuilderFunc instantiates one widget variant from a resolved node.
type BuilderFunc func(ctx context.Context, deps Deps, node domain.Node, fullPath string, canvas ports.Canvas) (ports.Widget, error)

// Engine maps type tags to builders and drives the tree walk.
type Engine struct {
	deps     Deps
	registry map[string]BuilderFunc
}

// NewEngine creates an engine with the built-in widget registry.
func NewEngine(deps Deps) *Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	e := &Engine{deps: deps, registry: make(map[string]BuilderFunc)}
	e.Register(domain.TypeKnob, buildKnob)
	e.Register(domain.TypeFader, buildFader)
	e.Register(domain.TypeMultiFader, buildMultiFader)
	e.Register(domain.TypeMeterKnob, buildMeterKnob)
	e.Register(domain.TypeActuator, buildActuator)
	return e
}

// Register adds or overwrites a builder for a type tag.
func (e *Engine) Register(typeTag string, b BuilderFunc) {
	e.registry[typeTag] = b
}

// Panel is the set of live widgets built from one document.
type Panel struct {
	widgets []ports.Widget
	byTopic map[string]ports.Widget
	regions map[string]ports.Rect
}

// Widgets returns the live widgets in build order.
func (p *Panel) Widgets() []ports.Widget { return p.widgets }

// Widget looks up a widget by its registered topic.
func (p *Panel) Widget(t string) (ports.Widget, bool) {
	w, ok := p.byTopic[t]
	return w, ok
}

// Region returns the widget's rectangle in the root canvas's coordinates,
// the space pointer events arrive in.
func (p *Panel) Region(t string) (ports.Rect, bool) {
	r, ok := p.regions[t]
	return r, ok
}

// WidgetAt hit-tests a root-canvas position against the composed widgets
// and returns the topic of the one whose region contains it.
func (p *Panel) WidgetAt(pos ports.Point) (string, bool) {
	for _, w := range p.widgets {
		if p.regions[w.Topic()].Contains(pos) {
			return w.Topic(), true
		}
	}
	return "", false
}

// Topics lists the registered topics in build order.
func (p *Panel) Topics() []string {
	out := make([]string, 0, len(p.widgets))
	for _, w := range p.widgets {
		out = append(out, w.Topic())
	}
	return out
}

// Render draws every widget. Safe to call redundantly.
func (p *Panel) Render() error {
	for _, w := range p.widgets {
		if err := w.Render(); err != nil {
			return err
		}
	}
	return nil
}

// Handle routes a gesture to the widget registered under topic.
func (p *Panel) Handle(t string, g ports.Gesture) error {
	w, ok := p.byTopic[t]
	if !ok {
		return fmt.Errorf("%q: %w", t, domain.ErrTopicNotFound)
	}
	return w.HandleGesture(g)
}

// Close tears down every widget. Idempotent.
func (p *Panel) Close() error {
	for _, w := range p.widgets {
		_ = w.Close()
	}
	return nil
}

// Build walks the tree and instantiates widgets onto the canvas. A node
// with a configuration defect is skipped with a log line; the rest of the
// panel still builds. Only defects in the walk itself (none today) abort.
func (e *Engine) Build(ctx context.Context, nodes []domain.Node, canvas ports.Canvas) (*Panel, error) {
	p := &Panel{byTopic: make(map[string]ports.Widget), regions: make(map[string]ports.Rect)}
	res := topic.NewResolver()
	e.walk(ctx, p, res, "", nodes, canvas, canvas.Bounds().Min)
	return p, nil
}

// origin is the canvas's top-left corner in root coordinates; embedded
// canvases see their own coordinate space, so it accumulates down the
// tree and positions every widget for pointer hit-testing.
func (e *Engine) walk(ctx context.Context, p *Panel, res *topic.Resolver, parentPath string, nodes []domain.Node, canvas ports.Canvas, origin ports.Point) {
	b := canvas.Bounds()
	regions := splitRows(b, len(nodes))
	for i, node := range nodes {
		absolute := ports.Rect{
			Min: ports.Point{X: origin.X + regions[i].Min.X - b.Min.X, Y: origin.Y + regions[i].Min.Y - b.Min.Y},
			Max: ports.Point{X: origin.X + regions[i].Max.X - b.Min.X, Y: origin.Y + regions[i].Max.Y - b.Min.Y},
		}
		e.buildNode(ctx, p, res, parentPath, node, canvas, regions[i], absolute)
	}
}

func (e *Engine) buildNode(ctx context.Context, p *Panel, res *topic.Resolver, parentPath string, node domain.Node, canvas ports.Canvas, region ports.Rect, absolute ports.Rect) {
	fullPath := parentPath
	if node.Kind() != domain.KindGroup || node.Path != "" {
		resolved, err := res.Resolve(parentPath, node.Path)
		if err != nil {
			e.skip(ctx, node, parentPath, err)
			return
		}
		fullPath = resolved
	}

	child, err := canvas.Embed(region)
	if err != nil {
		e.skip(ctx, node, fullPath, err)
		return
	}

	if node.Kind() == domain.KindGroup {
		e.walk(ctx, p, res, fullPath, node.Children, child, absolute.Min)
		return
	}

	builder, ok := e.registry[node.Type]
	if !ok {
		e.skip(ctx, node, fullPath, domain.NewConfigError(fullPath, "unknown widget type %q", node.Type))
		return
	}
	w, err := builder(ctx, e.deps, node, fullPath, child)
	if err != nil {
		e.skip(ctx, node, fullPath, err)
		return
	}
	p.widgets = append(p.widgets, w)
	p.byTopic[w.Topic()] = w
	p.regions[w.Topic()] = absolute
	e.deps.Logger.Debug("widget composed", "topic", w.Topic(), "type", node.Type)
}

// skip logs a node-level defect and moves on: a single bad node renders as
// an omitted control, it never aborts the whole panel.
func (e *Engine) skip(ctx context.Context, node domain.Node, path string, err error) {
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) && !errors.Is(err, domain.ErrDuplicateTopic) {
		e.deps.Logger.Warn("node skipped", "path", path, "type", node.Type, "err", err)
	} else {
		e.deps.Logger.Warn("node skipped: configuration defect", "path", path, "type", node.Type, "err", err)
	}
	if e.deps.Hooks.OnNodeSkipped != nil {
		e.deps.Hooks.OnNodeSkipped(ctx, &domain.NodeEvent{
			Timestamp: time.Now(), Type: domain.EventNodeSkipped, Path: path, Reason: err.Error(),
		})
	}
}

// splitRows divides a region into n equal rows, the document's implicit
// top-to-bottom layout.
func splitRows(b ports.Rect, n int) []ports.Rect {
	if n <= 0 {
		return nil
	}
	out := make([]ports.Rect, n)
	h := b.Height() / float64(n)
	for i := range out {
		out[i] = ports.Rect{
			Min: ports.Point{X: b.Min.X, Y: b.Min.Y + float64(i)*h},
			Max: ports.Point{X: b.Max.X, Y: b.Min.Y + float64(i+1)*h},
		}
	}
	return out
}

func buildKnob(ctx context.Context, deps Deps, node domain.Node, fullPath string, canvas ports.Canvas) (ports.Widget, error) {
	var cfg widget.KnobConfig
	if err := widget.DecodeConfig(node.Properties, &cfg); err != nil {
		return nil, domain.NewConfigError(fullPath, "knob: %v", err)
	}
	return widget.NewKnob(ctx, cfg, deps.Theme, canvas, deps.Mirror, fullPath)
}

func buildFader(ctx context.Context, deps Deps, node domain.Node, fullPath string, canvas ports.Canvas) (ports.Widget, error) {
	var cfg widget.FaderConfig
	if err := widget.DecodeConfig(node.Properties, &cfg); err != nil {
		return nil, domain.NewConfigError(fullPath, "fader: %v", err)
	}
	return widget.NewFader(ctx, cfg, deps.Theme, canvas, deps.Mirror, fullPath)
}

func buildMultiFader(ctx context.Context, deps Deps, node domain.Node, fullPath string, canvas ports.Canvas) (ports.Widget, error) {
	var cfg widget.MultiFaderConfig
	if err := widget.DecodeConfig(node.Properties, &cfg); err != nil {
		return nil, domain.NewConfigError(fullPath, "multifader: %v", err)
	}
	return widget.NewMultiFader(ctx, cfg, deps.Theme, canvas, deps.Mirror, fullPath)
}

func buildMeterKnob(ctx context.Context, deps Deps, node domain.Node, fullPath string, canvas ports.Canvas) (ports.Widget, error) {
	var cfg widget.MeterKnobConfig
	if err := widget.DecodeConfig(node.Properties, &cfg); err != nil {
		return nil, domain.NewConfigError(fullPath, "meterknob: %v", err)
	}
	return widget.NewMeterKnob(ctx, cfg, deps.Theme, canvas, deps.Mirror, fullPath)
}

func buildActuator(ctx context.Context, deps Deps, node domain.Node, fullPath string, canvas ports.Canvas) (ports.Widget, error) {
	var cfg widget.ActuatorConfig
	if err := widget.DecodeConfig(node.Properties, &cfg); err != nil {
		return nil, domain.NewConfigError(fullPath, "actuator: %v", err)
	}
	return widget.NewActuator(ctx, cfg, deps.Theme, canvas, deps.Mirror, deps.Sched, fullPath)
}
