package openair

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apkaudio/openair/internal/logging"
	"github.com/apkaudio/openair/internal/sched"
	"github.com/apkaudio/openair/pkg/adapters/memory"
	"github.com/apkaudio/openair/pkg/compose"
	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/mirror"
	"github.com/apkaudio/openair/pkg/ports"
	"github.com/apkaudio/openair/pkg/topic"
)

// Version is the release version reported by the CLI and the MCP surface.
var Version = "0.1.0"

// App assembles a live panel: one scheduler goroutine, one state mirror,
// and the widgets composed from a declarative tree.
type App struct {
	loader     ports.TreeLoader
	bus        ports.Bus
	canvas     ports.Canvas
	logger     *slog.Logger
	theme      domain.Theme
	hooks      domain.LifecycleHooks
	baseTopic  string
	queueDepth int
	ownsBus    bool

	loop   *sched.Loop
	mirror *mirror.Mirror
	panel  *compose.Panel
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithBus injects the message bus. Defaults to an in-process bus, which
// makes a standalone panel work with no broker at all.
func WithBus(b ports.Bus) Option {
	return func(a *App) {
		a.bus = b
		a.ownsBus = false
	}
}

// WithCanvas injects the drawing surface.
func WithCanvas(c ports.Canvas) Option {
	return func(a *App) { a.canvas = c }
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithTheme selects the color theme.
func WithTheme(t domain.Theme) Option {
	return func(a *App) { a.theme = t }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *App) { a.hooks = hooks }
}

// WithBaseTopic prefixes every resolved topic, separating panel instances
// that share a broker.
func WithBaseTopic(base string) Option {
	return func(a *App) { a.baseTopic = base }
}

// WithQueueDepth sets the scheduler's inbound queue depth.
func WithQueueDepth(depth int) Option {
	return func(a *App) { a.queueDepth = depth }
}

// New creates an App around a panel document loader.
func New(loader ports.TreeLoader, opts ...Option) (*App, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	app := &App{
		loader:     loader,
		theme:      domain.DarkTheme(),
		queueDepth: 256,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.logger == nil {
		app.logger = logging.NewNop()
	}
	if app.bus == nil {
		app.bus = memory.NewBus()
		app.ownsBus = true
	}
	if app.canvas == nil {
		return nil, fmt.Errorf("canvas is required")
	}
	if app.queueDepth <= 0 {
		return nil, fmt.Errorf("queue depth must be positive")
	}

	app.loop = sched.New(app.queueDepth, sched.WithDropHandler(func() {
		app.logger.Warn("scheduler queue saturated, oldest work dropped")
	}))
	app.mirror = mirror.New(app.bus, app.loop,
		mirror.WithLogger(app.logger),
		mirror.WithLifecycleHooks(app.hooks),
	)
	return app, nil
}

// Build loads the document, composes the widgets, draws the initial frame,
// and announces every control's initial value on the bus. Call before Run,
// on the same goroutine that will call Run.
func (a *App) Build(ctx context.Context) error {
	nodes, err := a.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load panel: %w", err)
	}

	engine := compose.NewEngine(compose.Deps{
		Mirror: a.mirror,
		Theme:  a.theme,
		Sched:  a.loop,
		Logger: a.logger,
		Hooks:  a.hooks,
	})
	root := nodes
	if a.baseTopic != "" {
		root = []domain.Node{{
			Name:     a.baseTopic,
			Type:     domain.TypeGroup,
			Path:     a.baseTopic,
			Children: nodes,
		}}
	}
	panel, err := engine.Build(ctx, root, a.canvas)
	if err != nil {
		return err
	}
	a.panel = panel

	if err := panel.Render(); err != nil {
		return fmt.Errorf("initial render failed: %w", err)
	}
	for _, t := range panel.Topics() {
		if err := a.mirror.Broadcast(ctx, t); err != nil {
			a.logger.Warn("initial broadcast failed", "topic", t, "err", err)
		}
	}
	a.logger.Info("panel built", "widgets", len(panel.Widgets()))
	return nil
}

// Run processes scheduled work until ctx is cancelled. It owns all widget
// and model mutation for the life of the panel.
func (a *App) Run(ctx context.Context) error {
	a.loop.Run(ctx)
	return ctx.Err()
}

// Gesture queues an input event for the widget registered under topic.
// Safe to call from any goroutine; the widget handles the event on the
// panel goroutine. Unknown topics fail immediately with ErrTopicNotFound.
func (a *App) Gesture(t string, g ports.Gesture) error {
	if a.panel == nil {
		return fmt.Errorf("panel not built")
	}
	w, ok := a.panel.Widget(t)
	if !ok {
		return fmt.Errorf("%q: %w", t, domain.ErrTopicNotFound)
	}
	a.loop.Post(func() {
		if err := w.HandleGesture(g); err != nil {
			a.logger.Warn("gesture rejected", "topic", t, "err", err)
		}
	})
	return nil
}

// Mirror exposes the state mirror for read/write surfaces (HTTP, MCP).
func (a *App) Mirror() *mirror.Mirror { return a.mirror }

// Panel returns the composed panel. Nil before Build.
func (a *App) Panel() *compose.Panel { return a.panel }

// Topic joins fragments under the app's base topic.
func (a *App) Topic(parts ...string) string {
	return topic.Join(append([]string{a.baseTopic}, parts...)...)
}

// Close tears down the panel and, when the App created its own bus, the
// bus as well.
func (a *App) Close() error {
	if a.panel != nil {
		_ = a.panel.Close()
	}
	if a.ownsBus {
		return a.bus.Close()
	}
	return nil
}
