// Package cli shares panel assembly between the CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/apkaudio/openair"
	"github.com/apkaudio/openair/internal/config"
	"github.com/apkaudio/openair/internal/logging"
	"github.com/apkaudio/openair/internal/metrics"
	"github.com/apkaudio/openair/pkg/adapters/jsondoc"
	"github.com/apkaudio/openair/pkg/adapters/memory"
	"github.com/apkaudio/openair/pkg/adapters/redis"
	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/observability"
	"github.com/apkaudio/openair/pkg/ports"
)

// Options carries the command-line inputs shared by every command.
type Options struct {
	PanelPath  string
	ConfigPath string
	Headless   bool
	Debug      bool
}

// NewLogger builds the standard logger for a command invocation.
func NewLogger(cfg config.Config, headless, debug bool) *slog.Logger {
	level := parseLevel(cfg.LogLevel)
	if debug {
		level = slog.LevelDebug
	}
	if headless {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParsePort validates a port flag value.
func ParsePort(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return n, nil
}

// LoadConfig reads the config file when given, defaults otherwise.
func LoadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// NewBus builds the configured message bus.
func NewBus(cfg config.Config) (ports.Bus, error) {
	switch cfg.Broker.Kind {
	case "", "memory":
		return memory.NewBus(), nil
	case "redis":
		var opts []redis.Option
		if cfg.Broker.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Broker.Prefix))
		}
		return redis.New(cfg.Broker.Address, cfg.Broker.Password, cfg.Broker.DB, opts...), nil
	default:
		return nil, fmt.Errorf("unknown broker kind %q", cfg.Broker.Kind)
	}
}

// NewApp assembles the panel application with standard CLI conventions:
// configured bus, Prometheus hooks on the default registry, and the theme
// from configuration.
func NewApp(opts Options, cfg config.Config, canvas ports.Canvas, logger *slog.Logger) (*openair.App, error) {
	bus, err := NewBus(cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	hooks := m.Hooks()
	if opts.Debug {
		hooks = observability.Combine(hooks, debugHooks(logger))
	}

	app, err := openair.New(jsondoc.NewLoader(opts.PanelPath),
		openair.WithBus(bus),
		openair.WithCanvas(canvas),
		openair.WithLogger(logger),
		openair.WithTheme(domain.ThemeByName(cfg.Theme)),
		openair.WithLifecycleHooks(hooks),
		openair.WithBaseTopic(cfg.BaseTopic),
		openair.WithQueueDepth(cfg.QueueDepth),
	)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("error initializing panel: %w", err)
	}
	return app, nil
}
