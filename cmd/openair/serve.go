package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/apkaudio/openair/internal/cli"
	httpAdapter "github.com/apkaudio/openair/pkg/adapters/http"
	"github.com/apkaudio/openair/pkg/adapters/term"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the panel headless with an HTTP API",
	Long:  `Builds the panel without a visible terminal surface and exposes its controls over a JSON API, including Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		panelPath, _ := cmd.Flags().GetString("panel")
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		port, _ := cmd.Flags().GetString("port")

		if err := servePanel(panelPath, configPath, port, debug); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func servePanel(panelPath, configPath, port string, debug bool) error {
	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if port != "" {
		n, err := cli.ParsePort(port)
		if err != nil {
			return err
		}
		cfg.HTTPPort = n
	}
	logger := cli.NewLogger(cfg, true, debug)

	// Headless surface: widgets draw into an off-screen grid.
	surface := term.NewSurfaceSize(80, 24)
	app, err := cli.NewApp(cli.Options{PanelPath: panelPath, Headless: true, Debug: debug}, cfg, surface.Root(), logger)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Build(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: httpAdapter.NewHandler(app.Mirror(), httpAdapter.WithLogger(logger)),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("panel server listening", "addr", srv.Addr, "panel", panelPath)
		serverErrors <- srv.ListenAndServe()
	}()
	go app.Run(ctx)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "err", err)
			_ = srv.Close()
		}
		logger.Info("panel server stopped")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides config)")
}
