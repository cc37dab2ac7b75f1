package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/apkaudio/openair"
	"github.com/apkaudio/openair/internal/cli"
	"github.com/apkaudio/openair/internal/presentation/tui"
	"github.com/apkaudio/openair/pkg/adapters/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the panel in the terminal",
	Long:  `Builds the panel from the document and renders it live in the terminal, following remote changes from the bus.`,
	Run: func(cmd *cobra.Command, args []string) {
		panelPath, _ := cmd.Flags().GetString("panel")
		if !cmd.Flags().Changed("panel") && len(args) > 0 {
			panelPath = args[0]
		}
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		if err := runPanel(panelPath, configPath, debug); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runPanel(panelPath, configPath string, debug bool) error {
	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := cli.NewLogger(cfg, false, debug)

	surface := term.NewSurface()
	app, err := cli.NewApp(cli.Options{PanelPath: panelPath, Debug: debug}, cfg, surface.Root(), logger)
	if err != nil {
		return err
	}
	defer app.Close()

	tui.PrintBanner(openair.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Build(ctx); err != nil {
		return err
	}

	// Terminal input drives the widgets: the router translates decoded
	// key and mouse events into gestures queued onto the panel goroutine.
	router := term.NewRouter(app.Panel(), app,
		term.WithRouterLogger(logger),
		term.WithQuit(stop),
	)
	input := term.NewInput(os.Stdin, os.Stdout)
	go func() {
		if err := input.Run(ctx, router.Handle); err != nil && ctx.Err() == nil {
			logger.Warn("input loop stopped", "err", err)
		}
	}()

	// Repaint at a fixed cadence. The surface serializes display-list
	// access internally.
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				surface.Flush()
			}
		}
	}()

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Make 'run' the default if no command is provided.
	rootCmd.Run = runCmd.Run
}
