package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/apkaudio/openair/internal/cli"
	"github.com/apkaudio/openair/pkg/adapters/mcp"
	"github.com/apkaudio/openair/pkg/adapters/term"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the panel as an MCP server so AI agents can read and set controls as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		panelPath, _ := cmd.Flags().GetString("panel")
		if !cmd.Flags().Changed("panel") && len(args) > 0 {
			panelPath = args[0]
		}
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		logger := cli.NewLogger(cfg, true, debug)

		surface := term.NewSurfaceSize(80, 24)
		app, err := cli.NewApp(cli.Options{PanelPath: panelPath, Headless: true, Debug: debug}, cfg, surface.Root(), logger)
		if err != nil {
			log.Fatalf("Error initializing panel: %v", err)
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := app.Build(ctx); err != nil {
			log.Fatalf("Error building panel: %v", err)
		}
		go app.Run(ctx)

		srv := mcp.NewServer(app.Mirror())

		switch transport {
		case "stdio":
			// Keep logs off Stdout so JSON-RPC stays clean.
			log.SetOutput(os.Stderr)
			logger.Info("starting MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				logger.Error("MCP server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			logger.Info("starting MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil {
				if err != http.ErrServerClosed {
					logger.Error("MCP server execution failed", "err", err)
					os.Exit(1)
				}
			}
			logger.Info("MCP server stopped")
		default:
			fmt.Printf("Unknown transport: %s. Supported: stdio, sse\n", transport)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
