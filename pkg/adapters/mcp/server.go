// Package mcp exposes the running panel to agent tooling over the Model
// Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/apkaudio/openair"
)

// Panel is the view of the running control panel consumed by the MCP
// surface. The state mirror satisfies it.
type Panel interface {
	Topics() []string
	Value(topic string) (float64, bool)
	Snapshot() map[string]float64
	Dispatch(topic string, raw float64) error
}

// ControlState is the structured result shape shared by the control tools.
type ControlState struct {
	Topic string  `json:"topic" jsonschema_description:"Full topic path of the control"`
	Val   float64 `json:"val" jsonschema_description:"Current value of the control"`
}

// Server wraps a panel and exposes it as an MCP server.
type Server struct {
	panel     Panel
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers its tools and resources.
func NewServer(panel Panel) *Server {
	s := &Server{
		panel:     panel,
		mcpServer: server.NewMCPServer("openair-mcp", strings.TrimSpace(openair.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_controls
	s.mcpServer.AddTool(mcp.NewTool("list_controls",
		mcp.WithDescription("List every control topic on the panel with its current value."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.panel.Snapshot())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: get_control
	getTool := mcp.NewTool("get_control",
		mcp.WithDescription("Read the current value of one control."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Full topic path of the control")),
		mcp.WithOutputSchema[ControlState](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetControl))

	// TOOL: set_control
	setTool := mcp.NewTool("set_control",
		mcp.WithDescription("Set a control to a value. The change is applied and published exactly like a local gesture."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Full topic path of the control")),
		mcp.WithNumber("val", mcp.Required(), mcp.Description("Target value; clamped or wrapped to the control's range")),
		mcp.WithOutputSchema[ControlState](),
	)
	s.mcpServer.AddTool(setTool, mcp.NewStructuredToolHandler(s.handleSetControl))
}

func (s *Server) handleGetControl(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ControlState, error) {
	topic, _ := args["topic"].(string)
	val, ok := s.panel.Value(topic)
	if !ok {
		return ControlState{}, fmt.Errorf("unknown topic %q", topic)
	}
	return ControlState{Topic: topic, Val: val}, nil
}

func (s *Server) handleSetControl(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ControlState, error) {
	topic, _ := args["topic"].(string)
	val, ok := args["val"].(float64)
	if !ok {
		return ControlState{}, fmt.Errorf("val must be a number")
	}
	if err := s.panel.Dispatch(topic, val); err != nil {
		return ControlState{}, fmt.Errorf("set failed: %w", err)
	}
	// The write is queued for the panel goroutine; report the target value.
	return ControlState{Topic: topic, Val: val}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: openair://panel
	s.mcpServer.AddResource(mcp.NewResource("openair://panel", "Current Panel State",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.panel.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot panel: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "openair://panel",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
