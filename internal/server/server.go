// Package server exposes the bridge operations as MCP tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/logging"
	"github.com/mj1618/android-cli/internal/metrics"
	"go.uber.org/zap"
)

// Name is the MCP server name announced to clients.
const Name = "android-cu"

// Instructions tells agents which layer to use for what.
const Instructions = "MCP server for Android app testing. Two layers:\n" +
	"Layer 1: UIAutomator accessibility tree for system UI interaction.\n" +
	"Layer 2: Debug HTTP server for high-level app commands (OpenChat, SendMessage, etc.).\n" +
	"Note: Telegram's custom Canvas-drawn views (chat messages, dialog list) are NOT visible " +
	"to UIAutomator. Use Layer 2 tools for core Telegram operations."

// Transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "streamable-http"
)

// Config holds MCP server configuration.
type Config struct {
	Transport   string
	Port        int
	MetricsPath string // Served next to /mcp on the HTTP transport; empty disables it
}

// Server wraps the MCP server around a Dispatcher.
type Server struct {
	dispatcher *bridge.Dispatcher
	mcp        *mcpserver.MCPServer
	tools      []string

	// deviceMu serializes tools that drive the device UI. Debug RPC tools
	// bypass it; the channel guards its own state.
	deviceMu sync.Mutex
}

// New creates an MCP server with every android_* tool registered.
func New(d *bridge.Dispatcher, version string) *Server {
	s := &Server{dispatcher: d}
	s.mcp = mcpserver.NewMCPServer(
		Name,
		version,
		mcpserver.WithInstructions(Instructions),
		mcpserver.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// Serve runs the configured transport until it fails or ctx is done.
func (s *Server) Serve(ctx context.Context, cfg Config) error {
	switch cfg.Transport {
	case TransportStdio, "":
		logging.L().Info("serving MCP over stdio", zap.String("server", Name))
		return mcpserver.ServeStdio(s.mcp)
	case TransportHTTP:
		return s.serveHTTP(ctx, cfg)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) serveHTTP(ctx context.Context, cfg Config) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.mcp))
	if cfg.MetricsPath != "" {
		mux.Handle(cfg.MetricsPath, metrics.Handler())
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           metrics.Middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logging.L().Info("serving MCP over streamable HTTP",
		zap.String("addr", httpServer.Addr), zap.String("metrics", cfg.MetricsPath))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// operation runs one tool call against the parsed arguments.
type operation func(ctx context.Context, args map[string]any) bridge.Outcome

// add registers tool. device marks tools that drive the device UI.
func (s *Server) add(tool mcp.Tool, device bool, op operation) {
	s.tools = append(s.tools, tool.Name)
	s.mcp.AddTool(tool, s.handler(tool.Name, device, op))
}

// handler adapts an operation to an MCP tool handler: it tags the call with
// a request id, times it and turns failed outcomes into tool errors.
func (s *Server) handler(tool string, device bool, op operation) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logging.WithRequestID(ctx, uuid.NewString())
		log := logging.WithContext(ctx).With(zap.String("tool", tool))

		if device {
			s.deviceMu.Lock()
			defer s.deviceMu.Unlock()
		}

		start := time.Now()
		out := op(ctx, request.GetArguments())
		elapsed := time.Since(start)
		metrics.RecordToolCall(tool, elapsed, !out.Failed())

		if out.Failed() {
			log.Warn("tool failed", zap.Duration("duration", elapsed), zap.Error(out.Err))
			return mcp.NewToolResultError(out.Text), nil
		}
		log.Info("tool call", zap.Duration("duration", elapsed))
		return mcp.NewToolResultText(out.Text), nil
	}
}
