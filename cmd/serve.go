package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/android-cli/internal/server"
	"github.com/mj1618/android-cli/internal/version"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing android-cli tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes every android-cli
operation as an android_* tool. AI agents can call tools directly without
shell overhead.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport on /mcp (for remote agents)

Logs always go to stderr.`,
	Example: `  android-cli serve
  android-cli serve --transport streamable-http --port 8080 --metrics-path /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", server.TransportStdio, "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().String("metrics-path", "", "Serve Prometheus metrics at this path on the HTTP transport (e.g. /metrics)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	metricsPath, _ := cmd.Flags().GetString("metrics-path")

	d, err := newDispatcher()
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(d, version.Version)
	return srv.Serve(ctx, server.Config{
		Transport:   transport,
		Port:        port,
		MetricsPath: metricsPath,
	})
}
