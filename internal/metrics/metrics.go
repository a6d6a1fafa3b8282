// Package metrics provides Prometheus metrics for the android bridge.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tool surface
	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "android_cli_tool_calls_total",
			Help: "Total number of tool invocations",
		},
		[]string{"tool", "status"},
	)

	toolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "android_cli_tool_call_duration_seconds",
			Help:    "Tool invocation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// Device transport
	adbCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "android_cli_adb_commands_total",
			Help: "Total adb commands by subcommand and outcome",
		},
		[]string{"command", "status"},
	)

	adbCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "android_cli_adb_command_duration_seconds",
			Help:    "adb command duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// Snapshot acquisition
	snapshotAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "android_cli_snapshot_attempts_total",
			Help: "Hierarchy capture attempts by outcome",
		},
		[]string{"status"},
	)

	snapshotNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "android_cli_snapshot_nodes",
			Help:    "Number of nodes in captured hierarchy snapshots",
			Buckets: prometheus.ExponentialBuckets(8, 2, 10),
		},
	)

	// Debug endpoint
	rpcCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "android_cli_rpc_calls_total",
			Help: "Debug endpoint calls by endpoint and outcome",
		},
		[]string{"endpoint", "status"},
	)

	rpcCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "android_cli_rpc_call_duration_seconds",
			Help:    "Debug endpoint call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	tunnelSetupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "android_cli_tunnel_setups_total",
			Help: "Port forward setups by outcome",
		},
		[]string{"status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordToolCall records one tool invocation.
func RecordToolCall(tool string, duration time.Duration, success bool) {
	toolCallsTotal.WithLabelValues(tool, status(success)).Inc()
	toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordADBCommand records one device transport command. status is
// "success", "timeout" or "error".
func RecordADBCommand(command, status string, duration time.Duration) {
	adbCommandsTotal.WithLabelValues(command, status).Inc()
	adbCommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordSnapshotAttempt records one capture attempt.
func RecordSnapshotAttempt(success bool) {
	snapshotAttemptsTotal.WithLabelValues(status(success)).Inc()
}

// RecordSnapshotSize records the node count of a parsed snapshot.
func RecordSnapshotSize(nodes int) {
	snapshotNodes.Observe(float64(nodes))
}

// RecordRPCCall records one debug endpoint call. status is "success",
// "unreachable", "invalid_response" or "error".
func RecordRPCCall(endpoint, status string, duration time.Duration) {
	rpcCallsTotal.WithLabelValues(endpoint, status).Inc()
	rpcCallDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordTunnelSetup records one port forward attempt.
func RecordTunnelSetup(success bool) {
	tunnelSetupsTotal.WithLabelValues(status(success)).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the wrapped writer so streamed responses keep working.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

var httpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "android_cli_http_requests_total",
		Help: "Total HTTP requests to the streamable-http transport",
	},
	[]string{"method", "status"},
)

// Middleware returns HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rw.statusCode)).Inc()
	})
}
