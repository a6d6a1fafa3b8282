// Package debugrpc talks to the HTTP debug server embedded in debug builds
// of the app. Requests go over an adb port forward that is set up once, on
// first use, and kept for the life of the process.
package debugrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/logging"
	"github.com/mj1618/android-cli/internal/metrics"
	"github.com/mj1618/android-cli/internal/platform"
	"go.uber.org/zap"
)

// DefaultPort is the debug server port inside the app and on the host.
const DefaultPort = 19876

// Channel calls the debug endpoint. It is safe for concurrent use;
// concurrent first calls share one tunnel setup.
type Channel struct {
	forwarder platform.Forwarder
	port      int
	host      string
	client    *http.Client

	mu       sync.Mutex
	tunneled bool
}

// Option configures a Channel.
type Option func(*Channel)

// WithHost overrides the loopback host the tunnel listens on.
func WithHost(host string) Option {
	return func(c *Channel) { c.host = host }
}

// WithHTTPClient replaces the HTTP client. Per-call timeouts come from the
// command, so the client should not set its own.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Channel) { c.client = client }
}

// NewChannel returns an untunneled Channel for port.
func NewChannel(forwarder platform.Forwarder, port int, opts ...Option) *Channel {
	c := &Channel{
		forwarder: forwarder,
		port:      port,
		host:      "127.0.0.1",
		client:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Port returns the endpoint port.
func (c *Channel) Port() int {
	return c.port
}

// Tunneled reports whether the port forward is in place.
func (c *Channel) Tunneled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tunneled
}

// EnsureTunnel forwards the host port to the device once. Later calls are
// no-ops. A failed setup leaves the channel untunneled and returns a
// tunnel_setup error.
func (c *Channel) EnsureTunnel(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tunneled {
		return nil
	}
	if err := c.forwarder.Forward(ctx, c.port, c.port); err != nil {
		metrics.RecordTunnelSetup(false)
		return core.Wrap(core.KindTunnelSetup, "debug tunnel",
			fmt.Sprintf("failed to set up port forwarding tcp:%d", c.port), err)
	}
	metrics.RecordTunnelSetup(true)
	logging.WithContext(ctx).Info("debug tunnel established", zap.Int("port", c.port))
	c.tunneled = true
	return nil
}

// Call sends cmd and returns the endpoint's JSON object. An unreachable
// endpoint and a non-JSON response come back as {ok: false} results with
// a nil error; validation, tunnel and other transport failures are errors.
func (c *Channel) Call(ctx context.Context, cmd Command) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := c.EnsureTunnel(ctx); err != nil {
		return nil, err
	}

	log := logging.WithContext(ctx).With(zap.String("endpoint", cmd.Endpoint()))
	start := time.Now()
	result, status, err := c.do(ctx, cmd)
	elapsed := time.Since(start)
	metrics.RecordRPCCall(cmd.Endpoint(), status, elapsed)

	switch {
	case err != nil:
		log.Error("debug call failed", zap.Duration("duration", elapsed), zap.Error(err))
	case status != "success":
		log.Warn("debug call degraded", zap.String("kind", status), zap.Duration("duration", elapsed), zap.String("error", result.ErrorMessage()))
	default:
		log.Debug("debug call", zap.Duration("duration", elapsed), zap.Bool("ok", result.OK()))
	}
	return result, err
}

func (c *Channel) do(parent context.Context, cmd Command) (Result, string, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, "error", core.Wrap(core.KindValidation, cmd.Endpoint(), "cannot encode parameters", err)
	}

	ctx, cancel := context.WithTimeout(parent, cmd.Timeout())
	defer cancel()

	url := "http://" + net.JoinHostPort(c.host, strconv.Itoa(c.port)) + "/" + cmd.Endpoint()
	var req *http.Request
	if string(body) == "{}" {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, "error", core.Wrap(core.KindTransportFailure, cmd.Endpoint(), "cannot build request", err)
	}
	req.Header.Set("X-Request-ID", requestID(parent))

	resp, err := c.client.Do(req)
	if err != nil {
		return c.transportFailure(parent, cmd, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportFailure(parent, cmd, err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil || result == nil {
		if resp.StatusCode >= 300 {
			return Failure(fmt.Sprintf("Debug server returned HTTP %d", resp.StatusCode)), string(core.KindInvalidResponse), nil
		}
		return invalidResponse(), string(core.KindInvalidResponse), nil
	}
	return result, "success", nil
}

func (c *Channel) transportFailure(parent context.Context, cmd Command, err error) (Result, string, error) {
	if ctxErr := parent.Err(); ctxErr != nil {
		return nil, "error", ctxErr
	}
	if isUnreachable(err) {
		return unreachable(err), string(core.KindRemoteUnreachable), nil
	}
	return nil, "error", core.Wrap(core.KindTransportFailure, cmd.Endpoint(), "debug request failed", err)
}

// isUnreachable reports whether err means nothing answered on the tunnel:
// refused or reset connections, a listener that hung up, or a timeout.
// adb accepts on the host port even when the app is not listening and
// then drops the connection, which shows up as EOF or a reset.
func isUnreachable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func requestID(ctx context.Context) string {
	if id := logging.GetRequestID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
