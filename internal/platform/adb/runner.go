package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/logging"
	"github.com/mj1618/android-cli/internal/metrics"
	"go.uber.org/zap"
)

// DefaultCommandTimeout applies when neither the caller nor the runner
// configures a limit.
const DefaultCommandTimeout = 30 * time.Second

// Runner runs adb against a single device. Success is decided by the
// process exit status.
type Runner struct {
	path    string
	serial  string
	timeout time.Duration
}

// NewRunner returns a Runner for the adb binary at path targeting serial.
// An empty serial lets adb pick the only attached device.
func NewRunner(path, serial string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Runner{path: path, serial: serial, timeout: timeout}
}

// Serial returns the target device identifier.
func (r *Runner) Serial() string {
	return r.serial
}

// Run executes adb with args and returns trimmed stdout.
func (r *Runner) Run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	out, err := r.exec(ctx, timeout, args)
	return strings.TrimSpace(string(out)), err
}

// RunRaw executes adb with args and returns stdout untouched.
func (r *Runner) RunRaw(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	return r.exec(ctx, timeout, args)
}

func (r *Runner) fullArgs(args []string) []string {
	if r.serial == "" {
		return args
	}
	return append([]string{"-s", r.serial}, args...)
}

func (r *Runner) exec(parent context.Context, timeout time.Duration, args []string) ([]byte, error) {
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	label := commandLabel(args)
	op := "adb " + label
	full := r.fullArgs(args)
	logging.WithContext(parent).Debug("exec adb", zap.Strings("args", full), zap.Duration("timeout", timeout))

	cmd := exec.CommandContext(ctx, r.path, full...)
	cmd.WaitDelay = 2 * time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if parent.Err() != nil {
		metrics.RecordADBCommand(label, "error", elapsed)
		return stdout.Bytes(), parent.Err()
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		metrics.RecordADBCommand(label, "timeout", elapsed)
		return stdout.Bytes(), core.Newf(core.KindTransportTimeout, op, "timed out after %s", timeout)
	}
	if err != nil {
		metrics.RecordADBCommand(label, "error", elapsed)
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, core.Wrap(core.KindConfig, op, fmt.Sprintf("cannot run %s", r.path), err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = strings.TrimSpace(stdout.String())
			}
			return stdout.Bytes(), core.Newf(core.KindTransportFailure, op, "exit status %d: %s", exitErr.ExitCode(), msg)
		}
		return stdout.Bytes(), core.Wrap(core.KindTransportFailure, op, "command failed", err)
	}
	metrics.RecordADBCommand(label, "success", elapsed)
	return stdout.Bytes(), nil
}

// commandLabel names a command for logs and metrics without its variable
// arguments: "shell input", "exec-out screencap", "forward".
func commandLabel(args []string) string {
	switch {
	case len(args) == 0:
		return "adb"
	case (args[0] == "shell" || args[0] == "exec-out") && len(args) > 1:
		return args[0] + " " + args[1]
	default:
		return args[0]
	}
}
