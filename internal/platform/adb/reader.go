package adb

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/logging"
	"github.com/mj1618/android-cli/internal/metrics"
	"github.com/mj1618/android-cli/internal/model"
	"github.com/mj1618/android-cli/internal/platform"
	"go.uber.org/zap"
)

// DumpArgs is the hierarchy capture command. Writing to /dev/tty sends the
// XML to stdout after a status line.
var DumpArgs = []string{"shell", "uiautomator", "dump", "/dev/tty"}

// Reader captures hierarchy snapshots with uiautomator dump. uiautomator
// refuses to dump while the UI is animating, so failed captures are
// retried with a linearly growing delay.
type Reader struct {
	runner  platform.Runner
	timeout time.Duration
	retries int
	delay   time.Duration

	onRetry func(attempt int, wait time.Duration)
}

// NewReader returns a Reader making at most retries attempts, waiting
// delay×n after the n-th failure.
func NewReader(runner platform.Runner, timeout time.Duration, retries int, delay time.Duration) *Reader {
	if retries < 1 {
		retries = 1
	}
	if delay < 0 {
		delay = 0
	}
	return &Reader{runner: runner, timeout: timeout, retries: retries, delay: delay}
}

// linearBackOff waits base×n before the n-th retry.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.base * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// Acquire captures and parses a fresh snapshot. Parse and transport
// failures are retried; when every attempt fails Acquire returns ok=false
// and a nil error. Configuration errors and cancellation abort at once.
func (r *Reader) Acquire(ctx context.Context) (*model.Tree, bool, error) {
	log := logging.WithContext(ctx)

	var tree *model.Tree
	attempt := 0
	operation := func() error {
		attempt++
		t, err := r.captureOnce(ctx)
		metrics.RecordSnapshotAttempt(err == nil)
		if err != nil {
			if !core.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		tree = t
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("hierarchy capture failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.retries),
			zap.Duration("wait", wait),
			zap.Error(err))
		if r.onRetry != nil {
			r.onRetry(attempt, wait)
		}
	}

	// WithMaxRetries treats 0 as unlimited, so a single attempt needs StopBackOff.
	var schedule backoff.BackOff = &backoff.StopBackOff{}
	if r.retries > 1 {
		schedule = backoff.WithMaxRetries(&linearBackOff{base: r.delay}, uint64(r.retries-1))
	}
	err := backoff.RetryNotify(operation, backoff.WithContext(schedule, ctx), notify)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, ctxErr
	}
	switch {
	case err == nil:
		metrics.RecordSnapshotSize(tree.Count())
		log.Debug("hierarchy captured", zap.Int("attempts", attempt), zap.Int("nodes", tree.Count()))
		return tree, true, nil
	case core.IsRetryable(err):
		log.Warn("hierarchy capture gave up", zap.Int("attempts", attempt), zap.Error(err))
		return nil, false, nil
	default:
		return nil, false, err
	}
}

func (r *Reader) captureOnce(ctx context.Context) (*model.Tree, error) {
	out, err := r.runner.Run(ctx, r.timeout, DumpArgs...)
	if err != nil {
		return nil, err
	}
	return model.ParseHierarchy(out)
}
