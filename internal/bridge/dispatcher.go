// Package bridge maps external commands onto the device backends and the
// app's debug endpoint. Every operation validates its input before any
// collaborator runs and returns an Outcome whose Text is ready for an
// agent or a terminal.
package bridge

import (
	"context"
	"errors"

	"github.com/mj1618/android-cli/internal/debugrpc"
	"github.com/mj1618/android-cli/internal/logging"
	"github.com/mj1618/android-cli/internal/model"
	"github.com/mj1618/android-cli/internal/platform"
	"go.uber.org/zap"
)

// Caller sends a command to the debug endpoint. *debugrpc.Channel
// implements it.
type Caller interface {
	Call(ctx context.Context, cmd debugrpc.Command) (debugrpc.Result, error)
}

// Outcome is the result of one operation.
type Outcome struct {
	Text string // Human-readable result or "ERROR: ..." diagnostic
	Data any    // Structured payload for machine output, if any
	Err  error  // Underlying failure; nil on success
}

// Failed reports whether the operation failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Dispatcher routes operations to their collaborators.
type Dispatcher struct {
	provider  *platform.Provider
	rpc       Caller
	snapshots *model.SnapshotStore
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSnapshotStore keeps the last snapshot in store, which enables
// SnapshotDiff.
func WithSnapshotStore(store model.SnapshotStore) Option {
	return func(d *Dispatcher) { d.snapshots = &store }
}

// New returns a Dispatcher over provider and rpc.
func New(provider *platform.Provider, rpc Caller, opts ...Option) *Dispatcher {
	d := &Dispatcher{provider: provider, rpc: rpc}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func ok(text string, data any) Outcome {
	return Outcome{Text: text, Data: data}
}

func fail(text string, err error) Outcome {
	if err == nil {
		err = errors.New(text)
	}
	return Outcome{Text: text, Err: err}
}

// failure renders err as a diagnostic line.
func failure(err error) Outcome {
	if errors.Is(err, platform.ErrNoSnapshot) {
		return fail(noSnapshotMessage, err)
	}
	return fail("ERROR: "+err.Error()+".", err)
}

func logOp(ctx context.Context, op string, fields ...zap.Field) {
	logging.WithContext(ctx).Debug("dispatch", append([]zap.Field{zap.String("op", op)}, fields...)...)
}
