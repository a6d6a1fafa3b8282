package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/debugrpc"
	"github.com/mj1618/android-cli/internal/model"
	"github.com/mj1618/android-cli/internal/output"
	"github.com/mj1618/android-cli/internal/platform"
	"github.com/spf13/cobra"
)

// newDispatcher builds the device backends and debug channel from cfg.
func newDispatcher() (*bridge.Dispatcher, error) {
	provider, err := platform.NewProvider(cfg.PlatformOptions())
	if err != nil {
		return nil, err
	}
	channel := debugrpc.NewChannel(provider.Forwarder, cfg.DebugServerPort)
	store := model.SnapshotStore{Dir: os.TempDir(), Device: cfg.Device}
	return bridge.New(provider, channel, bridge.WithSnapshotStore(store)), nil
}

// runOutcome wraps an operation as a RunE: it builds the dispatcher, runs
// op and prints the outcome in the selected format.
func runOutcome(op func(cmd *cobra.Command, args []string, d *bridge.Dispatcher) bridge.Outcome) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		return emit(op(cmd, args, d))
	}
}

// emit prints out and converts a failed outcome into errReported so the
// process exits non-zero without printing the message twice.
func emit(out bridge.Outcome) error {
	if err := output.PrintResult(out.Text, out.Data, out.Failed()); err != nil {
		return err
	}
	if out.Failed() {
		return errReported
	}
	return nil
}

// parseInts converts positional arguments to integers, naming the first
// bad one.
func parseInts(names []string, args []string) ([]int64, error) {
	vals := make([]int64, len(args))
	for i, a := range args {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer, got %q", names[i], a)
		}
		vals[i] = n
	}
	return vals, nil
}
