package adb

import "github.com/mj1618/android-cli/internal/platform"

func init() {
	platform.NewProviderFunc = NewProvider
}

// NewProvider wires the adb backends for opts.
func NewProvider(opts platform.Options) (*platform.Provider, error) {
	if opts.ADBPath == "" {
		opts.ADBPath = "adb"
	}
	runner := NewRunner(opts.ADBPath, opts.Serial, opts.Timeouts.Command)
	reader := NewReader(runner, opts.Timeouts.Dump, opts.DumpRetries, opts.DumpRetryDelay)
	device := NewDevice(runner, opts.Serial, opts.Timeouts)
	return &platform.Provider{
		Snapshotter:   reader,
		Inputter:      NewInputter(runner, reader, opts.Timeouts.Command),
		Screenshotter: NewScreenshotter(runner, reader, opts.ScreenshotDir, opts.MaxDimension, opts.Timeouts.Screencap),
		Device:        device,
		Forwarder:     device,
	}, nil
}
