package platform

import (
	"context"
	"time"

	"github.com/mj1618/android-cli/internal/model"
)

// Runner executes device transport commands against the configured device.
// Timeouts are per call; a zero timeout uses the runner's default.
type Runner interface {
	// Run returns trimmed stdout.
	Run(ctx context.Context, timeout time.Duration, args ...string) (string, error)
	// RunRaw returns stdout bytes untouched, for binary captures.
	RunRaw(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error)
}

// Snapshotter captures the UI hierarchy of the device.
type Snapshotter interface {
	// Acquire captures and parses a fresh snapshot. ok is false with a nil
	// error when every attempt failed with a retryable error. A non-nil error
	// means a fatal failure (bad configuration, cancelled context).
	Acquire(ctx context.Context) (tree *model.Tree, ok bool, err error)
}

// Inputter synthesizes touch and keyboard input.
type Inputter interface {
	Tap(ctx context.Context, x, y int) error
	TapNode(ctx context.Context, n *model.Node) error
	Swipe(ctx context.Context, opts SwipeOptions) error
	PressKey(ctx context.Context, key string) error
	// TypeText replaces the content of the focused field with text. When
	// target is non-nil the matching element is tapped first.
	TypeText(ctx context.Context, text string, target *model.Query) error
}

// Screenshotter captures the device screen to a PNG file.
type Screenshotter interface {
	Capture(ctx context.Context, opts ScreenshotOptions) (*ScreenshotResult, error)
}

// Device covers app management, logs and device properties.
type Device interface {
	Info(ctx context.Context) (*DeviceInfo, error)
	Logcat(ctx context.Context, opts LogcatOptions) (string, error)
	Install(ctx context.Context, apkPath string) (string, error)
	Launch(ctx context.Context, opts LaunchOptions) (string, error)
}

// Forwarder routes a host loopback port to a port on the device.
type Forwarder interface {
	Forward(ctx context.Context, localPort, remotePort int) error
}
