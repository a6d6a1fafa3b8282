package adb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/platform"
	"golang.org/x/sync/errgroup"
)

// Device covers app management, logs, properties and port forwarding.
type Device struct {
	runner   platform.Runner
	serial   string
	timeouts platform.Timeouts
}

// NewDevice returns a Device for serial.
func NewDevice(runner platform.Runner, serial string, timeouts platform.Timeouts) *Device {
	return &Device{runner: runner, serial: serial, timeouts: timeouts}
}

// Info queries model, SDK level, ABI, screen size and density in parallel.
func (d *Device) Info(ctx context.Context) (*platform.DeviceInfo, error) {
	info := &platform.DeviceInfo{Serial: d.serial}
	queries := []struct {
		dst    *string
		prefix string
		args   []string
	}{
		{&info.Model, "", []string{"shell", "getprop", "ro.product.model"}},
		{&info.SDK, "", []string{"shell", "getprop", "ro.build.version.sdk"}},
		{&info.ABI, "", []string{"shell", "getprop", "ro.product.cpu.abi"}},
		{&info.ScreenSize, "Physical size:", []string{"shell", "wm", "size"}},
		{&info.Density, "Physical density:", []string{"shell", "wm", "density"}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		g.Go(func() error {
			out, err := d.runner.Run(gctx, d.timeouts.Command, q.args...)
			if err != nil {
				return err
			}
			*q.dst = firstLineValue(out, q.prefix)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return info, nil
}

// firstLineValue returns the first line of out with prefix removed. wm
// prints an extra "Override ..." line when a size override is active.
func firstLineValue(out, prefix string) string {
	line, _, _ := strings.Cut(out, "\n")
	line = strings.TrimSpace(line)
	if prefix != "" {
		line = strings.TrimSpace(strings.TrimPrefix(line, prefix))
	}
	return line
}

// Logcat dumps recent log lines.
func (d *Device) Logcat(ctx context.Context, opts platform.LogcatOptions) (string, error) {
	return d.runner.Run(ctx, d.timeouts.Logcat, opts.Args()...)
}

// Install installs or reinstalls an APK from the host, allowing downgrades.
// The file must exist locally; nothing is sent to the device otherwise.
func (d *Device) Install(ctx context.Context, apkPath string) (string, error) {
	st, err := os.Stat(apkPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", core.Newf(core.KindValidation, "install", "APK not found: %s", apkPath)
		}
		return "", core.Wrap(core.KindValidation, "install", "cannot read "+apkPath, err)
	}
	if st.IsDir() {
		return "", core.Newf(core.KindValidation, "install", "%s is a directory", apkPath)
	}
	return d.runner.Run(ctx, d.timeouts.Install, "install", "-r", "-d", apkPath)
}

// Launch starts an activity, or the package's launcher activity when none
// is given.
func (d *Device) Launch(ctx context.Context, opts platform.LaunchOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if opts.Activity != "" {
		return d.runner.Run(ctx, d.timeouts.Command, "shell", "am", "start", "-n", opts.Package+"/"+opts.Activity)
	}
	return d.runner.Run(ctx, d.timeouts.Command, "shell", "monkey", "-p", opts.Package, "-c", "android.intent.category.LAUNCHER", "1")
}

// Forward routes host localPort to device remotePort.
func (d *Device) Forward(ctx context.Context, localPort, remotePort int) error {
	_, err := d.runner.Run(ctx, d.timeouts.Command, "forward", fmt.Sprintf("tcp:%d", localPort), fmt.Sprintf("tcp:%d", remotePort))
	return err
}

// Attached describes one entry of "adb devices -l".
type Attached struct {
	Serial      string `yaml:"serial"                 json:"serial"`
	State       string `yaml:"state"                  json:"state"`
	Product     string `yaml:"product,omitempty"      json:"product,omitempty"`
	Model       string `yaml:"model,omitempty"        json:"model,omitempty"`
	USB         string `yaml:"usb,omitempty"          json:"usb,omitempty"`
	TransportID string `yaml:"transport_id,omitempty" json:"transport_id,omitempty"`
}

// ListDevices runs "adb devices -l" without a target serial.
func ListDevices(ctx context.Context, adbPath string, timeout time.Duration) ([]Attached, error) {
	out, err := NewRunner(adbPath, "", timeout).Run(ctx, timeout, "devices", "-l")
	if err != nil {
		return nil, err
	}
	return parseDevices(out), nil
}

// parseDevices reads "serial state key:value..." lines. The state can span
// several words ("no permissions (...)"), so it runs up to the first
// recognised key.
func parseDevices(out string) []Attached {
	var devices []Attached
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of") || strings.HasPrefix(line, "*") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		dev := Attached{Serial: parts[0]}
		var state []string
		described := false
		for _, field := range parts[1:] {
			key, value, ok := strings.Cut(field, ":")
			if !ok {
				key = ""
			}
			switch key {
			case "product":
				dev.Product, described = value, true
			case "model":
				dev.Model, described = value, true
			case "usb":
				dev.USB, described = value, true
			case "transport_id":
				dev.TransportID, described = value, true
			case "device":
				described = true
			default:
				if !described {
					state = append(state, field)
				}
			}
		}
		dev.State = strings.Join(state, " ")
		devices = append(devices, dev)
	}
	return devices
}
