package platform

import (
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/android-cli/internal/core"
)

// Timeouts are per-command limits for the device transport.
type Timeouts struct {
	Command   time.Duration // Short interactive commands
	Install   time.Duration // Package installs
	Dump      time.Duration // Hierarchy capture
	Screencap time.Duration // Raw screen capture
	Logcat    time.Duration // Log queries
}

// DefaultTimeouts returns the stock per-command limits.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Command:   30 * time.Second,
		Install:   120 * time.Second,
		Dump:      10 * time.Second,
		Screencap: 15 * time.Second,
		Logcat:    10 * time.Second,
	}
}

// Options configures a backend.
type Options struct {
	ADBPath        string        // Transport executable
	Serial         string        // Target device identifier
	Timeouts       Timeouts      // Per-command limits
	DumpRetries    int           // Snapshot attempts before giving up
	DumpRetryDelay time.Duration // Base delay, multiplied by the attempt number
	ScreenshotDir  string        // Where auto-named screenshots go
	MaxDimension   int           // Longest screenshot side before downscaling (0 = never)
}

// SwipeOptions describes a swipe gesture.
type SwipeOptions struct {
	X1, Y1   int
	X2, Y2   int
	Duration time.Duration
}

// DefaultSwipeDuration is used when the caller gives none.
const DefaultSwipeDuration = 300 * time.Millisecond

// Validate rejects a gesture with no duration.
func (o SwipeOptions) Validate() error {
	if o.Duration <= 0 {
		return core.Newf(core.KindValidation, "swipe", "duration must be positive, got %s", o.Duration)
	}
	return nil
}

// ScreenshotOptions configures a capture.
type ScreenshotOptions struct {
	Filename string // Absolute path, name relative to the screenshot dir, or empty for an auto name
	Annotate bool   // Outline clickable elements and label their tap coordinates
}

// ScreenshotResult describes a saved screenshot.
type ScreenshotResult struct {
	Path    string `yaml:"path"              json:"path"`
	Bytes   int    `yaml:"bytes"             json:"bytes"`
	Width   int    `yaml:"width,omitempty"   json:"width,omitempty"`
	Height  int    `yaml:"height,omitempty"  json:"height,omitempty"`
	Resized bool   `yaml:"resized,omitempty" json:"resized,omitempty"`
	Labels  int    `yaml:"labels,omitempty"  json:"labels,omitempty"` // Elements outlined when annotating
}

// LogLevel is a logcat priority letter.
type LogLevel string

const (
	LogVerbose LogLevel = "V"
	LogDebug   LogLevel = "D"
	LogInfo    LogLevel = "I"
	LogWarn    LogLevel = "W"
	LogError   LogLevel = "E"
	LogFatal   LogLevel = "F"
)

// ParseLogLevel converts a flag value to a LogLevel. Empty means verbose.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "V":
		return LogVerbose, nil
	case "D":
		return LogDebug, nil
	case "I":
		return LogInfo, nil
	case "W":
		return LogWarn, nil
	case "E":
		return LogError, nil
	case "F":
		return LogFatal, nil
	default:
		return LogVerbose, core.New(core.KindValidation, "logcat", fmt.Sprintf("unknown log level %q (expected V, D, I, W, E, or F)", s))
	}
}

// DefaultLogcatLines is the number of lines fetched when the caller gives none.
const DefaultLogcatLines = 50

// LogcatOptions selects which log lines to dump.
type LogcatOptions struct {
	Tag   string   // Only this tag (empty = all)
	Lines int      // Most recent N lines
	Level LogLevel // Minimum priority
}

// Args returns the logcat arguments for these options.
func (o LogcatOptions) Args() []string {
	lines := o.Lines
	if lines <= 0 {
		lines = DefaultLogcatLines
	}
	level := o.Level
	if level == "" {
		level = LogVerbose
	}
	args := []string{"shell", "logcat", "-d", "-t", fmt.Sprint(lines)}
	if o.Tag != "" {
		return append(args, "-s", o.Tag+":"+string(level))
	}
	return append(args, "*:"+string(level))
}

// LaunchOptions identifies the app to start.
type LaunchOptions struct {
	Package  string
	Activity string // Optional; the launcher activity is used when empty
}

// Validate requires a package name.
func (o LaunchOptions) Validate() error {
	if strings.TrimSpace(o.Package) == "" {
		return core.New(core.KindValidation, "launch", "package is required")
	}
	return nil
}

// DeviceInfo holds basic device properties.
type DeviceInfo struct {
	Serial     string `yaml:"serial"      json:"serial"`
	Model      string `yaml:"model"       json:"model"`
	SDK        string `yaml:"sdk"         json:"sdk"`
	ABI        string `yaml:"abi"         json:"abi"`
	ScreenSize string `yaml:"screen_size" json:"screen_size"`
	Density    string `yaml:"density"     json:"density"`
}
