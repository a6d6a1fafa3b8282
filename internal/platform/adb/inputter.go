package adb

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/logging"
	"github.com/mj1618/android-cli/internal/model"
	"github.com/mj1618/android-cli/internal/platform"
	"go.uber.org/zap"
)

// Delays around text entry. The IME needs a moment to attach after a tap
// before key events reach the field.
const (
	DefaultFocusDelay = 300 * time.Millisecond
	DefaultClearDelay = 100 * time.Millisecond
)

// clearKeys empties the focused field: cursor to start, select to end, delete.
var clearKeys = [][]string{
	{"KEYCODE_MOVE_HOME"},
	{"--longpress", "KEYCODE_SHIFT_LEFT", "KEYCODE_MOVE_END"},
	{"KEYCODE_DEL"},
}

// textEscaper escapes the characters "input text" cannot take literally.
// strings.Replacer scans once, so backslashes it inserts are never
// escaped again.
var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	" ", "%s",
	"&", `\&`,
	"<", `\<`,
	">", `\>`,
	"'", `\'`,
)

// EscapeText prepares text for "adb shell input text".
func EscapeText(text string) string {
	return textEscaper.Replace(text)
}

// Inputter synthesizes input with "adb shell input".
type Inputter struct {
	runner    platform.Runner
	snapshots platform.Snapshotter
	timeout   time.Duration

	FocusDelay time.Duration // Wait after tapping the target field
	ClearDelay time.Duration // Wait after clearing the field
}

// NewInputter returns an Inputter. snapshots is used to locate the target
// field for TypeText.
func NewInputter(runner platform.Runner, snapshots platform.Snapshotter, timeout time.Duration) *Inputter {
	return &Inputter{
		runner:     runner,
		snapshots:  snapshots,
		timeout:    timeout,
		FocusDelay: DefaultFocusDelay,
		ClearDelay: DefaultClearDelay,
	}
}

func (in *Inputter) input(ctx context.Context, args ...string) error {
	_, err := in.runner.Run(ctx, in.timeout, append([]string{"shell", "input"}, args...)...)
	return err
}

// Tap taps at screen coordinates. Range checking is left to the device.
func (in *Inputter) Tap(ctx context.Context, x, y int) error {
	return in.input(ctx, "tap", strconv.Itoa(x), strconv.Itoa(y))
}

// TapNode taps the center of n's bounds.
func (in *Inputter) TapNode(ctx context.Context, n *model.Node) error {
	if n == nil || n.Bounds == nil {
		label := "?"
		if n != nil {
			label = n.Label()
		}
		return core.Newf(core.KindValidation, "tap", "element %q has no bounds", label)
	}
	x, y := n.Bounds.Center()
	return in.Tap(ctx, x, y)
}

// Swipe drags from (X1,Y1) to (X2,Y2) over opts.Duration.
func (in *Inputter) Swipe(ctx context.Context, opts platform.SwipeOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return in.input(ctx, "swipe",
		strconv.Itoa(opts.X1), strconv.Itoa(opts.Y1),
		strconv.Itoa(opts.X2), strconv.Itoa(opts.Y2),
		strconv.FormatInt(opts.Duration.Milliseconds(), 10))
}

// PressKey sends one key event. See KeyCode for accepted names.
func (in *Inputter) PressKey(ctx context.Context, key string) error {
	code, err := KeyCode(key)
	if err != nil {
		return err
	}
	return in.input(ctx, "keyevent", code)
}

// KeyCode normalizes a key name: "back" becomes "KEYCODE_BACK". Full
// KEYCODE_ names and numeric codes pass through.
func KeyCode(key string) (string, error) {
	k := strings.ToUpper(strings.TrimSpace(key))
	if k == "" {
		return "", core.New(core.KindValidation, "key", "key name is required")
	}
	if strings.HasPrefix(k, "KEYCODE_") {
		return k, nil
	}
	if _, err := strconv.Atoi(k); err == nil {
		return k, nil
	}
	return "KEYCODE_" + k, nil
}

// TypeText replaces the content of the focused field with text. With a
// target, the field is located in a fresh snapshot and tapped first; any
// failure there stops before the field is touched. The clear runs before
// every entry, so typing is never an append.
func (in *Inputter) TypeText(ctx context.Context, text string, target *model.Query) error {
	log := logging.WithContext(ctx)
	if target != nil {
		if err := in.focus(ctx, *target); err != nil {
			return err
		}
	}

	for _, keys := range clearKeys {
		if err := in.input(ctx, append([]string{"keyevent"}, keys...)...); err != nil {
			return err
		}
	}
	if err := sleep(ctx, in.ClearDelay); err != nil {
		return err
	}

	if text == "" {
		return nil
	}
	log.Debug("typing text", zap.Int("chars", len([]rune(text))))
	return in.input(ctx, "text", EscapeText(text))
}

func (in *Inputter) focus(ctx context.Context, q model.Query) error {
	if err := q.Validate(); err != nil {
		return err
	}
	tree, ok, err := in.snapshots.Acquire(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return platform.ErrNoSnapshot
	}
	node, err := tree.Find(q)
	if err != nil {
		return err
	}
	if err := in.TapNode(ctx, node); err != nil {
		return err
	}
	return sleep(ctx, in.FocusDelay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
