package bridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/model"
	"github.com/mj1618/android-cli/internal/platform"
	"go.uber.org/zap"
)

const (
	noSnapshotMessage = "ERROR: Failed to dump UI tree after retries. App may have animations blocking idle state."
	emptyTreeMessage  = "UI tree is empty."
	noQueryMessage    = "ERROR: Provide at least one of resource_id, text, content_desc, or class_name."
	noBoundsMessage   = "ERROR: Element has no bounds."
)

// SnapshotView is the structured form of a snapshot.
type SnapshotView struct {
	Nodes int         `yaml:"nodes" json:"nodes"`
	Root  *model.Node `yaml:"root"  json:"root"`
}

// Snapshot renders the current hierarchy down to maxDepth.
func (d *Dispatcher) Snapshot(ctx context.Context, maxDepth int) Outcome {
	if maxDepth < 0 {
		return fail("ERROR: max_depth must not be negative.", core.Newf(core.KindValidation, "snapshot", "max_depth %d", maxDepth))
	}
	logOp(ctx, "snapshot", zap.Int("max_depth", maxDepth))

	tree, err := d.acquire(ctx)
	if err != nil {
		return failure(err)
	}
	d.remember(ctx, model.Flatten(tree))
	lines := model.Render(tree, maxDepth)
	if len(lines) == 0 {
		return ok(emptyTreeMessage, SnapshotView{})
	}
	return ok(strings.Join(lines, "\n"), SnapshotView{Nodes: tree.Count(), Root: tree.Root})
}

// Click taps the center of the first element matching q.
func (d *Dispatcher) Click(ctx context.Context, q model.Query) Outcome {
	if err := q.Validate(); err != nil {
		return fail(noQueryMessage, err)
	}
	logOp(ctx, "click", zap.Stringer("query", q))

	tree, err := d.acquire(ctx)
	if err != nil {
		return failure(err)
	}
	node, err := tree.Find(q)
	if err != nil {
		return fail(notFoundMessage(q), err)
	}
	if node.Bounds == nil {
		return fail(noBoundsMessage, core.New(core.KindValidation, "click", "element has no bounds"))
	}
	if err := d.provider.Inputter.TapNode(ctx, node); err != nil {
		return failure(err)
	}
	x, y := node.Bounds.Center()
	return ok(fmt.Sprintf("Tapped [%s] '%s' at (%d, %d).", node.ShortClass(), node.Label(), x, y), node)
}

// TypeText replaces the focused field's content with text. A non-empty
// target is located and tapped first; a target that cannot be found stops
// the operation before anything is typed.
func (d *Dispatcher) TypeText(ctx context.Context, text string, target model.Query) Outcome {
	var q *model.Query
	if !target.IsEmpty() {
		q = &target
	}
	logOp(ctx, "type", zap.Int("length", len(text)), zap.Bool("targeted", q != nil))

	if err := d.provider.Inputter.TypeText(ctx, text, q); err != nil {
		if core.IsKind(err, core.KindNotFound) {
			return fail(notFoundMessage(target), err)
		}
		return failure(err)
	}
	return ok(fmt.Sprintf("Typed '%s'.", text), nil)
}

// Tap taps a screen coordinate. The device decides whether it is on screen.
func (d *Dispatcher) Tap(ctx context.Context, x, y int) Outcome {
	logOp(ctx, "tap", zap.Int("x", x), zap.Int("y", y))
	if err := d.provider.Inputter.Tap(ctx, x, y); err != nil {
		return failure(err)
	}
	return ok(fmt.Sprintf("Tapped at (%d, %d).", x, y), nil)
}

// Swipe performs a swipe gesture.
func (d *Dispatcher) Swipe(ctx context.Context, opts platform.SwipeOptions) Outcome {
	if err := opts.Validate(); err != nil {
		return failure(err)
	}
	logOp(ctx, "swipe", zap.Duration("duration", opts.Duration))
	if err := d.provider.Inputter.Swipe(ctx, opts); err != nil {
		return failure(err)
	}
	return ok(fmt.Sprintf("Swiped from (%d,%d) to (%d,%d) in %dms.",
		opts.X1, opts.Y1, opts.X2, opts.Y2, opts.Duration.Milliseconds()), nil)
}

// PressKey sends a key event by name or code.
func (d *Dispatcher) PressKey(ctx context.Context, key string) Outcome {
	if strings.TrimSpace(key) == "" {
		return fail("ERROR: key is required.", core.New(core.KindValidation, "key", "key is required"))
	}
	logOp(ctx, "key", zap.String("key", key))
	if err := d.provider.Inputter.PressKey(ctx, key); err != nil {
		return failure(err)
	}
	return ok(fmt.Sprintf("Key '%s' pressed.", key), nil)
}

// Screenshot saves the screen to a PNG file.
func (d *Dispatcher) Screenshot(ctx context.Context, opts platform.ScreenshotOptions) Outcome {
	logOp(ctx, "screenshot", zap.String("filename", opts.Filename), zap.Bool("annotate", opts.Annotate))
	res, err := d.provider.Screenshotter.Capture(ctx, opts)
	if err != nil {
		if errors.Is(err, platform.ErrNoSnapshot) {
			return failure(err)
		}
		return fail("ERROR: Screenshot failed: "+err.Error()+".", err)
	}
	text := fmt.Sprintf("Screenshot saved: %s (%d bytes)", res.Path, res.Bytes)
	if opts.Annotate {
		text += fmt.Sprintf("\nAnnotated %d tap targets.", res.Labels)
	}
	return ok(text, res)
}

// Logcat returns recent log lines. level is one of V D I W E F.
func (d *Dispatcher) Logcat(ctx context.Context, tag string, lines int, level string) Outcome {
	lvl, err := platform.ParseLogLevel(level)
	if err != nil {
		return failure(err)
	}
	if lines < 0 {
		return fail("ERROR: lines must not be negative.", core.Newf(core.KindValidation, "logcat", "lines %d", lines))
	}
	logOp(ctx, "logcat", zap.String("tag", tag), zap.Int("lines", lines), zap.String("level", string(lvl)))
	out, err := d.provider.Device.Logcat(ctx, platform.LogcatOptions{Tag: tag, Lines: lines, Level: lvl})
	if err != nil {
		return failure(err)
	}
	return ok(out, nil)
}

// Install installs an APK from the host, replacing any existing version.
func (d *Dispatcher) Install(ctx context.Context, apkPath string) Outcome {
	if strings.TrimSpace(apkPath) == "" {
		return fail("ERROR: apk_path is required.", core.New(core.KindValidation, "install", "apk_path is required"))
	}
	if info, err := os.Stat(apkPath); err != nil || info.IsDir() {
		return fail("ERROR: APK not found: "+apkPath, core.Newf(core.KindValidation, "install", "apk not found: %s", apkPath))
	}
	logOp(ctx, "install", zap.String("apk", apkPath))
	out, err := d.provider.Device.Install(ctx, apkPath)
	if err != nil {
		return failure(err)
	}
	return ok(out, nil)
}

// Launch starts an app, at a given activity or through its launcher entry.
func (d *Dispatcher) Launch(ctx context.Context, opts platform.LaunchOptions) Outcome {
	if err := opts.Validate(); err != nil {
		return failure(err)
	}
	logOp(ctx, "launch", zap.String("package", opts.Package), zap.String("activity", opts.Activity))
	out, err := d.provider.Device.Launch(ctx, opts)
	if err != nil {
		return failure(err)
	}
	if out == "" {
		out = "Launched " + opts.Package + "."
	}
	return ok(out, nil)
}

// DeviceInfo reports model, SDK, ABI and screen geometry.
func (d *Dispatcher) DeviceInfo(ctx context.Context) Outcome {
	logOp(ctx, "device_info")
	info, err := d.provider.Device.Info(ctx)
	if err != nil {
		return fail(fmt.Sprintf("ERROR: %v. Is device connected? Run: adb devices", err), err)
	}
	text := fmt.Sprintf("Model: %s\nSDK: %s\nABI: %s\nScreen: %s @ %sdpi",
		info.Model, info.SDK, info.ABI, info.ScreenSize, info.Density)
	return ok(text, info)
}

func (d *Dispatcher) acquire(ctx context.Context) (*model.Tree, error) {
	tree, found, err := d.provider.Snapshotter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, platform.ErrNoSnapshot
	}
	return tree, nil
}

func notFoundMessage(q model.Query) string {
	msg := fmt.Sprintf("ERROR: Element not found (resource_id='%s', text='%s', content_desc='%s'", q.ResourceID, q.Text, q.ContentDesc)
	if q.ClassName != "" {
		msg += fmt.Sprintf(", class_name='%s'", q.ClassName)
	}
	return msg + "). Use android_snapshot to see available elements."
}
