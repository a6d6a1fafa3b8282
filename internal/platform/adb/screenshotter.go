package adb

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/logging"
	"github.com/mj1618/android-cli/internal/platform"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// minScreenshotBytes is the smallest capture accepted as a real PNG.
const minScreenshotBytes = 100

// ScreencapArgs captures the screen as PNG on stdout.
var ScreencapArgs = []string{"exec-out", "screencap", "-p"}

// Screenshotter saves device screenshots as PNG files.
type Screenshotter struct {
	runner    platform.Runner
	snapshots platform.Snapshotter
	dir       string
	maxDim    int
	timeout   time.Duration
	now       func() time.Time
}

// NewScreenshotter returns a Screenshotter writing into dir. Images whose
// longest side exceeds maxDim are scaled down; 0 disables scaling.
// snapshots is only used for annotated captures.
func NewScreenshotter(runner platform.Runner, snapshots platform.Snapshotter, dir string, maxDim int, timeout time.Duration) *Screenshotter {
	return &Screenshotter{
		runner:    runner,
		snapshots: snapshots,
		dir:       dir,
		maxDim:    maxDim,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Path resolves the output path for filename.
func (s *Screenshotter) Path(filename string) string {
	if filename == "" {
		filename = "android_" + s.now().Format("20060102_150405") + ".png"
	}
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.dir, filename)
}

// Capture grabs the screen, optionally annotates and downscales it, and
// writes it to disk. A failure while post-processing keeps the original
// capture.
func (s *Screenshotter) Capture(ctx context.Context, opts platform.ScreenshotOptions) (*platform.ScreenshotResult, error) {
	log := logging.WithContext(ctx)
	path := s.Path(opts.Filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, core.Wrap(core.KindConfig, "screenshot", "cannot create "+filepath.Dir(path), err)
	}

	raw, err := s.runner.RunRaw(ctx, s.timeout, ScreencapArgs...)
	if err != nil {
		return nil, err
	}
	if len(raw) < minScreenshotBytes {
		return nil, core.Newf(core.KindTransportFailure, "screenshot", "empty data returned (%d bytes)", len(raw))
	}

	res := &platform.ScreenshotResult{Path: path}
	data := raw
	if processed, err := s.process(ctx, raw, opts, res); err != nil {
		log.Warn("screenshot post-processing failed, keeping original", zap.Error(err))
	} else if processed != nil {
		data = processed
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, core.Wrap(core.KindConfig, "screenshot", "cannot write "+path, err)
	}
	res.Bytes = len(data)
	log.Info("screenshot saved", zap.String("path", path), zap.Int("bytes", res.Bytes), zap.Bool("resized", res.Resized))
	return res, nil
}

// process returns re-encoded image bytes, or nil when the capture can be
// written as is. It fills in dimensions on res.
func (s *Screenshotter) process(ctx context.Context, raw []byte, opts platform.ScreenshotOptions, res *platform.ScreenshotResult) ([]byte, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	res.Width, res.Height = cfg.Width, cfg.Height

	w, h, scale := fitWithin(cfg.Width, cfg.Height, s.maxDim)
	if !opts.Annotate && !scale {
		return nil, nil
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if opts.Annotate {
		img, res.Labels = s.annotate(ctx, img)
	}
	if scale {
		img = downscale(img, w, h)
		res.Width, res.Height, res.Resized = w, h, true
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Screenshotter) annotate(ctx context.Context, img image.Image) (image.Image, int) {
	if s.snapshots == nil {
		return img, 0
	}
	tree, ok, err := s.snapshots.Acquire(ctx)
	if err != nil || !ok {
		logging.WithContext(ctx).Warn("no hierarchy for annotation", zap.Error(err))
		return img, 0
	}
	nodes := tapTargets(tree)
	return annotate(img, nodes), len(nodes)
}

// fitWithin scales (w, h) so the longest side is maxDim, keeping the
// aspect ratio. scale is false when the image already fits.
func fitWithin(w, h, maxDim int) (nw, nh int, scale bool) {
	longest := max(w, h)
	if maxDim <= 0 || longest <= maxDim {
		return w, h, false
	}
	ratio := float64(maxDim) / float64(longest)
	nw = max(1, int(float64(w)*ratio))
	nh = max(1, int(float64(h)*ratio))
	return nw, nh, true
}

func downscale(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
