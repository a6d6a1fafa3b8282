package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/debugrpc"
	"github.com/mj1618/android-cli/internal/model"
	"github.com/mj1618/android-cli/internal/platform"
)

// fakeBackend implements every platform interface and records calls.
type fakeBackend struct {
	tree    *model.Tree
	found   bool
	snapErr error
	err     error // returned by input and device calls
	calls   []string

	typed     string
	typedWith *model.Query
	tapped    [2]int
	swipe     platform.SwipeOptions
	logcat    platform.LogcatOptions
	info      *platform.DeviceInfo
	shot      *platform.ScreenshotResult
}

func (f *fakeBackend) record(s string) { f.calls = append(f.calls, s) }

func (f *fakeBackend) Acquire(context.Context) (*model.Tree, bool, error) {
	f.record("acquire")
	return f.tree, f.found, f.snapErr
}

func (f *fakeBackend) Tap(_ context.Context, x, y int) error {
	f.record("tap")
	f.tapped = [2]int{x, y}
	return f.err
}

func (f *fakeBackend) TapNode(_ context.Context, n *model.Node) error {
	f.record("tap_node")
	x, y := n.Bounds.Center()
	f.tapped = [2]int{x, y}
	return f.err
}

func (f *fakeBackend) Swipe(_ context.Context, opts platform.SwipeOptions) error {
	f.record("swipe")
	f.swipe = opts
	return f.err
}

func (f *fakeBackend) PressKey(context.Context, string) error {
	f.record("key")
	return f.err
}

func (f *fakeBackend) TypeText(_ context.Context, text string, target *model.Query) error {
	f.record("type")
	f.typed, f.typedWith = text, target
	return f.err
}

func (f *fakeBackend) Capture(context.Context, platform.ScreenshotOptions) (*platform.ScreenshotResult, error) {
	f.record("screenshot")
	return f.shot, f.err
}

func (f *fakeBackend) Info(context.Context) (*platform.DeviceInfo, error) {
	f.record("info")
	return f.info, f.err
}

func (f *fakeBackend) Logcat(_ context.Context, opts platform.LogcatOptions) (string, error) {
	f.record("logcat")
	f.logcat = opts
	return "log line", f.err
}

func (f *fakeBackend) Install(context.Context, string) (string, error) {
	f.record("install")
	return "Success", f.err
}

func (f *fakeBackend) Launch(context.Context, platform.LaunchOptions) (string, error) {
	f.record("launch")
	return "", f.err
}

func (f *fakeBackend) Forward(context.Context, int, int) error {
	f.record("forward")
	return f.err
}

type fakeCaller struct {
	got []debugrpc.Command
	res debugrpc.Result
	err error
}

func (c *fakeCaller) Call(_ context.Context, cmd debugrpc.Command) (debugrpc.Result, error) {
	c.got = append(c.got, cmd)
	return c.res, c.err
}

func newDispatcher(f *fakeBackend, c *fakeCaller) *Dispatcher {
	p := &platform.Provider{Snapshotter: f, Inputter: f, Screenshotter: f, Device: f, Forwarder: f}
	return New(p, c)
}

func screenTree() *model.Tree {
	send := &model.Node{
		Class: "android.widget.ImageView", ResourceID: "org.telegram.messenger:id/send",
		ContentDesc: "Send", Clickable: true, Enabled: true,
		Bounds: &model.Bounds{X1: 900, Y1: 2200, X2: 1080, Y2: 2400}, RawBounds: "[900,2200][1080,2400]",
	}
	title := &model.Node{Class: "android.widget.TextView", Text: "Chats", Enabled: true}
	root := &model.Node{Class: "android.widget.FrameLayout", Enabled: true, Children: []*model.Node{title, send}}
	return &model.Tree{Root: root}
}

func TestSnapshot(t *testing.T) {
	f := &fakeBackend{tree: screenTree(), found: true}
	out := newDispatcher(f, &fakeCaller{}).Snapshot(context.Background(), model.DefaultRenderDepth)
	if out.Failed() {
		t.Fatal(out.Text)
	}
	want := strings.Join([]string{
		"[FrameLayout]",
		`  [TextView] "Chats"`,
		`  [ImageView] @send desc="Send" [clickable] [900,2200][1080,2400]`,
	}, "\n")
	if out.Text != want {
		t.Errorf("got:\n%s\nwant:\n%s", out.Text, want)
	}
	if view, _ := out.Data.(SnapshotView); view.Nodes != 3 {
		t.Errorf("data: %+v", out.Data)
	}
}

func TestSnapshot_Failures(t *testing.T) {
	f := &fakeBackend{}
	out := newDispatcher(f, &fakeCaller{}).Snapshot(context.Background(), 5)
	if !out.Failed() || out.Text != noSnapshotMessage {
		t.Errorf("no snapshot: %q", out.Text)
	}

	f = &fakeBackend{tree: &model.Tree{}, found: true}
	out = newDispatcher(f, &fakeCaller{}).Snapshot(context.Background(), 5)
	if out.Failed() || out.Text != emptyTreeMessage {
		t.Errorf("empty tree: %q", out.Text)
	}

	f = &fakeBackend{}
	out = newDispatcher(f, &fakeCaller{}).Snapshot(context.Background(), -1)
	if !out.Failed() || len(f.calls) != 0 {
		t.Errorf("negative depth: %q, calls %v", out.Text, f.calls)
	}
}

func TestClick(t *testing.T) {
	f := &fakeBackend{tree: screenTree(), found: true}
	out := newDispatcher(f, &fakeCaller{}).Click(context.Background(), model.Query{ContentDesc: "send"})
	if out.Failed() {
		t.Fatal(out.Text)
	}
	if out.Text != "Tapped [ImageView] 'Send' at (990, 2300)." {
		t.Errorf("text: %q", out.Text)
	}
	if f.tapped != [2]int{990, 2300} {
		t.Errorf("tapped %v", f.tapped)
	}
}

func TestClick_ValidationBeforeCapture(t *testing.T) {
	f := &fakeBackend{tree: screenTree(), found: true}
	out := newDispatcher(f, &fakeCaller{}).Click(context.Background(), model.Query{})
	if out.Text != noQueryMessage || !errors.Is(out.Err, core.ErrValidation) {
		t.Errorf("got %q / %v", out.Text, out.Err)
	}
	if len(f.calls) != 0 {
		t.Errorf("collaborators called: %v", f.calls)
	}
}

func TestClick_NotFound(t *testing.T) {
	f := &fakeBackend{tree: screenTree(), found: true}
	out := newDispatcher(f, &fakeCaller{}).Click(context.Background(), model.Query{ResourceID: "btn_x", Text: "Go"})
	want := "ERROR: Element not found (resource_id='btn_x', text='Go', content_desc=''). Use android_snapshot to see available elements."
	if out.Text != want {
		t.Errorf("got %q", out.Text)
	}
	if !errors.Is(out.Err, core.ErrNotFound) {
		t.Errorf("err: %v", out.Err)
	}
	for _, c := range f.calls {
		if c == "tap_node" {
			t.Error("must not tap on a miss")
		}
	}
}

func TestClick_NoBounds(t *testing.T) {
	f := &fakeBackend{tree: screenTree(), found: true}
	out := newDispatcher(f, &fakeCaller{}).Click(context.Background(), model.Query{Text: "chats"})
	if out.Text != noBoundsMessage {
		t.Errorf("got %q", out.Text)
	}
}

func TestClick_NoSnapshot(t *testing.T) {
	f := &fakeBackend{}
	out := newDispatcher(f, &fakeCaller{}).Click(context.Background(), model.Query{Text: "x"})
	if out.Text != noSnapshotMessage {
		t.Errorf("got %q", out.Text)
	}
}

func TestTypeText(t *testing.T) {
	f := &fakeBackend{}
	d := newDispatcher(f, &fakeCaller{})

	out := d.TypeText(context.Background(), "hello world", model.Query{})
	if out.Text != "Typed 'hello world'." || f.typedWith != nil {
		t.Errorf("untargeted: %q target=%v", out.Text, f.typedWith)
	}

	out = d.TypeText(context.Background(), "hi", model.Query{ResourceID: "chat_input"})
	if out.Failed() || f.typedWith == nil || f.typedWith.ResourceID != "chat_input" {
		t.Errorf("targeted: %q target=%v", out.Text, f.typedWith)
	}

	f.err = core.Newf(core.KindNotFound, "", "element not found")
	out = d.TypeText(context.Background(), "hi", model.Query{Text: "Message"})
	if !strings.HasPrefix(out.Text, "ERROR: Element not found (resource_id='', text='Message'") {
		t.Errorf("not found: %q", out.Text)
	}
}

func TestTapSwipeKey(t *testing.T) {
	f := &fakeBackend{}
	d := newDispatcher(f, &fakeCaller{})

	if out := d.Tap(context.Background(), -5, 99999); out.Text != "Tapped at (-5, 99999)." {
		t.Errorf("tap: %q", out.Text)
	}

	opts := platform.SwipeOptions{X1: 500, Y1: 1500, X2: 500, Y2: 500, Duration: 300 * time.Millisecond}
	if out := d.Swipe(context.Background(), opts); out.Text != "Swiped from (500,1500) to (500,500) in 300ms." {
		t.Errorf("swipe: %q", out.Text)
	}

	f.calls = nil
	if out := d.Swipe(context.Background(), platform.SwipeOptions{}); !out.Failed() || len(f.calls) != 0 {
		t.Errorf("zero duration: %q calls=%v", out.Text, f.calls)
	}

	if out := d.PressKey(context.Background(), "back"); out.Text != "Key 'back' pressed." {
		t.Errorf("key: %q", out.Text)
	}
	if out := d.PressKey(context.Background(), " "); !out.Failed() {
		t.Error("empty key should fail")
	}
}

func TestTransportFailure(t *testing.T) {
	f := &fakeBackend{err: core.New(core.KindTransportTimeout, "adb shell input", "timed out after 30s")}
	out := newDispatcher(f, &fakeCaller{}).Tap(context.Background(), 1, 2)
	if out.Text != "ERROR: adb shell input: timed out after 30s." {
		t.Errorf("got %q", out.Text)
	}
	if !errors.Is(out.Err, core.ErrTransportTimeout) {
		t.Errorf("err: %v", out.Err)
	}
}

func TestScreenshot(t *testing.T) {
	f := &fakeBackend{shot: &platform.ScreenshotResult{Path: "/tmp/s.png", Bytes: 1234, Labels: 4}}
	d := newDispatcher(f, &fakeCaller{})
	if out := d.Screenshot(context.Background(), platform.ScreenshotOptions{}); out.Text != "Screenshot saved: /tmp/s.png (1234 bytes)" {
		t.Errorf("got %q", out.Text)
	}
	out := d.Screenshot(context.Background(), platform.ScreenshotOptions{Annotate: true})
	if !strings.HasSuffix(out.Text, "Annotated 4 tap targets.") {
		t.Errorf("annotate: %q", out.Text)
	}
}

func TestLogcat(t *testing.T) {
	f := &fakeBackend{}
	d := newDispatcher(f, &fakeCaller{})
	out := d.Logcat(context.Background(), "tgnet", 10, "e")
	if out.Text != "log line" || f.logcat.Level != platform.LogError || f.logcat.Tag != "tgnet" {
		t.Errorf("got %q %+v", out.Text, f.logcat)
	}

	f.calls = nil
	if out := d.Logcat(context.Background(), "", 10, "X"); !out.Failed() || len(f.calls) != 0 {
		t.Errorf("bad level: %q calls=%v", out.Text, f.calls)
	}
}

func TestInstall(t *testing.T) {
	f := &fakeBackend{}
	d := newDispatcher(f, &fakeCaller{})

	missing := filepath.Join(t.TempDir(), "nope.apk")
	out := d.Install(context.Background(), missing)
	if out.Text != "ERROR: APK not found: "+missing || len(f.calls) != 0 {
		t.Errorf("missing: %q calls=%v", out.Text, f.calls)
	}

	apk := filepath.Join(t.TempDir(), "app.apk")
	if err := os.WriteFile(apk, []byte("PK"), 0o644); err != nil {
		t.Fatal(err)
	}
	if out := d.Install(context.Background(), apk); out.Text != "Success" {
		t.Errorf("install: %q", out.Text)
	}
}

func TestLaunch(t *testing.T) {
	f := &fakeBackend{}
	d := newDispatcher(f, &fakeCaller{})
	if out := d.Launch(context.Background(), platform.LaunchOptions{}); !out.Failed() || len(f.calls) != 0 {
		t.Errorf("empty package: %q", out.Text)
	}
	if out := d.Launch(context.Background(), platform.LaunchOptions{Package: "org.telegram.messenger"}); out.Text != "Launched org.telegram.messenger." {
		t.Errorf("got %q", out.Text)
	}
}

func TestDeviceInfo(t *testing.T) {
	f := &fakeBackend{info: &platform.DeviceInfo{Model: "Pixel 7", SDK: "34", ABI: "arm64-v8a", ScreenSize: "1080x2400", Density: "420"}}
	d := newDispatcher(f, &fakeCaller{})
	want := "Model: Pixel 7\nSDK: 34\nABI: arm64-v8a\nScreen: 1080x2400 @ 420dpi"
	if out := d.DeviceInfo(context.Background()); out.Text != want {
		t.Errorf("got %q", out.Text)
	}

	f.err = errors.New("device 'emulator-5554' not found")
	out := d.DeviceInfo(context.Background())
	if out.Text != "ERROR: device 'emulator-5554' not found. Is device connected? Run: adb devices" {
		t.Errorf("got %q", out.Text)
	}
}

func TestSemantic_Mapping(t *testing.T) {
	c := &fakeCaller{res: debugrpc.Result{"ok": true}}
	d := newDispatcher(&fakeBackend{}, c)
	ctx := context.Background()

	d.OpenChat(ctx, 7)
	d.SendMessage(ctx, 7, "hi")
	d.StartCall(ctx, 7, true)
	d.AcceptCall(ctx)
	d.EndCall(ctx)
	d.GetState(ctx)
	d.OpenGroup(ctx, -1001)
	d.SendCode(ctx, "15551234567")
	d.SignIn(ctx, "15551234567", "12345", "")
	d.PressBack(ctx)
	d.GoHome(ctx)

	want := []debugrpc.Command{
		debugrpc.OpenChat{UserID: 7},
		debugrpc.SendMessage{UserID: 7, Text: "hi"},
		debugrpc.StartCall{UserID: 7, Video: true},
		debugrpc.AcceptCall{},
		debugrpc.EndCall{},
		debugrpc.GetState{},
		debugrpc.OpenGroup{ChatID: -1001},
		debugrpc.SendCode{Phone: "15551234567"},
		debugrpc.SignIn{Phone: "15551234567", Code: "12345"},
		debugrpc.PressBack{},
		debugrpc.GoHome{},
	}
	if len(c.got) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(c.got))
	}
	for i := range want {
		if c.got[i] != want[i] {
			t.Errorf("call %d: got %#v, want %#v", i, c.got[i], want[i])
		}
	}
}

func TestSemantic_ResultAndValidation(t *testing.T) {
	c := &fakeCaller{res: debugrpc.Failure("Debug server unreachable: refused. Is the app running with debug mode?")}
	d := newDispatcher(&fakeBackend{}, c)

	out := d.GetState(context.Background())
	if out.Failed() {
		t.Errorf("remote failure is a result, not an error: %v", out.Err)
	}
	if !strings.Contains(out.Text, `"ok": false`) || !strings.Contains(out.Text, "debug mode") {
		t.Errorf("text: %s", out.Text)
	}

	out = d.SendMessage(context.Background(), 0, "hi")
	if !errors.Is(out.Err, core.ErrValidation) || len(c.got) != 1 {
		t.Errorf("validation: %v, calls=%d", out.Err, len(c.got))
	}

	c.err = core.New(core.KindTunnelSetup, "debug tunnel", "failed to set up port forwarding tcp:19876")
	out = d.GoHome(context.Background())
	if !errors.Is(out.Err, core.ErrTunnelSetup) || !strings.HasPrefix(out.Text, "ERROR: ") {
		t.Errorf("tunnel: %q %v", out.Text, out.Err)
	}
}
