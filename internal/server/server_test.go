package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/debugrpc"
	"github.com/mj1618/android-cli/internal/model"
	"github.com/mj1618/android-cli/internal/platform"
)

type tapRecorder struct {
	taps  [][2]int
	typed []string
	keys  []string
}

func (r *tapRecorder) Tap(_ context.Context, x, y int) error {
	r.taps = append(r.taps, [2]int{x, y})
	return nil
}
func (r *tapRecorder) TapNode(context.Context, *model.Node) error         { return nil }
func (r *tapRecorder) Swipe(context.Context, platform.SwipeOptions) error { return nil }

func (r *tapRecorder) PressKey(_ context.Context, key string) error {
	r.keys = append(r.keys, key)
	return nil
}

func (r *tapRecorder) TypeText(_ context.Context, text string, _ *model.Query) error {
	r.typed = append(r.typed, text)
	return nil
}

type stubCaller struct {
	got []debugrpc.Command
}

func (c *stubCaller) Call(_ context.Context, cmd debugrpc.Command) (debugrpc.Result, error) {
	c.got = append(c.got, cmd)
	return debugrpc.Result{"ok": true}, nil
}

func newTestServer() (*Server, *tapRecorder, *stubCaller) {
	in := &tapRecorder{}
	rpc := &stubCaller{}
	d := bridge.New(&platform.Provider{Inputter: in}, rpc)
	return New(d, "test"), in, rpc
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestTools_Registered(t *testing.T) {
	s, _, _ := newTestServer()
	want := []string{
		"android_snapshot", "android_click", "android_type", "android_tap", "android_swipe",
		"android_press_key", "android_screenshot", "android_logcat", "android_app_install",
		"android_app_launch", "android_device_info",
		"android_test_open_chat", "android_test_send_message", "android_test_start_call",
		"android_test_accept_call", "android_test_end_call", "android_test_get_state",
		"android_test_open_group", "android_test_send_code", "android_test_sign_in",
		"android_test_press_back", "android_test_go_home",
	}
	got := s.Tools()
	if len(got) != len(want) {
		t.Fatalf("expected %d tools, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tool %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestHandler_Success(t *testing.T) {
	s, in, _ := newTestServer()
	h := s.handler("android_tap", true, func(ctx context.Context, args map[string]any) bridge.Outcome {
		xy, bad := requireInts(args, "x", "y")
		if bad != nil {
			return *bad
		}
		return s.dispatcher.Tap(ctx, int(xy[0]), int(xy[1]))
	})

	res, err := h(context.Background(), callRequest("android_tap", map[string]any{"x": float64(540), "y": float64(1200)}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "Tapped at (540, 1200)." {
		t.Errorf("got %q", got)
	}
	if len(in.taps) != 1 || in.taps[0] != [2]int{540, 1200} {
		t.Errorf("taps: %v", in.taps)
	}
}

func TestHandler_FailureIsToolError(t *testing.T) {
	s, in, _ := newTestServer()
	h := s.handler("android_tap", true, func(ctx context.Context, args map[string]any) bridge.Outcome {
		_, bad := requireInts(args, "x", "y")
		if bad != nil {
			return *bad
		}
		return bridge.Outcome{Text: "unreachable"}
	})

	res, err := h(context.Background(), callRequest("android_tap", map[string]any{"x": float64(1)}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected a tool error")
	}
	if got := resultText(t, res); got != "ERROR: y is required and must be an integer." {
		t.Errorf("got %q", got)
	}
	if len(in.taps) != 0 {
		t.Errorf("no tap expected, got %v", in.taps)
	}
}

func TestHandler_SemanticResultIsJSON(t *testing.T) {
	s, _, rpc := newTestServer()
	h := s.handler("android_test_send_message", false, func(ctx context.Context, args map[string]any) bridge.Outcome {
		ids, bad := requireInts(args, "user_id")
		if bad != nil {
			return *bad
		}
		return s.dispatcher.SendMessage(ctx, ids[0], stringParam(args, "text", ""))
	})

	res, err := h(context.Background(), callRequest("android_test_send_message", map[string]any{"user_id": float64(777000), "text": "hi"}))
	if err != nil {
		t.Fatal(err)
	}
	if got := resultText(t, res); !strings.Contains(got, `"ok": true`) {
		t.Errorf("got %q", got)
	}
	if len(rpc.got) != 1 || rpc.got[0] != (debugrpc.SendMessage{UserID: 777000, Text: "hi"}) {
		t.Errorf("calls: %#v", rpc.got)
	}
}

func TestParams(t *testing.T) {
	args := map[string]any{
		"s":     "x",
		"n":     float64(42),
		"ns":    "17",
		"b":     true,
		"num":   float64(3),
		"bad":   "abc",
		"nil":   nil,
		"huge":  float64(5000000000),
		"int":   7,
		"int64": int64(9),
		"frac":  10.7,
	}
	if stringParam(args, "s", "") != "x" || stringParam(args, "num", "") != "3" || stringParam(args, "missing", "d") != "d" {
		t.Error("stringParam")
	}
	if stringParam(args, "nil", "d") != "d" {
		t.Error("nil string should use default")
	}
	if intParam(args, "n", 0) != 42 || intParam(args, "missing", 15) != 15 || intParam(args, "int", 0) != 7 {
		t.Error("intParam")
	}
	if n, ok := int64Param(args, "huge", 0); !ok || n != 5000000000 {
		t.Errorf("int64Param huge: %d %v", n, ok)
	}
	if n, ok := int64Param(args, "ns", 0); !ok || n != 17 {
		t.Errorf("int64Param string: %d %v", n, ok)
	}
	if _, ok := int64Param(args, "bad", 0); ok {
		t.Error("non-numeric string should not parse")
	}
	if n, ok := int64Param(args, "int64", 0); !ok || n != 9 {
		t.Error("int64Param int64")
	}
	if n, ok := int64Param(args, "frac", 0); ok || n != 0 {
		t.Errorf("int64Param fractional: %d %v", n, ok)
	}
	if !boolParam(args, "b", false) || boolParam(args, "s", false) {
		t.Error("boolParam")
	}
}

// callTool sends a tools/call request through the registered MCP handlers
// and returns the JSON-RPC response.
func callTool(t *testing.T, s *Server, name string, args map[string]any) string {
	t.Helper()
	params, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	if err != nil {
		t.Fatal(err)
	}
	msg := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":` + string(params) + `}`
	resp := s.MCP().HandleMessage(context.Background(), json.RawMessage(msg))
	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestTools_MissingRequiredString(t *testing.T) {
	tests := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"android_type", map[string]any{"resource_id": "chat_input"}, "ERROR: text is required."},
		{"android_press_key", map[string]any{}, "ERROR: key is required."},
		{"android_app_install", map[string]any{}, "ERROR: apk_path is required."},
		{"android_app_launch", map[string]any{"activity": ".Main"}, "ERROR: package is required."},
		{"android_test_send_message", map[string]any{"user_id": float64(777000)}, "ERROR: text is required."},
		{"android_test_send_code", map[string]any{}, "ERROR: phone is required."},
		{"android_test_sign_in", map[string]any{"phone": "15551234567"}, "ERROR: code is required."},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			s, in, rpc := newTestServer()
			got := callTool(t, s, tt.tool, tt.args)
			if !strings.Contains(got, `"isError":true`) {
				t.Errorf("expected a tool error, got %s", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in %s", tt.want, got)
			}
			if len(in.typed) != 0 || len(in.keys) != 0 || len(in.taps) != 0 {
				t.Errorf("inputter reached: typed=%q keys=%q taps=%v", in.typed, in.keys, in.taps)
			}
			if len(rpc.got) != 0 {
				t.Errorf("debug endpoint reached: %#v", rpc.got)
			}
		})
	}
}

func TestTools_TypeEmptyTextStillClears(t *testing.T) {
	s, in, _ := newTestServer()
	got := callTool(t, s, "android_type", map[string]any{"text": "", "resource_id": "chat_input"})
	if strings.Contains(got, `"isError":true`) {
		t.Fatalf("unexpected tool error: %s", got)
	}
	if len(in.typed) != 1 || in.typed[0] != "" {
		t.Errorf("typed: %q", in.typed)
	}
}

func TestTools_FractionalCoordinateRejected(t *testing.T) {
	s, in, _ := newTestServer()
	got := callTool(t, s, "android_tap", map[string]any{"x": 10.7, "y": float64(20)})
	if !strings.Contains(got, "ERROR: x is required and must be an integer.") {
		t.Errorf("got %s", got)
	}
	if len(in.taps) != 0 {
		t.Errorf("no tap expected, got %v", in.taps)
	}
}

func TestRequireStrings(t *testing.T) {
	args := map[string]any{"phone": float64(15551234567), "code": "12345", "empty": "", "nil": nil}

	vals, bad := requireStrings(args, "phone", "code", "empty")
	if bad != nil {
		t.Fatalf("unexpected failure: %s", bad.Text)
	}
	if vals[0] != "15551234567" || vals[1] != "12345" || vals[2] != "" {
		t.Errorf("got %q", vals)
	}

	for _, key := range []string{"nil", "missing"} {
		_, bad := requireStrings(args, "code", key)
		if bad == nil {
			t.Fatalf("%s: expected a failed outcome", key)
		}
		if !errors.Is(bad.Err, core.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", key, bad.Err)
		}
		if bad.Text != "ERROR: "+key+" is required." {
			t.Errorf("%s: got %q", key, bad.Text)
		}
	}
}
