package server

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/model"
	"github.com/mj1618/android-cli/internal/platform"
)

func (s *Server) registerTools() {
	s.registerDeviceTools()
	s.registerAppTools()
}

// registerDeviceTools adds the UIAutomator and adb input tools.
func (s *Server) registerDeviceTools() {
	d := s.dispatcher

	s.add(
		mcp.NewTool("android_snapshot",
			mcp.WithDescription("Get the UI accessibility tree of the Android screen. Returns one line per widget with class, resource-id, text, content-desc, states, and bounds. "+
				"Telegram's chat messages and dialog list are Canvas-drawn and do not appear here; use the android_test_* tools for them."),
			mcp.WithNumber("max_depth", mcp.Description("Maximum tree depth (default 15)")),
			mcp.WithBoolean("diff", mcp.Description("Only report widgets added, removed, or changed since the previous snapshot")),
		),
		true, func(ctx context.Context, args map[string]any) bridge.Outcome {
			if boolParam(args, "diff", false) {
				return d.SnapshotDiff(ctx)
			}
			return d.Snapshot(ctx, intParam(args, "max_depth", model.DefaultRenderDepth))
		},
	)

	s.add(
		mcp.NewTool("android_click",
			mcp.WithDescription("Click a UI element by resource-id, text, content-desc, or class name. Finds the element in the UIAutomator tree and taps its center. At least one search parameter must be provided; all given parameters must match."),
			mcp.WithString("resource_id", mcp.Description("Partial case-sensitive match on resource-id (e.g. \"btn_send\", \"action_bar\")")),
			mcp.WithString("text", mcp.Description("Partial case-insensitive match on text content")),
			mcp.WithString("content_desc", mcp.Description("Partial case-insensitive match on content description")),
			mcp.WithString("class_name", mcp.Description("Partial case-insensitive match on the widget class")),
		),
		true, func(ctx context.Context, args map[string]any) bridge.Outcome {
			return d.Click(ctx, model.Query{
				ResourceID:  stringParam(args, "resource_id", ""),
				Text:        stringParam(args, "text", ""),
				ContentDesc: stringParam(args, "content_desc", ""),
				ClassName:   stringParam(args, "class_name", ""),
			})
		},
	)

	s.add(
		mcp.NewTool("android_type",
			mcp.WithDescription("Type text into a field, replacing its content. If resource_id, element_text, or content_desc is given, that element is found and tapped first."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Text to type")),
			mcp.WithString("resource_id", mcp.Description("Optional resource-id of the field to tap first")),
			mcp.WithString("element_text", mcp.Description("Optional existing text to find the field by")),
			mcp.WithString("content_desc", mcp.Description("Optional content description to find the field by")),
		),
		true, func(ctx context.Context, args map[string]any) bridge.Outcome {
			text, bad := requireStrings(args, "text")
			if bad != nil {
				return *bad
			}
			return d.TypeText(ctx, text[0], model.Query{
				ResourceID:  stringParam(args, "resource_id", ""),
				Text:        stringParam(args, "element_text", ""),
				ContentDesc: stringParam(args, "content_desc", ""),
			})
		},
	)

	s.add(
		mcp.NewTool("android_tap",
			mcp.WithDescription("Tap at screen coordinates."),
			mcp.WithNumber("x", mcp.Required(), mcp.Description("X coordinate in pixels")),
			mcp.WithNumber("y", mcp.Required(), mcp.Description("Y coordinate in pixels")),
		),
		true, func(ctx context.Context, args map[string]any) bridge.Outcome {
			xy, bad := requireInts(args, "x", "y")
			if bad != nil {
				return *bad
			}
			return d.Tap(ctx, int(xy[0]), int(xy[1]))
		},
	)

	s.add(
		mcp.NewTool("android_swipe",
			mcp.WithDescription("Swipe from one point to another."),
			mcp.WithNumber("x1", mcp.Required(), mcp.Description("Start X")),
			mcp.WithNumber("y1", mcp.Required(), mcp.Description("Start Y")),
			mcp.WithNumber("x2", mcp.Required(), mcp.Description("End X")),
			mcp.WithNumber("y2", mcp.Required(), mcp.Description("End Y")),
			mcp.WithNumber("duration_ms", mcp.Description("Swipe duration in milliseconds (default 300)")),
		),
		true, func(ctx context.Context, args map[string]any) bridge.Outcome {
			p, bad := requireInts(args, "x1", "y1", "x2", "y2")
			if bad != nil {
				return *bad
			}
			ms := intParam(args, "duration_ms", int(platform.DefaultSwipeDuration/time.Millisecond))
			return d.Swipe(ctx, platform.SwipeOptions{
				X1: int(p[0]), Y1: int(p[1]), X2: int(p[2]), Y2: int(p[3]),
				Duration: time.Duration(ms) * time.Millisecond,
			})
		},
	)

	s.add(
		mcp.NewTool("android_press_key",
			mcp.WithDescription("Press a key: BACK, HOME, ENTER, TAB, DEL, VOLUME_UP, VOLUME_DOWN, POWER, APP_SWITCH, or any KEYCODE_* name or numeric code."),
			mcp.WithString("key", mcp.Required(), mcp.Description("Key name (e.g. \"BACK\", \"KEYCODE_ENTER\", \"66\")")),
		),
		true, func(ctx context.Context, args map[string]any) bridge.Outcome {
			key, bad := requireStrings(args, "key")
			if bad != nil {
				return *bad
			}
			return d.PressKey(ctx, key[0])
		},
	)

	s.add(
		mcp.NewTool("android_screenshot",
			mcp.WithDescription("Take a screenshot and save it as PNG. Large captures are downscaled to the configured maximum dimension."),
			mcp.WithString("filename", mcp.Description("Output file name or absolute path (default: auto-generated in the screenshot directory)")),
			mcp.WithBoolean("annotate", mcp.Description("Outline clickable elements and label their tap coordinates")),
		),
		true, func(ctx context.Context, args map[string]any) bridge.Outcome {
			return d.Screenshot(ctx, platform.ScreenshotOptions{
				Filename: stringParam(args, "filename", ""),
				Annotate: boolParam(args, "annotate", false),
			})
		},
	)

	s.add(
		mcp.NewTool("android_logcat",
			mcp.WithDescription("Get recent logcat output."),
			mcp.WithString("tag", mcp.Description("Filter by log tag (e.g. \"tgnet\", \"TgDebugServer\")")),
			mcp.WithNumber("lines", mcp.Description("Number of recent lines (default 50)")),
			mcp.WithString("level", mcp.Description("Minimum level: V, D, I, W, E, F (default V)")),
		),
		false, func(ctx context.Context, args map[string]any) bridge.Outcome {
			return d.Logcat(ctx,
				stringParam(args, "tag", ""),
				intParam(args, "lines", platform.DefaultLogcatLines),
				stringParam(args, "level", "V"))
		},
	)

	s.add(
		mcp.NewTool("android_app_install",
			mcp.WithDescription("Install an APK on the device, replacing any existing version and allowing downgrades."),
			mcp.WithString("apk_path", mcp.Required(), mcp.Description("Path to the APK on the host")),
		),
		true, func(ctx context.Context, args map[string]any) bridge.Outcome {
			apk, bad := requireStrings(args, "apk_path")
			if bad != nil {
				return *bad
			}
			return d.Install(ctx, apk[0])
		},
	)

	s.add(
		mcp.NewTool("android_app_launch",
			mcp.WithDescription("Launch an app by package name, optionally at a specific activity."),
			mcp.WithString("package", mcp.Required(), mcp.Description("Package name (e.g. \"org.telegram.messenger\")")),
			mcp.WithString("activity", mcp.Description("Activity class (e.g. \"org.telegram.ui.LaunchActivity\")")),
		),
		true, func(ctx context.Context, args map[string]any) bridge.Outcome {
			pkg, bad := requireStrings(args, "package")
			if bad != nil {
				return *bad
			}
			return d.Launch(ctx, platform.LaunchOptions{
				Package:  pkg[0],
				Activity: stringParam(args, "activity", ""),
			})
		},
	)

	s.add(
		mcp.NewTool("android_device_info",
			mcp.WithDescription("Get connected device information: model, SDK level, ABI, screen size and density."),
		),
		false, func(ctx context.Context, _ map[string]any) bridge.Outcome {
			return d.DeviceInfo(ctx)
		},
	)
}

// registerAppTools adds the tools backed by the app's debug endpoint.
func (s *Server) registerAppTools() {
	d := s.dispatcher

	s.add(
		mcp.NewTool("android_test_open_chat",
			mcp.WithDescription("Open a chat with a user by Telegram user ID."),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Telegram user ID")),
		),
		false, func(ctx context.Context, args map[string]any) bridge.Outcome {
			ids, bad := requireInts(args, "user_id")
			if bad != nil {
				return *bad
			}
			return d.OpenChat(ctx, ids[0])
		},
	)

	s.add(
		mcp.NewTool("android_test_send_message",
			mcp.WithDescription("Send a text message to a user. Opens the chat if needed."),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Telegram user ID")),
			mcp.WithString("text", mcp.Required(), mcp.Description("Message text")),
		),
		false, func(ctx context.Context, args map[string]any) bridge.Outcome {
			ids, bad := requireInts(args, "user_id")
			if bad != nil {
				return *bad
			}
			text, bad := requireStrings(args, "text")
			if bad != nil {
				return *bad
			}
			return d.SendMessage(ctx, ids[0], text[0])
		},
	)

	s.add(
		mcp.NewTool("android_test_start_call",
			mcp.WithDescription("Start a voice or video call with a user."),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Telegram user ID")),
			mcp.WithBoolean("video", mcp.Description("Start a video call instead of voice (default false)")),
		),
		false, func(ctx context.Context, args map[string]any) bridge.Outcome {
			ids, bad := requireInts(args, "user_id")
			if bad != nil {
				return *bad
			}
			return d.StartCall(ctx, ids[0], boolParam(args, "video", false))
		},
	)

	s.add(
		mcp.NewTool("android_test_accept_call",
			mcp.WithDescription("Accept the incoming call."),
		),
		false, func(ctx context.Context, _ map[string]any) bridge.Outcome {
			return d.AcceptCall(ctx)
		},
	)

	s.add(
		mcp.NewTool("android_test_end_call",
			mcp.WithDescription("End the active call."),
		),
		false, func(ctx context.Context, _ map[string]any) bridge.Outcome {
			return d.EndCall(ctx)
		},
	)

	s.add(
		mcp.NewTool("android_test_get_state",
			mcp.WithDescription("Get the app state: call status, active chat, and current user."),
		),
		false, func(ctx context.Context, _ map[string]any) bridge.Outcome {
			return d.GetState(ctx)
		},
	)

	s.add(
		mcp.NewTool("android_test_open_group",
			mcp.WithDescription("Open a group chat by chat ID."),
			mcp.WithNumber("chat_id", mcp.Required(), mcp.Description("Telegram chat ID")),
		),
		false, func(ctx context.Context, args map[string]any) bridge.Outcome {
			ids, bad := requireInts(args, "chat_id")
			if bad != nil {
				return *bad
			}
			return d.OpenGroup(ctx, ids[0])
		},
	)

	s.add(
		mcp.NewTool("android_test_send_code",
			mcp.WithDescription("Request a login verification code. Returns phoneCodeHash for android_test_sign_in."),
			mcp.WithString("phone", mcp.Required(), mcp.Description("Phone number with country code, without + (e.g. \"15551234567\")")),
		),
		false, func(ctx context.Context, args map[string]any) bridge.Outcome {
			phone, bad := requireStrings(args, "phone")
			if bad != nil {
				return *bad
			}
			return d.SendCode(ctx, phone[0])
		},
	)

	s.add(
		mcp.NewTool("android_test_sign_in",
			mcp.WithDescription("Sign in with the verification code received after android_test_send_code."),
			mcp.WithString("phone", mcp.Required(), mcp.Description("Phone number used for android_test_send_code")),
			mcp.WithString("code", mcp.Required(), mcp.Description("Verification code")),
			mcp.WithString("phone_code_hash", mcp.Description("Hash from android_test_send_code (default: the last one the app received)")),
		),
		false, func(ctx context.Context, args map[string]any) bridge.Outcome {
			creds, bad := requireStrings(args, "phone", "code")
			if bad != nil {
				return *bad
			}
			return d.SignIn(ctx, creds[0], creds[1], stringParam(args, "phone_code_hash", ""))
		},
	)

	s.add(
		mcp.NewTool("android_test_press_back",
			mcp.WithDescription("Navigate back inside the app without a key event."),
		),
		false, func(ctx context.Context, _ map[string]any) bridge.Outcome {
			return d.PressBack(ctx)
		},
	)

	s.add(
		mcp.NewTool("android_test_go_home",
			mcp.WithDescription("Return to the dialog list."),
		),
		false, func(ctx context.Context, _ map[string]any) bridge.Outcome {
			return d.GoHome(ctx)
		},
	)
}
