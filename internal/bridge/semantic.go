package bridge

import (
	"context"

	"github.com/mj1618/android-cli/internal/debugrpc"
	"go.uber.org/zap"
)

// Call sends cmd to the debug endpoint. Remote failures, an unreachable
// endpoint and a malformed reply all come back as {ok: false} JSON in Text
// with a nil Err; only validation and tunnel or transport faults set Err.
func (d *Dispatcher) Call(ctx context.Context, cmd debugrpc.Command) Outcome {
	if err := cmd.Validate(); err != nil {
		return failure(err)
	}
	logOp(ctx, "rpc", zap.String("endpoint", cmd.Endpoint()))
	res, err := d.rpc.Call(ctx, cmd)
	if err != nil {
		return failure(err)
	}
	return ok(res.JSON(), res)
}

// OpenChat opens the chat with a user.
func (d *Dispatcher) OpenChat(ctx context.Context, userID int64) Outcome {
	return d.Call(ctx, debugrpc.OpenChat{UserID: userID})
}

// SendMessage sends text to a user.
func (d *Dispatcher) SendMessage(ctx context.Context, userID int64, text string) Outcome {
	return d.Call(ctx, debugrpc.SendMessage{UserID: userID, Text: text})
}

// StartCall starts a voice or video call with a user.
func (d *Dispatcher) StartCall(ctx context.Context, userID int64, video bool) Outcome {
	return d.Call(ctx, debugrpc.StartCall{UserID: userID, Video: video})
}

// AcceptCall accepts the incoming call.
func (d *Dispatcher) AcceptCall(ctx context.Context) Outcome {
	return d.Call(ctx, debugrpc.AcceptCall{})
}

// EndCall ends the active call.
func (d *Dispatcher) EndCall(ctx context.Context) Outcome {
	return d.Call(ctx, debugrpc.EndCall{})
}

// GetState reports call status, active chat and current user.
func (d *Dispatcher) GetState(ctx context.Context) Outcome {
	return d.Call(ctx, debugrpc.GetState{})
}

// OpenGroup opens a group chat.
func (d *Dispatcher) OpenGroup(ctx context.Context, chatID int64) Outcome {
	return d.Call(ctx, debugrpc.OpenGroup{ChatID: chatID})
}

// SendCode requests a login code for phone.
func (d *Dispatcher) SendCode(ctx context.Context, phone string) Outcome {
	return d.Call(ctx, debugrpc.SendCode{Phone: phone})
}

// SignIn completes login. phoneCodeHash may be empty.
func (d *Dispatcher) SignIn(ctx context.Context, phone, code, phoneCodeHash string) Outcome {
	return d.Call(ctx, debugrpc.SignIn{Phone: phone, Code: code, PhoneCodeHash: phoneCodeHash})
}

// PressBack navigates back inside the app.
func (d *Dispatcher) PressBack(ctx context.Context) Outcome {
	return d.Call(ctx, debugrpc.PressBack{})
}

// GoHome returns to the dialog list.
func (d *Dispatcher) GoHome(ctx context.Context) Outcome {
	return d.Call(ctx, debugrpc.GoHome{})
}
