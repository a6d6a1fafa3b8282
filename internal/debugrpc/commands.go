package debugrpc

import (
	"strings"
	"time"

	"github.com/mj1618/android-cli/internal/core"
)

// Per-call limits. Auth calls wait on the messaging backend and get longer.
const (
	DefaultTimeout = 10 * time.Second
	AuthTimeout    = 20 * time.Second
)

// Command is one operation of the app's debug endpoint. The JSON encoding
// of a Command is the request body; an empty object means no body.
type Command interface {
	Endpoint() string
	Timeout() time.Duration
	Validate() error
}

// OpenChat opens the chat with a user.
type OpenChat struct {
	UserID int64 `json:"userId"`
}

// SendMessage sends a text message to a user, opening the chat if needed.
type SendMessage struct {
	UserID int64  `json:"userId"`
	Text   string `json:"text"`
}

// StartCall starts a voice call, or a video call when Video is set.
type StartCall struct {
	UserID int64 `json:"userId"`
	Video  bool  `json:"video"`
}

// AcceptCall accepts the incoming call.
type AcceptCall struct{}

// EndCall ends the active call.
type EndCall struct{}

// GetState reports call status, active chat and current user.
type GetState struct{}

// OpenGroup opens a group chat.
type OpenGroup struct {
	ChatID int64 `json:"chatId"`
}

// SendCode requests a login verification code. Phone is given without "+".
type SendCode struct {
	Phone string `json:"phone"`
}

// SignIn completes login with the code from SendCode. An empty
// PhoneCodeHash lets the app use the hash from its last SendCode.
type SignIn struct {
	Phone         string `json:"phone"`
	Code          string `json:"code"`
	PhoneCodeHash string `json:"phoneCodeHash,omitempty"`
}

// PressBack presses back inside the app, without a key event.
type PressBack struct{}

// GoHome returns to the dialog list.
type GoHome struct{}

func (OpenChat) Endpoint() string    { return "openChat" }
func (SendMessage) Endpoint() string { return "sendMessage" }
func (StartCall) Endpoint() string   { return "startCall" }
func (AcceptCall) Endpoint() string  { return "acceptCall" }
func (EndCall) Endpoint() string     { return "endCall" }
func (GetState) Endpoint() string    { return "getState" }
func (OpenGroup) Endpoint() string   { return "openGroup" }
func (SendCode) Endpoint() string    { return "sendCode" }
func (SignIn) Endpoint() string      { return "signIn" }
func (PressBack) Endpoint() string   { return "pressBack" }
func (GoHome) Endpoint() string      { return "goHome" }

func (OpenChat) Timeout() time.Duration    { return DefaultTimeout }
func (SendMessage) Timeout() time.Duration { return DefaultTimeout }
func (StartCall) Timeout() time.Duration   { return DefaultTimeout }
func (AcceptCall) Timeout() time.Duration  { return DefaultTimeout }
func (EndCall) Timeout() time.Duration     { return DefaultTimeout }
func (GetState) Timeout() time.Duration    { return DefaultTimeout }
func (OpenGroup) Timeout() time.Duration   { return DefaultTimeout }
func (SendCode) Timeout() time.Duration    { return AuthTimeout }
func (SignIn) Timeout() time.Duration      { return AuthTimeout }
func (PressBack) Timeout() time.Duration   { return DefaultTimeout }
func (GoHome) Timeout() time.Duration      { return DefaultTimeout }

func (c OpenChat) Validate() error  { return requireID(c.Endpoint(), "userId", c.UserID) }
func (c StartCall) Validate() error { return requireID(c.Endpoint(), "userId", c.UserID) }
func (c OpenGroup) Validate() error { return requireID(c.Endpoint(), "chatId", c.ChatID) }

func (c SendMessage) Validate() error {
	if err := requireID(c.Endpoint(), "userId", c.UserID); err != nil {
		return err
	}
	return requireString(c.Endpoint(), "text", c.Text)
}

func (c SendCode) Validate() error { return requireString(c.Endpoint(), "phone", c.Phone) }

func (c SignIn) Validate() error {
	if err := requireString(c.Endpoint(), "phone", c.Phone); err != nil {
		return err
	}
	return requireString(c.Endpoint(), "code", c.Code)
}

func (AcceptCall) Validate() error { return nil }
func (EndCall) Validate() error    { return nil }
func (GetState) Validate() error   { return nil }
func (PressBack) Validate() error  { return nil }
func (GoHome) Validate() error     { return nil }

func requireID(endpoint, field string, id int64) error {
	if id == 0 {
		return core.Newf(core.KindValidation, endpoint, "%s is required", field)
	}
	return nil
}

func requireString(endpoint, field, v string) error {
	if strings.TrimSpace(v) == "" {
		return core.Newf(core.KindValidation, endpoint, "%s is required", field)
	}
	return nil
}

// Catalog lists every command with its zero value, in endpoint order.
func Catalog() []Command {
	return []Command{
		OpenChat{}, SendMessage{}, StartCall{}, AcceptCall{}, EndCall{},
		GetState{}, OpenGroup{}, SendCode{}, SignIn{}, PressBack{}, GoHome{},
	}
}
