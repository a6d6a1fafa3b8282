package debugrpc

import (
	"encoding/json"
	"fmt"
)

// Result is the JSON object returned by the debug endpoint, passed through
// without interpretation. Local failures use the same {ok, error} shape.
type Result map[string]any

// Failure builds an {ok: false, error: msg} result.
func Failure(msg string) Result {
	return Result{"ok": false, "error": msg}
}

func unreachable(err error) Result {
	return Failure(fmt.Sprintf("Debug server unreachable: %v. Is the app running with debug mode?", err))
}

func invalidResponse() Result {
	return Failure("Invalid JSON response from debug server")
}

// OK reports the "ok" field. Results without one count as successful.
func (r Result) OK() bool {
	v, present := r["ok"]
	if !present {
		return true
	}
	ok, _ := v.(bool)
	return ok
}

// ErrorMessage returns the "error" field, if any.
func (r Result) ErrorMessage() string {
	s, _ := r["error"].(string)
	return s
}

// JSON renders the result indented by two spaces.
func (r Result) JSON() string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"ok": false, "error": %q}`, err.Error())
	}
	return string(b)
}
