package adb

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mj1618/android-cli/internal/model"
)

type fakeCall struct {
	args    []string
	timeout time.Duration
}

// fakeRunner records commands and answers them with handler.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []fakeCall
	handler func(args []string) (string, error)
	raw     []byte
	rawErr  error
}

func (f *fakeRunner) record(timeout time.Duration, args []string) func(args []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{args: append([]string(nil), args...), timeout: timeout})
	return f.handler
}

func (f *fakeRunner) Run(_ context.Context, timeout time.Duration, args ...string) (string, error) {
	h := f.record(timeout, args)
	if h == nil {
		return "", nil
	}
	return h(args)
}

func (f *fakeRunner) RunRaw(_ context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	f.record(timeout, args)
	return f.raw, f.rawErr
}

// commands returns each recorded call as a space-joined string.
func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = strings.Join(c.args, " ")
	}
	return out
}

type fakeSnapshotter struct {
	tree  *model.Tree
	ok    bool
	err   error
	calls int
}

func (f *fakeSnapshotter) Acquire(context.Context) (*model.Tree, bool, error) {
	f.calls++
	return f.tree, f.ok, f.err
}

// shellUnescape undoes one level of backslash escaping the way the device
// shell does for an unquoted word, then applies the %s to space rule of
// "input text".
func shellUnescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return strings.ReplaceAll(b.String(), "%s", " ")
}
