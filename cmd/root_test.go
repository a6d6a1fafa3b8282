package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/config"
	"github.com/mj1618/android-cli/internal/output"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{
		"serve", "snapshot", "click", "type", "tap", "swipe", "key", "screenshot",
		"logcat", "install", "launch", "device-info", "devices", "rpc", "config",
	}
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRPCCommand_HasSubcommands(t *testing.T) {
	expected := []string{
		"open-chat", "send-message", "start-call", "accept-call", "end-call",
		"state", "open-group", "send-code", "sign-in", "back", "home",
	}
	found := make(map[string]bool)
	for _, c := range rpcCmd.Commands() {
		found[c.Name()] = true
	}
	if len(found) != len(expected) {
		t.Errorf("expected %d rpc subcommands, got %d", len(expected), len(found))
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected rpc subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestParseInts(t *testing.T) {
	vals, err := parseInts([]string{"X", "Y"}, []string{"540", "-3"})
	if err != nil {
		t.Fatal(err)
	}
	if vals[0] != 540 || vals[1] != -3 {
		t.Errorf("got %v", vals)
	}
	if _, err := parseInts([]string{"X", "Y"}, []string{"1", "two"}); err == nil || err.Error() != `Y must be an integer, got "two"` {
		t.Errorf("got %v", err)
	}
}

func TestEmit_FailedOutcome(t *testing.T) {
	old := output.OutputFormat
	output.OutputFormat = output.FormatText
	defer func() { output.OutputFormat = old }()

	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer devnull.Close()
	stdout := os.Stdout
	os.Stdout = devnull
	defer func() { os.Stdout = stdout }()

	if err := emit(bridge.Outcome{Text: "Tapped at (1, 2)."}); err != nil {
		t.Errorf("success: %v", err)
	}
	err = emit(bridge.Outcome{Text: "ERROR: Element has no bounds.", Err: errors.New("no bounds")})
	if !errors.Is(err, errReported) {
		t.Errorf("failure: %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "android-cli", "config.yaml")
	rootCmd.SetArgs([]string{"config", "init", "--config", path})
	rootCmd.SetOut(new(discard))
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.PersistentFlags().Set("config", "")
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DebugServerPort != config.DefaultConfig().DebugServerPort {
		t.Errorf("port: got %d", loaded.DebugServerPort)
	}
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
