package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mj1618/android-cli/internal/config"
	"github.com/mj1618/android-cli/internal/logging"
	"github.com/mj1618/android-cli/internal/output"
	"github.com/mj1618/android-cli/internal/version"
	"github.com/spf13/cobra"

	// Registers the adb backend with platform.NewProviderFunc.
	_ "github.com/mj1618/android-cli/internal/platform/adb"
)

// skipConfigAnnotation marks commands that must run without loading the
// config file, such as writing a fresh one.
const skipConfigAnnotation = "skip-config"

// cfg is the effective configuration, loaded before any subcommand runs.
var cfg = config.DefaultConfig()

// errReported means the command already printed its failure.
var errReported = errors.New("command failed")

var rootCmd = &cobra.Command{
	Use:   "android-cli",
	Short: "Drive an Android device for app testing",
	Long: `A CLI and MCP server that lets AI agents read and drive an Android device.

Two layers:
  structural   UIAutomator accessibility tree plus adb input (snapshot, click, type, ...)
  semantic     the app's debug HTTP endpoint for high-level commands (rpc ...)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		logging.Sync()
		os.Exit(1)
	}
	logging.Sync()
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/android-cli/config.yaml)")
	rootCmd.PersistentFlags().String("device", "", "Device serial (overrides config and ANDROID_DEVICE)")
	rootCmd.PersistentFlags().String("adb", "", "Path to the adb executable (overrides config and ADB_PATH)")
	rootCmd.PersistentFlags().String("format", "text", "Output format: text, yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (logs go to stderr)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		if cmd.Annotations[skipConfigAnnotation] == "" {
			path, _ := rootCmd.PersistentFlags().GetString("config")
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		applyFlagOverrides()

		if err := logging.Init(cfg.LoggingOptions()); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		return nil
	}
}

// applyFlagOverrides lets persistent flags win over file and environment.
func applyFlagOverrides() {
	flags := rootCmd.PersistentFlags()
	if flags.Changed("device") {
		cfg.Device, _ = flags.GetString("device")
	}
	if flags.Changed("adb") {
		cfg.ADBPath, _ = flags.GetString("adb")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
}
