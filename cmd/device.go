package cmd

import (
	"fmt"

	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/output"
	"github.com/mj1618/android-cli/internal/platform"
	"github.com/mj1618/android-cli/internal/platform/adb"
	"github.com/spf13/cobra"
)

var logcatCmd = &cobra.Command{
	Use:   "logcat",
	Short: "Print recent log lines",
	Args:  cobra.NoArgs,
	RunE: runOutcome(func(cmd *cobra.Command, _ []string, d *bridge.Dispatcher) bridge.Outcome {
		tag, _ := cmd.Flags().GetString("tag")
		lines, _ := cmd.Flags().GetInt("lines")
		level, _ := cmd.Flags().GetString("level")
		return d.Logcat(cmd.Context(), tag, lines, level)
	}),
}

var installCmd = &cobra.Command{
	Use:   "install APK",
	Short: "Install an APK, replacing any existing version",
	Args:  cobra.ExactArgs(1),
	RunE: runOutcome(func(cmd *cobra.Command, args []string, d *bridge.Dispatcher) bridge.Outcome {
		return d.Install(cmd.Context(), args[0])
	}),
}

var launchCmd = &cobra.Command{
	Use:     "launch PACKAGE",
	Short:   "Launch an app",
	Example: "  android-cli launch org.telegram.messenger --activity org.telegram.ui.LaunchActivity",
	Args:    cobra.ExactArgs(1),
	RunE: runOutcome(func(cmd *cobra.Command, args []string, d *bridge.Dispatcher) bridge.Outcome {
		activity, _ := cmd.Flags().GetString("activity")
		return d.Launch(cmd.Context(), platform.LaunchOptions{Package: args[0], Activity: activity})
	}),
}

var deviceInfoCmd = &cobra.Command{
	Use:   "device-info",
	Short: "Show model, SDK, ABI and screen of the device",
	Args:  cobra.NoArgs,
	RunE: runOutcome(func(cmd *cobra.Command, _ []string, d *bridge.Dispatcher) bridge.Outcome {
		return d.DeviceInfo(cmd.Context())
	}),
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices attached to adb",
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(logcatCmd, installCmd, launchCmd, deviceInfoCmd, devicesCmd)
	logcatCmd.Flags().String("tag", "", "Only lines with this tag")
	logcatCmd.Flags().Int("lines", platform.DefaultLogcatLines, "Number of recent lines")
	logcatCmd.Flags().String("level", "V", "Minimum level: V, D, I, W, E, F")
	launchCmd.Flags().String("activity", "", "Activity to start (default: the launcher activity)")
}

func runDevices(cmd *cobra.Command, args []string) error {
	devices, err := adb.ListDevices(cmd.Context(), cfg.ADBPath, cfg.Timeouts.Command)
	if err != nil {
		return err
	}
	if output.OutputFormat != output.FormatText {
		return output.Print(devices)
	}
	if len(devices) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No devices attached.")
		return nil
	}
	for _, d := range devices {
		marker := " "
		if d.Serial == cfg.Device {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s\t%s", marker, d.Serial, d.State)
		if d.Model != "" {
			line += "\t" + d.Model
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
