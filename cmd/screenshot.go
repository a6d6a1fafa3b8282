package cmd

import (
	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/platform"
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot [filename]",
	Short: "Capture the screen to a PNG file",
	Long: `Capture the device screen. Without a filename the file is named
android_YYYYMMDD_HHMMSS.png; relative names are placed in the screenshot
directory. Captures larger than the configured maximum dimension are
downscaled, keeping the aspect ratio.

With --annotate, clickable elements are outlined and labelled with their
tap coordinates, ready to pass to "android-cli tap".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutcome(func(cmd *cobra.Command, args []string, d *bridge.Dispatcher) bridge.Outcome {
		var opts platform.ScreenshotOptions
		if len(args) > 0 {
			opts.Filename = args[0]
		}
		opts.Annotate, _ = cmd.Flags().GetBool("annotate")
		return d.Screenshot(cmd.Context(), opts)
	}),
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().Bool("annotate", false, "Outline clickable elements and label their tap coordinates")
}
