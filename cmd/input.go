package cmd

import (
	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/platform"
	"github.com/spf13/cobra"
)

var tapCmd = &cobra.Command{
	Use:   "tap X Y",
	Short: "Tap at screen coordinates",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		xy, err := parseInts([]string{"X", "Y"}, args)
		if err != nil {
			return err
		}
		return runOutcome(func(cmd *cobra.Command, _ []string, d *bridge.Dispatcher) bridge.Outcome {
			return d.Tap(cmd.Context(), int(xy[0]), int(xy[1]))
		})(cmd, args)
	},
}

var swipeCmd = &cobra.Command{
	Use:     "swipe X1 Y1 X2 Y2",
	Short:   "Swipe between two points",
	Example: "  android-cli swipe 540 1800 540 600 --duration 500ms",
	Args:    cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parseInts([]string{"X1", "Y1", "X2", "Y2"}, args)
		if err != nil {
			return err
		}
		duration, _ := cmd.Flags().GetDuration("duration")
		return runOutcome(func(cmd *cobra.Command, _ []string, d *bridge.Dispatcher) bridge.Outcome {
			return d.Swipe(cmd.Context(), platform.SwipeOptions{
				X1: int(p[0]), Y1: int(p[1]), X2: int(p[2]), Y2: int(p[3]),
				Duration: duration,
			})
		})(cmd, args)
	},
}

var keyCmd = &cobra.Command{
	Use:   "key KEY",
	Short: "Press a key",
	Long: `Send a key event. KEY is a keycode name with or without the KEYCODE_ prefix
(BACK, HOME, ENTER, TAB, DEL, VOLUME_UP, APP_SWITCH, ...) or a numeric code.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutcome(func(cmd *cobra.Command, args []string, d *bridge.Dispatcher) bridge.Outcome {
		return d.PressKey(cmd.Context(), args[0])
	}),
}

func init() {
	rootCmd.AddCommand(tapCmd, swipeCmd, keyCmd)
	swipeCmd.Flags().Duration("duration", platform.DefaultSwipeDuration, "Swipe duration")
}
