package cmd

import (
	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/model"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the UI accessibility tree",
	Long: `Capture the UIAutomator hierarchy and print one line per widget with its
class, resource-id, text, content-desc, states and bounds.

Canvas-drawn views (Telegram's chat messages and dialog list) are not part
of the tree; use the rpc commands for them.

Every snapshot is kept as the baseline for --diff, which prints only the
widgets added, removed or changed since the previous snapshot.`,
	Args: cobra.NoArgs,
	RunE: runOutcome(func(cmd *cobra.Command, _ []string, d *bridge.Dispatcher) bridge.Outcome {
		if diff, _ := cmd.Flags().GetBool("diff"); diff {
			return d.SnapshotDiff(cmd.Context())
		}
		depth, _ := cmd.Flags().GetInt("depth")
		return d.Snapshot(cmd.Context(), depth)
	}),
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().Int("depth", model.DefaultRenderDepth, "Maximum tree depth (0 = root only)")
	snapshotCmd.Flags().Bool("diff", false, "Show changes since the previous snapshot instead of the full tree")
}
