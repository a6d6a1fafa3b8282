package cmd

import (
	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/mj1618/android-cli/internal/model"
	"github.com/spf13/cobra"
)

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Tap the center of a UI element",
	Long: `Find the first element, in tree order, that matches every given predicate and
tap its center. At least one of --resource-id, --text, --desc, --class is required.

--resource-id is a case-sensitive substring match; the others ignore case.`,
	Example: `  android-cli click --resource-id chat_send
  android-cli click --text "Start messaging"
  android-cli click --desc "Open navigation menu" --class ImageButton`,
	Args: cobra.NoArgs,
	RunE: runOutcome(func(cmd *cobra.Command, _ []string, d *bridge.Dispatcher) bridge.Outcome {
		return d.Click(cmd.Context(), queryFromFlags(cmd, "text"))
	}),
}

func init() {
	rootCmd.AddCommand(clickCmd)
	addQueryFlags(clickCmd, "text", "Match on element text (case-insensitive substring)")
	clickCmd.Flags().String("class", "", "Match on widget class (case-insensitive substring)")
}

// addQueryFlags adds the element locator flags. textFlag names the flag
// that matches element text, since type uses --text for its input.
func addQueryFlags(cmd *cobra.Command, textFlag, textHelp string) {
	cmd.Flags().String("resource-id", "", "Match on resource-id (case-sensitive substring)")
	cmd.Flags().String(textFlag, "", textHelp)
	cmd.Flags().String("desc", "", "Match on content description (case-insensitive substring)")
}

func queryFromFlags(cmd *cobra.Command, textFlag string) model.Query {
	var q model.Query
	q.ResourceID, _ = cmd.Flags().GetString("resource-id")
	q.Text, _ = cmd.Flags().GetString(textFlag)
	q.ContentDesc, _ = cmd.Flags().GetString("desc")
	if cmd.Flags().Lookup("class") != nil {
		q.ClassName, _ = cmd.Flags().GetString("class")
	}
	return q
}
