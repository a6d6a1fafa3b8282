package cmd

import (
	"github.com/mj1618/android-cli/internal/bridge"
	"github.com/spf13/cobra"
)

var typeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Replace the content of a text field",
	Long: `Clear the focused field and type text into it. With --resource-id, --element-text
or --desc the matching field is tapped first. Text can be passed as a positional
argument or via --text; an empty text only clears the field.`,
	Example: `  android-cli type "hello world"
  android-cli type --resource-id chat_input "See you at 5 & bring snacks"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutcome(func(cmd *cobra.Command, args []string, d *bridge.Dispatcher) bridge.Outcome {
		text, _ := cmd.Flags().GetString("text")
		// Positional arg overrides --text flag
		if len(args) > 0 {
			text = args[0]
		}
		return d.TypeText(cmd.Context(), text, queryFromFlags(cmd, "element-text"))
	}),
}

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.Flags().String("text", "", "Text to type (alternative to positional arg)")
	addQueryFlags(typeCmd, "element-text", "Find the field by its current text and tap it first")
}
