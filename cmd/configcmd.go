package cmd

import (
	"fmt"

	"github.com/mj1618/android-cli/internal/config"
	"github.com/mj1618/android-cli/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Settings come from defaults, then the config file, then environment variables
(ADB_PATH, ANDROID_DEVICE, DEBUG_SERVER_PORT, ANDROID_SCREENSHOT_DIR,
ANDROID_SCREENSHOT_MAX_DIM, UIAUTOMATOR_DUMP_RETRIES, UIAUTOMATOR_DUMP_RETRY_DELAY,
ANDROID_CLI_LOG_LEVEL), then the --device and --adb flags.`,
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a config file with the default settings",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE:        runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.PrintYAML(cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}
	force, _ := cmd.Flags().GetBool("force")
	if err := config.WriteFile(path, config.DefaultConfig(), force); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
	return nil
}
