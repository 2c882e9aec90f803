package cmd

import (
	"fmt"

	"github.com/egoavara/ovos-settings/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ovos-settings preferences",
	Long: `Manage local ovos-settings preferences.

Example:
  ovos-settings config show
  ovos-settings config set server http://mycroft.local:8000`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Available keys:
  locale     - Language setting
               Values: auto, en-US, ko-KR, etc.
  server     - Settings backend url
  theme      - Editor colors
               Values: dark, light
  hideEmpty  - Hide skills without settings
               Values: true, false
  logLevel   - Values: debug, info, warn, error

Example:
  ovos-settings config set locale ko-KR
  ovos-settings config set theme light`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE:      runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintln(out, "----------------------------------------")
	fmt.Fprintf(out, "  locale:    %s\n", cfg.Locale)
	fmt.Fprintf(out, "  server:    %s\n", cfg.Server)
	fmt.Fprintf(out, "  theme:     %s\n", cfg.Theme)
	fmt.Fprintf(out, "  hideEmpty: %t\n", cfg.HideEmpty)
	fmt.Fprintf(out, "  logLevel:  %s\n", cfg.LogLevel)

	fmt.Fprintln(out)
	if cfg.AuthHeader != "" {
		fmt.Fprintln(out, successStyle.Sprint("  logged in"))
	} else {
		fmt.Fprintln(out, warnStyle.Sprint("  not logged in"))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg := config.Get()
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	if key == "locale" {
		fmt.Fprintf(cmd.OutOrStdout(), "Locale set to '%s'. Restart ovos-settings to apply.\n", value)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to '%s'\n", key, value)
	return nil
}
