package cmd

import (
	"fmt"

	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/spf13/cobra"
)

var (
	getRaw        bool
	getShowHidden bool
)

var getCmd = &cobra.Command{
	Use:   "get <skill> [path]",
	Short: "Print a skill's settings or one value",
	Long: `Print the settings document of a skill, or the value at a path.

Paths use dots for object keys and [i] for array elements, for example
"location.city" or "alarms[0].time".

Example:
  ovos-settings get ovos-skill-weather.openvoiceos
  ovos-settings get ovos-skill-weather.openvoiceos units
  ovos-settings get skill-alarm.jarbas 'alarms[0].time' --raw`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().BoolVarP(&getRaw, "raw", "r", false, "print primitives without JSON quoting")
	getCmd.Flags().BoolVar(&getShowHidden, "show-hidden", false, "include runtime-internal keys")
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	var path settings.Path
	if len(args) > 1 {
		if path, err = settings.ParsePath(args[1]); err != nil {
			return err
		}
	}

	var v settings.Value
	switch {
	case len(path) == 1 && !path[0].IsIndex():
		// top-level keys have their own endpoint, which answers null when absent
		setting, err := client.GetSetting(cmd.Context(), args[0], path[0].Key())
		if err != nil {
			return err
		}
		v = setting.Value
	default:
		skill, err := client.GetSkill(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		doc := skill.Settings
		if !getShowHidden {
			doc, _ = api.StripHidden(doc)
		}
		if v, err = settings.Read(doc, path); err != nil {
			return err
		}
	}

	if getRaw && !v.IsComposite() {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), settings.Text(v))
		return err
	}
	return printJSON(cmd.OutOrStdout(), v)
}
