package cmd

import (
	"fmt"

	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/spf13/cobra"
)

var mergeDryRun bool

var mergeCmd = &cobra.Command{
	Use:   "merge <skill> <json|@file|->",
	Short: "Merge a JSON object into a skill's settings",
	Long: `Merge a JSON object into the settings of a skill. Nested objects are
merged key by key, arrays gain the elements they do not have yet, and
everything else is replaced. The skill is created when it does not exist.

Example:
  ovos-settings merge skill-alarm.jarbas '{"volume": 5}'
  ovos-settings merge skill-alarm.jarbas @defaults.json
  cat defaults.json | ovos-settings merge skill-alarm.jarbas -`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "show the change without saving")
}

func runMerge(cmd *cobra.Command, args []string) error {
	skill := args[0]
	partial, err := readJSONArg(args[1], cmd.InOrStdin())
	if err != nil {
		return err
	}
	if partial.Kind() != settings.KindObject {
		return fmt.Errorf("%w: merge body must be an object", settings.ErrInvalidTarget)
	}

	s, err := openSkill(cmd.Context(), skill, true)
	if err != nil {
		return err
	}
	before, _ := s.Store().Get(skill)

	if mergeDryRun {
		return printDiff(cmd.OutOrStdout(), skill, before, settings.Merge(before, partial, true))
	}
	doc, err := s.Merge(cmd.Context(), skill, partial)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Sprintf("%s: merged", skill))
	return printJSON(cmd.OutOrStdout(), doc)
}
