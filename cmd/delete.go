package cmd

import (
	"fmt"

	"github.com/egoavara/ovos-settings/internal/editor"
	"github.com/egoavara/ovos-settings/internal/i18n"
	"github.com/egoavara/ovos-settings/internal/prompt"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/egoavara/ovos-settings/internal/syncer"
	"github.com/spf13/cobra"
)

var (
	deleteYes    bool
	deleteDryRun bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete <skill> <path>",
	Aliases: []string{"rm"},
	Short:   "Delete one value",
	Long: `Delete the value at a path. Array elements after it move up by one.

Example:
  ovos-settings delete skill-alarm.jarbas 'sounds[1]'
  ovos-settings delete skill-alarm.jarbas extra --yes`,
	Args: cobra.ExactArgs(2),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")
	deleteCmd.Flags().BoolVar(&deleteDryRun, "dry-run", false, "show the change without saving")
}

func runDelete(cmd *cobra.Command, args []string) error {
	skill := args[0]
	path, err := settings.ParsePath(args[1])
	if err != nil {
		return err
	}

	s, err := openSkill(cmd.Context(), skill, false)
	if err != nil {
		return err
	}
	before, _ := s.Store().Get(skill)
	v, err := settings.Read(before, path)
	if err != nil {
		return err
	}

	parent := editor.ParentNone
	if last, ok := path.Last(); ok {
		parent = editor.ParentObject
		if last.IsIndex() {
			parent = editor.ParentArray
		}
	}
	node := editor.NewNode(path, v, parent)

	p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
	intent, ok, err := node.Delete(func(path settings.Path) bool {
		if deleteYes || deleteDryRun {
			return true
		}
		return p.Confirm(i18n.T("delete.question", map[string]any{"Path": path.String()}), false)
	})
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Sprint(i18n.T("delete.cancelled", nil)))
		return nil
	}

	m, err := syncer.FromIntent(intent)
	if err != nil {
		return err
	}
	return applyAndReport(cmd, s, skill, before, m, deleteDryRun)
}
