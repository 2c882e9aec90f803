package cmd

import (
	"errors"

	"github.com/egoavara/ovos-settings/internal/editor"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/egoavara/ovos-settings/internal/syncer"
	"github.com/spf13/cobra"
)

var (
	addKey    string
	addType   string
	addDryRun bool
)

var errJSONAdd = errors.New("add creates one typed entry; use set --type json or merge for JSON documents")

var addCmd = &cobra.Command{
	Use:   "add <skill> <parent> [value]",
	Short: "Add a new entry under an object or array",
	Long: `Add a new entry to the object or array at <parent>. Use "." for the
settings root.

Objects need --key and reject keys that already exist. Arrays always
append. Objects and arrays are created empty.

Example:
  ovos-settings add skill-alarm.jarbas . snooze --key snooze_minutes --type number
  ovos-settings add skill-alarm.jarbas sounds chime
  ovos-settings add skill-alarm.jarbas . --key extra --type object`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addKey, "key", "k", "", "key of the new entry (objects only)")
	addCmd.Flags().StringVarP(&addType, "type", "t", "string", "string, number, boolean, object, array or null")
	addCmd.Flags().BoolVar(&addDryRun, "dry-run", false, "show the change without saving")
}

func runAdd(cmd *cobra.Command, args []string) error {
	skill := args[0]
	var parent settings.Path
	if args[1] != "." {
		var err error
		if parent, err = settings.ParsePath(args[1]); err != nil {
			return err
		}
	}

	kind, isJSON, err := parseKind(addType)
	if err != nil {
		return err
	}
	if isJSON {
		return errJSONAdd
	}

	draft := editor.NewDraft()
	draft.SetType(kind)
	draft.Key = addKey
	if len(args) > 2 {
		draft.Raw = args[2]
	}

	s, err := openSkill(cmd.Context(), skill, false)
	if err != nil {
		return err
	}
	before, _ := s.Store().Get(skill)
	return applyAndReport(cmd, s, skill, before, syncer.Add{Parent: parent, Draft: draft}, addDryRun)
}
