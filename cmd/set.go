package cmd

import (
	"fmt"

	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/egoavara/ovos-settings/internal/syncer"
	"github.com/spf13/cobra"
)

var (
	setType   string
	setDryRun bool
)

var setCmd = &cobra.Command{
	Use:   "set <skill> <path> <value>",
	Short: "Change one value",
	Long: `Store a value at a path of a skill's settings.

Without --type the value keeps the kind of what is already there, and new
paths default to string. Use --type json to write any JSON document.

Example:
  ovos-settings set ovos-skill-weather.openvoiceos units metric
  ovos-settings set skill-alarm.jarbas volume 7
  ovos-settings set skill-alarm.jarbas sounds --type json '["bell","chime"]'
  ovos-settings set skill-alarm.jarbas volume 9 --dry-run`,
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVarP(&setType, "type", "t", "", "string, number, boolean, null or json")
	setCmd.Flags().BoolVar(&setDryRun, "dry-run", false, "show the change without saving")
}

func runSet(cmd *cobra.Command, args []string) error {
	skill, raw := args[0], args[2]
	path, err := settings.ParsePath(args[1])
	if err != nil {
		return err
	}
	if len(path) == 0 {
		return fmt.Errorf("%w: use merge to replace top-level keys", settings.ErrInvalidPath)
	}

	s, err := openSkill(cmd.Context(), skill, false)
	if err != nil {
		return err
	}
	before, _ := s.Store().Get(skill)

	v, err := literalFor(before, path, setType, raw)
	if err != nil {
		return err
	}
	return applyAndReport(cmd, s, skill, before, syncer.Save{Path: path, Value: v}, setDryRun)
}

// literalFor parses raw as the requested type, or as the kind of the current
// value at path when no type is given
func literalFor(doc settings.Value, path settings.Path, typeName, raw string) (settings.Value, error) {
	kind := settings.KindString
	isJSON := false
	if typeName != "" {
		var err error
		if kind, isJSON, err = parseKind(typeName); err != nil {
			return settings.Value{}, err
		}
	} else if cur, err := settings.Read(doc, path); err == nil {
		kind = cur.Kind()
		if kind == settings.KindNull {
			// null leaves are edited as text
			kind = settings.KindString
		}
	}

	if isJSON || kind == settings.KindObject || kind == settings.KindArray {
		v, err := settings.Parse([]byte(raw))
		if err != nil {
			return settings.Value{}, fmt.Errorf("value is not valid JSON: %w", err)
		}
		if !isJSON && v.Kind() != kind {
			return settings.Value{}, fmt.Errorf("%w: expected %s, got %s", settings.ErrInvalidTarget, kind, v.Kind())
		}
		return v, nil
	}
	return settings.ParseLiteral(kind, raw)
}

// applyAndReport applies m locally, then either prints the diff and drops the
// write or persists it and prints the saved document
func applyAndReport(cmd *cobra.Command, s *syncer.Synchronizer, skill string, before settings.Value, m syncer.Mutation, dryRun bool) error {
	p, err := s.Apply(skill, m)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if dryRun {
		p.Discard()
		return printDiff(out, skill, before, p.Doc)
	}
	if err := p.Persist(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(out, successStyle.Sprintf("%s: %s", skill, m))
	return nil
}
