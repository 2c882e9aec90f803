package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/export"
	"github.com/egoavara/ovos-settings/internal/i18n"
	"github.com/egoavara/ovos-settings/internal/skillinfo"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	exportMatch  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Save every skill's settings to one file",
	Long: `Write the settings of all skills to a JSON, YAML or TOML file. Runtime
keys are left out. TOML has no null, so null values are dropped there.

Use --output - to write to stdout.

Example:
  ovos-settings export
  ovos-settings export --format yaml --output backup.yaml
  ovos-settings export --match 'ovos-skill-*' -o -`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json, yaml or toml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default skill-settings.<format>)")
	exportCmd.Flags().StringVarP(&exportMatch, "match", "m", "", "glob over skill ids")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	if exportMatch != "" && !doublestar.ValidatePattern(exportMatch) {
		return fmt.Errorf("invalid --match pattern %q", exportMatch)
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	skills, err := client.ListSkills(cmd.Context())
	if err != nil {
		return err
	}

	byID := make(map[string]api.Skill, len(skills))
	ids := make([]string, 0, len(skills))
	for _, s := range skills {
		if exportMatch != "" {
			if ok, _ := doublestar.Match(exportMatch, s.ID); !ok {
				continue
			}
		}
		s.Settings, _ = api.StripHidden(s.Settings)
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	skillinfo.Sort(ids)
	selected := make([]api.Skill, 0, len(ids))
	for _, id := range ids {
		selected = append(selected, byID[id])
	}

	var w io.Writer
	target := exportOutput
	switch target {
	case "-":
		w = cmd.OutOrStdout()
	case "":
		target = format.FileName()
		fallthrough
	default:
		f, err := os.Create(target)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, selected, format); err != nil {
		return err
	}
	if target != "-" {
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Sprint(i18n.T("export.done", map[string]any{
			"Count": len(selected),
			"Path":  target,
		}, len(selected))))
	}
	return nil
}
