package cmd

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/config"
	"github.com/egoavara/ovos-settings/internal/i18n"
	"github.com/egoavara/ovos-settings/internal/search"
	"github.com/spf13/cobra"
)

var (
	listMatch     string
	listHideEmpty bool
)

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List skills and their settings count",
	Long: `List the skills known to the backend.

A query fuzzy-matches skill names and authors. --match filters skill ids
with a glob.

Example:
  ovos-settings list
  ovos-settings list weather
  ovos-settings list --match 'ovos-skill-*' --hide-empty`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listMatch, "match", "m", "", "glob over skill ids")
	listCmd.Flags().BoolVar(&listHideEmpty, "hide-empty", false, "hide skills without visible settings (default from config)")
}

func runList(cmd *cobra.Command, args []string) error {
	if listMatch != "" && !doublestar.ValidatePattern(listMatch) {
		return fmt.Errorf("invalid --match pattern %q", listMatch)
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	skills, err := client.ListSkills(cmd.Context())
	if err != nil {
		return err
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	results := search.FuzzySearch(skills, query)

	hideEmpty := listHideEmpty
	if !cmd.Flags().Changed("hide-empty") {
		hideEmpty = config.Get().HideEmpty
	}
	if hideEmpty {
		results = search.WithoutEmpty(results)
	}
	if listMatch != "" {
		kept := results[:0]
		for _, r := range results {
			if ok, _ := doublestar.Match(listMatch, r.Skill.ID); ok {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, boldStyle.Sprint(i18n.T("skills.header", map[string]any{"Count": len(results)}, len(results))))
	fmt.Fprintln(out, strings.Repeat("-", 40))
	if len(results) == 0 {
		fmt.Fprintln(out, i18n.T("skills.empty", nil))
		return nil
	}

	for _, r := range results {
		visible, _ := api.StripHidden(r.Skill.Settings)
		count := visible.Len()
		fmt.Fprintf(out, "  %s\n", infoStyle.Sprint(r.Info.Name))
		fmt.Fprintf(out, "    id:       %s\n", r.Skill.ID)
		if r.Info.Author != "" {
			fmt.Fprintf(out, "    author:   %s\n", r.Info.Author)
		}
		fmt.Fprintf(out, "    settings: %s\n", i18n.T("skills.count", map[string]any{"Count": count}, count))
	}
	return nil
}
