package search

import (
	"testing"

	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/stretchr/testify/require"
)

func skills() []api.Skill {
	return []api.Skill{
		{ID: "skill-weather.openvoiceos", Settings: settings.MustParse(`{"units":"metric"}`)},
		{ID: "ovos-skill-date-time.openvoiceos", Settings: settings.MustParse(`{"__mycroft_skill_firstrun":false}`)},
		{ID: "skill-alarm.jarbas", Settings: settings.MustParse(`{}`)},
	}
}

func ids(rs []SearchResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Skill.ID
	}
	return out
}

func TestFuzzySearchEmptyQuerySortsByName(t *testing.T) {
	got := FuzzySearch(skills(), "  ")
	require.Equal(t, []string{
		"skill-alarm.jarbas",
		"ovos-skill-date-time.openvoiceos",
		"skill-weather.openvoiceos",
	}, ids(got))
}

func TestFuzzySearchMatchesNameAndAuthor(t *testing.T) {
	require.Equal(t, []string{"skill-weather.openvoiceos"}, ids(FuzzySearch(skills(), "Weather")))
	require.Equal(t, []string{"skill-alarm.jarbas"}, ids(FuzzySearch(skills(), "jarbas")))
	require.Empty(t, FuzzySearch(skills(), "zzz"))
}

func TestWithoutEmptyIgnoresHiddenKeys(t *testing.T) {
	got := WithoutEmpty(FuzzySearch(skills(), ""))
	require.Equal(t, []string{"skill-weather.openvoiceos"}, ids(got))
}
