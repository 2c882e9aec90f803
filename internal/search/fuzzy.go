package search

import (
	"sort"
	"strings"

	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/skillinfo"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a search result
type SearchResult struct {
	Skill api.Skill
	Info  skillinfo.Info
	Score int // Higher is better
}

// SkillSearchable wraps skills for fuzzy searching
type SkillSearchable struct {
	Skills []api.Skill
	infos  []skillinfo.Info
}

// NewSkillSearchable precomputes display names for skills
func NewSkillSearchable(skills []api.Skill) SkillSearchable {
	infos := make([]skillinfo.Info, len(skills))
	for i, s := range skills {
		infos[i] = skillinfo.Parse(s.ID)
	}
	return SkillSearchable{Skills: skills, infos: infos}
}

// String returns the searchable string for a skill: id, display name and
// author
func (s SkillSearchable) String(i int) string {
	info := s.infos[i]
	return strings.ToLower(strings.Join([]string{info.ID, info.Name, info.Author}, " "))
}

// Len returns the number of skills
func (s SkillSearchable) Len() int {
	return len(s.Skills)
}

// FuzzySearch ranks skills against query. An empty query keeps every skill in
// display-name order.
func FuzzySearch(skills []api.Skill, query string) []SearchResult {
	searchable := NewSkillSearchable(skills)

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		results := make([]SearchResult, len(skills))
		for i, s := range skills {
			results[i] = SearchResult{Skill: s, Info: searchable.infos[i]}
		}
		sort.SliceStable(results, func(i, j int) bool {
			return skillinfo.Less(results[i].Info, results[j].Info)
		})
		return results
	}

	matches := fuzzy.FindFrom(query, searchable)

	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, SearchResult{
			Skill: skills[match.Index],
			Info:  searchable.infos[match.Index],
			Score: match.Score,
		})
	}

	// Sort by score (descending)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// HasSettings reports whether a skill has at least one visible setting
func HasSettings(s api.Skill) bool {
	visible, _ := api.StripHidden(s.Settings)
	return visible.Len() > 0
}

// WithoutEmpty drops results whose skill has no visible settings
func WithoutEmpty(results []SearchResult) []SearchResult {
	out := results[:0:0]
	for _, r := range results {
		if HasSettings(r.Skill) {
			out = append(out, r)
		}
	}
	return out
}
