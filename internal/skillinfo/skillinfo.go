// Package skillinfo derives human readable names from OVOS skill ids such
// as "skill-weather.openvoiceos".
package skillinfo

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Info is the display form of a skill id
type Info struct {
	ID     string
	Name   string
	Author string
}

var prefixes = []string{"skill-", "ovos-skill-", "ovos-"}

var titler = cases.Title(language.Und, cases.NoLower)

// Parse splits a skill id into display name and author.
// The author is the last dot-separated part ("unknown" when there is none).
func Parse(id string) Info {
	author := "unknown"
	base := id
	if i := strings.LastIndex(id, "."); i >= 0 {
		author = id[i+1:]
		base = id[:i]
	}
	if base == "" {
		base = id
	}

	trimmed := base
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			trimmed = strings.TrimPrefix(trimmed, p)
			break
		}
	}

	words := strings.FieldsFunc(trimmed, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = titler.String(w)
	}
	name := strings.Join(words, " ")
	if strings.HasPrefix(base, "skill") {
		name += " Skill"
	}
	return Info{ID: id, Name: name, Author: author}
}

// Less orders by display name ignoring case, then by id
func Less(a, b Info) bool {
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if an != bn {
		return an < bn
	}
	return a.ID < b.ID
}

// Sort orders ids by display name, then by id
func Sort(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return Less(Parse(ids[i]), Parse(ids[j]))
	})
}
