package settings

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between the indented JSON forms of a and b.
// It returns "" when both render identically.
func Diff(a, b Value, fromName, toName string) (string, error) {
	before, err := MarshalIndent(a, "", "  ")
	if err != nil {
		return "", err
	}
	after, err := MarshalIndent(b, "", "  ")
	if err != nil {
		return "", err
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before) + "\n"),
		B:        difflib.SplitLines(string(after) + "\n"),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
}
