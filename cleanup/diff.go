package cleanup

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns the unified diff turning before into after. It is empty
// when both are equal.
func Diff(filename string, before, after []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  3,
	})
}
