package emitter

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// diffContext is the number of unchanged lines around each hunk.
const diffContext = 3

// Diff returns a unified diff from oldCSS to newCSS, or "" when they are
// equal.
func Diff(name, oldCSS, newCSS string) string {
	if oldCSS == newCSS {
		return ""
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(oldCSS),
		B:        splitLinesKeepNL(newCSS),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  diffContext,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return s
}

// splitLinesKeepNL splits s into lines, keeping each "\n". A missing final
// newline is added so the last line diffs cleanly.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}
