package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Config controls issue output.
type Config struct {
	UseColors        bool // force colors even without a TTY
	PrintIssuedLines bool // print the source line and a caret under each issue
	PrintLinterName  bool // print the "(utilcss)" suffix
	MaxIssues        int  // 0 = unlimited
}

// Reporter formats diagnostics in golangci-lint style
type Reporter struct {
	w               io.Writer
	useColors       bool
	printLines      bool
	printLinterName bool
	maxIssues       int
}

// NewReporter creates a reporter writing to w
func NewReporter(w io.Writer, config Config) *Reporter {
	return &Reporter{
		w:               w,
		useColors:       shouldUseColors(w, config),
		printLines:      config.PrintIssuedLines,
		printLinterName: config.PrintLinterName,
		maxIssues:       config.MaxIssues,
	}
}

// shouldUseColors determines if colors should be enabled
func shouldUseColors(w io.Writer, config Config) bool {
	if config.UseColors {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" || os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}
	if f, ok := w.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			return true
		}
	}
	return false
}

// PrintIssues sorts issues by position and prints them. It returns how many
// were left out because of MaxIssues.
func (r *Reporter) PrintIssues(issues []Issue) (truncated int) {
	sorted := append([]Issue(nil), issues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Pos, sorted[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	if r.maxIssues > 0 && len(sorted) > r.maxIssues {
		truncated = len(sorted) - r.maxIssues
		sorted = sorted[:r.maxIssues]
	}
	for _, issue := range sorted {
		r.printIssue(issue)
	}
	return truncated
}

// printIssue formats one issue: file:line:col: message (linter)
func (r *Reporter) printIssue(issue Issue) {
	location := fmt.Sprintf("%s:%d:%d:", issue.Pos.Filename, issue.Pos.Line, issue.Pos.Column)

	linterSuffix := ""
	if r.printLinterName {
		linter := issue.FromLinter
		if linter == "" {
			linter = LinterName
		}
		linterSuffix = fmt.Sprintf(" (%s)", linter)
	}

	fmt.Fprintf(r.w, "%s %s%s\n",
		paint(styleLocation, location, r.useColors),
		issue.Text,
		paint(styleLinter, linterSuffix, r.useColors))

	if r.printLines && len(issue.SourceLines) > 0 {
		for _, line := range issue.SourceLines {
			fmt.Fprintf(r.w, "\t%s\n", line)
		}
		caret := buildCaretIndicator(issue.SourceLines[0], issue.Pos.Column)
		fmt.Fprintf(r.w, "\t%s\n", paint(severityStyle(issue.Severity), caret, r.useColors))
	}
}

// buildCaretIndicator aligns "^" under column, copying tabs from the
// source line so it lines up regardless of tab width.
func buildCaretIndicator(sourceLine string, column int) string {
	if column <= 0 {
		return "^"
	}

	prefixLen := column - 1
	if prefixLen > len(sourceLine) {
		prefixLen = len(sourceLine)
	}

	var padding strings.Builder
	for _, ch := range sourceLine[:prefixLen] {
		if ch == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}
	return padding.String() + "^"
}

// PrintSummary prints the issue count with a severity breakdown.
func (r *Reporter) PrintSummary(issues []Issue, truncated int) {
	var errs, warnings int
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warnings++
		}
	}

	fmt.Fprintln(r.w, "")

	head := pluralizeCount(len(issues), "issue", "issues")
	var parts []string
	if errs > 0 && warnings > 0 {
		parts = append(parts,
			pluralizeCount(errs, "error", "errors"),
			pluralizeCount(warnings, "warning", "warnings"))
	}
	if truncated > 0 {
		parts = append(parts, pluralizeCount(truncated, "issue", "issues")+" truncated")
	}
	if len(parts) > 0 {
		head += " (" + strings.Join(parts, ", ") + ")"
	}
	fmt.Fprintf(r.w, "%s\n", head)
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// UseColors reports whether colors are enabled.
func (r *Reporter) UseColors() bool {
	return r.useColors
}
