package utilcss

import (
	"fmt"
	"sort"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic reports a token that looked like a utility but did not
// resolve. Diagnostics never fail a build.
type Diagnostic struct {
	Severity Severity
	Source   string // source identifier, usually a path
	Token    string
	Line     int // 1-based
	Column   int // 1-based
	LineText string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Source, d.Line, d.Column, d.Message)
}

func unknownUtility(source, token string, line, col int, text string) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Source:   source,
		Token:    token,
		Line:     line,
		Column:   col,
		LineText: text,
		Message:  fmt.Sprintf("unknown utility %q", token),
	}
}

func sortDiagnostics(ds []Diagnostic) {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Token < b.Token
	})
}
