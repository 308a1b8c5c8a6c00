// Package report prints diagnostics and build statistics for the CLI in
// golangci-lint style.
package report

// LinterName is the suffix printed after each issue.
const LinterName = "utilcss"

// Issue is a single diagnostic ready for printing
type Issue struct {
	FromLinter  string   `json:"FromLinter"`  // "utilcss"
	Text        string   `json:"Text"`        // "unknown utility \"foo-bar-123\""
	Severity    string   `json:"Severity"`    // "warning" or "error"
	SourceLines []string `json:"SourceLines"` // Line the token appears on
	Pos         Pos      `json:"Pos"`
}

// Pos is the location of an issue
type Pos struct {
	Filename string `json:"Filename"` // "templates/index.html"
	Line     int    `json:"Line"`     // 1-based
	Column   int    `json:"Column"`   // 1-based, start of the token
}

// Severity values
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)
