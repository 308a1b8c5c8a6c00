package report

import (
	"fmt"
	"io"
	"time"
)

// BuildStats summarizes one build.
type BuildStats struct {
	Output          string
	FilesDiscovered int
	FilesScanned    int
	FilesSkipped    int // gitignored or unreadable
	FilesUnchanged  int // hash matched the snapshot
	Rules           int
	Diagnostics     int
	Bytes           int
	Elapsed         time.Duration
}

// VerboseReporter prints build statistics
type VerboseReporter struct {
	w         io.Writer
	useColors bool
}

// NewVerboseReporter creates a verbose reporter
func NewVerboseReporter(w io.Writer, useColors bool) *VerboseReporter {
	return &VerboseReporter{w: w, useColors: useColors}
}

// PrintStatistics outputs the build statistics block
func (r *VerboseReporter) PrintStatistics(s BuildStats) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, paint(styleHeading, "Build Statistics", r.useColors))
	fmt.Fprintln(r.w, "----------------")

	fmt.Fprintf(r.w, "Files Discovered:  %d\n", s.FilesDiscovered)
	fmt.Fprintf(r.w, "Files Scanned:     %d\n", s.FilesScanned)
	fmt.Fprintf(r.w, "Files Skipped:     %d\n", s.FilesSkipped)
	fmt.Fprintf(r.w, "Files Unchanged:   %d\n", s.FilesUnchanged)
	fmt.Fprintf(r.w, "Rules Emitted:     %d\n", s.Rules)
	fmt.Fprintf(r.w, "Diagnostics:       %d\n", s.Diagnostics)
	fmt.Fprintf(r.w, "Stylesheet Size:   %d bytes\n", s.Bytes)
	fmt.Fprintf(r.w, "Elapsed:           %s\n", s.Elapsed.Round(time.Millisecond))
}

// PrintWritten reports where the stylesheet went
func (r *VerboseReporter) PrintWritten(s BuildStats) {
	msg := fmt.Sprintf("Wrote %s (%s, %d bytes)", s.Output, pluralizeCount(s.Rules, "rule", "rules"), s.Bytes)
	fmt.Fprintln(r.w, paint(styleWritten, msg, r.useColors))
}
