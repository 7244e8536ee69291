// Package diag turns compiler tips and errors into build diagnostics.
package diag

import (
	"regexp"
	"strings"

	"github.com/phobologic/templateloader/internal/compiler"
	"github.com/phobologic/templateloader/internal/model"
)

// Report holds the recoverable diagnostics of one compilation. Fatal
// problems are returned as errors by the loader and never end up here.
type Report struct {
	Warnings []string
	Error    string // aggregate error report, "" when the template compiled
}

// HasError reports whether the template failed to compile.
func (r Report) HasError() bool {
	return r.Error != ""
}

// Collect builds the report for result. Every tip becomes one warning; all
// errors are folded into a single report. When framer is non-nil and req
// asked for source ranges, each error is shown with a code frame.
func Collect(req *model.Request, result *model.Result, framer compiler.CodeFramer) Report {
	var r Report
	for _, tip := range result.Tips {
		r.Warnings = append(r.Warnings, tip.Message)
	}
	if len(result.Errors) == 0 {
		return r
	}

	if framer != nil && req.OutputSourceRange() {
		frames := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			start, end := 0, len(req.Source)
			if e.Range != nil {
				start, end = e.Range.Start, e.Range.End
			}
			frames[i] = "  " + e.Message + "\n\n" + Pad(framer.CodeFrame(req.Source, start, end))
		}
		r.Error = "\n\n  Errors compiling template:\n\n" + strings.Join(frames, "\n\n") + "\n"
		return r
	}

	source := result.Source
	if source == "" {
		source = req.Source
	}
	bullets := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		bullets[i] = "  - " + e.Message
	}
	r.Error = "\n  Error compiling template:\n" + Pad(source) + "\n" + strings.Join(bullets, "\n") + "\n"
	return r
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// Pad indents every line of source by two spaces.
func Pad(source string) string {
	lines := lineBreak.Split(source, -1)
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
