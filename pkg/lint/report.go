package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/skilletlabs/skillet/pkg/skill"
)

// Finding is a single violation located in a specific file.
type Finding struct {
	Path string `json:"path"`
	skill.Violation
}

// Report is the outcome of one lint run.
type Report struct {
	RunID    string        `json:"run_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
	Files    int           `json:"files"`
	Findings []Finding     `json:"findings"`
}

// Errors counts error-severity findings.
func (r *Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == skill.SeverityError {
			n++
		}
	}
	return n
}

// Warnings counts warning-severity findings.
func (r *Report) Warnings() int {
	return len(r.Findings) - r.Errors()
}

// Failed reports whether the run should exit non-zero. Warnings only count
// in strict mode.
func (r *Report) Failed(strict bool) bool {
	if r.Errors() > 0 {
		return true
	}
	return strict && len(r.Findings) > 0
}

// WriteText renders the report for terminals, one line per finding grouped
// by file.
func (r *Report) WriteText(w io.Writer) error {
	errorColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	pathColor := color.New(color.Bold)

	lastPath := ""
	for _, f := range r.Findings {
		if f.Path != lastPath {
			if lastPath != "" {
				fmt.Fprintln(w)
			}
			pathColor.Fprintf(w, "%s\n", f.Path)
			lastPath = f.Path
		}

		severity := warnColor
		if f.Severity == skill.SeverityError {
			severity = errorColor
		}
		severity.Fprintf(w, "  %s", f.Severity)
		fmt.Fprintf(w, "  %s: %s (%s)\n", f.Field, f.Message, f.Rule)
	}

	if len(r.Findings) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d file(s) checked, %d error(s), %d warning(s)\n",
		r.Files, r.Errors(), r.Warnings())

	return nil
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	return nil
}
