package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/skelly-dev/cnote/internal/fileutil"
	"github.com/skelly-dev/cnote/internal/scan"
)

type CheckSummary struct {
	Mode     string       `json:"mode"`
	RunID    string       `json:"run_id"`
	Entries  int          `json:"entries"`
	Checked  int          `json:"checked"`
	Skipped  int          `json:"skipped"`
	Warnings int          `json:"warnings"`
	Issues   []scan.Issue `json:"issues,omitempty"`
}

func (s *CheckSummary) add(path, message string) {
	s.Warnings++
	s.Issues = append(s.Issues, scan.Issue{File: path, Severity: scan.SeverityWarning, Message: message})
}

type EditSummary struct {
	Mode     string   `json:"mode"`
	Path     string   `json:"path"`
	Manifest string   `json:"manifest"`
	Changed  []string `json:"changed"`
	Tags     []string `json:"tags"`
}

func PrintCheckSummary(w io.Writer, summary CheckSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}
	_, err := fmt.Fprintf(w, "%s: entries=%d checked=%d skipped=%d warnings=%d\n",
		summary.Mode, summary.Entries, summary.Checked, summary.Skipped, summary.Warnings)
	return err
}

func PrintEditSummary(w io.Writer, summary EditSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}
	tags := "(none)"
	if len(summary.Tags) > 0 {
		tags = strings.Join(summary.Tags, " ")
	}
	if _, err := fmt.Fprintf(w, "%s: %s #: %s\n", summary.Mode, summary.Path, tags); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "manifest: %s\n", summary.Manifest)
	return err
}
