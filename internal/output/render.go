package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/skelly-dev/cnote/internal/fileutil"
	"github.com/skelly-dev/cnote/internal/scan"
)

// UseColor resolves a --color mode for w. "auto" colors terminals only.
func UseColor(mode string, w io.Writer) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		f, ok := w.(*os.File)
		if !ok || os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	default:
		return false, fmt.Errorf("unsupported color mode %q (supported: auto, always, never)", mode)
	}
}

// Printer renders reports to one writer.
type Printer struct {
	w      io.Writer
	path   *color.Color
	tag    *color.Color
	warn   *color.Color
	errorc *color.Color
	dim    *color.Color
}

// NewPrinter returns a printer writing to w, colored when enabled.
func NewPrinter(w io.Writer, enabled bool) *Printer {
	p := &Printer{
		w:      w,
		path:   color.New(color.FgCyan),
		tag:    color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		errorc: color.New(color.FgRed, color.Bold),
		dim:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.path, p.tag, p.warn, p.errorc, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Entries prints one line or record per entry.
func (p *Printer) Entries(report Report, format Format) error {
	switch format {
	case FormatJSON:
		return fileutil.PrintJSON(p.w, report)
	case FormatJSONL:
		return fileutil.WriteJSONL(p.w, report.Entries)
	}

	for _, entry := range report.Entries {
		tags := make([]string, 0, len(entry.Tags))
		for _, tag := range entry.Tags {
			tags = append(tags, p.tag.Sprint(tag))
		}
		if _, err := fmt.Fprintf(p.w, "%s  %s\n", p.path.Sprint(entry.Path), strings.Join(tags, " ")); err != nil {
			return err
		}
	}
	return p.unknown(report.Unknown)
}

// Tags prints each tag followed by the files carrying it.
func (p *Printer) Tags(report Report, format Format) error {
	switch format {
	case FormatJSON:
		return fileutil.PrintJSON(p.w, report)
	case FormatJSONL:
		return fileutil.WriteJSONL(p.w, report.Tags)
	}

	for _, tag := range report.Tags {
		if _, err := fmt.Fprintf(p.w, "%s %s\n", p.tag.Sprint(tag.Tag), p.dim.Sprintf("(%d)", len(tag.Entries))); err != nil {
			return err
		}
		for _, path := range tag.Entries {
			if _, err := fmt.Fprintf(p.w, "  %s\n", p.path.Sprint(path)); err != nil {
				return err
			}
		}
	}
	return p.unknown(report.Unknown)
}

func (p *Printer) unknown(tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "%s %s\n", p.warn.Sprint("unknown tags:"), strings.Join(tags, " "))
	return err
}

// Issues prints issues as "[severity] file: message".
func (p *Printer) Issues(issues []scan.Issue) {
	for _, issue := range issues {
		label := p.warn.Sprintf("[%s]", issue.Severity)
		if issue.Severity == scan.SeverityError {
			label = p.errorc.Sprintf("[%s]", issue.Severity)
		}
		fmt.Fprintf(p.w, "%s %s: %s\n", label, issue.File, issue.Message)
	}
}
