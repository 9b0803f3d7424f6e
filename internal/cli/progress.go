package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

type parseProgressReporter struct {
	w       io.Writer
	enabled bool
	label   string
	start   time.Time
	spinner int
	lastLen int
}

// newParseProgressReporter draws on w only when w is a terminal.
func newParseProgressReporter(w io.Writer, label string) *parseProgressReporter {
	enabled := false
	if f, ok := w.(*os.File); ok {
		enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &parseProgressReporter{
		w:       w,
		enabled: enabled,
		label:   label,
		start:   time.Now(),
	}
}

func (r *parseProgressReporter) Update(file string, count int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	file = strings.TrimSpace(file)
	if len(file) > 88 {
		file = "..." + file[len(file)-85:]
	}
	r.printStatus(fmt.Sprintf("%s %s %d %s", frame, r.label, count, file))
}

func (r *parseProgressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s complete (%d files in %s)", r.label, count, elapsed))
	fmt.Fprintln(r.w)
}

func (r *parseProgressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.w, "\r%s", status)
}
