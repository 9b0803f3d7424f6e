package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/cnote/internal/output"
	"github.com/skelly-dev/cnote/internal/registry"
	"github.com/skelly-dev/cnote/internal/scan"
)

// listing is a parsed ls/tags invocation.
type listing struct {
	env     *runtimeEnv
	req     indexRequest
	narrow  []string
	format  output.Format
	display output.PathFunc
}

func newListing(cmd *cobra.Command, args []string) (*listing, error) {
	env, err := loadEnv(cmd)
	if err != nil {
		return nil, err
	}

	tags, err := ParseTagFlag(cmd, env.cfg.DefaultTags)
	if err != nil {
		return nil, err
	}
	all, err := OptionalBoolFlag(cmd, "all")
	if err != nil {
		return nil, err
	}
	recursive, err := env.recursive(cmd)
	if err != nil {
		return nil, err
	}
	format, err := ParseOutputFormat(cmd, env.cfg.Format)
	if err != nil {
		return nil, err
	}
	display, err := env.displayPath(cmd)
	if err != nil {
		return nil, err
	}

	l := &listing{
		env: env,
		req: indexRequest{
			paths:     args,
			filter:    registry.NewFilter(tags...),
			recursive: recursive,
			progress:  format == output.FormatText,
		},
		format:  format,
		display: display,
	}
	// The OR filter applied while scanning keeps every file the AND view shows.
	if all {
		l.narrow = tags
	}
	return l, nil
}

func (l *listing) run(render func(*output.Printer, output.Report, output.Format) error) error {
	res, err := l.env.index(l.req)
	if err != nil {
		return err
	}
	report := output.FromScan(res, l.req.filter, l.narrow, l.display)
	if err := render(l.env.printer, report, l.format); err != nil {
		return fmt.Errorf("failed to write listing: %w", err)
	}
	if l.format != output.FormatJSON {
		l.env.stderr.Issues(res.Issues)
	}
	return issueError(res)
}

func RunList(cmd *cobra.Command, args []string) error {
	l, err := newListing(cmd, args)
	if err != nil {
		return err
	}
	defer l.env.close()

	watch, err := OptionalBoolFlag(cmd, "watch")
	if err != nil {
		return err
	}
	if watch {
		return l.watch(cmd.Context(), nil)
	}
	return l.run((*output.Printer).Entries)
}

func RunTags(cmd *cobra.Command, args []string) error {
	l, err := newListing(cmd, args)
	if err != nil {
		return err
	}
	defer l.env.close()
	return l.run((*output.Printer).Tags)
}

// issueError fails the command when a manifest could not be read.
func issueError(res *scan.Result) error {
	count := 0
	for _, issue := range res.Issues {
		if issue.Severity == scan.SeverityError {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return fmt.Errorf("%d manifest error(s) during indexing", count)
}
