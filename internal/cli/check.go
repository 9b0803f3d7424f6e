package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skelly-dev/cnote/internal/extract"
	"github.com/skelly-dev/cnote/internal/languages"
	"github.com/skelly-dev/cnote/internal/registry"
	"github.com/skelly-dev/cnote/internal/scan"
)

func RunCheck(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	recursive, err := env.recursive(cmd)
	if err != nil {
		return err
	}
	strict, err := OptionalBoolFlag(cmd, "strict")
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	display, err := env.displayPath(cmd)
	if err != nil {
		return err
	}

	res, err := env.index(indexRequest{paths: args, recursive: recursive, progress: !asJSON})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	summary := CheckEntries(ctx, res, env.extractor(), languages.NewDefaultRegistry(), env.logger)
	if display != nil {
		for i := range summary.Issues {
			summary.Issues[i].File = display(summary.Issues[i].File)
		}
	}

	if err := PrintCheckSummary(env.out, summary, asJSON); err != nil {
		return err
	}
	if !asJSON {
		env.stderr.Issues(summary.Issues)
	}

	if err := issueError(res); err != nil {
		return err
	}
	if strict && summary.Warnings > 0 {
		return fmt.Errorf("check found %d warning(s)", summary.Warnings)
	}
	return nil
}

// CheckEntries verifies, for every indexed file with a known grammar,
// that the line declaring its tags is a comment. Files tagged only by a
// manifest are skipped.
func CheckEntries(ctx context.Context, res *scan.Result, x *extract.Extractor, langs *languages.Registry, logger *zap.Logger) CheckSummary {
	summary := CheckSummary{
		Mode:    "check",
		RunID:   res.RunID,
		Entries: res.Registry.EntryCount(),
		Issues:  append([]scan.Issue{}, res.Issues...),
	}
	for _, issue := range res.Issues {
		if issue.Severity == scan.SeverityWarning {
			summary.Warnings++
		}
	}

	for _, entry := range res.Registry.Entries() {
		finding, ok, err := checkEntry(ctx, entry, x, langs)
		if !ok {
			summary.Skipped++
			continue
		}
		summary.Checked++
		if err != nil {
			summary.add(entry.Path, err.Error())
			continue
		}
		logger.Debug("checked tag line",
			zap.String("path", entry.Path),
			zap.String("language", finding.Language),
			zap.String("node", finding.Node),
			zap.Bool("in_comment", finding.InComment))
		if !finding.InComment {
			summary.add(entry.Path, fmt.Sprintf("tag line %d is not inside a %s comment (found %s)", finding.Line+1, finding.Language, finding.Node))
		}
	}
	return summary
}

func checkEntry(ctx context.Context, entry *registry.Entry, x *extract.Extractor, langs *languages.Registry) (languages.Finding, bool, error) {
	if _, ok := langs.ForFile(entry.Path); !ok {
		return languages.Finding{}, false, nil
	}
	located, err := x.FileTags(entry.Path)
	if err != nil {
		return languages.Finding{}, true, err
	}
	if located.Line < 0 {
		return languages.Finding{}, false, nil
	}
	content, err := os.ReadFile(entry.Path)
	if err != nil {
		return languages.Finding{}, true, fmt.Errorf("failed to read %s: %w", entry.Path, err)
	}
	return langs.CheckTagComment(ctx, entry.Path, content, located.Line)
}
