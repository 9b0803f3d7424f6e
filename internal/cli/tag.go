package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skelly-dev/cnote/internal/manifest"
	"github.com/skelly-dev/cnote/internal/registry"
)

func RunTag(cmd *cobra.Command, args []string) error {
	return runEdit(cmd, args, "tag", manifest.Upsert)
}

func RunUntag(cmd *cobra.Command, args []string) error {
	return runEdit(cmd, args, "untag", manifest.Remove)
}

func runEdit(cmd *cobra.Command, args []string, mode string, apply func(dir, target string, tags []string) ([]string, error)) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	tags, err := ParseTagArgs(args[1:])
	if err != nil {
		return err
	}

	target := registry.NormalizePath(args[0])
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to access %q: %w", args[0], err)
	}
	if info.IsDir() {
		return fmt.Errorf("%q is a directory; only files can be tagged", args[0])
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%q is not a regular file", args[0])
	}

	dir := filepath.Dir(target)
	remaining, err := apply(dir, target, tags)
	if err != nil {
		return err
	}
	env.logger.Debug("updated manifest",
		zap.String("mode", mode),
		zap.String("manifest", manifest.Path(dir)),
		zap.String("path", target),
		zap.Strings("tags", remaining))

	display, err := env.displayPath(cmd)
	if err != nil {
		return err
	}
	summary := EditSummary{
		Mode:     mode,
		Path:     target,
		Manifest: manifest.Path(dir),
		Changed:  tags,
		Tags:     remaining,
	}
	if display != nil && !asJSON {
		summary.Path = display(summary.Path)
		summary.Manifest = display(summary.Manifest)
	}
	return PrintEditSummary(env.out, summary, asJSON)
}
