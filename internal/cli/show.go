package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/cnote/internal/extract"
	"github.com/skelly-dev/cnote/internal/fileutil"
	"github.com/skelly-dev/cnote/internal/manifest"
	"github.com/skelly-dev/cnote/internal/registry"
)

// ShowResult lists where one file's tags come from.
type ShowResult struct {
	Path string `json:"path"`
	// Line is the 1-based line declaring Tags, or 0 when the file declares none.
	Line         int      `json:"line,omitempty"`
	Tags         []string `json:"tags"`
	Manifest     string   `json:"manifest,omitempty"`
	ManifestTags []string `json:"manifest_tags,omitempty"`
}

func RunShow(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	result, err := ShowFile(args[0], env.extractor())
	if err != nil {
		return err
	}

	if asJSON {
		return fileutil.PrintJSON(env.out, result)
	}
	display, err := env.displayPath(cmd)
	if err != nil {
		return err
	}
	if display != nil {
		result.Path = display(result.Path)
	}
	if len(result.Tags) == 0 && len(result.ManifestTags) == 0 {
		fmt.Fprintf(env.out, "%s: no tags\n", result.Path)
		return nil
	}
	if len(result.Tags) > 0 {
		fmt.Fprintf(env.out, "%s:%d  %s\n", result.Path, result.Line, strings.Join(result.Tags, " "))
	}
	if len(result.ManifestTags) > 0 {
		fmt.Fprintf(env.out, "%s  %s\n", manifest.FileName, strings.Join(result.ManifestTags, " "))
	}
	return nil
}

// ShowFile reads the tags path declares on its first two lines and the
// tags its directory manifest assigns to it.
func ShowFile(path string, x *extract.Extractor) (ShowResult, error) {
	result := ShowResult{Path: registry.NormalizePath(path), Tags: []string{}}

	info, err := os.Stat(result.Path)
	if err != nil {
		return result, fmt.Errorf("failed to access %q: %w", path, err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("%q is a directory", path)
	}
	if !info.Mode().IsRegular() {
		return result, fmt.Errorf("%q is not a regular file", path)
	}

	located, err := x.FileTags(result.Path)
	if err != nil {
		return result, err
	}
	if len(located.Tags) > 0 {
		result.Tags = located.Tags
		result.Line = located.Line + 1
	}

	dir := filepath.Dir(result.Path)
	content, err := os.ReadFile(manifest.Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return result, fmt.Errorf("failed to read %s: %w", manifest.Path(dir), err)
	}
	records, err := manifest.Parse(manifest.Path(dir), string(content))
	for _, rec := range records {
		if manifest.Resolve(dir, rec.Path) == result.Path {
			result.Manifest = manifest.Path(dir)
			result.ManifestTags = fileutil.DedupeStrings(append(result.ManifestTags, rec.Tags...))
		}
	}
	return result, err
}
