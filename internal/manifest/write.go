package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/skelly-dev/cnote/internal/fileutil"
)

// Path returns the manifest location for dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Upsert adds tags to the record for target in dir's manifest, creating
// the manifest or the record as needed. It returns the record's tags.
func Upsert(dir, target string, tags []string) ([]string, error) {
	return edit(dir, target, func(existing []string) []string {
		return fileutil.DedupeStrings(append(existing, tags...))
	})
}

// Remove drops tags from the record for target. A record left without
// tags is deleted. It returns the record's remaining tags.
func Remove(dir, target string, tags []string) ([]string, error) {
	drop := fileutil.ToSet(tags)
	return edit(dir, target, func(existing []string) []string {
		kept := make([]string, 0, len(existing))
		for _, tag := range existing {
			if !drop[tag] {
				kept = append(kept, tag)
			}
		}
		return kept
	})
}

func edit(dir, target string, change func([]string) []string) ([]string, error) {
	manifestPath := Path(dir)
	key, err := recordPath(dir, target)
	if err != nil {
		return nil, err
	}

	var result []string
	err = fileutil.WithLock(manifestPath+".lock", func() error {
		content, err := os.ReadFile(manifestPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read %s: %w", manifestPath, err)
		}

		records, err := Parse(manifestPath, string(content))
		if err != nil {
			return fmt.Errorf("refusing to rewrite malformed manifest: %w", err)
		}

		want := Resolve(dir, key)
		pos := -1
		var existing []string
		updated := make([]Record, 0, len(records)+1)
		for _, rec := range records {
			if Resolve(dir, rec.Path) != want {
				updated = append(updated, rec)
				continue
			}
			if pos < 0 {
				pos = len(updated)
			}
			existing = append(existing, rec.Tags...)
		}

		result = change(fileutil.DedupeStrings(existing))
		if len(result) > 0 {
			rec := Record{Path: key, Tags: result}
			if pos < 0 {
				updated = append(updated, rec)
			} else {
				updated = slices.Insert(updated, pos, rec)
			}
		}

		if len(updated) == 0 {
			if err := os.Remove(manifestPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove empty manifest: %w", err)
			}
			return nil
		}
		return fileutil.AtomicWrite(manifestPath, []byte(Format(updated)))
	})
	return result, err
}

// recordPath converts target to the token written in dir's manifest:
// relative to dir when target lives below it, absolute otherwise.
func recordPath(dir, target string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", target, err)
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return absTarget, nil
	}
	return rel, nil
}

// Resolve returns the normalized location of a record path declared in
// dir's manifest.
func Resolve(dir, recordPath string) string {
	if !filepath.IsAbs(recordPath) {
		recordPath = filepath.Join(dir, recordPath)
	}
	if abs, err := filepath.Abs(recordPath); err == nil {
		recordPath = abs
	}
	return filepath.Clean(recordPath)
}
