// Package scan walks file and directory arguments and indexes every tag
// it finds into a fresh registry.
package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skelly-dev/cnote/internal/extract"
	"github.com/skelly-dev/cnote/internal/ignore"
	"github.com/skelly-dev/cnote/internal/manifest"
	"github.com/skelly-dev/cnote/internal/registry"
)

// ErrNotRegular marks an argument that is neither a directory nor a
// regular file. Such paths are never opened.
var ErrNotRegular = errors.New("not a regular file")

// Issue severities.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Issue is a problem met while scanning one input. Issues never stop a run.
type Issue struct {
	File     string `json:"file"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Options configures a Scanner.
type Options struct {
	Recursive bool
	Filter    registry.Filter
	// Ignore filters directory contents; explicit file arguments are
	// always indexed. Nil applies the default rules only.
	Ignore *ignore.Matcher
	Logger *zap.Logger
	// Progress, when set, is called after each file is examined.
	Progress func(path string, count int)
}

// Result is the outcome of one scan.
type Result struct {
	RunID     string
	Registry  *registry.Registry
	Issues    []Issue
	Files     int
	Manifests int
	Duration  time.Duration
}

// Scanner indexes paths with an Extractor.
type Scanner struct {
	x    *extract.Extractor
	opts Options
}

// New creates a scanner.
func New(x *extract.Extractor, opts Options) *Scanner {
	if x == nil {
		x = extract.New(nil)
	}
	if opts.Ignore == nil {
		opts.Ignore = ignore.NewMatcher(nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scanner{x: x, opts: opts}
}

type run struct {
	*Scanner
	result *Result
	log    *zap.Logger
}

// Run indexes paths in order into a new registry. Files go through the
// per-file extractor; directories contribute their manifest first, then
// their regular files, then (when recursive) their subdirectories.
func (s *Scanner) Run(paths []string) *Result {
	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Registry: registry.New()}
	r := &run{Scanner: s, result: result, log: s.opts.Logger.With(zap.String("run_id", result.RunID))}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			r.issue(path, SeverityWarning, err)
			continue
		}
		if info.IsDir() {
			r.dir(path, path)
			continue
		}
		if !info.Mode().IsRegular() {
			r.issue(path, SeverityWarning, fmt.Errorf("%w (%s)", ErrNotRegular, info.Mode().Type()))
			continue
		}
		r.file(path)
	}

	result.Duration = time.Since(start)
	r.log.Debug("scan complete",
		zap.Int("files", result.Files),
		zap.Int("manifests", result.Manifests),
		zap.Int("entries", result.Registry.EntryCount()),
		zap.Int("tags", result.Registry.TagCount()),
		zap.Int("issues", len(result.Issues)),
		zap.Duration("duration", result.Duration),
	)
	return result
}

func (r *run) file(path string) {
	r.result.Files++
	_, ok, err := r.x.IndexFile(r.result.Registry, path, r.opts.Filter)
	if err != nil {
		r.issue(path, SeverityWarning, err)
	} else {
		r.log.Debug("indexed file", zap.String("path", path), zap.Bool("admitted", ok))
	}
	if r.opts.Progress != nil {
		r.opts.Progress(path, r.result.Files)
	}
}

func (r *run) dir(root, dir string) {
	res, err := r.x.IndexManifest(r.result.Registry, dir, r.opts.Filter)
	if res.Found {
		r.result.Manifests++
		r.log.Debug("indexed manifest",
			zap.String("path", res.Path),
			zap.Int("records", res.Records),
			zap.Int("admitted", res.Admitted))
	}
	if err != nil {
		r.issue(res.Path, SeverityError, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		r.issue(dir, SeverityWarning, err)
		return
	}

	var subdirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir, regular := classify(path, entry)
		if r.ignored(root, path, isDir) {
			continue
		}
		switch {
		case isDir:
			subdirs = append(subdirs, path)
		case regular && entry.Name() != manifest.FileName:
			r.file(path)
		}
	}

	if !r.opts.Recursive {
		return
	}
	for _, sub := range subdirs {
		r.dir(root, sub)
	}
}

// classify resolves symlinks so linked files are indexed. Linked
// directories are not followed.
func classify(path string, entry os.DirEntry) (isDir, regular bool) {
	mode := entry.Type()
	if mode&os.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			return false, false
		}
		return false, info.Mode().IsRegular()
	}
	return mode.IsDir(), mode.IsRegular()
}

func (r *run) ignored(root, path string, isDir bool) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if r.opts.Ignore.ShouldIgnore(rel, isDir) {
		r.log.Debug("ignored", zap.String("path", path))
		return true
	}
	return false
}

func (r *run) issue(path, severity string, err error) {
	r.result.Issues = append(r.result.Issues, Issue{File: path, Severity: severity, Message: err.Error()})
	fields := []zap.Field{zap.String("path", path), zap.Error(err)}
	var lineErr *manifest.LineError
	if errors.As(err, &lineErr) {
		fields = append(fields, zap.Int("line", lineErr.Line))
	}
	fields = append(fields, zap.String("severity", severity))
	r.log.Debug("recorded issue", fields...)
}

// HasErrors reports whether any issue has error severity.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
