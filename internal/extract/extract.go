// Package extract turns file contents and directory manifests into
// registry entries.
package extract

import (
	"fmt"

	"github.com/skelly-dev/cnote/internal/fileutil"
	"github.com/skelly-dev/cnote/internal/lexer"
	"github.com/skelly-dev/cnote/internal/registry"
)

const (
	// DefaultReadLimit is how many bytes of a file are inspected for tags.
	DefaultReadLimit = 512
	MinReadLimit     = 64
	MaxReadLimit     = 4096
)

// Source supplies file contents.
type Source interface {
	// ReadPrefix returns at most limit bytes from the start of path.
	ReadPrefix(path string, limit int) ([]byte, error)
	// ReadFile returns the whole file.
	ReadFile(path string) ([]byte, error)
}

// Extractor finds tags in files and manifests.
type Extractor struct {
	src       Source
	readLimit int
	dialects  []lexer.Dialect
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithReadLimit overrides the per-file byte budget. Values outside
// [MinReadLimit, MaxReadLimit] are clamped.
func WithReadLimit(n int) Option {
	return func(x *Extractor) {
		x.readLimit = ClampReadLimit(n)
	}
}

// WithDialects restricts the comment styles skipped before a tag marker.
func WithDialects(dialects []lexer.Dialect) Option {
	return func(x *Extractor) {
		x.dialects = dialects
	}
}

// New creates an extractor reading through src. A nil src reads the
// local filesystem.
func New(src Source, opts ...Option) *Extractor {
	if src == nil {
		src = fileutil.OSSource{}
	}
	x := &Extractor{src: src, readLimit: DefaultReadLimit, dialects: lexer.Dialects}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// ClampReadLimit keeps n within the supported read budget; zero or
// negative selects the default.
func ClampReadLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultReadLimit
	case n < MinReadLimit:
		return MinReadLimit
	case n > MaxReadLimit:
		return MaxReadLimit
	default:
		return n
	}
}

// ReadLimit returns the per-file byte budget.
func (x *Extractor) ReadLimit() int {
	return x.readLimit
}

// Located is the result of looking for tags in one file.
type Located struct {
	Tags []string
	// Line is the zero-based line the tags were declared on, or -1.
	Line int
}

// FileTags reads the head of path and returns the tags declared on its
// first line, or on its second line when the first declares none.
func (x *Extractor) FileTags(path string) (Located, error) {
	content, err := x.src.ReadPrefix(path, x.readLimit)
	if err != nil {
		return Located{Line: -1}, err
	}
	if len(content) > x.readLimit {
		content = content[:x.readLimit]
	}

	first, second, hasSecond := lexer.SplitLines(string(content))
	if tags := lexer.ParseLineWithDialects(first, x.dialects); len(tags) > 0 {
		return Located{Tags: tags, Line: 0}, nil
	}
	if hasSecond {
		if tags := lexer.ParseLineWithDialects(second, x.dialects); len(tags) > 0 {
			return Located{Tags: tags, Line: 1}, nil
		}
	}
	return Located{Line: -1}, nil
}

// IndexFile registers path in reg if it declares tags and passes filter.
// Read failures are returned; the file then contributes nothing.
func (x *Extractor) IndexFile(reg *registry.Registry, path string, filter registry.Filter) (registry.EntryID, bool, error) {
	found, err := x.FileTags(path)
	if err != nil {
		return 0, false, fmt.Errorf("failed to index %s: %w", path, err)
	}

	stage := reg.Stage(path)
	stage.AddTags(found.Tags)
	id, ok := stage.Commit(filter)
	return id, ok, nil
}
