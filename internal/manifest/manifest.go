// Package manifest reads and writes ".tag" files: per-directory lists of
// "<path> #: <tags...>" records that tag files without editing them.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/skelly-dev/cnote/internal/lexer"
)

// FileName is the manifest file looked up directly inside a directory.
const FileName = ".tag"

// ErrMissingMarker is wrapped by LineError when a path is not followed by
// the tag marker.
var ErrMissingMarker = errors.New("missing tag marker")

// Record is one manifest line.
type Record struct {
	Path string
	Tags []string
	Line int
}

// LineError reports a malformed manifest line. Decoding stops at the
// first one.
type LineError struct {
	Manifest string
	Line     int
	Path     string
	Err      error
}

func (e *LineError) Error() string {
	where := e.Manifest
	if where == "" {
		where = FileName
	}
	return fmt.Sprintf("expected %q tag marker after filepath %q in tagfile at %s:%d", lexer.TagMarker, e.Path, where, e.Line)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Decoder yields records from manifest content line by line.
type Decoder struct {
	name   string
	rest   string
	line   int
	failed error
}

// NewDecoder decodes content. name identifies the manifest in errors.
func NewDecoder(name, content string) *Decoder {
	return &Decoder{name: name, rest: content}
}

// Next returns the next record, io.EOF at the end, or a *LineError. After
// an error every further call returns the same error.
func (d *Decoder) Next() (Record, error) {
	if d.failed != nil {
		return Record{}, d.failed
	}

	for {
		if d.rest == "" {
			return Record{}, io.EOF
		}
		d.line++
		raw := d.rest
		if end := strings.IndexByte(raw, '\n'); end >= 0 {
			raw, d.rest = raw[:end], raw[end+1:]
		} else {
			d.rest = ""
		}

		c := lexer.NewCursor(raw)
		c.SkipWhitespace()
		if c.Len() == 0 {
			continue
		}

		path := c.Token()
		c.SkipWhitespace()
		if !c.ConsumeMarker() {
			d.failed = &LineError{Manifest: d.name, Line: d.line, Path: path, Err: ErrMissingMarker}
			return Record{}, d.failed
		}
		return Record{Path: path, Tags: lexer.ParseTags(c.Rest()), Line: d.line}, nil
	}
}

// Parse decodes every record in content. On a malformed line it returns
// the records before it together with the *LineError.
func Parse(name, content string) ([]Record, error) {
	d := NewDecoder(name, content)
	var records []Record
	for {
		rec, err := d.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// Format renders records in manifest syntax, one per line.
func Format(records []Record) string {
	var b strings.Builder
	for _, rec := range records {
		b.WriteString(rec.Path)
		b.WriteByte(' ')
		b.WriteString(lexer.TagMarker)
		for _, tag := range rec.Tags {
			b.WriteByte(' ')
			b.WriteString(tag)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
