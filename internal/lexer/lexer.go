// Package lexer finds tag declarations in a single line of text.
//
// A tag declaration is the marker "#:" followed by whitespace separated
// tags. Leading whitespace and comment openers are skipped first, so a
// declaration can live inside a comment of most languages:
//
//	// #: draft release
//	;; #: lisp
//	#: shell-or-plain-text
package lexer

import "strings"

const (
	// TagMarker introduces a tag declaration.
	TagMarker = "#:"

	// Whitespace is the set of bytes separating tags.
	Whitespace = "\r\n \t\v"
)

// Cursor is a read position over a line of text.
type Cursor struct {
	rest     string
	dialects []Dialect
}

// NewCursor returns a cursor over s using the default dialects.
func NewCursor(s string) *Cursor {
	return &Cursor{rest: s, dialects: Dialects}
}

// NewCursorWithDialects returns a cursor that recognizes only the given dialects.
func NewCursorWithDialects(s string, dialects []Dialect) *Cursor {
	return &Cursor{rest: s, dialects: dialects}
}

// Rest returns the unconsumed text.
func (c *Cursor) Rest() string {
	return c.rest
}

// Len returns the number of unconsumed bytes.
func (c *Cursor) Len() int {
	return len(c.rest)
}

// AtMarker reports whether the cursor is positioned at the tag marker.
func (c *Cursor) AtMarker() bool {
	return strings.HasPrefix(c.rest, TagMarker)
}

// SkipWhitespace consumes a run of whitespace and reports whether it advanced.
func (c *Cursor) SkipWhitespace() bool {
	n := 0
	for n < len(c.rest) && isWhitespace(c.rest[n]) {
		n++
	}
	c.rest = c.rest[n:]
	return n > 0
}

// SkipComments consumes comment openers and the whitespace around them.
// It never consumes the tag marker, even when a dialect opener ("#") is a
// prefix of it.
func (c *Cursor) SkipComments() bool {
	advanced := false
	for {
		if c.SkipWhitespace() {
			advanced = true
		}
		if c.AtMarker() {
			return advanced
		}

		matched := false
		for _, d := range c.dialects {
			if c.skipDialect(d) {
				matched = true
				break
			}
		}
		if !matched {
			return advanced
		}
		advanced = true
	}
}

func (c *Cursor) skipDialect(d Dialect) bool {
	opener := ""
	for _, candidate := range d.Openers {
		if strings.HasPrefix(c.rest, candidate) {
			opener = candidate
			break
		}
	}
	if opener == "" {
		return false
	}

	c.rest = c.rest[len(opener):]
	c.SkipWhitespace()
	for len(c.rest) > 0 && !c.AtMarker() && strings.IndexByte(d.Trailing, c.rest[0]) >= 0 {
		c.rest = c.rest[1:]
		c.SkipWhitespace()
	}
	return true
}

// Token consumes and returns the next run of non-whitespace bytes.
func (c *Cursor) Token() string {
	c.SkipWhitespace()
	n := 0
	for n < len(c.rest) && !isWhitespace(c.rest[n]) {
		n++
	}
	tok := c.rest[:n]
	c.rest = c.rest[n:]
	return tok
}

// ConsumeMarker consumes the tag marker if the cursor is positioned at it.
func (c *Cursor) ConsumeMarker() bool {
	if !c.AtMarker() {
		return false
	}
	c.rest = c.rest[len(TagMarker):]
	return true
}

// ParseTags splits s into whitespace separated tags. Repeated tags are
// dropped; the first occurrence keeps its position.
func ParseTags(s string) []string {
	c := NewCursor(s)
	var out []string
	seen := make(map[string]bool)
	for {
		tag := c.Token()
		if tag == "" {
			return out
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
}

// ParseLine returns the tags declared on line, or nil when the line is not
// a tag declaration. Only a marker at the start of the line (after
// whitespace and comment openers) counts.
func ParseLine(line string) []string {
	return parseLine(NewCursor(line))
}

// ParseLineWithDialects is ParseLine restricted to the given dialects.
func ParseLineWithDialects(line string, dialects []Dialect) []string {
	return parseLine(NewCursorWithDialects(line, dialects))
}

func parseLine(c *Cursor) []string {
	for c.Len() > 0 && (c.SkipWhitespace() || c.SkipComments()) {
	}
	if c.Len() == 0 || !c.ConsumeMarker() {
		return nil
	}
	return ParseTags(c.Rest())
}

// SplitLines returns the first two lines of content. hasSecond is false when
// the first line was not terminated by a newline.
func SplitLines(content string) (first, second string, hasSecond bool) {
	end := strings.IndexByte(content, '\n')
	if end < 0 {
		return content, "", false
	}
	first = content[:end]
	rest := content[end+1:]
	if next := strings.IndexByte(rest, '\n'); next >= 0 {
		rest = rest[:next]
	}
	return first, rest, true
}

func isWhitespace(b byte) bool {
	return strings.IndexByte(Whitespace, b) >= 0
}
