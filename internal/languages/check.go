package languages

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/skelly-dev/cnote/internal/lexer"
)

// Finding locates a tag marker within a parsed file.
type Finding struct {
	Language string `json:"language"`
	// Line and Column are zero-based.
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Node      string `json:"node"`
	InComment bool   `json:"in_comment"`
}

// CheckTagComment parses content with the grammar for path and reports
// whether the tag marker on the given line sits inside a comment node.
// The boolean result is false when no grammar handles path.
func (r *Registry) CheckTagComment(ctx context.Context, path string, content []byte, line int) (Finding, bool, error) {
	g, ok := r.ForFile(path)
	if !ok {
		return Finding{}, false, nil
	}

	text, ok := lineAt(content, line)
	col := strings.Index(text, lexer.TagMarker)
	if !ok || col < 0 {
		return Finding{}, true, fmt.Errorf("no tag marker on line %d of %s", line+1, path)
	}

	tree, err := g.Parser().ParseCtx(ctx, nil, content)
	if err != nil {
		return Finding{}, true, fmt.Errorf("failed to parse %s as %s: %w", path, g.Name, err)
	}
	defer tree.Close()

	point := sitter.Point{Row: uint32(line), Column: uint32(col)}
	node := tree.RootNode().NamedDescendantForPointRange(point, point)

	finding := Finding{Language: g.Name, Line: line, Column: col}
	if node != nil {
		finding.Node = node.Type()
	}
	for n := node; n != nil; n = n.Parent() {
		if strings.Contains(n.Type(), "comment") {
			finding.InComment = true
			finding.Node = n.Type()
			break
		}
	}
	return finding, true, nil
}

func lineAt(content []byte, line int) (string, bool) {
	for i := 0; i < line; i++ {
		idx := bytes.IndexByte(content, '\n')
		if idx < 0 {
			return "", false
		}
		content = content[idx+1:]
	}
	if idx := bytes.IndexByte(content, '\n'); idx >= 0 {
		content = content[:idx]
	}
	return string(content), true
}
