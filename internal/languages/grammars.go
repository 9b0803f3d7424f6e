package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func bundled() []Grammar {
	return []Grammar{
		{Name: "go", Extensions: []string{".go"}, language: golang.GetLanguage},
		{Name: "python", Extensions: []string{".py", ".pyi"}, language: python.GetLanguage},
		{Name: "ruby", Extensions: []string{".rb", ".rake"}, language: ruby.GetLanguage},
		{Name: "javascript", Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, language: javascript.GetLanguage},
		{Name: "typescript", Extensions: []string{".ts", ".tsx"}, language: typescript.GetLanguage},
		{Name: "bash", Extensions: []string{".sh", ".bash"}, language: bash.GetLanguage},
		{Name: "c", Extensions: []string{".c", ".h"}, language: c.GetLanguage},
		{Name: "cpp", Extensions: []string{".cc", ".cpp", ".cxx", ".hpp", ".hh"}, language: cpp.GetLanguage},
	}
}

// Parser returns a fresh tree-sitter parser for the grammar. Parsers are
// not safe for concurrent use.
func (g Grammar) Parser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(g.language())
	return p
}
