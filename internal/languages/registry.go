// Package languages maps file extensions to tree-sitter grammars and
// verifies that a declared tag line lives inside a comment.
package languages

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Grammar describes one language the checker understands.
type Grammar struct {
	Name       string
	Extensions []string
	language   func() *sitter.Language
}

// Registry holds grammars by name and by extension.
type Registry struct {
	grammars  map[string]Grammar
	extToName map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		grammars:  make(map[string]Grammar),
		extToName: make(map[string]string),
	}
}

// NewDefaultRegistry creates a registry with every bundled grammar.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, g := range bundled() {
		r.Register(g)
	}
	return r
}

// Register adds g, replacing any grammar with the same name or extension.
func (r *Registry) Register(g Grammar) {
	r.grammars[g.Name] = g
	for _, ext := range g.Extensions {
		r.extToName[strings.ToLower(ext)] = g.Name
	}
}

// ForFile returns the grammar for filename's extension.
func (r *Registry) ForFile(filename string) (Grammar, bool) {
	name, ok := r.extToName[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return Grammar{}, false
	}
	g, ok := r.grammars[name]
	return g, ok
}

// Names returns the registered grammar names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.grammars))
	for name := range r.grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
