// Package ignore decides which paths a directory scan skips, using
// gitignore-like rules from .cnoteignore and the config file.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FileName is the per-root ignore file.
const FileName = ".cnoteignore"

// DefaultRules are applied before user rules; a later "!" rule can
// re-include anything they exclude.
var DefaultRules = []string{
	".git/",
	".hg/",
	".svn/",
	"node_modules/",
	"vendor/",
	"__pycache__/",
	"*.tag.lock",
}

type rule struct {
	source   string
	negated  bool
	dirOnly  bool
	anchored bool
	// nested patterns contain a slash and match a suffix of path segments.
	nested bool
	re     *regexp.Regexp
}

// Matcher applies rules in order; the last matching rule wins.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles DefaultRules followed by userRules. Blank lines,
// "#" comments and patterns that fail to compile are skipped.
func NewMatcher(userRules []string) *Matcher {
	m := &Matcher{}
	for _, line := range append(append([]string{}, DefaultRules...), userRules...) {
		if parsed, ok := compileRule(line); ok {
			m.rules = append(m.rules, parsed)
		}
	}
	return m
}

// Len returns the number of active rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// ShouldIgnore reports whether relPath, relative to the scan root, is
// excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = normalizePath(relPath)
	if relPath == "" || relPath == "." {
		return false
	}
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

// LoadRules reads root's .cnoteignore. A missing file yields no rules.
func LoadRules(root string) ([]string, error) {
	path := filepath.Join(root, FileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	defer f.Close()

	var rules []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return rules, nil
}

func compileRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	r := rule{source: line}
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		r.negated = true
		line = rest
	}
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		r.anchored = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		r.dirOnly = true
		line = rest
	}
	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	r.nested = strings.Contains(line, "/")

	re, err := regexp.Compile("^" + globToRegex(line) + "$")
	if err != nil {
		return rule{}, false
	}
	r.re = re
	return r, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	segments := strings.Split(relPath, "/")

	if r.dirOnly {
		// A directory rule covers the directory itself and everything below it.
		last := len(segments)
		if !isDir {
			last--
		}
		for i := 1; i <= last; i++ {
			if r.matchPrefix(segments[:i]) {
				return true
			}
		}
		return false
	}

	if r.anchored {
		return r.re.MatchString(relPath)
	}
	if r.nested {
		for i := range segments {
			if r.re.MatchString(strings.Join(segments[i:], "/")) {
				return true
			}
		}
		return false
	}
	for _, segment := range segments {
		if r.re.MatchString(segment) {
			return true
		}
	}
	return false
}

func (r rule) matchPrefix(prefix []string) bool {
	joined := strings.Join(prefix, "/")
	if r.anchored || r.nested {
		return r.re.MatchString(joined)
	}
	return r.re.MatchString(prefix[len(prefix)-1])
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		switch ch := pattern[i]; ch {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	return strings.Trim(path, "/")
}
