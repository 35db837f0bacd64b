// Package pathfilter decides which directories are worth researching.
//
// A Filter holds a fixed set of exclusion patterns (dependency, build output,
// version-control and cache directories). Each pattern is matched against every
// segment of a relative path; a match on any segment excludes the whole subtree.
package pathfilter

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"

	"github.com/harrison/codescout/internal/models"
)

// DefaultExclusions are the directory names and globs skipped during discovery.
var DefaultExclusions = []string{
	// dependencies
	"node_modules", "vendor", "bower_components", "jspm_packages",
	".venv", "venv", "site-packages", "Pods", ".bundle",
	// build output
	"dist", "build", "out", "target", "bin", "obj", ".next", ".nuxt", "coverage",
	// version control
	".git", ".hg", ".svn", ".bzr",
	// caches
	"__pycache__", ".cache", "*_cache", ".pytest_cache", ".mypy_cache",
	".gradle", ".terraform", ".tox",
	// tool state
	".idea", ".vscode", ".codescout",
}

type rule struct {
	pattern string
	g       glob.Glob
}

// Filter matches path segments against exclusion patterns. It is safe for
// concurrent use once built.
type Filter struct {
	rules []rule
}

// New compiles patterns into a Filter. Patterns containing a slash are rejected
// since matching is per segment.
func New(patterns ...string) (*Filter, error) {
	f := &Filter{}
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		if strings.Contains(p, "/") {
			return nil, models.NewConfigError("exclude", fmt.Sprintf("pattern %q must match a single path segment", p), nil)
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, models.NewConfigError("exclude", fmt.Sprintf("invalid pattern %q", p), err)
		}
		seen[p] = true
		f.rules = append(f.rules, rule{pattern: p, g: g})
	}
	return f, nil
}

// NewDefault returns a Filter with DefaultExclusions plus any extra patterns.
func NewDefault(extra ...string) (*Filter, error) {
	patterns := make([]string, 0, len(DefaultExclusions)+len(extra))
	patterns = append(patterns, DefaultExclusions...)
	patterns = append(patterns, extra...)
	return New(patterns...)
}

// MatchSegment returns the first pattern matching a single directory name.
func (f *Filter) MatchSegment(name string) (string, bool) {
	if f == nil {
		return "", false
	}
	for _, r := range f.rules {
		if r.g.Match(name) {
			return r.pattern, true
		}
	}
	return "", false
}

// Excludes reports whether any segment of relPath matches an exclusion pattern.
func (f *Filter) Excludes(relPath string) bool {
	for _, seg := range strings.Split(path.Clean(relPath), "/") {
		if seg == "." || seg == "" {
			continue
		}
		if _, ok := f.MatchSegment(seg); ok {
			return true
		}
	}
	return false
}

// Patterns returns the compiled patterns in order.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.rules))
	for i, r := range f.rules {
		out[i] = r.pattern
	}
	return out
}
