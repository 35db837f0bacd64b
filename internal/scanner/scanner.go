package scanner

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/codescout/internal/models"
	"github.com/harrison/codescout/internal/pathfilter"
)

// MaxDepth is the deepest level discovery will descend to.
const MaxDepth = 2

// Options configures directory discovery.
type Options struct {
	// Depth is 1 for immediate children only, 2 to also include grandchildren.
	Depth int
	// Filter excludes dependency, build, VCS and cache directories. Nil includes everything.
	Filter *pathfilter.Filter
	// Overrides, when non-empty, replaces discovery with an explicit directory list.
	Overrides []string
}

// Result contains the outcome of a scan.
type Result struct {
	// Candidates are the directories to research, in planning order.
	Candidates []models.CandidateDirectory
	// Missing holds NotFound errors for override entries that could not be used.
	Missing []*models.ResearchError
	// Duplicates lists override entries dropped because they were already listed.
	Duplicates []string
	// Excluded lists discovered directories rejected by the filter (not descended).
	Excluded []string
}

// Scan produces the candidate directories under root.
// Root problems are configuration errors; per-directory problems land in Result.
func Scan(root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, models.NewConfigError("root", "cannot access project root "+root, err)
	}
	if !info.IsDir() {
		return nil, models.NewConfigError("root", "project root is not a directory: "+root, nil)
	}

	if len(opts.Overrides) > 0 {
		return scanOverrides(root, opts.Overrides), nil
	}

	depth := opts.Depth
	if depth <= 0 {
		depth = 1
	}
	if depth > MaxDepth {
		return nil, models.NewConfigError("depth", fmt.Sprintf("depth must be 1 or %d, got %d", MaxDepth, depth), nil)
	}

	result := &Result{}
	if err := walk(root, ".", 1, depth, opts.Filter, result); err != nil {
		return nil, err
	}

	sort.Slice(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].RelPath < result.Candidates[j].RelPath
	})
	sort.Strings(result.Excluded)

	return result, nil
}

// walk lists the directories under root/rel at the given level and recurses
// into included ones while level < maxDepth.
func walk(root, rel string, level, maxDepth int, filter *pathfilter.Filter, result *Result) error {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if level == 1 {
			return models.NewConfigError("root", "cannot read project root", err)
		}
		// Unreadable subdirectory: keep the parent, skip its children.
		return nil
	}

	for _, entry := range entries {
		// DirEntry.IsDir is false for symlinks, so links are never followed.
		if !entry.IsDir() {
			continue
		}
		childRel := path.Join(rel, entry.Name())
		if _, excluded := filter.MatchSegment(entry.Name()); excluded {
			result.Excluded = append(result.Excluded, childRel)
			continue
		}

		result.Candidates = append(result.Candidates, models.NewCandidate(childRel))

		if level < maxDepth {
			if err := walk(root, childRel, level+1, maxDepth, filter, result); err != nil {
				return err
			}
		}
	}
	return nil
}

// scanOverrides validates an explicit directory list, preserving its order.
func scanOverrides(root string, overrides []string) *Result {
	result := &Result{}
	seen := make(map[string]bool, len(overrides))

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	for _, raw := range overrides {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		abs := name
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(absRoot, filepath.FromSlash(name))
		}
		abs = filepath.Clean(abs)

		rel, err := filepath.Rel(absRoot, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			result.Missing = append(result.Missing,
				models.NewNotFoundError(name, "directory is outside the project root", err))
			continue
		}
		rel = filepath.ToSlash(rel)

		if seen[rel] {
			result.Duplicates = append(result.Duplicates, name)
			continue
		}

		info, err := os.Stat(abs)
		if err != nil {
			result.Missing = append(result.Missing,
				models.NewNotFoundError(name, "directory does not exist", err))
			seen[rel] = true
			continue
		}
		if !info.IsDir() {
			result.Missing = append(result.Missing,
				models.NewNotFoundError(name, "path is not a directory", nil))
			seen[rel] = true
			continue
		}

		seen[rel] = true
		result.Candidates = append(result.Candidates, models.NewCandidate(rel))
	}

	return result
}

// ParseDirList splits a comma-separated --dirs value. Empty items are dropped.
func ParseDirList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
