package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindProjectRoot returns the project root that contains start.
// Priority order:
//  1. The nearest ancestor (or start itself) holding a .codescout directory
//  2. The nearest ancestor holding a .git entry
//  3. start itself (fallback)
func FindProjectRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	if dir, ok := findUp(abs, DirName, true); ok {
		return dir, nil
	}
	if dir, ok := findUp(abs, ".git", false); ok {
		return dir, nil
	}
	return abs, nil
}

// DefaultRoot resolves the project root from the current working directory.
func DefaultRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return FindProjectRoot(cwd)
}

// findUp walks from dir towards the filesystem root looking for marker.
func findUp(dir, marker string, wantDir bool) (string, bool) {
	current := dir
	for {
		info, err := os.Stat(filepath.Join(current, marker))
		if err == nil && (!wantDir || info.IsDir()) {
			return current, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}
