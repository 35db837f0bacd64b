package models

import (
	"fmt"
	"path"
	"strings"
)

// Format selects the encoding of written artifacts.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a user-supplied format name.
// Matching is case-insensitive; an empty string selects markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", NewConfigError("format", fmt.Sprintf("unsupported format %q (want markdown or json)", s), nil)
	}
}

// Extension returns the file extension, including the dot, used for artifacts of this format.
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".md"
}

// CandidateDirectory is a directory found during scanning, relative to the project root.
type CandidateDirectory struct {
	RelPath string // Slash-separated path relative to the project root
	Name    string // Last path segment
	Depth   int    // 1 for immediate children of the root
}

// NewCandidate builds a CandidateDirectory from a slash-separated relative path.
func NewCandidate(relPath string) CandidateDirectory {
	relPath = path.Clean(strings.TrimPrefix(relPath, "./"))
	depth := 0
	if relPath != "." {
		depth = strings.Count(relPath, "/") + 1
	}
	return CandidateDirectory{
		RelPath: relPath,
		Name:    path.Base(relPath),
		Depth:   depth,
	}
}

// ResearchTask is one unit of fanout work: analyze a directory and write one artifact.
type ResearchTask struct {
	Index      int    // Position in the planned task list
	Directory  string // Slash-separated path relative to the project root
	AbsPath    string // Absolute filesystem path of the directory
	OutputPath string // Absolute path of the artifact this task writes
	Format     Format
}

// String returns a short description used in log lines.
func (t ResearchTask) String() string {
	return fmt.Sprintf("%s -> %s", t.Directory, path.Base(t.OutputPath))
}
