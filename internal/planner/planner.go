// Package planner turns candidate directories into research tasks with unique
// artifact paths under the output root.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/codescout/internal/models"
)

const (
	// MarkdownSummaryName is the summary artifact for markdown runs.
	MarkdownSummaryName = "SUMMARY.md"
	// JSONSummaryName is the summary artifact for json runs.
	JSONSummaryName = "summary.json"
	// rootArtifactName names the artifact for the project root itself ("--dirs .").
	rootArtifactName = "root"
)

// Planner maps candidate directories to ResearchTasks.
type Planner struct {
	Root       string // Absolute project root
	OutputRoot string // Absolute directory artifacts are written under
	Format     models.Format
}

// New validates format and returns a Planner. An unrecognized format is a ConfigError.
func New(root, outputRoot, format string) (*Planner, error) {
	f, err := models.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if outputRoot == "" {
		return nil, models.NewConfigError("output", "output root must not be empty", nil)
	}
	return &Planner{Root: root, OutputRoot: outputRoot, Format: f}, nil
}

// SummaryName returns the file name of the summary artifact for the configured format.
func (p *Planner) SummaryName() string {
	if p.Format == models.FormatJSON {
		return JSONSummaryName
	}
	return MarkdownSummaryName
}

// SummaryPath returns the absolute path of the summary artifact.
func (p *Planner) SummaryPath() string {
	return filepath.Join(p.OutputRoot, p.SummaryName())
}

// Plan produces exactly one task per candidate, in candidate order.
// Artifact names are derived from the relative path; collisions get a numeric suffix.
func (p *Planner) Plan(candidates []models.CandidateDirectory) []models.ResearchTask {
	used := map[string]bool{strings.ToLower(p.SummaryName()): true}
	tasks := make([]models.ResearchTask, 0, len(candidates))

	for i, c := range candidates {
		name := p.uniqueName(ArtifactBaseName(c.RelPath), used)
		tasks = append(tasks, models.ResearchTask{
			Index:      i,
			Directory:  c.RelPath,
			AbsPath:    filepath.Join(p.Root, filepath.FromSlash(c.RelPath)),
			OutputPath: filepath.Join(p.OutputRoot, name),
			Format:     p.Format,
		})
	}
	return tasks
}

// uniqueName appends the format extension to base and, if the result is already
// taken, tries base-2, base-3, ... Comparison is case-insensitive so artifacts
// stay distinct on case-folding filesystems.
func (p *Planner) uniqueName(base string, used map[string]bool) string {
	ext := p.Format.Extension()
	name := base + ext
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s-%d%s", base, n, ext)
	}
	used[strings.ToLower(name)] = true
	return name
}

// ArtifactBaseName converts a slash-separated relative path into a flat file
// name stem: separators become "-", leading dots are kept ("src/.config" ->
// "src-.config"), and the root itself becomes "root".
func ArtifactBaseName(relPath string) string {
	rel := strings.Trim(filepath.ToSlash(relPath), "/")
	if rel == "" || rel == "." {
		return rootArtifactName
	}
	return strings.ReplaceAll(rel, "/", "-")
}

// EnsureOutputRoot creates the output root. Failure is a ConfigError and is not retried.
func (p *Planner) EnsureOutputRoot() error {
	if err := os.MkdirAll(p.OutputRoot, 0755); err != nil {
		return models.NewConfigError("output", "cannot create output root "+p.OutputRoot, err)
	}
	return p.CheckOutputRoot()
}

// CheckOutputRoot verifies an existing output root is a directory without creating anything.
// A missing output root is fine; it is created when the run writes.
func (p *Planner) CheckOutputRoot() error {
	info, err := os.Stat(p.OutputRoot)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return models.NewConfigError("output", "cannot access output root "+p.OutputRoot, err)
	}
	if !info.IsDir() {
		return models.NewConfigError("output", "output root is not a directory: "+p.OutputRoot, nil)
	}
	return nil
}
