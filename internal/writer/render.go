package writer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/codescout/internal/models"
)

// ArtifactDocument is the JSON encoding of one research artifact.
type ArtifactDocument struct {
	Directory   string        `json:"directory"`
	Status      models.Status `json:"status"`
	GeneratedAt time.Time     `json:"generated_at"`
	Format      models.Format `json:"format"`
	Content     string        `json:"content"`
}

// RenderMarkdownArtifact renders the analyzer output for one directory.
// A "# <dir>" title is added only when the output does not already open with one.
func RenderMarkdownArtifact(r models.ResearchResult, generated time.Time) []byte {
	body := strings.TrimSpace(r.Output)

	var sb strings.Builder
	if !OpensWithTitle(body) {
		fmt.Fprintf(&sb, "# %s\n\n", r.Task.Directory)
	}
	fmt.Fprintf(&sb, "_Directory: `%s` | Generated: %s_\n\n", r.Task.Directory, generated.Format(time.RFC3339))
	sb.WriteString(body)
	sb.WriteString("\n")
	return []byte(sb.String())
}

// RenderJSONArtifact renders the analyzer output for one directory as JSON.
func RenderJSONArtifact(r models.ResearchResult, generated time.Time) ([]byte, error) {
	doc := ArtifactDocument{
		Directory:   r.Task.Directory,
		Status:      r.Status,
		GeneratedAt: generated,
		Format:      models.FormatJSON,
		Content:     r.Output,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact for %s: %w", r.Task.Directory, err)
	}
	return append(data, '\n'), nil
}

// RenderJSONSummary renders the run summary as indented JSON.
func RenderJSONSummary(summary models.RunSummary) ([]byte, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode run summary: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderMarkdownSummary renders the run summary as a markdown report with a
// status count table and one row per directory.
func RenderMarkdownSummary(summary models.RunSummary) []byte {
	var sb strings.Builder

	sb.WriteString("# Research Summary\n\n")
	fmt.Fprintf(&sb, "- Run: `%s`\n", summary.RunID)
	fmt.Fprintf(&sb, "- Root: `%s`\n", summary.Root)
	fmt.Fprintf(&sb, "- Output: `%s`\n", summary.OutputRoot)
	fmt.Fprintf(&sb, "- Format: %s\n", summary.Format)
	if !summary.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "- Started: %s\n", summary.StartedAt.UTC().Format(time.RFC3339))
	}
	if !summary.FinishedAt.IsZero() {
		fmt.Fprintf(&sb, "- Finished: %s\n", summary.FinishedAt.UTC().Format(time.RFC3339))
		fmt.Fprintf(&sb, "- Duration: %s\n", formatDuration(summary.Duration().Milliseconds()))
	}
	fmt.Fprintf(&sb, "- Directories: %d (%d failed)\n\n", summary.Total(), summary.Failures())

	sb.WriteString("## Status\n\n")
	sb.WriteString("| Status | Count |\n")
	sb.WriteString("|--------|-------|\n")
	for _, st := range models.AllStatuses {
		fmt.Fprintf(&sb, "| %s | %d |\n", st, summary.Counts[st])
	}
	sb.WriteString("\n")

	sb.WriteString("## Directories\n\n")
	if len(summary.Entries) == 0 {
		sb.WriteString("No directories were researched.\n")
		return []byte(sb.String())
	}

	sb.WriteString("| Directory | Status | Artifact | Duration | Notes |\n")
	sb.WriteString("|-----------|--------|----------|----------|-------|\n")
	for _, e := range summary.Entries {
		artifact := "-"
		if e.Artifact != "" {
			artifact = fmt.Sprintf("[%s](%s)", escapeCell(e.Artifact), e.Artifact)
		}
		duration := "-"
		if e.Status != models.StatusNotFound {
			duration = formatDuration(e.DurationMS)
		}
		notes := e.Synopsis
		if e.Status != models.StatusSucceeded {
			notes = e.Message
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s | %s |\n",
			e.Directory, e.Status, artifact, duration, escapeCell(notes))
	}
	return []byte(sb.String())
}

// escapeCell keeps arbitrary text inside a single markdown table cell.
func escapeCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
