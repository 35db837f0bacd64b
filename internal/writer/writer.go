// Package writer turns research results into artifacts on disk: one file per
// researched directory plus a single run summary in the chosen format.
package writer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/harrison/codescout/internal/filelock"
	"github.com/harrison/codescout/internal/models"
)

// Writer persists artifacts under OutputRoot. Every write goes through
// filelock.AtomicWrite, so a crashed run never leaves a truncated artifact.
type Writer struct {
	Format      models.Format
	OutputRoot  string
	SummaryPath string
	Now         func() time.Time
}

// New creates a Writer for one run.
func New(format models.Format, outputRoot, summaryPath string) *Writer {
	return &Writer{
		Format:      format,
		OutputRoot:  outputRoot,
		SummaryPath: summaryPath,
		Now:         time.Now,
	}
}

// WriteArtifacts writes one artifact per succeeded result to its planned path.
// The returned slice mirrors results; a result whose write failed is flipped to
// write_failed so the summary reports it. Other results pass through unchanged.
func (w *Writer) WriteArtifacts(results []models.ResearchResult) []models.ResearchResult {
	out := make([]models.ResearchResult, len(results))
	for i, r := range results {
		out[i] = r
		if !r.Succeeded() {
			continue
		}
		data, err := w.renderArtifact(r)
		if err == nil {
			err = filelock.AtomicWrite(r.Task.OutputPath, data)
		}
		if err != nil {
			out[i] = models.FailedResult(r.Task,
				models.NewWriteError(r.Task.Directory, "could not write artifact "+r.Task.OutputPath, err),
				r.Duration)
		}
	}
	return out
}

func (w *Writer) renderArtifact(r models.ResearchResult) ([]byte, error) {
	generated := w.now()
	if w.Format == models.FormatJSON {
		return RenderJSONArtifact(r, generated)
	}
	return RenderMarkdownArtifact(r, generated), nil
}

// SummaryMeta carries the run-level fields of a RunSummary.
type SummaryMeta struct {
	RunID      string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
}

// BuildSummary assembles the format-independent run summary: one entry per
// task in task order, followed by one not_found entry per missing directory.
func (w *Writer) BuildSummary(meta SummaryMeta, results []models.ResearchResult, missing []*models.ResearchError) models.RunSummary {
	summary := models.RunSummary{
		RunID:      meta.RunID,
		Root:       meta.Root,
		OutputRoot: w.OutputRoot,
		Format:     w.Format,
		StartedAt:  meta.StartedAt,
		FinishedAt: meta.FinishedAt,
		DryRun:     meta.DryRun,
		Entries:    make([]models.SummaryEntry, 0, len(results)+len(missing)),
	}

	for _, r := range results {
		entry := models.SummaryEntry{
			Directory:  r.Task.Directory,
			Status:     r.Status,
			DurationMS: r.Duration.Milliseconds(),
			Message:    r.Message,
		}
		if r.Succeeded() {
			entry.Artifact = w.relative(r.Task.OutputPath)
			entry.Synopsis = Synopsis(r.Output)
		}
		summary.Entries = append(summary.Entries, entry)
	}

	for _, m := range missing {
		if m == nil {
			continue
		}
		summary.Entries = append(summary.Entries, models.SummaryEntry{
			Directory: m.Target,
			Status:    models.StatusNotFound,
			Message:   m.Message,
		})
	}

	summary.Tally()
	return summary
}

// WriteSummary renders summary in the writer's format and writes it atomically.
// A failure here is fatal for the run and is reported as a WriteFailure.
func (w *Writer) WriteSummary(summary models.RunSummary) error {
	var (
		data []byte
		err  error
	)
	if w.Format == models.FormatJSON {
		data, err = RenderJSONSummary(summary)
	} else {
		data = RenderMarkdownSummary(summary)
	}
	if err == nil {
		err = filelock.AtomicWrite(w.SummaryPath, data)
	}
	if err != nil {
		return models.NewWriteError(w.SummaryPath, "could not write run summary", err)
	}
	return nil
}

// relative returns path relative to the output root, slash-separated.
func (w *Writer) relative(path string) string {
	rel, err := filepath.Rel(w.OutputRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Writer) now() time.Time {
	if w.Now == nil {
		return time.Now().UTC()
	}
	return w.Now().UTC()
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", ms)
	}
	return d.Round(100 * time.Millisecond).String()
}
