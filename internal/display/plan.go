package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/harrison/codescout/internal/models"
)

// PlanListing prints a research plan one task per line: [N/Total] dir -> artifact.
// It backs --dry-run, where the listing is the only output of the run.
type PlanListing struct {
	writer     io.Writer
	outputRoot string
	total      int
	current    int
	color      bool
}

// NewPlanListing creates a listing for total tasks. Artifact paths are shown
// relative to outputRoot's parent so the output directory name stays visible.
func NewPlanListing(w io.Writer, outputRoot string, total int, color bool) *PlanListing {
	return &PlanListing{
		writer:     w,
		outputRoot: outputRoot,
		total:      total,
		color:      color,
	}
}

// Start displays the header.
func (p *PlanListing) Start() {
	fmt.Fprintf(p.writer, "Planned research tasks (%d):\n", p.total)
}

// Step displays the next task. Cyan when color is enabled.
func (p *PlanListing) Step(task models.ResearchTask) {
	p.current++
	line := fmt.Sprintf("  [%d/%d] %s -> %s", p.current, p.total, task.Directory, p.artifact(task.OutputPath))
	if p.color {
		line = "\x1b[36m" + line + "\x1b[0m"
	}
	fmt.Fprintln(p.writer, line)
}

// Complete displays the closing line. Dry runs say nothing was written.
func (p *PlanListing) Complete(dryRun bool) {
	check := "✓"
	if p.color {
		check = "\x1b[32m✓\x1b[0m"
	}
	if dryRun {
		fmt.Fprintf(p.writer, "%s %d directories planned (dry run: no analyzer invoked, nothing written)\n", check, p.total)
		return
	}
	fmt.Fprintf(p.writer, "%s %d directories planned\n", check, p.total)
}

func (p *PlanListing) artifact(path string) string {
	if p.outputRoot == "" {
		return path
	}
	rel, err := filepath.Rel(filepath.Dir(p.outputRoot), path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// ShowPlan prints a complete listing for tasks.
func ShowPlan(w io.Writer, outputRoot string, tasks []models.ResearchTask, dryRun, color bool) {
	listing := NewPlanListing(w, outputRoot, len(tasks), color)
	listing.Start()
	for _, task := range tasks {
		listing.Step(task)
	}
	listing.Complete(dryRun)
}
