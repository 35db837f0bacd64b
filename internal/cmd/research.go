package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/codescout/internal/claude"
	"github.com/harrison/codescout/internal/config"
	"github.com/harrison/codescout/internal/display"
	"github.com/harrison/codescout/internal/executor"
	"github.com/harrison/codescout/internal/filelock"
	"github.com/harrison/codescout/internal/logger"
	"github.com/harrison/codescout/internal/models"
	"github.com/harrison/codescout/internal/pathfilter"
	"github.com/harrison/codescout/internal/planner"
	"github.com/harrison/codescout/internal/scanner"
	"github.com/harrison/codescout/internal/writer"
)

// Deps are the collaborators of a research run. Zero values select the
// production implementations, so tests only set what they replace.
type Deps struct {
	// Analyzer researches one directory. Nil builds a claude.Invoker from cfg.Claude.
	Analyzer claude.Analyzer
	// Logger receives run events. Nil discards them.
	Logger logger.Logger
	// Out receives the dry-run listing and warnings. Nil discards them.
	Out io.Writer
	// Color enables ANSI colors on Out.
	Color bool
	// Now is the clock used for summary and artifact timestamps.
	Now func() time.Time
	// NewRunID returns the identifier recorded in the summary.
	NewRunID func() string
}

// Outcome describes what a run did.
type Outcome struct {
	Tasks   []models.ResearchTask
	Summary *models.RunSummary // nil for dry runs and runs that stopped before the fanout
	DryRun  bool
}

// RunResearch executes the pipeline scan, filter, plan, fanout, aggregate for
// cfg. Behavior depends only on cfg, deps and the filesystem at scan time.
//
// The returned error classifies the run for ExitCodeFor: a ConfigError when
// nothing ran, a WriteFailure when the summary could not be written, the
// context error when interrupted, and *executor.TaskFailuresError when any
// directory did not succeed.
func RunResearch(ctx context.Context, cfg *config.Config, deps Deps) (*Outcome, error) {
	deps = deps.withDefaults()
	log := deps.Logger

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	filter, err := pathfilter.NewDefault(cfg.Exclude...)
	if err != nil {
		return nil, err
	}
	log.LogTrace("Exclusion patterns: " + strings.Join(filter.Patterns(), ", "))
	pl, err := planner.New(cfg.Root, cfg.OutputDir, cfg.Format)
	if err != nil {
		return nil, err
	}

	analyzer := deps.Analyzer
	if analyzer == nil {
		inv, err := newInvoker(cfg.Claude)
		if err != nil {
			return nil, err
		}
		analyzer = inv
	}

	scan, err := scanner.Scan(cfg.Root, scanner.Options{
		Depth:     cfg.Depth,
		Filter:    filter,
		Overrides: cfg.Dirs,
	})
	if err != nil {
		return nil, err
	}

	candidates := scan.Candidates
	if len(cfg.Dirs) == 0 {
		candidates = withoutOutputRoot(candidates, cfg.Root, pl.OutputRoot)
	}
	if len(scan.Excluded) > 0 {
		log.LogDebug("Excluded: " + strings.Join(scan.Excluded, ", "))
	}
	reportScanProblems(scan, log, deps)

	tasks := pl.Plan(candidates)
	outcome := &Outcome{Tasks: tasks, DryRun: cfg.DryRun}

	if cfg.DryRun {
		if err := pl.CheckOutputRoot(); err != nil {
			return nil, err
		}
		display.ShowPlan(deps.Out, pl.OutputRoot, tasks, true, deps.Color)
		return outcome, nil
	}

	if err := pl.EnsureOutputRoot(); err != nil {
		return nil, err
	}
	lock, err := filelock.AcquireRunLock(cfg.StateDir(), pl.OutputRoot)
	if err != nil {
		return nil, models.NewConfigError("output", "cannot lock output root "+pl.OutputRoot, err)
	}
	defer lock.Unlock()

	fanout := executor.NewFanout(analyzer, log, cfg.MaxConcurrency, cfg.TaskTimeout)
	runID := deps.NewRunID()
	started := deps.Now()
	log.LogInfo(fmt.Sprintf("Run %s: researching %d directories under %s (max concurrency %d)",
		runID, len(tasks), cfg.Root, fanout.MaxConcurrency()))

	results, runErr := fanout.Execute(ctx, tasks)
	if runErr != nil {
		log.LogWarn("Run interrupted; writing partial summary")
	}

	w := writer.New(pl.Format, pl.OutputRoot, pl.SummaryPath())
	w.Now = deps.Now
	results = w.WriteArtifacts(results)

	summary := w.BuildSummary(writer.SummaryMeta{
		RunID:      runID,
		Root:       cfg.Root,
		StartedAt:  started,
		FinishedAt: deps.Now(),
	}, results, scan.Missing)
	outcome.Summary = &summary

	// The console report is printed even when the summary file is not
	if err := w.WriteSummary(summary); err != nil {
		log.LogError(err.Error())
		log.LogSummary(summary)
		return outcome, err
	}
	log.LogSummary(summary)

	if runErr != nil {
		return outcome, fmt.Errorf("research interrupted: %w", runErr)
	}
	if failures := executor.NewTaskFailuresError(summary); failures != nil {
		return outcome, failures
	}
	return outcome, nil
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logger.NewNoOpLogger()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewRunID == nil {
		d.NewRunID = uuid.NewString
	}
	return d
}

// newInvoker builds the production analyzer from configuration.
func newInvoker(c config.ClaudeConfig) (*claude.Invoker, error) {
	inv := claude.NewInvoker()
	inv.ClaudePath = c.Path
	inv.Model = c.Model
	if c.PermissionMode != "" {
		inv.PermissionMode = c.PermissionMode
	}
	if len(c.AllowedTools) > 0 {
		inv.AllowedTools = c.AllowedTools
	}
	if c.PromptTemplate != "" {
		pb, err := claude.NewPromptBuilder(c.PromptTemplate)
		if err != nil {
			return nil, err
		}
		inv.Prompt = pb
	}
	return inv, nil
}

// withoutOutputRoot drops discovered directories that are the output root or
// lie inside it, so a run never researches its own artifacts.
func withoutOutputRoot(candidates []models.CandidateDirectory, root, outputRoot string) []models.CandidateDirectory {
	rel, err := filepath.Rel(root, outputRoot)
	if err != nil {
		return candidates
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return candidates
	}

	kept := candidates[:0:0]
	for _, c := range candidates {
		if c.RelPath == rel || strings.HasPrefix(c.RelPath, rel+"/") {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// reportScanProblems surfaces --dirs entries that were dropped. They never stop the run.
func reportScanProblems(scan *scanner.Result, log logger.Logger, deps Deps) {
	if len(scan.Duplicates) > 0 {
		executor.GracefulWarn(log, "Dropped duplicate --dirs entries: "+strings.Join(scan.Duplicates, ", "))
		w := display.WarnDuplicateDirectories(scan.Duplicates)
		w.Color = deps.Color
		w.Display(deps.Out)
	}
	if len(scan.Missing) > 0 {
		for _, m := range scan.Missing {
			executor.GracefulWarn(log, m.Error())
		}
		w := display.WarnMissingDirectories(scan.Missing)
		w.Color = deps.Color
		w.Display(deps.Out)
	}
}
