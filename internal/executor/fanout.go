// Package executor runs research tasks against an Analyzer with bounded parallelism.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/harrison/codescout/internal/claude"
	"github.com/harrison/codescout/internal/models"
)

const (
	// DefaultMaxConcurrency bounds concurrent analyzer processes when none is configured.
	DefaultMaxConcurrency = 4
	// DefaultTaskTimeout bounds a single analyzer invocation when none is configured.
	DefaultTaskTimeout = 10 * time.Minute
)

// Logger receives fanout progress events. Implementations must be safe for
// concurrent use; events arrive from worker goroutines.
type Logger interface {
	LogTaskStart(task models.ResearchTask)
	LogTaskResult(result models.ResearchResult)
	LogProgress(done, total int)
}

// Fanout executes independent research tasks. Tasks share no state: each gets
// its own timeout and its own result slot, and a failing task never stops the others.
type Fanout struct {
	analyzer       claude.Analyzer
	logger         Logger
	maxConcurrency int
	taskTimeout    time.Duration
}

// NewFanout constructs a Fanout. The logger may be nil. Non-positive
// maxConcurrency selects DefaultMaxConcurrency; a zero taskTimeout disables the
// per-task deadline.
func NewFanout(analyzer claude.Analyzer, logger Logger, maxConcurrency int, taskTimeout time.Duration) *Fanout {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Fanout{
		analyzer:       analyzer,
		logger:         logger,
		maxConcurrency: maxConcurrency,
		taskTimeout:    taskTimeout,
	}
}

// MaxConcurrency returns the effective worker limit.
func (f *Fanout) MaxConcurrency() int {
	return f.maxConcurrency
}

// Execute runs every task and returns exactly one result per task, in task order.
// When ctx is cancelled, in-flight analyzers are interrupted, unstarted tasks are
// recorded as cancelled, and ctx's error is returned alongside the results.
func (f *Fanout) Execute(ctx context.Context, tasks []models.ResearchTask) ([]models.ResearchResult, error) {
	if f == nil || f.analyzer == nil {
		return nil, fmt.Errorf("fanout executor requires an analyzer")
	}

	results := make([]models.ResearchResult, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}

	sem := semaphore.NewWeighted(int64(f.maxConcurrency))
	var wg sync.WaitGroup
	var done int32
	total := len(tasks)

	finish := func(i int, r models.ResearchResult) {
		results[i] = r
		n := atomic.AddInt32(&done, 1)
		if f.logger != nil {
			f.logger.LogTaskResult(r)
			f.logger.LogProgress(int(n), total)
		}
	}

	for i, task := range tasks {
		// Acquire may succeed on an already-cancelled context, so check first.
		acquireErr := ctx.Err()
		if acquireErr == nil {
			acquireErr = sem.Acquire(ctx, 1)
		}
		if acquireErr != nil {
			for j := i; j < len(tasks); j++ {
				finish(j, models.FailedResult(tasks[j],
					models.NewCancelledError(tasks[j].Directory, "skipped: run interrupted before the task started", acquireErr), 0))
			}
			break
		}

		wg.Add(1)
		go func(i int, task models.ResearchTask) {
			defer wg.Done()
			defer sem.Release(1)
			finish(i, f.runTask(ctx, task))
		}(i, task)
	}

	wg.Wait()
	return results, ctx.Err()
}

// runTask executes a single task under its own deadline and classifies the outcome.
func (f *Fanout) runTask(ctx context.Context, task models.ResearchTask) models.ResearchResult {
	if err := ctx.Err(); err != nil {
		return models.FailedResult(task, models.NewCancelledError(task.Directory, "skipped: run interrupted", err), 0)
	}

	if f.logger != nil {
		f.logger.LogTaskStart(task)
	}

	taskCtx := ctx
	cancel := func() {}
	if f.taskTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, f.taskTimeout)
	}
	defer cancel()

	start := time.Now()
	output, err := f.safeAnalyze(taskCtx, task)
	duration := time.Since(start)

	if err != nil {
		return models.FailedResult(task, f.classify(ctx, taskCtx, task, err), duration)
	}
	if strings.TrimSpace(output) == "" {
		return models.FailedResult(task, models.NewProcessError(task.Directory, "analyzer returned no output", nil), duration)
	}

	return models.ResearchResult{
		Task:     task,
		Status:   models.StatusSucceeded,
		Output:   output,
		Duration: duration,
	}
}

// classify makes sure err carries the right kind. Analyzers that return plain
// errors are mapped using the state of the parent and task contexts.
func (f *Fanout) classify(parent, taskCtx context.Context, task models.ResearchTask, err error) error {
	switch {
	case parent.Err() != nil:
		if models.KindOf(err) == models.KindCancelled {
			return err
		}
		return models.NewCancelledError(task.Directory, "analyzer interrupted", err)
	case errors.Is(taskCtx.Err(), context.DeadlineExceeded):
		if models.KindOf(err) == models.KindTimeout {
			return err
		}
		return models.NewTimeoutError(task.Directory, fmt.Sprintf("Timeout: analyzer exceeded %s", f.taskTimeout), err)
	case models.KindOf(err) == models.KindUnknown:
		return models.NewProcessError(task.Directory, "analyzer failed", err)
	default:
		return err
	}
}

// safeAnalyze converts an analyzer panic into an ExternalProcessFailure so one
// misbehaving task cannot take down its siblings.
func (f *Fanout) safeAnalyze(ctx context.Context, task models.ResearchTask) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = ""
			err = models.NewProcessError(task.Directory, fmt.Sprintf("analyzer panicked: %v", r), nil)
		}
	}()
	return f.analyzer.Analyze(ctx, task)
}
