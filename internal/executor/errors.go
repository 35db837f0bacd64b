package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/codescout/internal/models"
)

// TaskFailuresError aggregates the tasks of a run that did not succeed.
// It is what a completed run returns when at least one directory failed.
type TaskFailuresError struct {
	Failed []models.SummaryEntry // Non-succeeded summary entries, in summary order
	Total  int                   // Number of entries in the run
}

// NewTaskFailuresError returns nil when every entry succeeded.
func NewTaskFailuresError(summary models.RunSummary) *TaskFailuresError {
	var failed []models.SummaryEntry
	for _, e := range summary.Entries {
		if e.Status != models.StatusSucceeded {
			failed = append(failed, e)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &TaskFailuresError{Failed: failed, Total: summary.Total()}
}

// Error implements the error interface.
func (e *TaskFailuresError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d/%d directories failed", len(e.Failed), e.Total))
	for _, f := range e.Failed {
		sb.WriteString(fmt.Sprintf("\n  - %s: %s", f.Directory, f.Status))
		if f.Message != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", f.Message))
		}
	}
	return sb.String()
}

// IsTaskFailures checks if the error is or wraps a TaskFailuresError.
func IsTaskFailures(err error) bool {
	if err == nil {
		return false
	}
	var te *TaskFailuresError
	return errors.As(err, &te)
}
