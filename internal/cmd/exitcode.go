package cmd

import (
	"context"
	"errors"

	"github.com/harrison/codescout/internal/models"
)

// Process exit codes. These are part of the CLI contract and listed in --help.
const (
	ExitOK           = 0   // every directory researched, or dry run completed
	ExitTaskFailures = 1   // at least one directory failed, timed out, was not found or not written
	ExitConfig       = 2   // invalid configuration; nothing ran
	ExitSummaryWrite = 3   // the run summary could not be written
	ExitInterrupted  = 130 // interrupted; the partial summary was written
)

// ExitCodeFor maps a run error to the process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	switch models.KindOf(err) {
	case models.KindConfig:
		return ExitConfig
	case models.KindWrite:
		return ExitSummaryWrite
	}

	if errors.Is(err, context.Canceled) || models.KindOf(err) == models.KindCancelled {
		return ExitInterrupted
	}
	// *executor.TaskFailuresError and anything unclassified
	return ExitTaskFailures
}
