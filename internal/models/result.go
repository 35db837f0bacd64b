package models

import (
	"errors"
	"time"
)

// Status is the outcome of one research task.
type Status string

// Research task status constants
const (
	StatusSucceeded   Status = "succeeded"    // Analyzer output captured (and artifact written)
	StatusFailed      Status = "failed"       // Analyzer crashed, exited nonzero or returned garbage
	StatusTimedOut    Status = "timed_out"    // Analyzer exceeded the per-task timeout
	StatusNotFound    Status = "not_found"    // Explicitly listed directory does not exist
	StatusCancelled   Status = "cancelled"    // Skipped or killed by an interrupt
	StatusWriteFailed Status = "write_failed" // Analysis succeeded but the artifact write did not
)

// AllStatuses lists every status in report order.
var AllStatuses = []Status{
	StatusSucceeded,
	StatusFailed,
	StatusTimedOut,
	StatusNotFound,
	StatusCancelled,
	StatusWriteFailed,
}

// StatusForKind maps an error kind to the task status it produces.
func StatusForKind(kind ErrorKind) Status {
	switch kind {
	case KindTimeout:
		return StatusTimedOut
	case KindNotFound:
		return StatusNotFound
	case KindCancelled:
		return StatusCancelled
	case KindWrite:
		return StatusWriteFailed
	default:
		return StatusFailed
	}
}

// ResearchResult is the outcome of executing one ResearchTask.
type ResearchResult struct {
	Task     ResearchTask
	Status   Status
	Output   string        // Raw analyzer text, consumed verbatim by the writer
	Message  string        // Diagnostic for failed results
	Err      error         // Underlying error for failed results
	Duration time.Duration // Wall time spent in the analyzer
}

// Succeeded reports whether the analyzer produced usable output.
func (r ResearchResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// FailedResult builds a result for err, deriving status and message from its kind.
func FailedResult(task ResearchTask, err error, duration time.Duration) ResearchResult {
	msg := ""
	if err != nil {
		msg = err.Error()
		var re *ResearchError
		if errors.As(err, &re) {
			msg = re.Message
			if re.Err != nil {
				msg += ": " + re.Err.Error()
			}
		}
	}
	return ResearchResult{
		Task:     task,
		Status:   StatusForKind(KindOf(err)),
		Message:  msg,
		Err:      err,
		Duration: duration,
	}
}
