package models

import "time"

// SummaryEntry is one row of the run summary artifact.
type SummaryEntry struct {
	Directory  string `json:"directory"`
	Status     Status `json:"status"`
	Artifact   string `json:"artifact,omitempty"` // Path relative to the output root; empty when nothing was written
	DurationMS int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
	Synopsis   string `json:"synopsis,omitempty"`
}

// RunSummary is the format-independent record of a run. Both the markdown and
// the JSON summary artifacts are rendered from this value.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	Root       string         `json:"root"`
	OutputRoot string         `json:"output_root"`
	Format     Format         `json:"format"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	DryRun     bool           `json:"dry_run,omitempty"`
	Counts     map[Status]int `json:"counts"`
	Entries    []SummaryEntry `json:"entries"`
}

// Tally recomputes Counts from Entries.
func (s *RunSummary) Tally() {
	s.Counts = make(map[Status]int, len(AllStatuses))
	for _, st := range AllStatuses {
		s.Counts[st] = 0
	}
	for _, e := range s.Entries {
		s.Counts[e.Status]++
	}
}

// Failures returns the number of entries that did not succeed.
func (s RunSummary) Failures() int {
	n := 0
	for _, e := range s.Entries {
		if e.Status != StatusSucceeded {
			n++
		}
	}
	return n
}

// Total returns the number of entries.
func (s RunSummary) Total() int {
	return len(s.Entries)
}

// EntriesWithStatus returns the entries with the given status, in summary order.
func (s RunSummary) EntriesWithStatus(status Status) []SummaryEntry {
	var out []SummaryEntry
	for _, e := range s.Entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

// Duration returns the wall time of the run.
func (s RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
