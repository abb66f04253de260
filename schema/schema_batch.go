package schema

import "time"

// JobOutcome is the result of processing one repository.
type JobOutcome struct {
	Repository RepositoryRef `json:"repository"`
	Status     OutcomeStatus `json:"status"`
	Totals     Totals        `json:"totals"`
	Reason     string        `json:"reason,omitempty"`
	Message    string        `json:"message,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// RunSummary aggregates the outcomes of a batch run.
type RunSummary struct {
	Total    int               `json:"total"`
	Success  int               `json:"success"`
	Skipped  int               `json:"skipped"`
	Errors   int               `json:"errors"`
	Failures map[string]string `json:"failures,omitempty"`
	Totals   Totals            `json:"totals"`
	Duration time.Duration     `json:"duration"`
}

// Failed reports whether any job ended in error.
func (s RunSummary) Failed() bool {
	return s.Errors > 0
}

// Summarize builds a RunSummary from job outcomes.
func Summarize(outcomes []JobOutcome, duration time.Duration) RunSummary {
	summary := RunSummary{
		Total:    len(outcomes),
		Failures: map[string]string{},
		Duration: duration,
	}
	for _, o := range outcomes {
		switch o.Status {
		case SuccessOutcome:
			summary.Success++
			summary.Totals = summary.Totals.Add(o.Totals)
		case SkippedOutcome:
			summary.Skipped++
		case ErrorOutcome:
			summary.Errors++
			summary.Failures[o.Repository.FullName()] = o.Message
		}
	}
	return summary
}

// UpdateResult is the result of an incremental update for one repository.
// Metadata is filled even when the snapshot was skipped, so reports can list every repository.
type UpdateResult struct {
	Repository RepositoryRef `json:"repository"`
	Metadata   RepoMetadata  `json:"metadata"`
	Previous   Totals        `json:"previous"`
	Current    Totals        `json:"current"`
	Deltas     Totals        `json:"deltas"`
	Changed    bool          `json:"changed"`
	Skipped    bool          `json:"skipped,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Error      string        `json:"error,omitempty"`
}
