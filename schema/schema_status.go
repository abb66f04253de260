package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStatus represents the status of the run store.
type RunStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int              `json:"total_runs"`
	LastRunID      int64            `json:"last_run_id"`
	LastRunTime    time.Time        `json:"last_run_time"`
	OldestRunTime  time.Time        `json:"oldest_run_time"`
	TotalJobErrors int              `json:"total_job_errors"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the repotrend_runs table.
type RunRecord struct {
	RunID        int64
	Command      string
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int64
	TotalRepos   *int
	SuccessCount *int
	SkippedCount *int
	ErrorCount   *int
	ConfigParams *string
}

// OutcomeRecord represents a row from the repotrend_job_outcomes table.
type OutcomeRecord struct {
	RunID        int64
	Repository   string
	Status       string
	Reason       string
	Message      string
	Stars        int
	Forks        int
	Issues       int
	PullRequests int
	DurationMs   int64
	RecordedAt   time.Time
}
