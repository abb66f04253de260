// Package parquet provides data structures and functions for exporting repotrend
// run data and star histories to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/huangsam/repotrend/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single tracked run with metadata.
// This struct maps to the repotrend_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Command is the subcommand that started the run (init or update)
	Command string `parquet:"command,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the wall time of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	TotalRepos   *int32 `parquet:"total_repos,optional,snappy"`
	SuccessCount *int32 `parquet:"success_count,optional,snappy"`
	SkippedCount *int32 `parquet:"skipped_count,optional,snappy"`
	ErrorCount   *int32 `parquet:"error_count,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// JobOutcome represents the outcome of one repository within a run.
// This struct maps to the repotrend_job_outcomes database table.
type JobOutcome struct {
	RunID        int64     `parquet:"run_id,snappy"`
	Repository   string    `parquet:"repository,snappy"`
	Status       string    `parquet:"status,snappy"`
	Reason       string    `parquet:"reason,snappy"`
	Message      string    `parquet:"message,snappy"`
	Stars        int32     `parquet:"stars,snappy"`
	Forks        int32     `parquet:"forks,snappy"`
	Issues       int32     `parquet:"issues,snappy"`
	PullRequests int32     `parquet:"pull_requests,snappy"`
	DurationMs   int64     `parquet:"duration_ms,snappy"`
	RecordedAt   time.Time `parquet:"recorded_at,snappy"`
}

// HistoryPoint is one cumulative point of a project history, flattened for analytics.
type HistoryPoint struct {
	Project      string `parquet:"project,snappy,dict"`
	HTMLURL      string `parquet:"html_url,snappy,dict"`
	Date         string `parquet:"date,snappy"`
	Stars        int32  `parquet:"stars,snappy"`
	Forks        int32  `parquet:"forks,snappy"`
	Issues       int32  `parquet:"issues,snappy"`
	PullRequests int32  `parquet:"pull_requests,snappy"`
}

// writeRows writes a slice of rows to w using struct schema inference.
func writeRows[T any](data []T, w io.Writer) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes rows into it.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeRows(data, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteOutcomesParquet writes a slice of JobOutcome structs to a Parquet file.
func WriteOutcomesParquet(data []JobOutcome, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteHistory writes history points as Parquet to w.
func WriteHistory(data []HistoryPoint, w io.Writer) error {
	return writeRows(data, w)
}

func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	out := int32(*v)
	return &out
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Command:       record.Command,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.DurationMs,
			TotalRepos:    int32Ptr(record.TotalRepos),
			SuccessCount:  int32Ptr(record.SuccessCount),
			SkippedCount:  int32Ptr(record.SkippedCount),
			ErrorCount:    int32Ptr(record.ErrorCount),
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertOutcomeRecords converts schema.OutcomeRecord to JobOutcome for Parquet export.
func ConvertOutcomeRecords(records []schema.OutcomeRecord) []JobOutcome {
	result := make([]JobOutcome, len(records))
	for i, record := range records {
		result[i] = JobOutcome{
			RunID:        record.RunID,
			Repository:   record.Repository,
			Status:       record.Status,
			Reason:       record.Reason,
			Message:      record.Message,
			Stars:        int32(record.Stars),
			Forks:        int32(record.Forks),
			Issues:       int32(record.Issues),
			PullRequests: int32(record.PullRequests),
			DurationMs:   record.DurationMs,
			RecordedAt:   record.RecordedAt,
		}
	}
	return result
}

// ConvertHistories flattens a histories document, ordered by project then date.
func ConvertHistories(h schema.RepositoryHistories) []HistoryPoint {
	keys := make([]string, 0, len(h.Projects))
	for key := range h.Projects {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var result []HistoryPoint
	for _, key := range keys {
		project := h.Projects[key]
		for _, entry := range project.History {
			result = append(result, HistoryPoint{
				Project:      key,
				HTMLURL:      project.HTMLURL,
				Date:         entry.Timestamp,
				Stars:        int32(entry.Stars),
				Forks:        int32(entry.Forks),
				Issues:       int32(entry.Issues),
				PullRequests: int32(entry.PullRequests),
			})
		}
	}
	return result
}
