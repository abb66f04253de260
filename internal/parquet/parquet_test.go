package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repotrend/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, r io.ReaderAt) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](r)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		schema  *parquet.Schema
		columns []string
	}{
		{"run", parquet.SchemaOf(new(Run)), []string{"run_id", "command", "start_time", "end_time", "run_duration_ms", "total_repos", "success_count", "skipped_count", "error_count", "config_params"}},
		{"outcome", parquet.SchemaOf(new(JobOutcome)), []string{"run_id", "repository", "status", "reason", "message", "stars", "forks", "issues", "pull_requests", "duration_ms", "recorded_at"}},
		{"history", parquet.SchemaOf(new(HistoryPoint)), []string{"project", "html_url", "date", "stars", "forks", "issues", "pull_requests"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, col := range tt.columns {
				_, ok := tt.schema.Lookup(col)
				assert.True(t, ok, "Column %s should exist in schema", col)
			}
		})
	}
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")

	start := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	duration := int64(90000)
	total, success := 3, 2
	params := `{"workers":3}`
	records := []schema.RunRecord{
		{RunID: 1, Command: "init", StartTime: start, EndTime: &end, DurationMs: &duration, TotalRepos: &total, SuccessCount: &success, ConfigParams: &params},
		{RunID: 2, Command: "update", StartTime: end},
	}

	require.NoError(t, WriteRunsParquet(ConvertRunRecords(records), outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	rows := readAll[Run](t, file)
	require.Len(t, rows, 2)
	assert.Equal(t, "init", rows[0].Command)
	require.NotNil(t, rows[0].EndTime)
	assert.WithinDuration(t, end, *rows[0].EndTime, time.Nanosecond)
	require.NotNil(t, rows[0].TotalRepos)
	assert.Equal(t, int32(3), *rows[0].TotalRepos)
	assert.Nil(t, rows[0].SkippedCount)
	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].ConfigParams)
}

func TestWriteOutcomesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "outcomes.parquet")
	recorded := time.Date(2024, 5, 2, 12, 0, 1, 0, time.UTC)
	records := []schema.OutcomeRecord{
		{RunID: 1, Repository: "acme/widgets", Status: "success", Stars: 250, Forks: 3, DurationMs: 1200, RecordedAt: recorded},
		{RunID: 1, Repository: "acme/gone", Status: "error", Message: "Cannot access repository acme/gone", RecordedAt: recorded},
	}
	require.NoError(t, WriteOutcomesParquet(ConvertOutcomeRecords(records), outputPath))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	rows := readAll[JobOutcome](t, bytes.NewReader(data))
	require.Len(t, rows, 2)
	assert.Equal(t, int32(250), rows[0].Stars)
	assert.Equal(t, "Cannot access repository acme/gone", rows[1].Message)
}

func TestWriteHistory(t *testing.T) {
	h := schema.RepositoryHistories{
		Projects: map[string]schema.ProjectHistory{
			"widgets": {Name: "widgets", HTMLURL: "https://github.com/acme/widgets", History: []schema.HistoryEntry{
				{Timestamp: "2024-05-01", Stars: 150},
				{Timestamp: "2024-05-02", Stars: 250, Forks: 3},
			}},
			"gadgets": {Name: "gadgets", History: []schema.HistoryEntry{{Timestamp: "2024-01-01", Stars: 1}}},
			"empty":   {Name: "empty", History: []schema.HistoryEntry{}},
		},
	}

	points := ConvertHistories(h)
	require.Len(t, points, 3)
	assert.Equal(t, "gadgets", points[0].Project)
	assert.Equal(t, "widgets", points[2].Project)
	assert.Equal(t, int32(3), points[2].Forks)

	var buf bytes.Buffer
	require.NoError(t, WriteHistory(points, &buf))
	rows := readAll[HistoryPoint](t, bytes.NewReader(buf.Bytes()))
	assert.Equal(t, points, rows)
}

func TestWriteEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRunsParquet([]Run{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteInvalidPath(t *testing.T) {
	err := WriteOutcomesParquet(nil, "/nonexistent/directory/output.parquet")
	assert.Error(t, err)
}
