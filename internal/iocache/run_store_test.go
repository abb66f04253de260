package iocache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/repotrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	widgets = schema.RepositoryRef{Owner: "acme", Name: "widgets"}
	gone    = schema.RepositoryRef{Owner: "acme", Name: "gone"}
)

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun("init", time.Now(), map[string]any{"workers": 3})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.RecordOutcome(1, schema.JobOutcome{Repository: widgets}, time.Now()))
	assert.NoError(t, store.EndRun(1, time.Now(), schema.RunSummary{}))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestRunStore_SQLite(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun("init", start, map[string]any{"workers": 3, "data_dir": "repo_data"})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	outcomes := []schema.JobOutcome{
		{Repository: widgets, Status: schema.SuccessOutcome, Totals: schema.Totals{Stars: 250, Forks: 3, Issues: 2}, Duration: 1500 * time.Millisecond},
		{Repository: gone, Status: schema.ErrorOutcome, Message: "Cannot access repository acme/gone"},
	}
	for _, o := range outcomes {
		require.NoError(t, store.RecordOutcome(runID, o, start.Add(time.Second)))
	}

	summary := schema.Summarize(outcomes, 2*time.Second)
	require.NoError(t, store.EndRun(runID, start.Add(2*time.Second), summary))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, "init", run.Command)
	assert.True(t, run.StartTime.Equal(start))
	require.NotNil(t, run.EndTime)
	assert.True(t, run.EndTime.Equal(start.Add(2*time.Second)))
	require.NotNil(t, run.DurationMs)
	assert.Equal(t, int64(2000), *run.DurationMs)
	require.NotNil(t, run.TotalRepos)
	assert.Equal(t, 2, *run.TotalRepos)
	assert.Equal(t, 1, *run.SuccessCount)
	assert.Equal(t, 1, *run.ErrorCount)
	require.NotNil(t, run.ConfigParams)
	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(*run.ConfigParams), &params))
	assert.Equal(t, "repo_data", params["data_dir"])

	records, err := store.GetAllOutcomes()
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Ordered by repository
	assert.Equal(t, "acme/gone", records[0].Repository)
	assert.Equal(t, "error", records[0].Status)
	assert.Equal(t, "Cannot access repository acme/gone", records[0].Message)
	assert.Equal(t, "acme/widgets", records[1].Repository)
	assert.Equal(t, 250, records[1].Stars)
	assert.Equal(t, int64(1500), records[1].DurationMs)
	assert.True(t, records[1].RecordedAt.Equal(start.Add(time.Second)))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.True(t, status.LastRunTime.Equal(start))
	assert.True(t, status.OldestRunTime.Equal(start))
	assert.Equal(t, 1, status.TotalJobErrors)
	assert.Equal(t, int64(1), status.TableSizes[runsTable])
	assert.Equal(t, int64(2), status.TableSizes[jobOutcomesTable])
}

func TestRunStore_UnfinishedRun(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	first, err := store.BeginRun("init", time.Now(), nil)
	require.NoError(t, err)
	second, err := store.BeginRun("update", time.Now(), nil)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].DurationMs)
	assert.Equal(t, "update", runs[1].Command)

	assert.Error(t, store.EndRun(999, time.Now(), schema.RunSummary{}), "Unknown run IDs are rejected")
}

func TestRunStore_DuplicateOutcome(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun("init", time.Now(), nil)
	require.NoError(t, err)
	o := schema.JobOutcome{Repository: widgets, Status: schema.SuccessOutcome}
	require.NoError(t, store.RecordOutcome(runID, o, time.Now()))
	assert.Error(t, store.RecordOutcome(runID, o, time.Now()))
}
