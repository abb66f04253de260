package iocache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repotrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

func TestExecuteRunExport(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun("update", fixedTime, map[string]any{"repos": 1})
	require.NoError(t, err)
	require.NoError(t, store.RecordOutcome(runID, schema.JobOutcome{Repository: widgets, Status: schema.SuccessOutcome}, fixedTime))
	require.NoError(t, store.EndRun(runID, fixedTime.Add(time.Second), schema.RunSummary{Total: 1, Success: 1}))

	base := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExecuteRunExport(store, base))

	for _, suffix := range []string{".runs.parquet", ".job_outcomes.parquet"} {
		info, err := os.Stat(base + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestExecuteRunExport_Errors(t *testing.T) {
	t.Run("no output file", func(t *testing.T) {
		assert.ErrorContains(t, ExecuteRunExport(&MockRunStore{}, ""), "--output-file")
	})

	t.Run("tracking disabled", func(t *testing.T) {
		assert.ErrorContains(t, ExecuteRunExport(nil, "out"), "not enabled")
	})

	t.Run("no runs", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite"}, nil)
		assert.ErrorContains(t, ExecuteRunExport(store, "out"), "no run data")
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{}, errors.New("boom"))
		assert.ErrorContains(t, ExecuteRunExport(store, "out"), "boom")
	})

	t.Run("outcome query failure", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{TotalRuns: 1}, nil)
		store.On("GetAllRuns").Return([]schema.RunRecord{}, nil)
		store.On("GetAllOutcomes").Return(nil, errors.New("locked"))
		assert.ErrorContains(t, ExecuteRunExport(store, filepath.Join(t.TempDir(), "out")), "locked")
		store.AssertExpectations(t)
	})
}
