//go:build basic

// Package integration contains integration tests for repotrend.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/repotrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRankVerification ranks seeded snapshots and verifies totals against them.
func TestRankVerification(t *testing.T) {
	dataDir := seedDataDir(t)
	outFile := filepath.Join(t.TempDir(), "rank.json")

	_, err := runRepotrend(t, "rank",
		"--data-dir", dataDir,
		"--repos-file", filepath.Join(dataDir, "missing.json"),
		"--cache-backend", "none",
		"--output", "json",
		"--output-file", outFile,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var ranked []schema.RankedRepository
	require.NoError(t, json.Unmarshal(data, &ranked))

	require.Len(t, ranked, 2)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "widgets", ranked[0].Repository.Name)
	assert.Equal(t, schema.Totals{Stars: 250, Forks: 3, Issues: 2, PullRequests: 1}, ranked[0].Totals)
	assert.Equal(t, "gadgets", ranked[1].Repository.Name)
	assert.Equal(t, 10, ranked[1].Totals.Stars)
}

// TestHistoryVerification checks that the last cumulative point of each project
// matches the snapshot totals.
func TestHistoryVerification(t *testing.T) {
	dataDir := seedDataDir(t)
	outFile := filepath.Join(t.TempDir(), "history.csv")

	_, err := runRepotrend(t, "history",
		"--data-dir", dataDir,
		"--cache-backend", "none",
		"--output", "csv",
		"--output-file", outFile,
	)
	require.NoError(t, err)

	f, err := os.Open(outFile)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Greater(t, len(records), 1)
	assert.Equal(t, "project", records[0][0])

	last := map[string][]string{}
	for _, rec := range records[1:] {
		last[rec[0]] = rec
	}
	require.Contains(t, last, "widgets")
	assert.Equal(t, "250", last["widgets"][3], "cumulative stars")
	assert.Equal(t, "3", last["widgets"][4], "cumulative forks")
	assert.Equal(t, "10", last["gadgets"][3])
}

// TestInitRequiresToken fails fast when no token can be resolved.
func TestInitRequiresToken(t *testing.T) {
	dataDir := t.TempDir()
	output, err := runRepotrend(t, "init", "acme/widgets",
		"--data-dir", dataDir,
		"--token-file", filepath.Join(dataDir, "no-token.txt"),
		"--github-token", "",
		"--cache-backend", "none",
	)
	require.Error(t, err)
	assert.True(t, strings.Contains(strings.ToLower(output), "token"), output)
}
