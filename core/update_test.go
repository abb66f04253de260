package core

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/internal/iocache"
	"github.com/huangsam/repotrend/internal/snapshot"
	"github.com/huangsam/repotrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var updateNow = time.Date(2024, 5, 3, 8, 30, 0, 0, time.UTC)

func metadataFor(ref schema.RepositoryRef, totals schema.Totals) schema.RepoMetadata {
	return schema.RepoMetadata{
		Name:              ref.Name,
		FullName:          ref.FullName(),
		HTMLURL:           ref.HTMLURL(),
		Stars:             totals.Stars,
		Forks:             totals.Forks,
		OpenIssues:        1,
		TotalIssues:       totals.Issues,
		TotalPullRequests: totals.PullRequests,
		LastCommit:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		FetchedAt:         updateNow,
	}
}

func updateDeps(t *testing.T, client *contract.MockMetadataClient) (Deps, *snapshot.Store) {
	store := snapshot.NewStore(t.TempDir())
	return Deps{
		Metadata: client,
		Store:    store,
		Clock:    func() time.Time { return updateNow },
	}, store
}

func saveWidgets(t *testing.T, store *snapshot.Store) *schema.RepositorySnapshot {
	harvest := schema.HarvestResult{
		Counts:  schema.Totals{Stars: 250, Forks: 3, Issues: 2},
		Buckets: map[schema.EdgeKind]schema.DateBucketMap{schema.StarEdge: {"2024-05-01": 150, "2024-05-02": 100}},
	}
	snap := snapshot.FullReplace(harvest, batchNow)
	require.NoError(t, store.Save(widgets, snap))
	return snap
}

func TestRunUpdate_RecordsDelta(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	client := &contract.MockMetadataClient{}
	client.On("Repository", mock.Anything, widgets).Return(metadataFor(widgets, schema.Totals{Stars: 255, Forks: 3, Issues: 4, PullRequests: 1}), nil)
	deps, store := updateDeps(t, client)
	saveWidgets(t, store)

	results, err := RunUpdate(ctx, batchConfig(1), deps, []schema.RepositoryRef{widgets})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.True(t, r.Changed)
	assert.Empty(t, r.Error)
	assert.Equal(t, schema.Totals{Stars: 250, Forks: 3, Issues: 2}, r.Previous)
	assert.Equal(t, schema.Totals{Stars: 255, Forks: 3, Issues: 4, PullRequests: 1}, r.Current)
	assert.Equal(t, schema.Totals{Stars: 5, Issues: 2, PullRequests: 1}, r.Deltas)

	snap, err := store.Load(widgets)
	require.NoError(t, err)
	assert.Equal(t, 255, snap.TotalStars)
	assert.Equal(t, 5, snap.StarsByDate["2024-05-03"])
	assert.Equal(t, 150, snap.StarsByDate["2024-05-01"])
	assert.NotContains(t, snap.ForksByDate, "2024-05-03")
	assert.Equal(t, "2024-05-03T08:30:00Z", snap.FetchedAt)
	client.AssertExpectations(t)
}

func TestRunUpdate_NoChangeSkipsWrite(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	client := &contract.MockMetadataClient{}
	client.On("Repository", mock.Anything, widgets).Return(metadataFor(widgets, schema.Totals{Stars: 250, Forks: 3, Issues: 2}), nil)
	deps, store := updateDeps(t, client)
	saveWidgets(t, store)

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(store.Path(widgets), old, old))

	results, err := RunUpdate(ctx, batchConfig(1), deps, []schema.RepositoryRef{widgets})
	require.NoError(t, err)
	assert.False(t, results[0].Changed)
	assert.Equal(t, schema.Totals{}, results[0].Deltas)

	info, err := os.Stat(store.Path(widgets))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old))
}

func TestRunUpdate_SkipsWithoutCompleteSnapshot(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	client := &contract.MockMetadataClient{}
	client.On("Repository", mock.Anything, widgets).Return(metadataFor(widgets, schema.Totals{Stars: 10}), nil)
	client.On("Repository", mock.Anything, gadgets).Return(metadataFor(gadgets, schema.Totals{Stars: 20}), nil)
	deps, store := updateDeps(t, client)
	require.NoError(t, store.Save(gadgets, snapshot.InProgress(batchNow)))

	results, err := RunUpdate(ctx, batchConfig(2), deps, []schema.RepositoryRef{widgets, gadgets})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Skipped)
	assert.Equal(t, schema.ReasonNoSnapshot, results[0].Reason)
	assert.Equal(t, 10, results[0].Current.Stars)
	assert.Equal(t, "https://github.com/acme/widgets", results[0].Metadata.HTMLURL)
	assert.False(t, store.Exists(widgets))

	assert.True(t, results[1].Skipped)
	assert.Equal(t, schema.ReasonIncomplete, results[1].Reason)
	snap, err := store.Load(gadgets)
	require.NoError(t, err)
	assert.False(t, snap.IsComplete())
}

func TestRunUpdate_MetadataErrorIsIsolated(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	client := &contract.MockMetadataClient{}
	client.On("Repository", mock.Anything, gone).Return(schema.RepoMetadata{}, errors.New("failed to fetch repository acme/gone: 404"))
	client.On("Repository", mock.Anything, widgets).Return(metadataFor(widgets, schema.Totals{Stars: 251, Forks: 3, Issues: 2}), nil)
	deps, store := updateDeps(t, client)
	saveWidgets(t, store)

	results, err := RunUpdate(ctx, batchConfig(2), deps, []schema.RepositoryRef{gone, widgets})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, gone, results[0].Repository)
	assert.Contains(t, results[0].Error, "404")
	assert.Equal(t, widgets, results[1].Repository)
	assert.True(t, results[1].Changed)
	assert.Equal(t, 1, results[1].Deltas.Stars)
}

func TestRunUpdate_WritesMetadataCache(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	client := &contract.MockMetadataClient{}
	meta := metadataFor(widgets, schema.Totals{Stars: 250, Forks: 3, Issues: 2})
	client.On("Repository", mock.Anything, widgets).Return(meta, nil)
	deps, store := updateDeps(t, client)
	saveWidgets(t, store)

	cacheStore := &iocache.MockCacheStore{}
	cacheStore.On("Set", "meta:acme/widgets", mock.Anything, currentCacheVersion, mock.Anything).Return(nil).Once()
	runStore := &iocache.MockRunStore{}
	runStore.On("BeginRun", "update", mock.Anything, mock.Anything).Return(int64(3), nil)
	runStore.On("RecordOutcome", int64(3), mock.MatchedBy(func(o schema.JobOutcome) bool {
		return o.Status == schema.SkippedOutcome && o.Reason == schema.ReasonUnchanged
	}), mock.Anything).Return(nil)
	runStore.On("EndRun", int64(3), mock.Anything, mock.Anything).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetMetadataStore").Return(cacheStore)
	mgr.On("GetRunStore").Return(runStore)
	deps.Manager = mgr

	_, err := RunUpdate(ctx, batchConfig(1), deps, []schema.RepositoryRef{widgets})
	require.NoError(t, err)
	cacheStore.AssertExpectations(t)
	runStore.AssertExpectations(t)
}

func TestUpdateOutcome(t *testing.T) {
	tests := []struct {
		name   string
		result schema.UpdateResult
		status schema.OutcomeStatus
		reason string
	}{
		{"error", schema.UpdateResult{Error: "boom"}, schema.ErrorOutcome, ""},
		{"skipped", schema.UpdateResult{Skipped: true, Reason: schema.ReasonNoSnapshot}, schema.SkippedOutcome, schema.ReasonNoSnapshot},
		{"unchanged", schema.UpdateResult{}, schema.SkippedOutcome, schema.ReasonUnchanged},
		{"changed", schema.UpdateResult{Changed: true}, schema.SuccessOutcome, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := updateOutcome(tt.result)
			assert.Equal(t, tt.status, outcome.Status)
			assert.Equal(t, tt.reason, outcome.Reason)
		})
	}
}
