package core

import (
	"testing"
	"time"

	"github.com/huangsam/repotrend/internal/snapshot"
	"github.com/huangsam/repotrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRankings(t *testing.T) {
	store := snapshot.NewStore(t.TempDir())
	now := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	widgetsHarvest := schema.HarvestResult{
		Counts: schema.Totals{Stars: 250, Forks: 3},
		Buckets: map[schema.EdgeKind]schema.DateBucketMap{
			schema.StarEdge: {"2023-01-01": 200, "2024-05-20": 50},
			schema.ForkEdge: {"2024-05-21": 3},
		},
	}
	require.NoError(t, store.Save(widgets, snapshot.FullReplace(widgetsHarvest, batchNow)))
	require.NoError(t, store.Save(gadgets, snapshot.FullReplace(schema.HarvestResult{Counts: schema.Totals{Stars: 900}}, batchNow)))
	require.NoError(t, store.Save(gizmos, snapshot.InProgress(batchNow)))

	lookup := func(ref schema.RepositoryRef) (schema.RepoMetadata, bool) {
		if ref != widgets {
			return schema.RepoMetadata{}, false
		}
		return schema.RepoMetadata{
			HTMLURL:    "https://github.com/acme/widgets",
			OpenIssues: 4,
			LastCommit: time.Date(2024, 5, 30, 22, 0, 0, 0, time.UTC),
		}, true
	}

	ranked := BuildRankings(store, []schema.RepositoryRef{widgets, gadgets, gizmos, gone}, lookup, 10, now)
	require.Len(t, ranked, 2)

	assert.Equal(t, gadgets, ranked[0].Repository)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Empty(t, ranked[0].LastCommit)

	w := ranked[1]
	assert.Equal(t, 2, w.Rank)
	assert.Equal(t, 250, w.Totals.Stars)
	assert.Equal(t, schema.Totals{Stars: 50, Forks: 3}, w.Recent)
	assert.Equal(t, 4, w.OpenIssues)
	assert.Equal(t, "2024-05-30", w.LastCommit)
	assert.Equal(t, "2024-05-02T12:00:00Z", w.FetchedAt)

	assert.Len(t, BuildRankings(store, []schema.RepositoryRef{widgets, gadgets}, nil, 1, now), 1)
}

func TestRankingsFromUpdates(t *testing.T) {
	results := []schema.UpdateResult{
		{Repository: widgets, Metadata: metadataFor(widgets, schema.Totals{Stars: 10})},
		{Repository: gone, Error: "not found"},
		{Repository: gadgets, Metadata: metadataFor(gadgets, schema.Totals{Stars: 30, Forks: 2}), Skipped: true},
	}

	ranked := rankingsFromUpdates(results, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, gadgets, ranked[0].Repository)
	assert.Equal(t, 30, ranked[0].Totals.Stars)
	assert.Equal(t, "2024-05-01", ranked[0].LastCommit)
	assert.Equal(t, 1, ranked[0].OpenIssues)
	assert.Equal(t, "https://github.com/acme/gadgets", ranked[0].HTMLURL)
	assert.Equal(t, widgets, ranked[1].Repository)
}
