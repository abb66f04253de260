package core

import (
	"fmt"
	"time"

	"github.com/huangsam/repotrend/core/algo"
	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// RecentWindow is the trailing window used for the Recent growth columns.
const RecentWindow = 30 * 24 * time.Hour

// BuildRankings loads the complete snapshots of refs and ranks them by stars.
// Open issues and last commit come from cached metadata when it is available.
func BuildRankings(store contract.SnapshotStore, refs []schema.RepositoryRef, lookup MetadataLookup, limit int, now time.Time) []schema.RankedRepository {
	since := now.UTC().Add(-RecentWindow).Format(schema.DateKeyFormat)

	rows := make([]schema.RankedRepository, 0, len(refs))
	for _, ref := range refs {
		snap, err := store.Load(ref)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Skipping ranking for %s", ref), err)
			continue
		}
		if snap == nil || !snap.IsComplete() {
			continue
		}

		row := schema.RankedRepository{
			Repository: ref,
			HTMLURL:    ref.HTMLURL(),
			Totals:     snap.Totals(),
			FetchedAt:  snap.FetchedAt,
		}
		for _, kind := range schema.AllEdgeKinds {
			row.Recent.Set(kind, algo.GrowthSince(snap.Buckets(kind), since))
		}
		if lookup != nil {
			if meta, ok := lookup(ref); ok {
				if meta.HTMLURL != "" {
					row.HTMLURL = meta.HTMLURL
				}
				row.OpenIssues = meta.OpenIssues
				if !meta.LastCommit.IsZero() {
					row.LastCommit = meta.LastCommit.UTC().Format(schema.DateKeyFormat)
				}
			}
		}
		rows = append(rows, row)
	}
	return algo.RankRepositories(rows, limit)
}

// rankingsFromUpdates builds ranking rows straight from freshly fetched metadata.
// Repositories whose metadata could not be fetched are left out, and Recent
// stays empty since metadata carries no per-day history.
func rankingsFromUpdates(results []schema.UpdateResult, limit int) []schema.RankedRepository {
	rows := make([]schema.RankedRepository, 0, len(results))
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		meta := r.Metadata
		row := schema.RankedRepository{
			Repository: r.Repository,
			HTMLURL:    meta.HTMLURL,
			Totals:     meta.Totals(),
			OpenIssues: meta.OpenIssues,
			FetchedAt:  meta.FetchedAt.UTC().Format(time.RFC3339),
		}
		if row.HTMLURL == "" {
			row.HTMLURL = r.Repository.HTMLURL()
		}
		if !meta.LastCommit.IsZero() {
			row.LastCommit = meta.LastCommit.UTC().Format(schema.DateKeyFormat)
		}
		rows = append(rows, row)
	}
	return algo.RankRepositories(rows, limit)
}
