// Package agg has aggregation logic for repository event data.
package agg

import (
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// BucketByDate counts edges per UTC calendar date.
// Edges with a malformed timestamp are skipped with a warning and counted in skipped.
func BucketByDate(edges []schema.EdgeRecord) (buckets schema.DateBucketMap, skipped int) {
	buckets = make(schema.DateBucketMap)
	for _, e := range edges {
		key, err := DateKey(e.OccurredAt)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Skipping %s edge", e.Kind), err)
			skipped++
			continue
		}
		buckets[key]++
	}
	return buckets, skipped
}

// DateKey normalizes an RFC 3339 timestamp to its UTC date key.
func DateKey(timestamp string) (string, error) {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return "", fmt.Errorf("malformed timestamp %q: %w", timestamp, err)
	}
	return t.UTC().Format(schema.DateKeyFormat), nil
}

// BuildHarvest buckets the edges of every kind and counts them.
// Totals equal the number of edges collected, including any that were skipped.
func BuildHarvest(edges map[schema.EdgeKind][]schema.EdgeRecord) schema.HarvestResult {
	result := schema.HarvestResult{Buckets: make(map[schema.EdgeKind]schema.DateBucketMap, len(schema.AllEdgeKinds))}
	for _, kind := range schema.AllEdgeKinds {
		buckets, _ := BucketByDate(edges[kind])
		result.Buckets[kind] = buckets
		result.Counts.Set(kind, len(edges[kind]))
	}
	return result
}

// CumulativeHistory prefix-sums every kind's date buckets over the sorted
// union of their dates. Each entry carries running totals up to that date.
func CumulativeHistory(snap *schema.RepositorySnapshot) []schema.HistoryEntry {
	if snap == nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, kind := range schema.AllEdgeKinds {
		for date := range snap.Buckets(kind) {
			seen[date] = struct{}{}
		}
	}
	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	slices.Sort(dates)

	history := make([]schema.HistoryEntry, 0, len(dates))
	var running schema.Totals
	for _, date := range dates {
		for _, kind := range schema.AllEdgeKinds {
			running.Set(kind, running.Get(kind)+snap.Buckets(kind)[date])
		}
		history = append(history, schema.HistoryEntry{
			Timestamp:    date,
			Stars:        running.Stars,
			Forks:        running.Forks,
			Issues:       running.Issues,
			PullRequests: running.PullRequests,
		})
	}
	return history
}
