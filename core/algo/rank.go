// Package algo has the pure ranking logic behind the reports.
package algo

import (
	"slices"
	"strings"

	"github.com/huangsam/repotrend/schema"
)

// RankRepositories sorts rows by stars in descending order, breaking ties by
// full name, and returns the top 'limit' rows with Rank filled in from 1.
// A limit of zero or less returns every row.
func RankRepositories(rows []schema.RankedRepository, limit int) []schema.RankedRepository {
	ranked := slices.Clone(rows)
	slices.SortStableFunc(ranked, func(a, b schema.RankedRepository) int {
		if a.Totals.Stars != b.Totals.Stars {
			return b.Totals.Stars - a.Totals.Stars
		}
		return strings.Compare(a.Repository.FullName(), b.Repository.FullName())
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// GrowthSince returns how many events of kind were bucketed on or after the
// given date key. Keys sort lexically in date order.
func GrowthSince(buckets schema.DateBucketMap, since string) int {
	total := 0
	for day, n := range buckets {
		if day >= since {
			total += n
		}
	}
	return total
}
