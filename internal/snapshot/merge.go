package snapshot

import (
	"time"

	"github.com/huangsam/repotrend/schema"
)

// FormatFetchedAt renders the fetched_at field.
func FormatFetchedAt(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FullReplace builds a snapshot from a fresh full harvest. Every date map is
// replaced and every total is the number of edges collected. It is only used
// when no complete snapshot exists yet.
func FullReplace(fresh schema.HarvestResult, fetchedAt time.Time) *schema.RepositorySnapshot {
	snap := &schema.RepositorySnapshot{
		FetchedAt: FormatFetchedAt(fetchedAt),
		Status:    schema.CompleteSnapshot,
	}
	for _, kind := range schema.AllEdgeKinds {
		snap.SetBuckets(kind, fresh.Buckets[kind].Clone())
		snap.SetTotal(kind, fresh.Counts.Get(kind))
	}
	return snap
}

// InProgress returns the marker saved before a harvest starts.
// It carries no counts and is replaced by FullReplace on success.
func InProgress(fetchedAt time.Time) *schema.RepositorySnapshot {
	snap := schema.NewRepositorySnapshot()
	snap.FetchedAt = FormatFetchedAt(fetchedAt)
	snap.Status = schema.InProgressSnapshot
	return snap
}

// IncrementalDelta records today's change against the last known totals.
// For each kind with a non-zero delta, by_date[today] is overwritten with the
// delta and the total is set to current. Reruns on the same day overwrite
// rather than accumulate. When nothing changed the returned snapshot equals
// existing and changed is false, so callers must skip the write.
// The existing snapshot is never modified.
func IncrementalDelta(existing *schema.RepositorySnapshot, current schema.Totals, today string, fetchedAt time.Time) (snap *schema.RepositorySnapshot, changed bool, deltas schema.Totals) {
	snap = clone(existing)
	for _, kind := range schema.AllEdgeKinds {
		delta := current.Get(kind) - snap.Totals().Get(kind)
		deltas.Set(kind, delta)
		if delta == 0 {
			continue
		}
		snap.Buckets(kind)[today] = delta
		snap.SetTotal(kind, current.Get(kind))
		changed = true
	}
	if changed {
		snap.FetchedAt = FormatFetchedAt(fetchedAt)
	}
	return snap, changed, deltas
}

func clone(s *schema.RepositorySnapshot) *schema.RepositorySnapshot {
	if s == nil {
		return schema.NewRepositorySnapshot()
	}
	c := *s
	for _, kind := range schema.AllEdgeKinds {
		c.SetBuckets(kind, s.Buckets(kind).Clone())
	}
	return &c
}
