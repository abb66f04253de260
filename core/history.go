package core

import (
	"fmt"
	"time"

	"github.com/huangsam/repotrend/core/agg"
	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// BuildHistories turns every complete snapshot of refs into a cumulative history.
// Projects are keyed by repository name; names shared by several owners are
// keyed by "owner/name" instead. Unreadable and in-progress snapshots are skipped.
func BuildHistories(store contract.SnapshotStore, refs []schema.RepositoryRef, lookup MetadataLookup, now time.Time) schema.RepositoryHistories {
	out := schema.RepositoryHistories{
		Metadata: schema.HistoryMetadata{LastUpdated: now.UTC().Format(time.RFC3339)},
		Projects: map[string]schema.ProjectHistory{},
	}

	type loaded struct {
		ref  schema.RepositoryRef
		snap *schema.RepositorySnapshot
	}
	var snaps []loaded
	nameCount := map[string]int{}
	for _, ref := range refs {
		snap, err := store.Load(ref)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Skipping history for %s", ref), err)
			continue
		}
		if snap == nil || !snap.IsComplete() {
			continue
		}
		snaps = append(snaps, loaded{ref: ref, snap: snap})
		nameCount[ref.Name]++
	}

	for _, l := range snaps {
		history := agg.CumulativeHistory(l.snap)
		if history == nil {
			history = []schema.HistoryEntry{}
		}

		key := l.ref.Name
		if nameCount[key] > 1 {
			key = l.ref.FullName()
		}
		htmlURL := l.ref.HTMLURL()
		if lookup != nil {
			if meta, ok := lookup(l.ref); ok && meta.HTMLURL != "" {
				htmlURL = meta.HTMLURL
			}
		}
		out.Projects[key] = schema.ProjectHistory{Name: key, HTMLURL: htmlURL, History: history}

		out.Metadata.TotalSnapshots += len(history)
		if len(history) > 0 {
			first := history[0].Timestamp
			if out.Metadata.FirstRecorded == "" || first < out.Metadata.FirstRecorded {
				out.Metadata.FirstRecorded = first
			}
		}
	}
	return out
}
