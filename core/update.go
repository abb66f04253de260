package core

import (
	"context"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/internal/outwriter"
	"github.com/huangsam/repotrend/internal/snapshot"
	"github.com/huangsam/repotrend/schema"
)

// RunUpdate records today's change for every repository with a complete snapshot.
// Metadata is fetched for every ref, so repositories without a snapshot still
// show up in the report, but only complete snapshots are merged and saved.
// Results keep the order of refs.
func RunUpdate(ctx context.Context, cfg *contract.Config, deps Deps, refs []schema.RepositoryRef) ([]schema.UpdateResult, error) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogUpdateHeader(cfg, len(refs))
	}
	ctx, tracker := beginTracking(ctx, cfg, deps.Manager, "update", len(refs))

	results := make([]schema.UpdateResult, len(refs))
	done := make([]bool, len(refs))
	err := runPool(ctx, cfg, refs, func(ctx context.Context, i int, ref schema.RepositoryRef) {
		// Each job writes a unique index, so no locking is needed.
		results[i] = updateRepository(ctx, deps, ref)
		done[i] = true
		tracker.record(ctx, updateOutcome(results[i]))
		if !shouldSuppressHeader(ctx) {
			outwriter.LogUpdateResult(cfg, results[i])
		}
	})

	finished := make([]schema.UpdateResult, 0, len(refs))
	outcomes := make([]schema.JobOutcome, 0, len(refs))
	for i, r := range results {
		if done[i] {
			finished = append(finished, r)
			outcomes = append(outcomes, updateOutcome(r))
		}
	}
	tracker.end(schema.Summarize(outcomes, time.Since(start)))
	return finished, err
}

// updateRepository fetches current metadata for ref and merges it as today's delta.
func updateRepository(ctx context.Context, deps Deps, ref schema.RepositoryRef) schema.UpdateResult {
	result := schema.UpdateResult{Repository: ref}

	meta, err := deps.Metadata.Repository(ctx, ref)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Metadata = meta
	storeMetadata(deps.Manager, ref, meta)

	existing, err := deps.Store.Load(ref)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	switch {
	case existing == nil:
		result.Skipped, result.Reason = true, schema.ReasonNoSnapshot
		result.Current = meta.Totals()
		return result
	case !existing.IsComplete():
		result.Skipped, result.Reason = true, schema.ReasonIncomplete
		result.Current = meta.Totals()
		return result
	}

	now := deps.now()
	today := now.UTC().Format(schema.DateKeyFormat)
	snap, changed, deltas := snapshot.IncrementalDelta(existing, meta.Totals(), today, now)
	result.Previous = existing.Totals()
	result.Current = snap.Totals()
	result.Deltas = deltas
	result.Changed = changed

	if changed {
		if err := deps.Store.Save(ref, snap); err != nil {
			result.Error = err.Error()
		}
	}
	return result
}

// updateOutcome maps an update result onto the run tracking outcome.
func updateOutcome(r schema.UpdateResult) schema.JobOutcome {
	outcome := schema.JobOutcome{Repository: r.Repository, Totals: r.Current}
	switch {
	case r.Error != "":
		outcome.Status = schema.ErrorOutcome
		outcome.Message = r.Error
	case r.Skipped:
		outcome.Status = schema.SkippedOutcome
		outcome.Reason = r.Reason
	case !r.Changed:
		outcome.Status = schema.SkippedOutcome
		outcome.Reason = schema.ReasonUnchanged
	default:
		outcome.Status = schema.SuccessOutcome
	}
	return outcome
}
