package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// runTracker records a batch or update run in the run store, if one is configured.
// Every tracking failure is a warning; the run itself never depends on it.
type runTracker struct {
	store contract.RunStore
	runID int64
}

// beginTracking opens a run record and stores its ID in the returned context.
func beginTracking(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, command string, repoCount int) (context.Context, *runTracker) {
	tracker := &runTracker{}
	if mgr == nil {
		return ctx, tracker
	}
	tracker.store = mgr.GetRunStore()
	if tracker.store == nil {
		return ctx, tracker
	}

	configParams := map[string]any{
		"repos":      repoCount,
		"workers":    cfg.Workers,
		"stagger":    cfg.Stagger.String(),
		"kind_delay": cfg.KindDelay.String(),
		"data_dir":   cfg.DataDir,
	}
	runID, err := tracker.store.BeginRun(command, time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		tracker.store = nil
		return ctx, tracker
	}
	tracker.runID = runID
	return withRunID(ctx, runID), tracker
}

// record stores one job outcome against the run in ctx.
func (t *runTracker) record(ctx context.Context, outcome schema.JobOutcome) {
	if t.store == nil {
		return
	}
	runID, ok := getRunID(ctx)
	if !ok || runID <= 0 {
		return
	}
	if err := t.store.RecordOutcome(runID, outcome, time.Now()); err != nil {
		logTrackingError("RecordOutcome", outcome.Repository.FullName(), err)
	}
}

// end finalizes the run with its summary.
func (t *runTracker) end(summary schema.RunSummary) {
	if t.store == nil || t.runID <= 0 {
		return
	}
	if err := t.store.EndRun(t.runID, time.Now(), summary); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// logTrackingError logs database tracking errors to stderr without disrupting the run.
func logTrackingError(operation, repo string, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on %s", operation, repo), err)
}
