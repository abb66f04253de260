package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/repotrend/core/agg"
	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/internal/outwriter"
	"github.com/huangsam/repotrend/internal/snapshot"
	"github.com/huangsam/repotrend/schema"
	"golang.org/x/sync/errgroup"
)

// Deps bundles the collaborators shared by batch and update runs.
type Deps struct {
	Query    contract.QueryClient
	Metadata contract.MetadataClient
	Store    contract.SnapshotStore
	Manager  contract.CacheManager
	Clock    func() time.Time // defaults to time.Now
}

func (d Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

// RunBatch harvests the full history of every repository without a complete snapshot.
// Repositories with a complete snapshot are skipped without any network call.
// The rest run on a pool of min(cfg.Workers, pending) goroutines, and a failed
// job never cancels its siblings. Outcomes are returned in completion order,
// after the skipped ones.
func RunBatch(ctx context.Context, cfg *contract.Config, deps Deps, refs []schema.RepositoryRef) ([]schema.JobOutcome, error) {
	start := time.Now()
	outcomes, pending := prefilter(deps.Store, refs)
	if !shouldSuppressHeader(ctx) {
		outwriter.LogBatchHeader(cfg, len(refs), len(pending))
		for _, o := range outcomes {
			outwriter.LogJobOutcome(cfg, o)
		}
	}
	if len(pending) == 0 {
		return outcomes, nil
	}

	ctx, tracker := beginTracking(ctx, cfg, deps.Manager, "init", len(refs))
	for _, o := range outcomes {
		tracker.record(ctx, o)
	}

	var mu sync.Mutex
	err := runPool(ctx, cfg, pending, func(ctx context.Context, _ int, ref schema.RepositoryRef) {
		outcome := harvestRepository(ctx, cfg, deps, ref)
		tracker.record(ctx, outcome)
		if !shouldSuppressHeader(ctx) {
			outwriter.LogJobOutcome(cfg, outcome)
		}
		mu.Lock()
		outcomes = append(outcomes, outcome)
		mu.Unlock()
	})
	tracker.end(schema.Summarize(outcomes, time.Since(start)))
	return outcomes, err
}

// prefilter splits refs into skipped outcomes and refs that still need a harvest.
// A snapshot left in progress by an interrupted run is harvested again.
func prefilter(store contract.SnapshotStore, refs []schema.RepositoryRef) ([]schema.JobOutcome, []schema.RepositoryRef) {
	var (
		outcomes []schema.JobOutcome
		pending  []schema.RepositoryRef
	)
	for _, ref := range refs {
		snap, err := store.Load(ref)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Harvesting %s again", ref), err)
			pending = append(pending, ref)
			continue
		}
		if snap != nil && snap.IsComplete() {
			outcomes = append(outcomes, schema.JobOutcome{
				Repository: ref,
				Status:     schema.SkippedOutcome,
				Totals:     snap.Totals(),
				Reason:     schema.ReasonFileExists,
				Message:    "Data file already exists",
			})
			continue
		}
		pending = append(pending, ref)
	}
	return outcomes, pending
}

// runPool runs job for every ref with at most min(cfg.Workers, len(refs)) in flight.
// Job i sleeps i*cfg.Stagger once a worker picks it up, before its first call.
// Only context cancellation is returned as an error.
func runPool(ctx context.Context, cfg *contract.Config, refs []schema.RepositoryRef, job func(ctx context.Context, i int, ref schema.RepositoryRef)) error {
	if len(refs) == 0 {
		return nil
	}
	var g errgroup.Group
	g.SetLimit(min(max(cfg.Workers, 1), len(refs)))

	for i, ref := range refs {
		g.Go(func() error {
			if err := sleepContext(ctx, time.Duration(i)*cfg.Stagger); err != nil {
				return err
			}
			job(ctx, i, ref)
			return nil
		})
	}
	return g.Wait()
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// harvestRepository runs the full harvest of one repository and saves it.
func harvestRepository(ctx context.Context, cfg *contract.Config, deps Deps, ref schema.RepositoryRef) schema.JobOutcome {
	start := time.Now()
	failMsg := func(msg string) schema.JobOutcome {
		return schema.JobOutcome{
			Repository: ref,
			Status:     schema.ErrorOutcome,
			Message:    msg,
			Duration:   time.Since(start),
		}
	}
	fail := func(err error) schema.JobOutcome { return failMsg(err.Error()) }

	probe, err := ProbeRepository(ctx, deps.Query, ref)
	if err != nil {
		return fail(fmt.Errorf("failed to probe repository: %w", err))
	}
	if !probe.Exists {
		return failMsg("Cannot access repository " + ref.FullName())
	}

	// The marker makes an interrupted harvest visible to the next run.
	if err := deps.Store.Save(ref, snapshot.InProgress(deps.now())); err != nil {
		return fail(err)
	}

	edges := make(map[schema.EdgeKind][]schema.EdgeRecord, len(schema.AllEdgeKinds))
	for i, kind := range schema.AllEdgeKinds {
		if i > 0 {
			if err := sleepContext(ctx, cfg.KindDelay); err != nil {
				return fail(err)
			}
		}
		records, err := CollectEdges(ctx, deps.Query, ref, kind)
		if err != nil {
			return fail(fmt.Errorf("failed to collect %s edges: %w", kind, err))
		}
		edges[kind] = records
	}

	harvest := agg.BuildHarvest(edges)
	snap := snapshot.FullReplace(harvest, deps.now())
	if err := deps.Store.Save(ref, snap); err != nil {
		return fail(err)
	}

	return schema.JobOutcome{
		Repository: ref,
		Status:     schema.SuccessOutcome,
		Totals:     harvest.Counts,
		Duration:   time.Since(start),
	}
}

// ErrBatchFailed is returned by ExecuteBatch when at least one job ended in error.
var ErrBatchFailed = errors.New("one or more repositories failed")
