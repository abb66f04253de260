// Package core has core logic for harvesting, merging and reporting.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/internal/ghclient"
	"github.com/huangsam/repotrend/internal/outwriter"
	"github.com/huangsam/repotrend/internal/snapshot"
	"github.com/huangsam/repotrend/schema"
)

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ErrUpdateFailed is returned by ExecuteUpdate when at least one repository failed.
var ErrUpdateFailed = errors.New("one or more repositories failed to update")

// newDeps wires the GitHub client and the snapshot store for cfg.
func newDeps(cfg *contract.Config, mgr contract.CacheManager) (Deps, error) {
	client, err := ghclient.NewClient(cfg)
	if err != nil {
		return Deps{}, err
	}
	return Deps{
		Query:    client,
		Metadata: client,
		Store:    snapshot.NewStore(cfg.DataDir),
		Manager:  mgr,
	}, nil
}

// targetRefs returns the configured repositories, or every repository with a snapshot.
func targetRefs(cfg *contract.Config, store contract.SnapshotStore) ([]schema.RepositoryRef, error) {
	if len(cfg.Repos) > 0 {
		return cfg.Repos, nil
	}
	return store.List()
}

// ExecuteBatch harvests every configured repository that has no complete snapshot.
// It serves as the main entry point for the 'init' command.
func ExecuteBatch(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if err := cfg.RequireToken(); err != nil {
		return err
	}
	if len(cfg.Repos) == 0 {
		return fmt.Errorf("no repositories to process: pass owner/name arguments or create %s", cfg.ReposFile)
	}
	deps, err := newDeps(cfg, mgr)
	if err != nil {
		return err
	}

	start := time.Now()
	outcomes, runErr := RunBatch(ctx, cfg, deps, cfg.Repos)
	summary := schema.Summarize(outcomes, time.Since(start))
	if err := outwriter.NewOutWriter().WriteBatchSummary(summary, outcomes, cfg); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if summary.Failed() {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, summary.Errors, summary.Total)
	}
	return nil
}

// ExecuteUpdate records today's deltas for every tracked repository and
// prints the refreshed ranking.
// It serves as the main entry point for the 'update' command.
func ExecuteUpdate(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if err := cfg.RequireToken(); err != nil {
		return err
	}
	deps, err := newDeps(cfg, mgr)
	if err != nil {
		return err
	}
	refs, err := targetRefs(cfg, deps.Store)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("no repositories to update: no arguments, no %s and no snapshots in %s", cfg.ReposFile, cfg.DataDir)
	}

	start := time.Now()
	results, runErr := RunUpdate(ctx, cfg, deps, refs)
	ranked := rankingsFromUpdates(results, cfg.ResultLimit)
	if err := outwriter.NewOutWriter().WriteUpdates(results, ranked, cfg, time.Since(start)); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrUpdateFailed, failed, len(results))
	}
	return nil
}

// ExecuteRank ranks the stored snapshots by stars.
// It serves as the main entry point for the 'rank' command.
func ExecuteRank(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	store := snapshot.NewStore(cfg.DataDir)
	refs, err := targetRefs(cfg, store)
	if err != nil {
		return err
	}
	ranked := BuildRankings(store, refs, NewMetadataLookup(mgr, cfg.MetadataTTL), cfg.ResultLimit, time.Now())
	return outwriter.NewOutWriter().WriteRankings(ranked, cfg, time.Since(start))
}

// ExecuteHistory builds cumulative histories from every stored snapshot.
// It serves as the main entry point for the 'history' command.
func ExecuteHistory(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	store := snapshot.NewStore(cfg.DataDir)
	refs, err := store.List()
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("no snapshots found in %s", cfg.DataDir)
	}
	histories := BuildHistories(store, refs, NewMetadataLookup(mgr, cfg.MetadataTTL), time.Now())
	return outwriter.NewOutWriter().WriteHistories(histories, cfg)
}

// ExecuteRateLimit prints the REST and GraphQL rate limits of the configured token.
// It serves as the main entry point for the 'ratelimit' command.
func ExecuteRateLimit(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	client, err := ghclient.NewClient(cfg)
	if err != nil {
		return err
	}
	status, err := client.RateLimits(ctx)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRateLimits(status, cfg, time.Now())
}
