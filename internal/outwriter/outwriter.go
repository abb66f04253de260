// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteBatchSummary prints the outcomes of an init run using the configured output format.
func (ow *OutWriter) WriteBatchSummary(summary schema.RunSummary, outcomes []schema.JobOutcome, cfg *contract.Config) error {
	return WriteBatchSummary(summary, outcomes, cfg)
}

// WriteUpdates prints the results of an update run using the configured output format.
func (ow *OutWriter) WriteUpdates(results []schema.UpdateResult, ranked []schema.RankedRepository, cfg *contract.Config, duration time.Duration) error {
	return WriteUpdates(results, ranked, cfg, duration)
}

// WriteRankings prints the repository ranking using the configured output format.
func (ow *OutWriter) WriteRankings(ranked []schema.RankedRepository, cfg *contract.Config, duration time.Duration) error {
	return WriteRankings(ranked, cfg, duration)
}

// WriteHistories prints cumulative histories using the configured output format.
func (ow *OutWriter) WriteHistories(h schema.RepositoryHistories, cfg *contract.Config) error {
	return WriteHistories(h, cfg)
}

// WriteRateLimits prints the API rate limits using the configured output format.
func (ow *OutWriter) WriteRateLimits(status schema.RateLimitStatus, cfg *contract.Config, now time.Time) error {
	return WriteRateLimits(status, cfg, now)
}
