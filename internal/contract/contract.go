// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"encoding/json"
	"time"

	"github.com/huangsam/repotrend/schema"
)

// QueryClient executes a single GraphQL query against the provider.
// It has no pagination awareness and never retries.
type QueryClient interface {
	// Execute sends one query/variables pair and returns the raw "data" object.
	Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error)
}

// MetadataClient fetches repository metadata and rate limits over REST.
type MetadataClient interface {
	// Repository returns current counts and links for a repository.
	Repository(ctx context.Context, ref schema.RepositoryRef) (schema.RepoMetadata, error)

	// RateLimits returns the REST and GraphQL rate limit buckets.
	RateLimits(ctx context.Context) (schema.RateLimitStatus, error)
}

// SnapshotStore persists one RepositorySnapshot per repository.
type SnapshotStore interface {
	// Load returns nil and no error when the repository has no snapshot yet.
	Load(ref schema.RepositoryRef) (*schema.RepositorySnapshot, error)

	// Save writes the snapshot atomically.
	Save(ref schema.RepositoryRef, snap *schema.RepositorySnapshot) error

	// List returns every repository that has a snapshot file.
	List() ([]schema.RepositoryRef, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetMetadataStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking batch runs and their job outcomes.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// RecordOutcome stores the outcome of one repository job
	RecordOutcome(runID int64, outcome schema.JobOutcome, recordedAt time.Time) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllOutcomes returns every recorded job outcome
	GetAllOutcomes() ([]schema.OutcomeRecord, error)

	// Close closes the underlying connection
	Close() error
}
