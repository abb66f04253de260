package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// EdgeKind represents one kind of timestamped repository event.
	EdgeKind string

	// OutcomeStatus represents the result of a single repository job.
	OutcomeStatus string

	// SnapshotStatus marks whether a snapshot holds a finished harvest.
	SnapshotStatus string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// All output modes supported.
const (
	CSVOut      OutputMode = "csv"
	TextOut     OutputMode = "text" // default
	JSONOut     OutputMode = "json"
	MarkdownOut OutputMode = "markdown"
	ParquetOut  OutputMode = "parquet"
)

// All edge kinds supported, in harvest order.
const (
	StarEdge        EdgeKind = "star"
	ForkEdge        EdgeKind = "fork"
	IssueEdge       EdgeKind = "issue"
	PullRequestEdge EdgeKind = "pull_request"
)

// All job outcomes supported.
const (
	SuccessOutcome OutcomeStatus = "success"
	SkippedOutcome OutcomeStatus = "skipped"
	ErrorOutcome   OutcomeStatus = "error"
)

// Snapshot states. An empty status is a legacy file and counts as complete.
const (
	CompleteSnapshot   SnapshotStatus = "complete"
	InProgressSnapshot SnapshotStatus = "in_progress"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Skip reasons reported in job outcomes.
const (
	ReasonFileExists = "file_exists"
	ReasonNoSnapshot = "no_snapshot"
	ReasonIncomplete = "incomplete_snapshot"
	ReasonUnchanged  = "no_changes"
)

// AllEdgeKinds is the fixed order in which a repository is harvested.
var AllEdgeKinds = []EdgeKind{StarEdge, ForkEdge, IssueEdge, PullRequestEdge}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:      {},
	TextOut:     {},
	JSONOut:     {},
	MarkdownOut: {},
	ParquetOut:  {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
