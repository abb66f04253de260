package schema

// RepositorySnapshot is the persisted per-repository record.
// Its JSON field names are read by other tools and must stay stable.
type RepositorySnapshot struct {
	TotalStars         int            `json:"total_stars"`
	TotalForks         int            `json:"total_forks"`
	TotalIssues        int            `json:"total_issues"`
	TotalPullRequests  int            `json:"total_pull_requests"`
	FetchedAt          string         `json:"fetched_at"`
	StarsByDate        DateBucketMap  `json:"stars_by_date"`
	ForksByDate        DateBucketMap  `json:"forks_by_date"`
	IssuesByDate       DateBucketMap  `json:"issues_by_date"`
	PullRequestsByDate DateBucketMap  `json:"pull_requests_by_date"`
	Status             SnapshotStatus `json:"status,omitempty"`
}

// NewRepositorySnapshot returns a snapshot with every map initialized.
func NewRepositorySnapshot() *RepositorySnapshot {
	s := &RepositorySnapshot{}
	s.EnsureMaps()
	return s
}

// EnsureMaps replaces nil maps with empty ones.
func (s *RepositorySnapshot) EnsureMaps() {
	if s.StarsByDate == nil {
		s.StarsByDate = DateBucketMap{}
	}
	if s.ForksByDate == nil {
		s.ForksByDate = DateBucketMap{}
	}
	if s.IssuesByDate == nil {
		s.IssuesByDate = DateBucketMap{}
	}
	if s.PullRequestsByDate == nil {
		s.PullRequestsByDate = DateBucketMap{}
	}
}

// IsComplete reports whether the snapshot holds a finished harvest.
func (s *RepositorySnapshot) IsComplete() bool {
	return s.Status != InProgressSnapshot
}

// Buckets returns the date map for a kind.
func (s *RepositorySnapshot) Buckets(kind EdgeKind) DateBucketMap {
	switch kind {
	case StarEdge:
		return s.StarsByDate
	case ForkEdge:
		return s.ForksByDate
	case IssueEdge:
		return s.IssuesByDate
	default:
		return s.PullRequestsByDate
	}
}

// SetBuckets replaces the date map for a kind.
func (s *RepositorySnapshot) SetBuckets(kind EdgeKind, m DateBucketMap) {
	switch kind {
	case StarEdge:
		s.StarsByDate = m
	case ForkEdge:
		s.ForksByDate = m
	case IssueEdge:
		s.IssuesByDate = m
	default:
		s.PullRequestsByDate = m
	}
}

// Totals returns the snapshot's cumulative totals.
func (s *RepositorySnapshot) Totals() Totals {
	return Totals{
		Stars:        s.TotalStars,
		Forks:        s.TotalForks,
		Issues:       s.TotalIssues,
		PullRequests: s.TotalPullRequests,
	}
}

// SetTotal updates the cumulative total for a kind.
func (s *RepositorySnapshot) SetTotal(kind EdgeKind, v int) {
	switch kind {
	case StarEdge:
		s.TotalStars = v
	case ForkEdge:
		s.TotalForks = v
	case IssueEdge:
		s.TotalIssues = v
	default:
		s.TotalPullRequests = v
	}
}

// HarvestResult is the output of one full harvest of a repository.
type HarvestResult struct {
	Counts  Totals
	Buckets map[EdgeKind]DateBucketMap
}

// HistoryEntry is one point of a cumulative history.
type HistoryEntry struct {
	Timestamp    string `json:"timestamp"`
	Stars        int    `json:"stars"`
	Forks        int    `json:"forks"`
	Issues       int    `json:"issues"`
	PullRequests int    `json:"pull_requests"`
}

// ProjectHistory is the history of one repository.
type ProjectHistory struct {
	Name    string         `json:"name"`
	HTMLURL string         `json:"html_url"`
	History []HistoryEntry `json:"history"`
}

// HistoryMetadata describes a RepositoryHistories document.
type HistoryMetadata struct {
	FirstRecorded  string `json:"first_recorded"`
	LastUpdated    string `json:"last_updated"`
	TotalSnapshots int    `json:"total_snapshots"`
}

// RepositoryHistories is the repository_histories.json document.
type RepositoryHistories struct {
	Metadata HistoryMetadata           `json:"metadata"`
	Projects map[string]ProjectHistory `json:"projects"`
}

// RankedRepository is one row of a ranking report.
type RankedRepository struct {
	Rank       int           `json:"rank"`
	Repository RepositoryRef `json:"repository"`
	HTMLURL    string        `json:"html_url"`
	Totals     Totals        `json:"totals"`
	Recent     Totals        `json:"recent"` // growth over the trailing window
	OpenIssues int           `json:"open_issues"`
	LastCommit string        `json:"last_commit,omitempty"`
	FetchedAt  string        `json:"fetched_at"`
}
