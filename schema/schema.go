// Package schema has the data model shared by every part of repotrend.
package schema

import (
	"fmt"
	"maps"
	"net/url"
	"strings"
	"time"
)

// DateKeyFormat is the layout of every DateBucketMap key.
const DateKeyFormat = "2006-01-02"

// RepositoryRef identifies a GitHub repository.
type RepositoryRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// ParseRepositoryRef extracts owner and name from a repository URL.
// It accepts full URLs, host-prefixed paths and bare "owner/name" strings.
func ParseRepositoryRef(raw string) (RepositoryRef, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return RepositoryRef{}, fmt.Errorf("empty repository URL")
	}

	path := s
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return RepositoryRef{}, fmt.Errorf("invalid repository URL %q: %w", raw, err)
		}
		path = u.Path
	} else if host, rest, ok := strings.Cut(s, "/"); ok && strings.Contains(host, ".") {
		path = rest
	}

	path = strings.TrimSuffix(strings.TrimSpace(path), ".git")
	var segments []string
	for seg := range strings.SplitSeq(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) != 2 {
		return RepositoryRef{}, fmt.Errorf("invalid repository URL %q: expected owner/name", raw)
	}
	return RepositoryRef{Owner: segments[0], Name: segments[1]}, nil
}

// FullName returns the "owner/name" form.
func (r RepositoryRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// FileStem returns the "owner_name" stem used for snapshot files.
func (r RepositoryRef) FileStem() string {
	return r.Owner + "_" + r.Name
}

// HTMLURL returns the canonical web URL of the repository.
func (r RepositoryRef) HTMLURL() string {
	return "https://github.com/" + r.FullName()
}

// String implements fmt.Stringer.
func (r RepositoryRef) String() string {
	return r.FullName()
}

// EdgeRecord is one observed event. OccurredAt keeps the raw provider timestamp.
type EdgeRecord struct {
	OccurredAt string
	Kind       EdgeKind
}

// DateBucketMap maps a UTC calendar date (YYYY-MM-DD) to an event count.
type DateBucketMap map[string]int

// Sum returns the total of all buckets.
func (m DateBucketMap) Sum() int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

// Clone returns an independent copy of the map.
func (m DateBucketMap) Clone() DateBucketMap {
	if m == nil {
		return DateBucketMap{}
	}
	return maps.Clone(m)
}

// Totals holds one absolute count per edge kind.
type Totals struct {
	Stars        int `json:"stars"`
	Forks        int `json:"forks"`
	Issues       int `json:"issues"`
	PullRequests int `json:"pull_requests"`
}

// Get returns the count for a kind.
func (t Totals) Get(kind EdgeKind) int {
	switch kind {
	case StarEdge:
		return t.Stars
	case ForkEdge:
		return t.Forks
	case IssueEdge:
		return t.Issues
	default:
		return t.PullRequests
	}
}

// Set updates the count for a kind.
func (t *Totals) Set(kind EdgeKind, v int) {
	switch kind {
	case StarEdge:
		t.Stars = v
	case ForkEdge:
		t.Forks = v
	case IssueEdge:
		t.Issues = v
	default:
		t.PullRequests = v
	}
}

// Add returns the element-wise sum of two totals.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Stars:        t.Stars + o.Stars,
		Forks:        t.Forks + o.Forks,
		Issues:       t.Issues + o.Issues,
		PullRequests: t.PullRequests + o.PullRequests,
	}
}

// RepoMetadata is the REST view of a repository used by the updater and reports.
type RepoMetadata struct {
	Name              string    `json:"name"`
	FullName          string    `json:"full_name"`
	HTMLURL           string    `json:"html_url"`
	Stars             int       `json:"stars"`
	Forks             int       `json:"forks"`
	OpenIssues        int       `json:"open_issues"`
	TotalIssues       int       `json:"total_issues"`
	TotalPullRequests int       `json:"total_pull_requests"`
	LastCommit        time.Time `json:"last_commit"`
	FetchedAt         time.Time `json:"fetched_at"`
}

// Totals returns the absolute counts carried by the metadata.
func (m RepoMetadata) Totals() Totals {
	return Totals{
		Stars:        m.Stars,
		Forks:        m.Forks,
		Issues:       m.TotalIssues,
		PullRequests: m.TotalPullRequests,
	}
}

// RateLimit is a single API rate limit bucket.
type RateLimit struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Used      int       `json:"used"`
	Reset     time.Time `json:"reset"`
}

// Rate limit levels reported by RateLimit.Level.
const (
	RateLimitOK        = "OK"
	RateLimitLow       = "LOW"
	RateLimitExhausted = "EXHAUSTED"
)

// Level classifies the bucket: exhausted at zero, low below 10% of the limit.
func (r RateLimit) Level() string {
	switch {
	case r.Remaining <= 0:
		return RateLimitExhausted
	case r.Remaining*10 < r.Limit:
		return RateLimitLow
	default:
		return RateLimitOK
	}
}

// RateLimitStatus holds the REST and GraphQL rate limits.
type RateLimitStatus struct {
	Core    RateLimit `json:"core"`
	GraphQL RateLimit `json:"graphql"`
}
