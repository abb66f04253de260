package ghclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/go-github/v74/github"
	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// totalsQuery counts every issue and pull request regardless of state.
const totalsQuery = `query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    issues(states: [OPEN, CLOSED]) { totalCount }
    pullRequests(states: [OPEN, CLOSED, MERGED]) { totalCount }
  }
}`

type totalsData struct {
	Repository *struct {
		Issues       struct{ TotalCount int } `json:"issues"`
		PullRequests struct{ TotalCount int } `json:"pullRequests"`
	} `json:"repository"`
}

// Repository fetches current counts for a repository over REST, then fills in
// total issue and pull request counts.
func (c *Client) Repository(ctx context.Context, ref schema.RepositoryRef) (schema.RepoMetadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return schema.RepoMetadata{}, fmt.Errorf("rate limiter: %w", err)
	}
	repo, _, err := c.gh.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return schema.RepoMetadata{}, fmt.Errorf("failed to fetch repository %s: %w", ref, err)
	}

	meta := schema.RepoMetadata{
		Name:       repo.GetName(),
		FullName:   repo.GetFullName(),
		HTMLURL:    repo.GetHTMLURL(),
		Stars:      repo.GetStargazersCount(),
		Forks:      repo.GetForksCount(),
		OpenIssues: repo.GetOpenIssuesCount(),
		LastCommit: repo.GetPushedAt().Time,
		FetchedAt:  time.Now().UTC(),
	}
	if meta.FullName == "" {
		meta.FullName = ref.FullName()
	}
	if meta.HTMLURL == "" {
		meta.HTMLURL = ref.HTMLURL()
	}
	meta.TotalIssues, meta.TotalPullRequests = c.IssueTotals(ctx, ref, meta.OpenIssues)
	return meta, nil
}

// IssueTotals returns total issue and pull request counts across all states.
// GraphQL is tried first, then the search API. When both fail the REST open
// issue count is used and pull requests are reported as zero.
func (c *Client) IssueTotals(ctx context.Context, ref schema.RepositoryRef, openIssues int) (issues, pullRequests int) {
	data, err := c.Execute(ctx, totalsQuery, map[string]any{"owner": ref.Owner, "name": ref.Name})
	if err == nil {
		var totals totalsData
		if err = json.Unmarshal(data, &totals); err == nil && totals.Repository != nil {
			return totals.Repository.Issues.TotalCount, totals.Repository.PullRequests.TotalCount
		}
		if err == nil {
			err = fmt.Errorf("repository %s not found", ref)
		}
	}
	contract.LogWarn(fmt.Sprintf("GraphQL totals failed for %s, trying search", ref), err)

	issues, err = c.searchTotal(ctx, ref, "issue")
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Search totals failed for %s", ref), err)
		return openIssues, 0
	}
	pullRequests, err = c.searchTotal(ctx, ref, "pr")
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Search totals failed for %s", ref), err)
		return openIssues, 0
	}
	return issues, pullRequests
}

func (c *Client) searchTotal(ctx context.Context, ref schema.RepositoryRef, kind string) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}
	query := fmt.Sprintf("repo:%s type:%s", ref.FullName(), kind)
	result, _, err := c.gh.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, err
	}
	return result.GetTotal(), nil
}

// RateLimits returns the REST core and GraphQL rate limit buckets.
func (c *Client) RateLimits(ctx context.Context) (schema.RateLimitStatus, error) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return schema.RateLimitStatus{}, fmt.Errorf("failed to fetch rate limits: %w", err)
	}
	return schema.RateLimitStatus{
		Core:    toRateLimit(limits.GetCore()),
		GraphQL: toRateLimit(limits.GetGraphQL()),
	}, nil
}

func toRateLimit(r *github.Rate) schema.RateLimit {
	if r == nil {
		return schema.RateLimit{}
	}
	return schema.RateLimit{
		Limit:     r.Limit,
		Remaining: r.Remaining,
		Used:      r.Used,
		Reset:     r.Reset.Time.UTC(),
	}
}
