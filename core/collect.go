package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/internal/ghclient"
	"github.com/huangsam/repotrend/schema"
	"github.com/sirupsen/logrus"
)

// PageSize is the number of edges requested per GraphQL page.
const PageSize = 100

// probeQuery checks that a repository is reachable before a harvest.
const probeQuery = `query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    name
    stargazerCount
    forkCount
  }
}`

// edgeQuery describes how one edge kind is paged.
type edgeQuery struct {
	connection string // GraphQL connection on Repository
	orderField string // ascending sort key, so new events append after the cursor
	selection  string // fields selected per edge
	timestamp  func(edge) string
}

// edge holds the union of fields selected across kinds.
type edge struct {
	StarredAt string `json:"starredAt"`
	Node      *struct {
		CreatedAt string `json:"createdAt"`
	} `json:"node"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type connectionPage struct {
	PageInfo pageInfo `json:"pageInfo"`
	Edges    []edge   `json:"edges"`
}

func starredAt(e edge) string { return e.StarredAt }

func createdAt(e edge) string {
	if e.Node == nil {
		return ""
	}
	return e.Node.CreatedAt
}

// edgeQueries is the per-kind configuration for CollectEdges.
var edgeQueries = map[schema.EdgeKind]edgeQuery{
	schema.StarEdge:        {connection: "stargazers", orderField: "STARRED_AT", selection: "starredAt", timestamp: starredAt},
	schema.ForkEdge:        {connection: "forks", orderField: "CREATED_AT", selection: "node { createdAt }", timestamp: createdAt},
	schema.IssueEdge:       {connection: "issues", orderField: "CREATED_AT", selection: "node { createdAt }", timestamp: createdAt},
	schema.PullRequestEdge: {connection: "pullRequests", orderField: "CREATED_AT", selection: "node { createdAt }", timestamp: createdAt},
}

// document renders the paged GraphQL query for this kind.
func (q edgeQuery) document() string {
	return fmt.Sprintf(`query($owner: String!, $name: String!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    %s(first: %d, after: $cursor, orderBy: {field: %s, direction: ASC}) {
      pageInfo { hasNextPage endCursor }
      edges { %s }
    }
  }
}`, q.connection, PageSize, q.orderField, q.selection)
}

// CollectEdges pages through every edge of one kind for ref in ascending time order.
// A repository that disappears returns the edges gathered so far without error.
// Query failures are returned unchanged so callers can inspect the *ghclient.QueryError.
func CollectEdges(ctx context.Context, client contract.QueryClient, ref schema.RepositoryRef, kind schema.EdgeKind) ([]schema.EdgeRecord, error) {
	q, ok := edgeQueries[kind]
	if !ok {
		return nil, fmt.Errorf("unknown edge kind %q", kind)
	}
	doc := q.document()
	log := contract.Logger.WithFields(logrus.Fields{"repo": ref.FullName(), "kind": kind})

	var (
		records []schema.EdgeRecord
		cursor  *string
	)
	for page := 1; ; page++ {
		variables := map[string]any{"owner": ref.Owner, "name": ref.Name, "cursor": cursor}
		data, err := client.Execute(ctx, doc, variables)
		if err != nil {
			if ghclient.IsNotFound(err) {
				log.Debug("repository not found, stopping")
				return records, nil
			}
			return records, err
		}

		var body struct {
			Repository map[string]connectionPage `json:"repository"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return records, fmt.Errorf("failed to decode %s page %d for %s: %w", q.connection, page, ref, err)
		}
		if body.Repository == nil {
			log.Debug("repository missing from response, stopping")
			return records, nil
		}

		conn := body.Repository[q.connection]
		if len(conn.Edges) == 0 {
			log.WithField("page", page).Debug("empty page, stopping")
			return records, nil
		}
		for _, e := range conn.Edges {
			records = append(records, schema.EdgeRecord{OccurredAt: q.timestamp(e), Kind: kind})
		}
		log.WithFields(logrus.Fields{"page": page, "edges": len(conn.Edges), "total": len(records)}).Debug("page fetched")

		if !conn.PageInfo.HasNextPage {
			return records, nil
		}
		next := conn.PageInfo.EndCursor
		if next == "" || (cursor != nil && *cursor == next) {
			contract.LogWarn(fmt.Sprintf("Stopping %s pagination for %s", q.connection, ref),
				fmt.Errorf("cursor did not advance after page %d", page))
			return records, nil
		}
		cursor = &next
	}
}

// RepositoryProbe is the result of checking a repository before harvesting.
type RepositoryProbe struct {
	Exists bool
	Name   string
	Stars  int
	Forks  int
}

// ProbeRepository checks that ref is reachable and returns its current counts.
// A missing repository is reported through Exists, not as an error.
func ProbeRepository(ctx context.Context, client contract.QueryClient, ref schema.RepositoryRef) (RepositoryProbe, error) {
	data, err := client.Execute(ctx, probeQuery, map[string]any{"owner": ref.Owner, "name": ref.Name})
	if err != nil {
		if ghclient.IsNotFound(err) {
			return RepositoryProbe{}, nil
		}
		return RepositoryProbe{}, err
	}

	var body struct {
		Repository *struct {
			Name           string `json:"name"`
			StargazerCount int    `json:"stargazerCount"`
			ForkCount      int    `json:"forkCount"`
		} `json:"repository"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return RepositoryProbe{}, fmt.Errorf("failed to decode probe for %s: %w", ref, err)
	}
	if body.Repository == nil {
		return RepositoryProbe{}, nil
	}
	return RepositoryProbe{
		Exists: true,
		Name:   body.Repository.Name,
		Stars:  body.Repository.StargazerCount,
		Forks:  body.Repository.ForkCount,
	}, nil
}
