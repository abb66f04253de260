package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/internal/ghclient"
	"github.com/huangsam/repotrend/schema"
)

// fakeGitHub serves GraphQL pages from in-memory timestamps.
// Cursors are decimal offsets into the edge list.
type fakeGitHub struct {
	mu        sync.Mutex
	repos     map[string]map[string][]string // full name -> connection -> timestamps
	fail      map[string]error               // full name -> error for every query
	stuck     bool                           // endCursor never advances
	delay     time.Duration
	calls     map[string]int // "owner/name connection" -> queries
	active    int
	maxActive int

	order         map[string][]string  // full name -> connections in call order
	firstCall     map[string]time.Time // full name -> time of its first query
	repoActive    map[string]int       // full name -> queries in flight
	maxRepoActive int
}

var _ contract.QueryClient = &fakeGitHub{} // Compile-time check

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		repos: map[string]map[string][]string{},
		fail:  map[string]error{},
		calls: map[string]int{},

		order:      map[string][]string{},
		firstCall:  map[string]time.Time{},
		repoActive: map[string]int{},
	}
}

// callOrder returns the connections queried for full, in call order.
func (f *fakeGitHub) callOrder(full string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order[full]...)
}

// addRepo registers a repository with the given edges per connection.
func (f *fakeGitHub) addRepo(full string, edges map[string][]string) {
	if edges == nil {
		edges = map[string][]string{}
	}
	f.repos[full] = edges
}

func (f *fakeGitHub) callCount(full, conn string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[full+" "+conn]
}

func (f *fakeGitHub) totalCalls(full string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for key, n := range f.calls {
		if strings.HasPrefix(key, full+" ") {
			total += n
		}
	}
	return total
}

func connectionOf(query string) string {
	if strings.Contains(query, "stargazerCount") {
		return "probe"
	}
	for _, conn := range []string{"stargazers", "forks", "issues", "pullRequests"} {
		if strings.Contains(query, conn+"(") {
			return conn
		}
	}
	return "unknown"
}

// Execute implements the QueryClient interface.
func (f *fakeGitHub) Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	owner, _ := variables["owner"].(string)
	name, _ := variables["name"].(string)
	full := owner + "/" + name
	conn := connectionOf(query)

	f.mu.Lock()
	f.calls[full+" "+conn]++
	f.active++
	f.maxActive = max(f.maxActive, f.active)
	f.order[full] = append(f.order[full], conn)
	if _, ok := f.firstCall[full]; !ok {
		f.firstCall[full] = time.Now()
	}
	f.repoActive[full]++
	f.maxRepoActive = max(f.maxRepoActive, f.repoActive[full])
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.repoActive[full]--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, &ghclient.QueryError{Kind: ghclient.TransportError, Err: ctx.Err()}
		case <-time.After(f.delay):
		}
	}
	if err, ok := f.fail[full]; ok {
		return nil, err
	}
	repo, ok := f.repos[full]
	if !ok {
		return nil, &ghclient.QueryError{
			Kind:     ghclient.ProviderRejected,
			Messages: []string{fmt.Sprintf("Could not resolve to a Repository with the name '%s'.", full)},
			Types:    []string{"NOT_FOUND"},
		}
	}

	if conn == "probe" {
		return json.Marshal(map[string]any{"repository": map[string]any{
			"name":           name,
			"stargazerCount": len(repo["stargazers"]),
			"forkCount":      len(repo["forks"]),
		}})
	}

	offset := 0
	if cursor, _ := variables["cursor"].(*string); cursor != nil {
		offset, _ = strconv.Atoi(*cursor)
	}
	all := repo[conn]
	offset = min(offset, len(all))
	end := min(offset+PageSize, len(all))

	edges := make([]map[string]any, 0, end-offset)
	for _, ts := range all[offset:end] {
		if conn == "stargazers" {
			edges = append(edges, map[string]any{"starredAt": ts})
		} else {
			edges = append(edges, map[string]any{"node": map[string]any{"createdAt": ts}})
		}
	}
	endCursor := strconv.Itoa(end)
	hasNext := end < len(all)
	if f.stuck {
		endCursor, hasNext = "stuck", true
	}
	return json.Marshal(map[string]any{"repository": map[string]any{conn: map[string]any{
		"pageInfo": map[string]any{"hasNextPage": hasNext, "endCursor": endCursor},
		"edges":    edges,
	}}})
}

// timestamps returns n RFC 3339 timestamps spread over one UTC day.
func timestamps(day string, n int) []string {
	out := make([]string, n)
	for i := range n {
		out[i] = fmt.Sprintf("%sT%02d:%02d:%02dZ", day, (i/3600)%24, (i/60)%60, i%60)
	}
	return out
}

// widgetsEdges is the acme/widgets fixture: 150 stars on 2024-05-01 and 100 on 2024-05-02.
func widgetsEdges() map[string][]string {
	return map[string][]string{
		"stargazers": append(timestamps("2024-05-01", 150), timestamps("2024-05-02", 100)...),
		"forks":      timestamps("2024-05-01", 3),
		"issues":     timestamps("2024-04-30", 2),
	}
}

var (
	widgets = schema.RepositoryRef{Owner: "acme", Name: "widgets"}
	gadgets = schema.RepositoryRef{Owner: "acme", Name: "gadgets"}
	gizmos  = schema.RepositoryRef{Owner: "acme", Name: "gizmos"}
	gone    = schema.RepositoryRef{Owner: "acme", Name: "gone"}
)
