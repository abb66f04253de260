// Package ghclient talks to the GitHub GraphQL and REST APIs.
package ghclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/go-github/v74/github"
	"github.com/huangsam/repotrend/internal/contract"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// userAgent identifies repotrend to GitHub.
const userAgent = "repotrend"

// ErrorKind classifies a failed query.
type ErrorKind int

// All query failure kinds.
const (
	TransportError   ErrorKind = iota // network failure or timeout
	HTTPError                         // non-success status, including 403 and 429 throttling
	ProviderRejected                  // the response body carried GraphQL errors
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case TransportError:
		return "transport"
	case HTTPError:
		return "http"
	case ProviderRejected:
		return "provider rejected"
	default:
		return "unknown"
	}
}

// QueryError is the typed failure returned by Client.Execute.
type QueryError struct {
	Kind     ErrorKind
	Status   int      // HTTP status, when one was received
	Messages []string // GraphQL error messages for ProviderRejected
	Types    []string // GraphQL error types such as NOT_FOUND
	Err      error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	switch e.Kind {
	case HTTPError:
		return fmt.Sprintf("github request failed with status %d: %v", e.Status, e.Err)
	case ProviderRejected:
		return "github rejected query: " + strings.Join(e.Messages, "; ")
	default:
		return fmt.Sprintf("github transport error: %v", e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether rerunning the same query later may succeed.
// A rejected query needs a fix first.
func (e *QueryError) IsRetryable() bool {
	return e.Kind != ProviderRejected
}

// HasType reports whether GitHub tagged the rejection with the given error type.
func (e *QueryError) HasType(t string) bool {
	return slices.Contains(e.Types, t)
}

// IsNotFound reports whether err is a rejection for a missing or hidden resource.
func IsNotFound(err error) bool {
	var qe *QueryError
	if !errors.As(err, &qe) {
		return false
	}
	return (qe.Kind == ProviderRejected && qe.HasType("NOT_FOUND")) ||
		(qe.Kind == HTTPError && qe.Status == http.StatusNotFound)
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Client implements contract.QueryClient and contract.MetadataClient.
// The GraphQL endpoint is reached through the same go-github transport as REST calls.
type Client struct {
	gh       *github.Client
	endpoint string
	limiter  *rate.Limiter
}

var (
	_ contract.QueryClient    = &Client{} // Compile-time check
	_ contract.MetadataClient = &Client{} // Compile-time check
)

// NewClient builds a client from the validated config. The token is read once here.
func NewClient(cfg *contract.Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = contract.DefaultTimeout
	}
	gh := github.NewClient(&http.Client{Timeout: timeout})
	if cfg.Token != "" {
		gh = gh.WithAuthToken(cfg.Token)
	}
	gh.UserAgent = userAgent

	if cfg.APIURL != "" && cfg.APIURL != contract.DefaultAPIURL {
		base := cfg.APIURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid api-url %q: %w", cfg.APIURL, err)
		}
		gh.BaseURL = u
	}

	endpoint := cfg.GraphQLURL
	if endpoint == "" {
		endpoint = contract.DefaultGraphQLURL
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid graphql-url %q: %w", endpoint, err)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{gh: gh, endpoint: endpoint, limiter: limiter}, nil
}

// Execute sends one GraphQL query and returns the raw data object.
// It never retries; callers decide what to do with a *QueryError.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &QueryError{Kind: TransportError, Err: err}
	}

	req, err := c.gh.NewRequest(http.MethodPost, c.endpoint, graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to build graphql request: %w", err)
	}

	start := time.Now()
	var body graphQLResponse
	resp, err := c.gh.Do(ctx, req, &body)
	entry := contract.Logger.WithFields(logrus.Fields{
		"variables": variables,
		"elapsed":   time.Since(start),
	})
	if err != nil {
		qe := classify(resp, err)
		entry.WithField("kind", qe.Kind).Debug("graphql request failed")
		return nil, qe
	}
	entry.WithField("status", resp.StatusCode).Debug("graphql request")

	if len(body.Errors) > 0 {
		qe := &QueryError{Kind: ProviderRejected, Status: resp.StatusCode}
		for _, e := range body.Errors {
			qe.Messages = append(qe.Messages, e.Message)
			if e.Type != "" {
				qe.Types = append(qe.Types, e.Type)
			}
		}
		return nil, qe
	}
	return body.Data, nil
}

// classify maps a go-github error onto the query failure taxonomy.
func classify(resp *github.Response, err error) *QueryError {
	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		errResp  *github.ErrorResponse
	)
	status := 0
	switch {
	case errors.As(err, &rateErr):
		status = statusOf(rateErr.Response, http.StatusForbidden)
	case errors.As(err, &abuseErr):
		status = statusOf(abuseErr.Response, http.StatusForbidden)
	case errors.As(err, &errResp):
		status = statusOf(errResp.Response, 0)
	default:
		return &QueryError{Kind: TransportError, Err: err}
	}
	if status == 0 && resp != nil {
		status = resp.StatusCode
	}
	return &QueryError{Kind: HTTPError, Status: status, Err: err}
}

func statusOf(resp *http.Response, fallback int) int {
	if resp == nil {
		return fallback
	}
	return resp.StatusCode
}
