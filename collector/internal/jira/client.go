package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bugmatrix/bugmatrix/collector/internal/config"
)

// searchPath is the cursor-paginated search endpoint of Jira Cloud
// (successor of the deprecated /rest/api/3/search).
const searchPath = "/rest/api/3/search/jql"

// requestedFields is the field list sent with every search page. Custom
// fields are requested wholesale with "*custom" so classification can see
// them without naming every field ID.
var requestedFields = []string{"issuetype", "status", "labels", "components", "summary", "*custom"}

// Client issues authenticated, cursor-paginated search requests against
// one Jira Cloud project. Build it once and reuse it across runs.
type Client struct {
	cfg     config.JiraConfig
	baseURL string
	httpc   *http.Client
}

// NewClient constructs a Client for the configured Jira domain. The HTTP
// client carries the per-page request timeout and injects basic auth on
// every request.
func NewClient(cfg config.JiraConfig) *Client {
	return &Client{
		cfg:     cfg,
		baseURL: "https://" + cfg.Domain,
		httpc: &http.Client{
			Transport: &authRoundTripper{base: http.DefaultTransport, cfg: cfg},
			Timeout:   cfg.RequestTimeout,
		},
	}
}

// authRoundTripper injects the basic-auth credential pair into every
// outgoing request. Credentials are resolved per request so a rotated
// token takes effect without rebuilding the client.
type authRoundTripper struct {
	base http.RoundTripper
	cfg  config.JiraConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.cfg.Email(), t.cfg.Token())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return t.base.RoundTrip(req)
}

// jql returns the search filter for the configured project: Bug-type
// issues only, newest activity first.
func (c *Client) jql() string {
	return fmt.Sprintf("project = %s AND type = Bug ORDER BY updated DESC", c.cfg.Project)
}

// Search streams every issue matching the project's bug filter to visit,
// following the pagination cursor until the upstream stops supplying one.
// A visit error aborts the search and is returned unwrapped.
//
// The sequence is restartable per run: each call starts from the first
// page. Exceeding MaxPages fails with ErrProtocol — a well-behaved
// upstream terminates the cursor long before the bound.
func (c *Client) Search(ctx context.Context, visit func(Issue) error) error {
	var (
		token string
		pages int
	)
	for {
		if pages >= c.cfg.MaxPages {
			return fmt.Errorf("%w: cursor did not terminate within %d pages", ErrProtocol, c.cfg.MaxPages)
		}

		page, err := c.fetchPage(ctx, token)
		if err != nil {
			return err
		}
		pages++

		issues := *page.Issues
		slog.Debug("jira: fetched page", "page", pages, "issues", len(issues))

		for _, wi := range issues {
			if err := visit(wi.toIssue()); err != nil {
				return err
			}
		}

		if page.NextPageToken == "" || page.IsLast || len(issues) == 0 {
			return nil
		}
		token = page.NextPageToken
	}
}

// fetchPage requests one search page, classifying failures onto the
// package's sentinel errors.
func (c *Client) fetchPage(ctx context.Context, token string) (*searchPage, error) {
	body, err := json.Marshal(searchRequest{
		JQL:           c.jql(),
		MaxResults:    c.cfg.PageSize,
		Fields:        requestedFields,
		NextPageToken: token,
	})
	if err != nil {
		return nil, fmt.Errorf("jira: marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("jira: build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		// Covers connection failures and the per-page timeout.
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrProtocol, resp.StatusCode)
	}

	var page searchPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decode page: %v", ErrProtocol, err)
	}
	if page.Issues == nil {
		return nil, fmt.Errorf("%w: page is missing the issues field", ErrProtocol)
	}
	return &page, nil
}
