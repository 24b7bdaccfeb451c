// Package github reads repository metadata, the component directory,
// issues and releases of the design system's source repository.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"design-system-api/internal/cache"
	"design-system-api/internal/metrics"
	"design-system-api/internal/remote"
)

// cacheKeyPrefix starts every cache key this client writes.
const cacheKeyPrefix = "github_"

// excludedComponents are folders under components/ that are not components.
var excludedComponents = map[string]bool{
	"__tests__":       true,
	"_util":           true,
	"locale":          true,
	"style":           true,
	"theme":           true,
	"version":         true,
	"config-provider": true,
	"app":             true,
}

// Config identifies the repository and API endpoint
type Config struct {
	BaseURL string // e.g. https://api.github.com
	Owner   string
	Repo    string
	Token   string // optional; read endpoints work unauthenticated
}

// Client calls the GitHub REST API through a cache-checked fetcher.
type Client struct {
	cfg     Config
	fetcher *remote.Fetcher
}

// New builds a Client. c may be nil to disable caching.
func New(cfg Config, httpClient *http.Client, c cache.Cache, logger *slog.Logger, m *metrics.Metrics) *Client {
	f := remote.NewFetcher("GitHub", httpClient, c, logger, m)
	f.Headers["Accept"] = "application/vnd.github+json"
	f.Headers["X-GitHub-Api-Version"] = "2022-11-28"
	if cfg.Token != "" {
		f.Headers["Authorization"] = "Bearer " + cfg.Token
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, fetcher: f}
}

func (c *Client) repoURL(path string, query url.Values) string {
	u := fmt.Sprintf("%s/repos/%s/%s%s", c.cfg.BaseURL, url.PathEscape(c.cfg.Owner), url.PathEscape(c.cfg.Repo), path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// RepoInfo returns stars, forks and open issue counts.
func (c *Client) RepoInfo(ctx context.Context) (RepoInfo, error) {
	return remote.Fetch[RepoInfo](ctx, c.fetcher, c.repoURL("", nil), "github_repo_info")
}

// ComponentsList returns the component folders under components/, without
// files and without the internal utility folders.
func (c *Client) ComponentsList(ctx context.Context) ([]Content, error) {
	contents, err := remote.Fetch[[]Content](ctx, c.fetcher, c.repoURL("/contents/components", nil), "github_components_list")
	if err != nil {
		return nil, err
	}
	out := make([]Content, 0, len(contents))
	for _, item := range contents {
		if item.IsDir() && !excludedComponents[item.Name] {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *Client) issues(ctx context.Context, query url.Values, key string) ([]Issue, error) {
	return remote.Fetch[[]Issue](ctx, c.fetcher, c.repoURL("/issues", query), key)
}

func issueQuery(state string, perPage int) url.Values {
	q := url.Values{}
	q.Set("state", state)
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}

// OpenIssues returns the most recent open issues.
func (c *Client) OpenIssues(ctx context.Context, perPage int) ([]Issue, error) {
	return c.issues(ctx, issueQuery("open", perPage), fmt.Sprintf("github_issues_%d", perPage))
}

// BugIssues returns open issues labelled bug.
func (c *Client) BugIssues(ctx context.Context, perPage int) ([]Issue, error) {
	q := issueQuery("open", perPage)
	q.Set("labels", "bug")
	return c.issues(ctx, q, fmt.Sprintf("github_bugs_%d", perPage))
}

// FeatureRequests returns open issues labelled Feature Request.
func (c *Client) FeatureRequests(ctx context.Context, perPage int) ([]Issue, error) {
	q := issueQuery("open", perPage)
	q.Set("labels", "Feature Request")
	return c.issues(ctx, q, fmt.Sprintf("github_features_%d", perPage))
}

// IssuesByLabels returns open issues carrying all of labels.
func (c *Client) IssuesByLabels(ctx context.Context, labels []string, perPage int) ([]Issue, error) {
	q := issueQuery("open", perPage)
	q.Set("labels", strings.Join(labels, ","))
	return c.issues(ctx, q, fmt.Sprintf("github_issues_labels_%s_%d", strings.Join(labels, "_"), perPage))
}

// ClosedIssues returns the most recently updated closed issues.
func (c *Client) ClosedIssues(ctx context.Context, perPage int) ([]Issue, error) {
	q := issueQuery("closed", perPage)
	q.Set("sort", "updated")
	q.Set("direction", "desc")
	return c.issues(ctx, q, fmt.Sprintf("github_closed_%d", perPage))
}

// Labels returns the repository's issue labels.
func (c *Client) Labels(ctx context.Context) ([]Label, error) {
	q := url.Values{}
	q.Set("per_page", "100")
	return remote.Fetch[[]Label](ctx, c.fetcher, c.repoURL("/labels", q), "github_labels")
}

// Releases returns the latest releases, newest first.
func (c *Client) Releases(ctx context.Context, perPage int) ([]Release, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	return remote.Fetch[[]Release](ctx, c.fetcher, c.repoURL("/releases", q), fmt.Sprintf("github_releases_%d", perPage))
}

// ComponentReadme returns the English docs page of a component as raw
// markdown. Any failure yields "".
func (c *Client) ComponentReadme(ctx context.Context, name string) string {
	u := c.repoURL("/contents/components/"+url.PathEscape(name)+"/index.en-US.md", nil)
	text, err := c.fetcher.Raw(ctx, u, "application/vnd.github.raw+json")
	if err != nil {
		return ""
	}
	return text
}

// ClearCache drops every cached GitHub response.
func (c *Client) ClearCache() {
	if c.fetcher.Cache != nil {
		c.fetcher.Cache.RemovePrefix(cacheKeyPrefix)
	}
}
