// Package npm reads package metadata and download statistics from the npm
// registry and downloads API.
package npm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"design-system-api/internal/cache"
	"design-system-api/internal/metrics"
	"design-system-api/internal/remote"
)

const cacheKeyPrefix = "npm_"

// Package documents can run to tens of megabytes for long-lived packages.
const maxDocumentSize = 64 << 20

// Config identifies the package and the two endpoints
type Config struct {
	RegistryURL  string // e.g. https://registry.npmjs.org
	DownloadsURL string // e.g. https://api.npmjs.org
	Package      string
}

// Client calls the npm registry and downloads API through a cache-checked
// fetcher.
type Client struct {
	cfg     Config
	fetcher *remote.Fetcher
}

// New builds a Client. c may be nil to disable caching.
func New(cfg Config, httpClient *http.Client, c cache.Cache, logger *slog.Logger, m *metrics.Metrics) *Client {
	f := remote.NewFetcher("npm", httpClient, c, logger, m)
	f.Headers["Accept"] = "application/json"
	f.MaxBody = maxDocumentSize
	cfg.RegistryURL = strings.TrimRight(cfg.RegistryURL, "/")
	cfg.DownloadsURL = strings.TrimRight(cfg.DownloadsURL, "/")
	return &Client{cfg: cfg, fetcher: f}
}

// escapedName encodes the scope slash of scoped packages as the registry
// expects.
func (c *Client) escapedName() string {
	return url.PathEscape(c.cfg.Package)
}

// PackageInfo returns the full registry document.
func (c *Client) PackageInfo(ctx context.Context) (PackageInfo, error) {
	u := fmt.Sprintf("%s/%s", c.cfg.RegistryURL, c.escapedName())
	return remote.Fetch[PackageInfo](ctx, c.fetcher, u, "npm_package_info")
}

// DownloadStats returns total downloads over the last month.
func (c *Client) DownloadStats(ctx context.Context) (DownloadPoint, error) {
	u := fmt.Sprintf("%s/downloads/point/last-month/%s", c.cfg.DownloadsURL, c.escapedName())
	return remote.Fetch[DownloadPoint](ctx, c.fetcher, u, "npm_downloads_month")
}

// WeeklyDownloads returns total downloads over the last week.
func (c *Client) WeeklyDownloads(ctx context.Context) (DownloadPoint, error) {
	u := fmt.Sprintf("%s/downloads/point/last-week/%s", c.cfg.DownloadsURL, c.escapedName())
	return remote.Fetch[DownloadPoint](ctx, c.fetcher, u, "npm_downloads_week")
}

// DailyDownloads returns per-day downloads over the last month.
func (c *Client) DailyDownloads(ctx context.Context) (DownloadRange, error) {
	u := fmt.Sprintf("%s/downloads/range/last-month/%s", c.cfg.DownloadsURL, c.escapedName())
	return remote.Fetch[DownloadRange](ctx, c.fetcher, u, "npm_downloads_daily")
}

// LatestVersion returns the latest dist-tag.
func (c *Client) LatestVersion(ctx context.Context) (string, error) {
	info, err := c.PackageInfo(ctx)
	if err != nil {
		return "", err
	}
	latest, ok := info.DistTags["latest"]
	if !ok {
		return "", &remote.FetchError{Source: "npm", Err: fmt.Errorf("%w: no latest dist-tag", remote.ErrInvalidPayload)}
	}
	return latest, nil
}

// RecentVersions returns up to limit versions ordered by publish time,
// newest first.
func (c *Client) RecentVersions(ctx context.Context, limit int) ([]Version, error) {
	info, err := c.PackageInfo(ctx)
	if err != nil {
		return nil, err
	}
	return RecentVersions(info, limit), nil
}

// RecentVersions lists the versions in info.Time, skipping the created and
// modified markers, newest first.
func RecentVersions(info PackageInfo, limit int) []Version {
	versions := make([]Version, 0, len(info.Time))
	for v, date := range info.Time {
		if v == "created" || v == "modified" {
			continue
		}
		versions = append(versions, Version{Version: v, Date: date})
	}
	// RFC 3339 timestamps in UTC sort lexically.
	sort.Slice(versions, func(i, j int) bool {
		if versions[i].Date != versions[j].Date {
			return versions[i].Date > versions[j].Date
		}
		return versions[i].Version > versions[j].Version
	})
	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}
	return versions
}

// ClearCache drops every cached npm response.
func (c *Client) ClearCache() {
	if c.fetcher.Cache != nil {
		c.fetcher.Cache.RemovePrefix(cacheKeyPrefix)
	}
}
