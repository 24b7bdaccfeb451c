package datasource

import (
	"context"

	"design-system-api/internal/github"
	"design-system-api/internal/npm"
)

// GitHub is the subset of the GitHub client the domains read from.
type GitHub interface {
	RepoInfo(ctx context.Context) (github.RepoInfo, error)
	ComponentsList(ctx context.Context) ([]github.Content, error)
	BugIssues(ctx context.Context, perPage int) ([]github.Issue, error)
	FeatureRequests(ctx context.Context, perPage int) ([]github.Issue, error)
	Releases(ctx context.Context, perPage int) ([]github.Release, error)
	Labels(ctx context.Context) ([]github.Label, error)
	// ComponentReadme yields "" when the page cannot be read.
	ComponentReadme(ctx context.Context, name string) string
	ClearCache()
}

// NPM is the subset of the npm client the domains read from.
type NPM interface {
	PackageInfo(ctx context.Context) (npm.PackageInfo, error)
	DownloadStats(ctx context.Context) (npm.DownloadPoint, error)
	DailyDownloads(ctx context.Context) (npm.DownloadRange, error)
	WeeklyDownloads(ctx context.Context) (npm.DownloadPoint, error)
	LatestVersion(ctx context.Context) (string, error)
	RecentVersions(ctx context.Context, limit int) ([]npm.Version, error)
	ClearCache()
}

// Page sizes of the issue and release queries.
const (
	releasesPerPage = 10
	bugsPerPage     = 50
	analyticsBugs   = 100
	featuresPerPage = 30
)
