package datasource

import (
	"context"
	"sync"
	"testing"
	"time"

	"design-system-api/internal/cache"
	"design-system-api/internal/github"
	"design-system-api/internal/kvstore"
	"design-system-api/internal/npm"
)

type fakeGitHub struct {
	mu       sync.Mutex
	repo     github.RepoInfo
	listing  []github.Content
	bugs     []github.Issue
	features []github.Issue
	releases []github.Release
	labels   []github.Label
	readmes  map[string]string
	errs     map[string]error
	cleared  int
}

func (f *fakeGitHub) fail(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[call]
}

func (f *fakeGitHub) RepoInfo(ctx context.Context) (github.RepoInfo, error) {
	return f.repo, f.fail("repo")
}

func (f *fakeGitHub) ComponentsList(ctx context.Context) ([]github.Content, error) {
	return append([]github.Content(nil), f.listing...), f.fail("list")
}

func (f *fakeGitHub) BugIssues(ctx context.Context, perPage int) ([]github.Issue, error) {
	return append([]github.Issue(nil), f.bugs...), f.fail("bugs")
}

func (f *fakeGitHub) FeatureRequests(ctx context.Context, perPage int) ([]github.Issue, error) {
	return append([]github.Issue(nil), f.features...), f.fail("features")
}

func (f *fakeGitHub) Releases(ctx context.Context, perPage int) ([]github.Release, error) {
	return append([]github.Release(nil), f.releases...), f.fail("releases")
}

func (f *fakeGitHub) Labels(ctx context.Context) ([]github.Label, error) {
	return append([]github.Label(nil), f.labels...), f.fail("labels")
}

func (f *fakeGitHub) ComponentReadme(ctx context.Context, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readmes[name]
}

func (f *fakeGitHub) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
}

type fakeNPM struct {
	info    npm.PackageInfo
	point   npm.DownloadPoint
	daily   npm.DownloadRange
	weekly  npm.DownloadPoint
	err     error
	cleared int
}

func (f *fakeNPM) PackageInfo(ctx context.Context) (npm.PackageInfo, error) { return f.info, f.err }

func (f *fakeNPM) DownloadStats(ctx context.Context) (npm.DownloadPoint, error) {
	return f.point, f.err
}

func (f *fakeNPM) DailyDownloads(ctx context.Context) (npm.DownloadRange, error) {
	return f.daily, f.err
}

func (f *fakeNPM) WeeklyDownloads(ctx context.Context) (npm.DownloadPoint, error) {
	return f.weekly, f.err
}

func (f *fakeNPM) LatestVersion(ctx context.Context) (string, error) {
	return f.info.DistTags["latest"], f.err
}

func (f *fakeNPM) RecentVersions(ctx context.Context, limit int) ([]npm.Version, error) {
	return npm.RecentVersions(f.info, limit), f.err
}

func (f *fakeNPM) ClearCache() { f.cleared++ }

func issue(number int, title string, comments int, labels ...string) github.Issue {
	i := github.Issue{Number: number, Title: title, State: "open", Comments: comments}
	for _, l := range labels {
		i.Labels = append(i.Labels, github.Label{Name: l})
	}
	return i
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		repo: github.RepoInfo{Name: "ant-design", StargazersCount: 92500, ForksCount: 50000, OpenIssuesCount: 900},
		listing: []github.Content{
			{Name: "button", Type: "dir"},
			{Name: "table", Type: "dir"},
			{Name: "mention", Type: "dir"},
		},
		bugs: []github.Issue{
			issue(1, "Button focus ring", 0, "bug", "Component: Button", "good first issue"),
			issue(2, "Table crash", 0, "bug", "p0", "Component: Table"),
		},
		features: []github.Issue{issue(10, "Add Splitter", 4, "Feature Request")},
		releases: []github.Release{{TagName: "5.20.0", PublishedAt: "2024-03-12T00:00:00Z"}},
		labels:   []github.Label{{Name: "bug"}, {Name: "Component: Button"}},
		readmes:  map[string]string{"button": "# Button", "float-button": "# FloatButton"},
		errs:     map[string]error{},
	}
}

func newFakeNPM() *fakeNPM {
	return &fakeNPM{
		info: npm.PackageInfo{
			Name:     "antd",
			DistTags: map[string]string{"latest": "5.20.0"},
			Versions: map[string]npm.VersionInfo{"5.19.0": {}, "5.20.0": {}},
			Time: map[string]string{
				"created":  "2015-04-24T00:00:00Z",
				"5.19.0":   "2024-02-01T00:00:00Z",
				"5.20.0":   "2024-03-12T00:00:00Z",
				"modified": "2024-03-12T00:00:00Z",
			},
		},
		point:  npm.DownloadPoint{Downloads: 1_500_000, Package: "antd"},
		weekly: npm.DownloadPoint{Downloads: 350_000, Start: "2024-03-08", End: "2024-03-14", Package: "antd"},
		daily:  npm.DownloadRange{Package: "antd", Downloads: []npm.DailyDownload{{Day: "2024-03-11", Downloads: 7}}},
	}
}

func newState() *cache.State {
	return cache.NewState(kvstore.NewMemoryStore(0), cache.Options{})
}

func freezeClock(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}
