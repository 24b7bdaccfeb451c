package datasource

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"design-system-api/internal/cache"
	"design-system-api/internal/fixtures"
	"design-system-api/internal/github"
	"design-system-api/internal/mapper"
	"design-system-api/internal/models"
	"design-system-api/internal/npm"
)

// Analytics is the adoption analytics domain.
type Analytics struct {
	*Domain[models.AnalyticsSnapshot]
	pkg   NPM
	state *cache.State
	// mu serializes read-modify-write of the persisted dismissals.
	mu sync.Mutex
}

// NewAnalytics builds the analytics domain. A live load joins seven remote
// calls; if any fails, nothing from the others is kept.
func NewAnalytics(gh GitHub, pkg NPM, state *cache.State, opts Options) *Analytics {
	a := &Analytics{pkg: pkg, state: state}
	load := func(ctx context.Context) (models.AnalyticsSnapshot, error) {
		var (
			repo      github.RepoInfo
			downloads npm.DownloadPoint
			info      npm.PackageInfo
			daily     npm.DownloadRange
			listing   []github.Content
			releases  []github.Release
			bugs      []github.Issue
		)
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) { repo, err = gh.RepoInfo(ctx); return err })
		g.Go(func() (err error) { downloads, err = pkg.DownloadStats(ctx); return err })
		g.Go(func() (err error) { info, err = pkg.PackageInfo(ctx); return err })
		g.Go(func() (err error) { daily, err = pkg.DailyDownloads(ctx); return err })
		g.Go(func() (err error) { listing, err = gh.ComponentsList(ctx); return err })
		g.Go(func() (err error) { releases, err = gh.Releases(ctx, releasesPerPage); return err })
		g.Go(func() (err error) { bugs, err = gh.BugIssues(ctx, analyticsBugs); return err })
		if err := g.Wait(); err != nil {
			return models.AnalyticsSnapshot{}, err
		}

		t := now()
		components := mapper.DesignComponents(listing, releases, t)
		projects := mapper.AuditProjects(bugs, t)
		return models.AnalyticsSnapshot{
			Stats:              mapper.AnalyticsStats(repo, downloads, info, len(components)),
			Adoption:           mapper.WeeklyUsage(daily),
			TopComponents:      mapper.ComponentUsage(components),
			ProjectCoverage:    mapper.ProjectCoverage(projects, len(components)),
			PlatformUsage:      mapper.PlatformUsage(components),
			Alerts:             mapper.Alerts(repo, releases, len(bugs), t),
			Recommendations:    mapper.Recommendations(bugs, components),
			VersionHistory:     mapper.VersionHistory(releases),
			ImplementationTime: []models.ImplementationTime{},
		}, nil
	}
	a.Domain = NewDomain(Config[models.AnalyticsSnapshot]{
		Name:    "analytics",
		Fixture: fixtures.Analytics,
		Load:    load,
		Invalidate: func() {
			gh.ClearCache()
			pkg.ClearCache()
		},
		Overlay:  a.hideDismissed,
		Clone:    cloneAnalytics,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
		Notifier: opts.Notifier,
	})
	return a
}

func cloneAnalytics(in models.AnalyticsSnapshot) models.AnalyticsSnapshot {
	out := in
	out.Adoption = slices.Clone(in.Adoption)
	out.TopComponents = slices.Clone(in.TopComponents)
	out.ProjectCoverage = slices.Clone(in.ProjectCoverage)
	out.PlatformUsage = slices.Clone(in.PlatformUsage)
	for i, p := range out.PlatformUsage {
		p.Components = slices.Clone(p.Components)
		out.PlatformUsage[i] = p
	}
	out.Alerts = slices.Clone(in.Alerts)
	out.Recommendations = slices.Clone(in.Recommendations)
	out.VersionHistory = slices.Clone(in.VersionHistory)
	out.ImplementationTime = slices.Clone(in.ImplementationTime)
	return out
}

func (a *Analytics) dismissed() map[string]bool {
	var ids []string
	a.state.Get(cache.KeyDismissedAlerts, &ids)
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (a *Analytics) hideDismissed(s models.AnalyticsSnapshot) models.AnalyticsSnapshot {
	s.Alerts = withoutAlerts(s.Alerts, a.dismissed())
	return s
}

// withoutAlerts returns a new slice; alerts is left untouched.
func withoutAlerts(alerts []models.Alert, hidden map[string]bool) []models.Alert {
	out := make([]models.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if !hidden[alert.ID] {
			out = append(out, alert)
		}
	}
	return out
}

// DismissAlert hides an alert now and after every later load.
func (a *Analytics) DismissAlert(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Update(func(s models.AnalyticsSnapshot) (models.AnalyticsSnapshot, error) {
		found := false
		for _, alert := range s.Alerts {
			found = found || alert.ID == id
		}
		if !found {
			return s, fmt.Errorf("alert %q: %w", id, ErrNotFound)
		}
		hidden := a.dismissed()
		hidden[id] = true
		ids := make([]string, 0, len(hidden))
		for hiddenID := range hidden {
			ids = append(ids, hiddenID)
		}
		sort.Strings(ids)
		a.state.Set(cache.KeyDismissedAlerts, ids)
		s.Alerts = withoutAlerts(s.Alerts, hidden)
		return s, nil
	})
}

// Stats returns the headline numbers.
func (a *Analytics) Stats() models.AnalyticsStats { return a.Snapshot().Data.Stats }

// Adoption returns the adoption series in date order.
func (a *Analytics) Adoption() []models.UsageMetric { return a.Snapshot().Data.Adoption }

// TopComponents ranks component usage. With a platform, only components
// shipped on it are kept; an unknown platform filters nothing.
func (a *Analytics) TopComponents(platform models.Platform) []models.ComponentUsage {
	s := a.Snapshot().Data
	if platform == "" {
		return s.TopComponents
	}
	for _, p := range s.PlatformUsage {
		if p.Platform != platform {
			continue
		}
		out := make([]models.ComponentUsage, 0, len(s.TopComponents))
		for _, c := range s.TopComponents {
			if containsValue(p.Components, c.ComponentID) {
				out = append(out, c)
			}
		}
		return out
	}
	return s.TopComponents
}

// ProjectCoverage returns design system coverage per project.
func (a *Analytics) ProjectCoverage() []models.ProjectCoverage {
	return a.Snapshot().Data.ProjectCoverage
}

// PlatformUsage returns adoption per platform.
func (a *Analytics) PlatformUsage() []models.PlatformUsage { return a.Snapshot().Data.PlatformUsage }

// Alerts returns the alerts that have not been dismissed.
func (a *Analytics) Alerts() []models.Alert { return a.Snapshot().Data.Alerts }

// Recommendations returns the suggested component actions.
func (a *Analytics) Recommendations() []models.Recommendation {
	return a.Snapshot().Data.Recommendations
}

// VersionHistory returns the release history, newest first.
func (a *Analytics) VersionHistory() []models.VersionEntry { return a.Snapshot().Data.VersionHistory }

// Charts returns the dashboard chart series.
func (a *Analytics) Charts() models.ChartData { return mapper.Charts(a.Snapshot().Data) }

// AvgImplementationTime averages the per-component implementation times to
// one decimal, falling back to the headline figure when there are none.
func (a *Analytics) AvgImplementationTime() float64 {
	s := a.Snapshot().Data
	if len(s.ImplementationTime) == 0 {
		return s.Stats.AvgImplementationTime
	}
	var total float64
	for _, it := range s.ImplementationTime {
		total += it.Days
	}
	return math.Round(total/float64(len(s.ImplementationTime))*10) / 10
}

// Releases lists up to limit published package versions, newest first,
// straight from the registry.
func (a *Analytics) Releases(ctx context.Context, limit int) ([]npm.Version, error) {
	return a.pkg.RecentVersions(ctx, limit)
}

// Package reads the latest version and last week's downloads of the
// package live.
func (a *Analytics) Package(ctx context.Context) (models.PackageSummary, error) {
	var (
		latest string
		weekly npm.DownloadPoint
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { latest, err = a.pkg.LatestVersion(ctx); return err })
	g.Go(func() (err error) { weekly, err = a.pkg.WeeklyDownloads(ctx); return err })
	if err := g.Wait(); err != nil {
		return models.PackageSummary{}, err
	}
	return models.PackageSummary{
		Name:            weekly.Package,
		LatestVersion:   latest,
		WeeklyDownloads: weekly.Downloads,
		Start:           weekly.Start,
		End:             weekly.End,
	}, nil
}
