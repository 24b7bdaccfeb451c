package datasource

import (
	"log/slog"

	"design-system-api/internal/cache"
	"design-system-api/internal/metrics"
)

// Options are the collaborators shared by every domain.
type Options struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Notifier Notifier
}

// Service groups the dashboard domains.
type Service struct {
	Components    *Components
	Analytics     *Analytics
	Audit         *Audit
	Requests      *Requests
	Issues        *Issues
	Contributions *Contributions
}

// Domains lists, in display order, the domains that can be fetched from a
// remote source.
var Domains = []string{"components", "analytics", "audit", "requests"}

// NewService builds every domain over the same clients and state store.
func NewService(gh GitHub, pkg NPM, repoURL string, state *cache.State, opts Options) *Service {
	return &Service{
		Components: NewComponents(gh, opts),
		Analytics:  NewAnalytics(gh, pkg, state, opts),
		Audit:      NewAudit(gh, repoURL, state, opts),
		Requests:   NewRequests(gh, state, opts),

		Issues:        NewIssues(gh, state, opts),
		Contributions: NewContributions(state, opts),
	}
}
