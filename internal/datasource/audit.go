package datasource

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"design-system-api/internal/cache"
	"design-system-api/internal/fixtures"
	"design-system-api/internal/mapper"
	"design-system-api/internal/models"
)

// Persisted marks on audit issues.
const (
	markFixed   = "fixed"
	markIgnored = "ignored"
)

// AuditFilter narrows the open issue list. Empty fields match everything.
type AuditFilter struct {
	Severity  models.IssueSeverity `form:"severity"`
	ProjectID string               `form:"project"`
}

// Audit is the design consistency audit domain. Fix and ignore marks are
// persisted and re-applied to whichever data is loaded.
type Audit struct {
	*Domain[models.AuditSnapshot]
	state *cache.State
	mu    sync.Mutex
}

// NewAudit builds the audit domain, loading from open bug reports. repoURL
// is the repository's web address used in issue suggestions.
func NewAudit(gh GitHub, repoURL string, state *cache.State, opts Options) *Audit {
	a := &Audit{state: state}
	load := func(ctx context.Context) (models.AuditSnapshot, error) {
		bugs, err := gh.BugIssues(ctx, bugsPerPage)
		if err != nil {
			return models.AuditSnapshot{}, err
		}
		return models.AuditSnapshot{
			Issues:   mapper.AuditIssues(bugs, repoURL),
			Projects: mapper.AuditProjects(bugs, now()),
		}, nil
	}
	a.Domain = NewDomain(Config[models.AuditSnapshot]{
		Name:       "audit",
		Fixture:    fixtures.Audit,
		Load:       load,
		Invalidate: gh.ClearCache,
		Overlay:    a.applyMarks,
		Clone:      cloneAudit,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
		Notifier:   opts.Notifier,
	})
	return a
}

func cloneAudit(in models.AuditSnapshot) models.AuditSnapshot {
	return models.AuditSnapshot{
		Issues:   slices.Clone(in.Issues),
		Projects: slices.Clone(in.Projects),
	}
}

func (a *Audit) marks() map[string]string {
	marks := map[string]string{}
	a.state.Get(cache.KeyAuditIssues, &marks)
	return marks
}

func (a *Audit) applyMarks(s models.AuditSnapshot) models.AuditSnapshot {
	return withMarks(s, a.marks())
}

func withMarks(s models.AuditSnapshot, marks map[string]string) models.AuditSnapshot {
	issues := make([]models.AuditIssue, 0, len(s.Issues))
	for _, issue := range s.Issues {
		switch marks[issue.ID] {
		case markIgnored:
			continue
		case markFixed:
			issue.Fixed = true
		}
		issues = append(issues, issue)
	}
	s.Issues = issues
	return s
}

// mark records marks for ids and applies them to the current data. It
// fails with ErrNotFound when none of ids is loaded.
func (a *Audit) mark(ids []string, mark string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Update(func(s models.AuditSnapshot) (models.AuditSnapshot, error) {
		marks := a.marks()
		changed := 0
		for _, id := range ids {
			for _, issue := range s.Issues {
				if issue.ID == id {
					marks[id] = mark
					changed++
					break
				}
			}
		}
		if changed == 0 && len(ids) > 0 {
			return s, fmt.Errorf("issue %q: %w", ids[0], ErrNotFound)
		}
		a.state.Set(cache.KeyAuditIssues, marks)
		return withMarks(s, marks), nil
	})
}

// FixIssue marks an issue fixed.
func (a *Audit) FixIssue(id string) error {
	return a.mark([]string{id}, markFixed)
}

// IgnoreIssue removes an issue from the list.
func (a *Audit) IgnoreIssue(id string) error {
	return a.mark([]string{id}, markIgnored)
}

// FixAllAutoFixable marks every open auto-fixable issue fixed and returns
// how many were fixed.
func (a *Audit) FixAllAutoFixable() int {
	var ids []string
	for _, issue := range a.Snapshot().Data.Issues {
		if issue.AutoFixable && !issue.Fixed {
			ids = append(ids, issue.ID)
		}
	}
	if len(ids) == 0 {
		return 0
	}
	if err := a.mark(ids, markFixed); err != nil {
		return 0
	}
	return len(ids)
}

// Projects returns the audited projects.
func (a *Audit) Projects() []models.AuditProject { return a.Snapshot().Data.Projects }

// Issues returns the open issues matching f. A project matches issues whose
// file location contains the first word of the project name.
func (a *Audit) Issues(f AuditFilter) []models.AuditIssue {
	s := a.Snapshot().Data
	prefix := ""
	if f.ProjectID != "" {
		for _, p := range s.Projects {
			if p.ID == f.ProjectID {
				prefix, _, _ = strings.Cut(p.Name, " ")
				prefix = strings.ToLower(prefix)
			}
		}
	}
	out := make([]models.AuditIssue, 0, len(s.Issues))
	for _, issue := range s.Issues {
		if issue.Fixed {
			continue
		}
		if f.Severity != "" && issue.Severity != f.Severity {
			continue
		}
		if prefix != "" && !strings.Contains(strings.ToLower(issue.Location.File), prefix) {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// AutoFixable returns the open issues matching f that can be fixed
// automatically.
func (a *Audit) AutoFixable(f AuditFilter) []models.AuditIssue {
	var out []models.AuditIssue
	for _, issue := range a.Issues(f) {
		if issue.AutoFixable {
			out = append(out, issue)
		}
	}
	return out
}

// BySeverity groups the open issues by severity.
func (a *Audit) BySeverity() map[models.IssueSeverity][]models.AuditIssue {
	grouped := map[models.IssueSeverity][]models.AuditIssue{
		models.SeverityCritical: {},
		models.SeverityHigh:     {},
		models.SeverityMedium:   {},
	}
	for _, issue := range a.Issues(AuditFilter{}) {
		grouped[issue.Severity] = append(grouped[issue.Severity], issue)
	}
	return grouped
}

// Stats counts the open issues and averages project coverage.
func (a *Audit) Stats() models.AuditStats {
	s := a.Snapshot().Data
	var stats models.AuditStats
	for _, issue := range s.Issues {
		if issue.Fixed {
			continue
		}
		stats.TotalIssues++
		switch issue.Severity {
		case models.SeverityCritical:
			stats.Critical++
		case models.SeverityHigh:
			stats.High++
		case models.SeverityMedium:
			stats.Medium++
		}
		if issue.AutoFixable {
			stats.AutoFixable++
		}
	}
	if len(s.Projects) > 0 {
		total := 0
		for _, p := range s.Projects {
			total += p.Coverage
		}
		stats.AvgCoverage = int(math.Round(float64(total) / float64(len(s.Projects))))
	}
	return stats
}
