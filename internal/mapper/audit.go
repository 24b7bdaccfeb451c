package mapper

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"design-system-api/internal/github"
	"design-system-api/internal/models"
)

const (
	auditTitleLimit       = 80
	auditDescriptionLimit = 200
	maxAuditProjects      = 10
	noDescription         = "No description provided"
)

// AuditIssues maps bug reports to audit findings. repoURL is the web
// address of the repository, used to point at the full issue.
func AuditIssues(issues []github.Issue, repoURL string) []models.AuditIssue {
	out := make([]models.AuditIssue, 0, len(issues))
	for _, issue := range issues {
		labels := lowerLabels(issue)
		component := "General"
		if name, ok := labelValue(issue, "component:"); ok {
			component = name
		}

		names := make([]string, 0, 3)
		for _, l := range issue.Labels[:min(len(issue.Labels), 3)] {
			names = append(names, l.Name)
		}
		frame := strings.Join(names, ", ")
		if frame == "" {
			frame = "No labels"
		}

		description := truncate(issue.BodyText(), auditDescriptionLimit)
		if description == "" {
			description = noDescription
		}

		out = append(out, models.AuditIssue{
			ID:          fmt.Sprintf("gh-%d", issue.Number),
			Severity:    Severity(labels),
			Type:        issueType(labels),
			Title:       truncate(issue.Title, auditTitleLimit),
			Description: description,
			Location: models.IssueLocation{
				File:  component + " Component",
				Page:  fmt.Sprintf("GitHub Issue #%d", issue.Number),
				Frame: frame,
			},
			Suggestion:  fmt.Sprintf("View full issue: %s/issues/%d", repoURL, issue.Number),
			AutoFixable: anyLabelContains(labels, "good first issue", "easy"),
		})
	}
	return out
}

// Severity classifies an issue from its lower-cased label names.
func Severity(labels []string) models.IssueSeverity {
	switch {
	case anyLabelContains(labels, "critical", "blocker", "p0"):
		return models.SeverityCritical
	case anyLabelContains(labels, "high", "p1", "major"):
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}

func issueType(labels []string) string {
	switch {
	case anyLabelContains(labels, "style", "css"):
		return "Style Issue"
	case anyLabelContains(labels, "typescript", "type"):
		return "Type Definition"
	case anyLabelContains(labels, "a11y", "accessibility"):
		return "Accessibility"
	case anyLabelContains(labels, "docs", "documentation"):
		return "Documentation"
	default:
		return "Bug Report"
	}
}

// AuditProjects groups issues by their component label ("component:" or
// "comp:", anything else falls under "Other"). Ids follow first-seen order,
// the result is ordered by issue count (stable) and capped at ten.
func AuditProjects(issues []github.Issue, now time.Time) []models.AuditProject {
	type group struct {
		name  string
		first github.Issue
		count int
	}
	var groups []*group
	byName := map[string]*group{}
	for _, issue := range issues {
		name, ok := labelValue(issue, "component:", "comp:")
		if !ok {
			name = "Other"
		}
		g, seen := byName[name]
		if !seen {
			g = &group{name: name, first: issue}
			byName[name] = g
			groups = append(groups, g)
		}
		g.count++
	}

	today := now.UTC().Format(dateLayout)
	out := make([]models.AuditProject, 0, len(groups))
	for i, g := range groups {
		lastAudit := datePart(g.first.UpdatedAt)
		if lastAudit == "" {
			lastAudit = today
		}
		out = append(out, models.AuditProject{
			ID:        fmt.Sprintf("proj-%d", i+1),
			Name:      DisplayName(g.name),
			Coverage:  max(100-5*g.count, 50),
			Issues:    g.count,
			LastAudit: lastAudit,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Issues > out[j].Issues })
	return out[:min(len(out), maxAuditProjects)]
}

func lowerLabels(issue github.Issue) []string {
	out := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		out = append(out, strings.ToLower(l.Name))
	}
	return out
}

// labelValue returns the trimmed remainder of the first label that starts
// with one of prefixes, compared case-insensitively.
func labelValue(issue github.Issue, prefixes ...string) (string, bool) {
	for _, l := range issue.Labels {
		lower := strings.ToLower(l.Name)
		for _, p := range prefixes {
			if strings.HasPrefix(lower, p) {
				return strings.TrimSpace(l.Name[len(p):]), true
			}
		}
	}
	return "", false
}

func anyLabelContains(labels []string, subs ...string) bool {
	for _, l := range labels {
		if containsAny(l, subs...) {
			return true
		}
	}
	return false
}

// truncate shortens s to limit runes, ending in "..." when cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
