package mapper

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"design-system-api/internal/github"
	"design-system-api/internal/models"
)

const (
	bugAlertThreshold   = 50
	recentReleaseWindow = 7
	starAlertThreshold  = 90000
	maxRecommendations  = 5
	minMentions         = 3
	promoteUsage        = 500
)

var printer = message.NewPrinter(language.English)

// Alerts derives advisory messages from repository activity. releases is
// newest first.
func Alerts(repo github.RepoInfo, releases []github.Release, bugCount int, now time.Time) []models.Alert {
	today := now.UTC().Format(dateLayout)
	var alerts []models.Alert

	if bugCount > bugAlertThreshold {
		alerts = append(alerts, models.Alert{
			ID:      "alert-bugs",
			Type:    models.AlertWarning,
			Message: fmt.Sprintf("%d open bug issues in the repository", bugCount),
			Date:    today,
		})
	}

	if len(releases) > 0 {
		latest := releases[0]
		if published, err := time.Parse(time.RFC3339, latest.PublishedAt); err == nil {
			days := int(math.Floor(now.Sub(published).Hours() / 24))
			if days <= recentReleaseWindow {
				alerts = append(alerts, models.Alert{
					ID:      "alert-release",
					Type:    models.AlertSuccess,
					Message: fmt.Sprintf("New release %s published %d days ago", latest.TagName, days),
					Date:    datePart(latest.PublishedAt),
				})
			}
		}
	}

	if repo.StargazersCount >= starAlertThreshold {
		milestone := repo.StargazersCount / 1000 * 1000
		alerts = append(alerts, models.Alert{
			ID:      "alert-stars",
			Type:    models.AlertInfo,
			Message: printer.Sprintf("Repository has reached %d+ stars on GitHub", milestone),
			Date:    today,
		})
	}
	return alerts
}

// Recommendations suggests updating components named in at least three
// issue titles (top three by mentions), deprecating deprecated components
// (first two) and promoting heavily used beta components (first two). At
// most five are returned.
func Recommendations(issues []github.Issue, components []models.DesignComponent) []models.Recommendation {
	type mention struct {
		component models.DesignComponent
		count     int
	}
	var mentions []*mention
	byID := map[string]*mention{}
	for _, issue := range issues {
		title := strings.ToLower(issue.Title)
		for _, c := range components {
			if !strings.Contains(title, strings.ToLower(c.Name)) {
				continue
			}
			m, ok := byID[c.ID]
			if !ok {
				m = &mention{component: c}
				byID[c.ID] = m
				mentions = append(mentions, m)
			}
			m.count++
		}
	}
	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].count > mentions[j].count })

	var recs []models.Recommendation
	for _, m := range mentions[:min(len(mentions), 3)] {
		if m.count < minMentions {
			continue
		}
		recs = append(recs, models.Recommendation{
			ID:            "rec-update-" + m.component.ID,
			Type:          models.RecommendUpdate,
			ComponentID:   m.component.ID,
			ComponentName: m.component.Name,
			Reason:        fmt.Sprintf("Referenced in %d open issues", m.count),
			Metric:        fmt.Sprintf("%d issues", m.count),
		})
	}

	deprecated := 0
	for _, c := range components {
		if c.Status != models.StatusDeprecated || deprecated == 2 {
			continue
		}
		deprecated++
		recs = append(recs, models.Recommendation{
			ID:            "rec-deprecate-" + c.ID,
			Type:          models.RecommendDeprecate,
			ComponentID:   c.ID,
			ComponentName: c.Name,
			Reason:        "Component is marked as deprecated",
			Metric:        "Deprecated",
		})
	}

	promoted := 0
	for _, c := range components {
		if c.Status != models.StatusBeta || c.UsageCount <= promoteUsage || promoted == 2 {
			continue
		}
		promoted++
		recs = append(recs, models.Recommendation{
			ID:            "rec-promote-" + c.ID,
			Type:          models.RecommendPromote,
			ComponentID:   c.ID,
			ComponentName: c.Name,
			Reason:        "Beta component with high usage",
			Metric:        fmt.Sprintf("%d instances", c.UsageCount),
		})
	}

	return recs[:min(len(recs), maxRecommendations)]
}
