package mapper

import (
	"sort"
	"strings"
	"time"

	"design-system-api/internal/github"
	"design-system-api/internal/models"
	"design-system-api/internal/npm"
)

// Placeholder figures the public APIs cannot provide.
const (
	placeholderAdoptionRate = 84
	placeholderAvgImplDays  = 2.3
	downloadsPerProject     = 100000
)

// WeeklyUsage sums daily downloads into ISO weeks. Each point is dated with
// the Monday of its week; Sunday belongs to the week that began six days
// earlier. Points are ordered by date. Days that do not parse are skipped.
func WeeklyUsage(r npm.DownloadRange) []models.UsageMetric {
	totals := map[string]int{}
	for _, d := range r.Downloads {
		day, err := time.Parse(dateLayout, d.Day)
		if err != nil {
			continue
		}
		totals[weekStart(day).Format(dateLayout)] += d.Downloads
	}

	out := make([]models.UsageMetric, 0, len(totals))
	for date, value := range totals {
		out = append(out, models.UsageMetric{Date: date, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// weekStart returns the Monday on or before day.
func weekStart(day time.Time) time.Time {
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// AnalyticsStats combines repository, download and package figures into the
// dashboard headline numbers.
func AnalyticsStats(repo github.RepoInfo, downloads npm.DownloadPoint, pkg npm.PackageInfo, componentCount int) models.AnalyticsStats {
	return models.AnalyticsStats{
		TotalComponents:       componentCount,
		AdoptionRate:          placeholderAdoptionRate,
		AvgImplementationTime: placeholderAvgImplDays,
		ActiveProjects:        downloads.Downloads / downloadsPerProject,
		TotalInstances:        downloads.Downloads,
		IssuesResolved:        repo.OpenIssuesCount,
		Stars:                 repo.StargazersCount,
		Forks:                 repo.ForksCount,
		LatestVersion:         pkg.DistTags["latest"],
		TotalVersions:         len(pkg.Versions),
		WeeklyDownloads:       downloads.Downloads,
	}
}

// VersionHistory lists releases in the order given.
func VersionHistory(releases []github.Release) []models.VersionEntry {
	out := make([]models.VersionEntry, 0, len(releases))
	for _, r := range releases {
		name := r.Name
		if name == "" {
			name = r.TagName
		}
		out = append(out, models.VersionEntry{
			Version:      r.TagName,
			Date:         datePart(r.PublishedAt),
			Name:         name,
			IsPrerelease: r.Prerelease,
			Author:       r.Author.Login,
		})
	}
	return out
}

// ProjectCoverage presents audit projects as coverage entries against a
// catalogue of componentCount components.
func ProjectCoverage(projects []models.AuditProject, componentCount int) []models.ProjectCoverage {
	out := make([]models.ProjectCoverage, 0, len(projects))
	for _, p := range projects {
		out = append(out, models.ProjectCoverage{
			ProjectID:         p.ID,
			ProjectName:       p.Name,
			Coverage:          p.Coverage,
			TotalComponents:   componentCount,
			AdoptedComponents: componentCount * p.Coverage / 100,
		})
	}
	return out
}

// Charts builds the dashboard series from a snapshot. The top components
// chart shows at most eight entries.
func Charts(s models.AnalyticsSnapshot) models.ChartData {
	var charts models.ChartData
	for _, m := range s.Adoption {
		charts.Adoption.Labels = append(charts.Adoption.Labels, m.Date)
		charts.Adoption.Data = append(charts.Adoption.Data, m.Value)
	}
	for _, c := range s.TopComponents[:min(len(s.TopComponents), 8)] {
		charts.TopComponents.Labels = append(charts.TopComponents.Labels, c.ComponentName)
		charts.TopComponents.Data = append(charts.TopComponents.Data, c.UsageCount)
	}
	for _, p := range s.ProjectCoverage {
		charts.Coverage.Labels = append(charts.Coverage.Labels, p.ProjectName)
		charts.Coverage.Data = append(charts.Coverage.Data, p.Coverage)
	}
	for _, p := range s.PlatformUsage {
		charts.Platform.Labels = append(charts.Platform.Labels, strings.ToUpper(string(p.Platform)))
		charts.Platform.Data = append(charts.Platform.Data, p.Usage)
	}
	return charts
}
