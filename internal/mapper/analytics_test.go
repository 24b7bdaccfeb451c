package mapper

import (
	"fmt"
	"testing"

	"design-system-api/internal/github"
	"design-system-api/internal/models"
	"design-system-api/internal/npm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// downloadRange builds consecutive January 2024 days starting at startDay.
func downloadRange(startDay int, values ...int) npm.DownloadRange {
	r := npm.DownloadRange{Package: "antd"}
	for i, v := range values {
		r.Downloads = append(r.Downloads, npm.DailyDownload{
			Day:       fmt.Sprintf("2024-01-%02d", startDay+i),
			Downloads: v,
		})
	}
	return r
}

func TestWeeklyUsage_SingleWeek(t *testing.T) {
	// 2024-01-08 is a Monday.
	got := WeeklyUsage(downloadRange(8, 1, 2, 3, 4, 5, 6, 7))
	assert.Equal(t, []models.UsageMetric{{Date: "2024-01-08", Value: 28}}, got)
}

func TestWeeklyUsage_WednesdayStart(t *testing.T) {
	// 2024-01-03 is a Wednesday.
	got := WeeklyUsage(downloadRange(3, 10, 20, 30, 40, 50, 60, 70))
	require.Len(t, got, 2)
	assert.Equal(t, models.UsageMetric{Date: "2024-01-01", Value: 150}, got[0])
	assert.Equal(t, models.UsageMetric{Date: "2024-01-08", Value: 130}, got[1])
	assert.Equal(t, 280, got[0].Value+got[1].Value)
}

func TestWeeklyUsage_SundayBelongsToPrecedingMonday(t *testing.T) {
	got := WeeklyUsage(downloadRange(14, 5))
	assert.Equal(t, []models.UsageMetric{{Date: "2024-01-08", Value: 5}}, got)
}

func TestAnalyticsStats(t *testing.T) {
	repo := github.RepoInfo{StargazersCount: 91000, ForksCount: 50000, OpenIssuesCount: 1200}
	point := npm.DownloadPoint{Downloads: 5_250_000, Package: "antd"}
	pkg := npm.PackageInfo{
		Name:     "antd",
		DistTags: map[string]string{"latest": "5.12.0"},
		Versions: map[string]npm.VersionInfo{"5.11.0": {}, "5.12.0": {}},
	}

	got := AnalyticsStats(repo, point, pkg, 64)
	assert.Equal(t, models.AnalyticsStats{
		TotalComponents:       64,
		AdoptionRate:          84,
		AvgImplementationTime: 2.3,
		ActiveProjects:        52,
		TotalInstances:        5_250_000,
		IssuesResolved:        1200,
		Stars:                 91000,
		Forks:                 50000,
		LatestVersion:         "5.12.0",
		TotalVersions:         2,
		WeeklyDownloads:       5_250_000,
	}, got)
}

func TestVersionHistory(t *testing.T) {
	releases := []github.Release{
		{TagName: "5.12.0", Name: "", PublishedAt: "2024-03-10T08:00:00Z", Author: github.User{Login: "afc163"}},
		{TagName: "6.0.0-alpha.1", Name: "Alpha", Prerelease: true},
	}

	got := VersionHistory(releases)
	assert.Equal(t, []models.VersionEntry{
		{Version: "5.12.0", Date: "2024-03-10", Name: "5.12.0", Author: "afc163"},
		{Version: "6.0.0-alpha.1", Date: "", Name: "Alpha", IsPrerelease: true},
	}, got)
}

func TestProjectCoverageAndCharts(t *testing.T) {
	projects := []models.AuditProject{{ID: "proj-1", Name: "Table", Coverage: 80, Issues: 4}}
	coverage := ProjectCoverage(projects, 50)
	assert.Equal(t, []models.ProjectCoverage{{ProjectID: "proj-1", ProjectName: "Table", Coverage: 80, TotalComponents: 50, AdoptedComponents: 40}}, coverage)

	snapshot := models.AnalyticsSnapshot{
		Adoption:        []models.UsageMetric{{Date: "2024-01-01", Value: 3}},
		ProjectCoverage: coverage,
		PlatformUsage:   []models.PlatformUsage{{Platform: models.PlatformWeb, Usage: 100}},
	}
	for i := 0; i < 9; i++ {
		snapshot.TopComponents = append(snapshot.TopComponents, models.ComponentUsage{ComponentName: "c", UsageCount: i})
	}

	charts := Charts(snapshot)
	assert.Equal(t, models.ChartSeries{Labels: []string{"2024-01-01"}, Data: []int{3}}, charts.Adoption)
	assert.Len(t, charts.TopComponents.Data, 8)
	assert.Equal(t, []string{"Table"}, charts.Coverage.Labels)
	assert.Equal(t, []string{"WEB"}, charts.Platform.Labels)
}
