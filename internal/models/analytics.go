package models

// UsageMetric is one point of an adoption time series
type UsageMetric struct {
	Date  string `json:"date" yaml:"date"`
	Value int    `json:"value" yaml:"value"`
}

// ComponentUsage is a per-component usage ranking entry
type ComponentUsage struct {
	ComponentID   string  `json:"componentId" yaml:"componentId"`
	ComponentName string  `json:"componentName" yaml:"componentName"`
	UsageCount    int     `json:"usageCount" yaml:"usageCount"`
	Trend         float64 `json:"trend" yaml:"trend"`
}

// ProjectCoverage reports how much of a project is built from the design system
type ProjectCoverage struct {
	ProjectID         string `json:"projectId" yaml:"projectId"`
	ProjectName       string `json:"projectName" yaml:"projectName"`
	Coverage          int    `json:"coverage" yaml:"coverage"`
	TotalComponents   int    `json:"totalComponents" yaml:"totalComponents"`
	AdoptedComponents int    `json:"adoptedComponents" yaml:"adoptedComponents"`
}

// PlatformUsage reports adoption share per platform
type PlatformUsage struct {
	Platform   Platform `json:"platform" yaml:"platform"`
	Components []string `json:"components" yaml:"components"`
	Usage      int      `json:"usage" yaml:"usage"`
}

// AlertType is the display flavour of an alert
type AlertType string

const (
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
	AlertSuccess AlertType = "success"
)

// Alert is an advisory message shown on the analytics dashboard
type Alert struct {
	ID          string    `json:"id" yaml:"id"`
	Type        AlertType `json:"type" yaml:"type"`
	Message     string    `json:"message" yaml:"message"`
	ComponentID string    `json:"componentId,omitempty" yaml:"componentId"`
	Date        string    `json:"date" yaml:"date"`
}

// RecommendationType is the suggested action for a component
type RecommendationType string

const (
	RecommendDeprecate RecommendationType = "deprecate"
	RecommendUpdate    RecommendationType = "update"
	RecommendPromote   RecommendationType = "promote"
)

// Recommendation suggests an action on a component
type Recommendation struct {
	ID            string             `json:"id" yaml:"id"`
	Type          RecommendationType `json:"type" yaml:"type"`
	ComponentID   string             `json:"componentId" yaml:"componentId"`
	ComponentName string             `json:"componentName" yaml:"componentName"`
	Reason        string             `json:"reason" yaml:"reason"`
	Metric        string             `json:"metric" yaml:"metric"`
}

// AnalyticsStats are the headline numbers of the analytics dashboard
type AnalyticsStats struct {
	TotalComponents       int     `json:"totalComponents" yaml:"totalComponents"`
	AdoptionRate          int     `json:"adoptionRate" yaml:"adoptionRate"`
	AvgImplementationTime float64 `json:"avgImplementationTime" yaml:"avgImplementationTime"`
	ActiveProjects        int     `json:"activeProjects" yaml:"activeProjects"`
	TotalInstances        int     `json:"totalInstances" yaml:"totalInstances"`
	IssuesResolved        int     `json:"issuesResolved" yaml:"issuesResolved"`
	Stars                 int     `json:"stars" yaml:"stars"`
	Forks                 int     `json:"forks" yaml:"forks"`
	LatestVersion         string  `json:"latestVersion" yaml:"latestVersion"`
	TotalVersions         int     `json:"totalVersions" yaml:"totalVersions"`
	WeeklyDownloads       int     `json:"weeklyDownloads" yaml:"weeklyDownloads"`
}

// VersionEntry is one release in the version history
type VersionEntry struct {
	Version      string `json:"version" yaml:"version"`
	Date         string `json:"date" yaml:"date"`
	Name         string `json:"name" yaml:"name"`
	IsPrerelease bool   `json:"isPrerelease" yaml:"isPrerelease"`
	Author       string `json:"author" yaml:"author"`
}

// ChartSeries is a labelled series ready for plotting
type ChartSeries struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// ImplementationTime is the average number of days taken to adopt a component
type ImplementationTime struct {
	Component string  `json:"component" yaml:"component"`
	Days      float64 `json:"days" yaml:"days"`
}

// ChartData bundles the series drawn on the analytics dashboard
type ChartData struct {
	Adoption      ChartSeries `json:"adoption"`
	TopComponents ChartSeries `json:"topComponents"`
	Coverage      ChartSeries `json:"coverage"`
	Platform      ChartSeries `json:"platform"`
}

// AnalyticsSnapshot is everything the analytics dashboard shows at once
type AnalyticsSnapshot struct {
	Stats              AnalyticsStats       `json:"stats" yaml:"stats"`
	Adoption           []UsageMetric        `json:"adoption" yaml:"adoption"`
	TopComponents      []ComponentUsage     `json:"topComponents" yaml:"topComponents"`
	ProjectCoverage    []ProjectCoverage    `json:"projectCoverage" yaml:"projectCoverage"`
	PlatformUsage      []PlatformUsage      `json:"platformUsage" yaml:"platformUsage"`
	Alerts             []Alert              `json:"alerts" yaml:"alerts"`
	Recommendations    []Recommendation     `json:"recommendations" yaml:"recommendations"`
	VersionHistory     []VersionEntry       `json:"versionHistory" yaml:"versionHistory"`
	ImplementationTime []ImplementationTime `json:"implementationTime" yaml:"implementationTime"`
}

// PackageSummary is read live from the npm registry and downloads API.
type PackageSummary struct {
	Name            string `json:"name"`
	LatestVersion   string `json:"latestVersion"`
	WeeklyDownloads int    `json:"weeklyDownloads"`
	Start           string `json:"start"`
	End             string `json:"end"`
}
