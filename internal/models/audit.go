package models

// IssueSeverity represents the severity of an audit issue
type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityHigh     IssueSeverity = "high"
	SeverityMedium   IssueSeverity = "medium"
)

// IssueLocation points at where an audit issue was found
type IssueLocation struct {
	File  string `json:"file" yaml:"file"`
	Page  string `json:"page" yaml:"page"`
	Frame string `json:"frame" yaml:"frame"`
}

// AuditIssue represents a design consistency finding
type AuditIssue struct {
	ID          string        `json:"id" yaml:"id"`
	Severity    IssueSeverity `json:"severity" yaml:"severity"`
	Type        string        `json:"type" yaml:"type"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Location    IssueLocation `json:"location" yaml:"location"`
	Suggestion  string        `json:"suggestion" yaml:"suggestion"`
	AutoFixable bool          `json:"autoFixable" yaml:"autoFixable"`
	Screenshot  string        `json:"screenshot,omitempty" yaml:"screenshot"`
	Fixed       bool          `json:"fixed" yaml:"fixed"`
}

// AuditProject aggregates audit findings for one project
type AuditProject struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Coverage  int    `json:"coverage" yaml:"coverage"`
	Issues    int    `json:"issues" yaml:"issues"`
	LastAudit string `json:"lastAudit" yaml:"lastAudit"`
}

// AuditStats summarises the open audit issues
type AuditStats struct {
	TotalIssues int `json:"totalIssues"`
	Critical    int `json:"critical"`
	High        int `json:"high"`
	Medium      int `json:"medium"`
	AutoFixable int `json:"autoFixable"`
	AvgCoverage int `json:"avgCoverage"`
}

// AuditSnapshot is the issue list together with the projects they belong to
type AuditSnapshot struct {
	Issues   []AuditIssue   `json:"issues" yaml:"issues"`
	Projects []AuditProject `json:"projects" yaml:"projects"`
}
