// Package fixtures holds the static data each dashboard domain shows until
// live data has been fetched, and falls back to when a fetch fails.
//
// The documents are embedded and decoded on every call, so callers always
// own what they get back and can never alter the defaults seen by others.
package fixtures

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"design-system-api/internal/models"
)

//go:embed data/*.yaml
var files embed.FS

func load[T any](name string) (T, error) {
	var doc T
	raw, err := files.ReadFile("data/" + name)
	if err != nil {
		return doc, fmt.Errorf("read fixture %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode fixture %s: %w", name, err)
	}
	return doc, nil
}

// mustLoad panics on a malformed embedded document. The documents ship with
// the binary and are covered by tests.
func mustLoad[T any](name string) T {
	doc, err := load[T](name)
	if err != nil {
		panic(err)
	}
	return doc
}

// Components returns the default component catalogue.
func Components() []models.DesignComponent {
	return mustLoad[struct {
		Components []models.DesignComponent `yaml:"components"`
	}]("components.yaml").Components
}

// Analytics returns the default analytics dashboard.
func Analytics() models.AnalyticsSnapshot {
	return mustLoad[models.AnalyticsSnapshot]("analytics.yaml")
}

// Audit returns the default audit findings and projects.
func Audit() models.AuditSnapshot {
	return mustLoad[models.AuditSnapshot]("audit.yaml")
}

// Requests returns the default component requests.
func Requests() []models.ComponentRequest {
	return mustLoad[struct {
		Requests []models.ComponentRequest `yaml:"requests"`
	}]("requests.yaml").Requests
}

type issueDoc struct {
	Issues []models.Issue `yaml:"issues"`
	Labels []string       `yaml:"labels"`
}

// Issues returns the default tracker issues.
func Issues() []models.Issue {
	return mustLoad[issueDoc]("issues.yaml").Issues
}

// IssueLabels returns the labels offered when filing an issue.
func IssueLabels() []string {
	return mustLoad[issueDoc]("issues.yaml").Labels
}

// Contributions returns the default branches and contributions.
func Contributions() models.ContributionBoard {
	return mustLoad[models.ContributionBoard]("contributions.yaml")
}
