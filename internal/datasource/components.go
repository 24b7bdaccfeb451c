package datasource

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"design-system-api/internal/fixtures"
	"design-system-api/internal/github"
	"design-system-api/internal/mapper"
	"design-system-api/internal/models"
)

// Components is the component catalogue domain.
type Components struct {
	*Domain[[]models.DesignComponent]
	gh GitHub
}

// NewComponents builds the catalogue domain, loading from the component
// folders and releases of the repository.
func NewComponents(gh GitHub, opts Options) *Components {
	load := func(ctx context.Context) ([]models.DesignComponent, error) {
		var (
			listing  []github.Content
			releases []github.Release
		)
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			listing, err = gh.ComponentsList(ctx)
			return err
		})
		g.Go(func() (err error) {
			releases, err = gh.Releases(ctx, releasesPerPage)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return mapper.DesignComponents(listing, releases, now()), nil
	}
	return &Components{Domain: NewDomain(Config[[]models.DesignComponent]{
		Name:       "components",
		Fixture:    fixtures.Components,
		Load:       load,
		Invalidate: gh.ClearCache,
		Clone:      cloneComponents,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
		Notifier:   opts.Notifier,
	}), gh: gh}
}

func cloneComponents(in []models.DesignComponent) []models.DesignComponent {
	out := slices.Clone(in)
	for i, c := range out {
		out[i] = c.Clone()
	}
	return out
}

// List returns the components matching f.
func (c *Components) List(f models.ComponentFilter) []models.DesignComponent {
	return FilterComponents(c.Snapshot().Data, f)
}

// Get returns the component with id.
func (c *Components) Get(id string) (models.DesignComponent, error) {
	for _, comp := range c.Snapshot().Data {
		if comp.ID == id {
			return comp, nil
		}
	}
	return models.DesignComponent{}, fmt.Errorf("component %q: %w", id, ErrNotFound)
}

// Readme returns the markdown docs page of the component with id, read
// from its folder in the repository. A page that cannot be read is "".
func (c *Components) Readme(ctx context.Context, id string) (string, error) {
	comp, err := c.Get(id)
	if err != nil {
		return "", err
	}
	return c.gh.ComponentReadme(ctx, ComponentFolder(comp)), nil
}

// ComponentFolder names the repository folder of a component: the id
// suffix for loaded components, the kebab-cased name for fixture ones.
func ComponentFolder(comp models.DesignComponent) string {
	if folder, ok := strings.CutPrefix(comp.ID, "antd-"); ok {
		return folder
	}
	return strings.Join(strings.Fields(strings.ToLower(comp.Name)), "-")
}

// ByCategory groups the components matching f. Every category is present.
func (c *Components) ByCategory(f models.ComponentFilter) map[models.ComponentCategory][]models.DesignComponent {
	grouped := make(map[models.ComponentCategory][]models.DesignComponent, len(models.Categories))
	for _, cat := range models.Categories {
		grouped[cat] = []models.DesignComponent{}
	}
	for _, comp := range c.List(f) {
		grouped[comp.Category] = append(grouped[comp.Category], comp)
	}
	return grouped
}

// Stats counts the loaded components by status.
func (c *Components) Stats() models.ComponentStats {
	var s models.ComponentStats
	for _, comp := range c.Snapshot().Data {
		s.Total++
		switch comp.Status {
		case models.StatusStable:
			s.Stable++
		case models.StatusBeta:
			s.Beta++
		case models.StatusDeprecated:
			s.Deprecated++
		}
		if comp.NeedsUpdate {
			s.NeedsUpdate++
		}
	}
	return s
}

// CategoryStats counts the loaded components per category.
func (c *Components) CategoryStats() map[models.ComponentCategory]int {
	counts := make(map[models.ComponentCategory]int, len(models.Categories))
	for _, cat := range models.Categories {
		counts[cat] = 0
	}
	for _, comp := range c.Snapshot().Data {
		counts[comp.Category]++
	}
	return counts
}

// FilterComponents keeps the components matching every non-empty field of
// f. Search matches name, description or any tag, case-insensitively.
func FilterComponents(components []models.DesignComponent, f models.ComponentFilter) []models.DesignComponent {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.DesignComponent, 0, len(components))
	for _, c := range components {
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		if len(f.Platforms) > 0 && !anyPlatform(c, f.Platforms) {
			continue
		}
		if len(f.Categories) > 0 && !containsValue(f.Categories, c.Category) {
			continue
		}
		if len(f.Statuses) > 0 && !containsValue(f.Statuses, c.Status) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesSearch(c models.DesignComponent, search string) bool {
	if strings.Contains(strings.ToLower(c.Name), search) || strings.Contains(strings.ToLower(c.Description), search) {
		return true
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func anyPlatform(c models.DesignComponent, platforms []models.Platform) bool {
	for _, p := range platforms {
		if c.HasPlatform(p) {
			return true
		}
	}
	return false
}

func containsValue[V comparable](list []V, v V) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
