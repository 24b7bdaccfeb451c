package datasource

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"design-system-api/internal/cache"
	"design-system-api/internal/fixtures"
	"design-system-api/internal/models"
)

// IssueFilter narrows the issue list. Empty fields match everything.
type IssueFilter struct {
	Type        models.IssueType       `form:"type"`
	Status      models.IssueStatus     `form:"status"`
	Priority    models.RequestPriority `form:"priority"`
	ComponentID string                 `form:"componentId"`
	// Search matches title, description or any label, case-insensitively.
	Search string `form:"search"`
}

// Issues is the component issue tracker. It has no remote source: every
// change persists the whole list, which then stands in for the fixture.
type Issues struct {
	*Domain[[]models.Issue]
	gh    GitHub
	state *cache.State
}

// NewIssues builds the tracker over the persisted list or the default one.
func NewIssues(gh GitHub, state *cache.State, opts Options) *Issues {
	i := &Issues{gh: gh, state: state}
	i.Domain = NewDomain(Config[[]models.Issue]{
		Name:     "issues",
		Fixture:  fixtures.Issues,
		Overlay:  i.saved,
		Clone:    cloneIssues,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
		Notifier: opts.Notifier,
	})
	return i
}

func cloneIssues(in []models.Issue) []models.Issue {
	out := slices.Clone(in)
	for i, issue := range out {
		out[i] = issue.Clone()
	}
	return out
}

func (i *Issues) saved(issues []models.Issue) []models.Issue {
	var saved []models.Issue
	if i.state.Get(cache.KeyIssues, &saved) {
		return saved
	}
	return issues
}

func timestamp() string {
	return now().UTC().Format(time.RFC3339)
}

func issueIndex(issues []models.Issue, id string) (int, error) {
	idx := slices.IndexFunc(issues, func(issue models.Issue) bool { return issue.ID == id })
	if idx < 0 {
		return idx, fmt.Errorf("issue %q: %w", id, ErrNotFound)
	}
	return idx, nil
}

// change runs fn over the list and persists the result.
func (i *Issues) change(fn func([]models.Issue) ([]models.Issue, error)) error {
	return i.Update(func(issues []models.Issue) ([]models.Issue, error) {
		issues, err := fn(issues)
		if err != nil {
			return issues, err
		}
		i.state.Set(cache.KeyIssues, issues)
		return issues, nil
	})
}

// edit applies fn to the issue with id and stamps its update time.
func (i *Issues) edit(id string, fn func(*models.Issue) error) (models.Issue, error) {
	var result models.Issue
	err := i.change(func(issues []models.Issue) ([]models.Issue, error) {
		idx, err := issueIndex(issues, id)
		if err != nil {
			return issues, err
		}
		if err := fn(&issues[idx]); err != nil {
			return issues, err
		}
		issues[idx].UpdatedAt = timestamp()
		result = issues[idx].Clone()
		return issues, nil
	})
	return result, err
}

// List returns the issues matching f in tracker order.
func (i *Issues) List(f IssueFilter) []models.Issue {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	all := i.Snapshot().Data
	out := make([]models.Issue, 0, len(all))
	for _, issue := range all {
		switch {
		case f.Type != "" && issue.Type != f.Type,
			f.Status != "" && issue.Status != f.Status,
			f.Priority != "" && issue.Priority != f.Priority,
			f.ComponentID != "" && issue.ComponentID != f.ComponentID,
			search != "" && !issueMatches(issue, search):
			continue
		}
		out = append(out, issue)
	}
	return out
}

func issueMatches(issue models.Issue, search string) bool {
	if strings.Contains(strings.ToLower(issue.Title), search) ||
		strings.Contains(strings.ToLower(issue.Description), search) {
		return true
	}
	for _, l := range issue.Labels {
		if strings.Contains(strings.ToLower(l), search) {
			return true
		}
	}
	return false
}

// Get returns the issue with id.
func (i *Issues) Get(id string) (models.Issue, error) {
	all := i.Snapshot().Data
	idx, err := issueIndex(all, id)
	if err != nil {
		return models.Issue{}, err
	}
	return all[idx], nil
}

// ByStatus groups the issues into board columns. Every status is present.
func (i *Issues) ByStatus() map[models.IssueStatus][]models.Issue {
	grouped := make(map[models.IssueStatus][]models.Issue, len(models.IssueStatuses))
	for _, s := range models.IssueStatuses {
		grouped[s] = []models.Issue{}
	}
	for _, issue := range i.Snapshot().Data {
		grouped[issue.Status] = append(grouped[issue.Status], issue)
	}
	return grouped
}

// Stats counts the issues.
func (i *Issues) Stats() models.IssueStats {
	var s models.IssueStats
	for _, issue := range i.Snapshot().Data {
		s.Total++
		switch issue.Status {
		case models.IssueOpen:
			s.Open++
		case models.IssueInProgress:
			s.InProgress++
		case models.IssueResolved:
			s.Resolved++
		case models.IssueClosed:
			s.Closed++
			continue
		}
		if issue.Type == models.IssueBug {
			s.Bugs++
		}
		if issue.Type == models.IssueEnhancement {
			s.Enhancements++
		}
		if issue.Priority == models.PriorityCritical {
			s.Critical++
		}
	}
	return s
}

// Labels returns the label vocabulary, sorted: the repository's labels when
// they can be read, else the default list.
func (i *Issues) Labels(ctx context.Context) ([]string, Source) {
	labels, err := i.gh.Labels(ctx)
	if err != nil || len(labels) == 0 {
		if err != nil {
			i.logger.Warn("labels unavailable, using defaults", "error", err)
		}
		defaults := fixtures.IssueLabels()
		sort.Strings(defaults)
		return defaults, SourceMock
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return names, SourceAPI
}

// Create files a new open issue by author and puts it first.
func (i *Issues) Create(draft models.IssueDraft, author models.Author) (models.Issue, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return models.Issue{}, fmt.Errorf("issue title is required: %w", ErrInvalid)
	}
	priority := draft.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	var assignee *models.Author
	if draft.Assignee != nil {
		a := *draft.Assignee
		assignee = &a
	}
	at := timestamp()

	var created models.Issue
	err := i.change(func(issues []models.Issue) ([]models.Issue, error) {
		ids := make([]string, len(issues))
		for n, issue := range issues {
			ids[n] = issue.ID
		}
		created = models.Issue{
			ID:          nextID("issue", ids),
			Title:       title,
			Description: draft.Description,
			Type:        draft.Type,
			Status:      models.IssueOpen,
			Priority:    priority,
			ComponentID: draft.ComponentID,
			Labels:      append([]string{}, draft.Labels...),
			Assignee:    assignee,
			Author:      author,
			CreatedAt:   at,
			UpdatedAt:   at,
			Comments:    []models.IssueComment{},
		}
		return append([]models.Issue{created.Clone()}, issues...), nil
	})
	return created, err
}

// Edit changes the fields set in p.
func (i *Issues) Edit(id string, p models.IssuePatch) (models.Issue, error) {
	return i.edit(id, func(issue *models.Issue) error {
		if p.Title != nil {
			title := strings.TrimSpace(*p.Title)
			if title == "" {
				return fmt.Errorf("issue title is required: %w", ErrInvalid)
			}
			issue.Title = title
		}
		if p.Description != nil {
			issue.Description = *p.Description
		}
		if p.Type != nil {
			issue.Type = *p.Type
		}
		if p.Status != nil {
			issue.Status = *p.Status
		}
		if p.Priority != nil {
			issue.Priority = *p.Priority
		}
		if p.ComponentID != nil {
			issue.ComponentID = *p.ComponentID
		}
		if p.Labels != nil {
			issue.Labels = slices.Clone(p.Labels)
		}
		return nil
	})
}

// SetStatus moves the issue to status.
func (i *Issues) SetStatus(id string, status models.IssueStatus) (models.Issue, error) {
	if !slices.Contains(models.IssueStatuses, status) {
		return models.Issue{}, fmt.Errorf("issue status %q: %w", status, ErrInvalid)
	}
	return i.edit(id, func(issue *models.Issue) error {
		issue.Status = status
		return nil
	})
}

// Close is SetStatus(closed).
func (i *Issues) Close(id string) (models.Issue, error) {
	return i.SetStatus(id, models.IssueClosed)
}

// Reopen is SetStatus(open).
func (i *Issues) Reopen(id string) (models.Issue, error) {
	return i.SetStatus(id, models.IssueOpen)
}

// Assign sets the assignee. Nil unassigns.
func (i *Issues) Assign(id string, assignee *models.Author) (models.Issue, error) {
	return i.edit(id, func(issue *models.Issue) error {
		issue.Assignee = nil
		if assignee != nil {
			a := *assignee
			issue.Assignee = &a
		}
		return nil
	})
}

// Comment appends a comment by author.
func (i *Issues) Comment(id, content string, author models.Author) (models.IssueComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.IssueComment{}, fmt.Errorf("comment content is required: %w", ErrInvalid)
	}
	var added models.IssueComment
	err := i.change(func(issues []models.Issue) ([]models.Issue, error) {
		idx, err := issueIndex(issues, id)
		if err != nil {
			return issues, err
		}
		var ids []string
		for _, issue := range issues {
			for _, c := range issue.Comments {
				ids = append(ids, c.ID)
			}
		}
		at := timestamp()
		added = models.IssueComment{
			ID:        nextID("comment", ids),
			Author:    author,
			Content:   content,
			CreatedAt: at,
		}
		issues[idx].Comments = append(issues[idx].Comments, added)
		issues[idx].UpdatedAt = at
		return issues, nil
	})
	return added, err
}

// Delete removes the issue.
func (i *Issues) Delete(id string) error {
	return i.change(func(issues []models.Issue) ([]models.Issue, error) {
		idx, err := issueIndex(issues, id)
		if err != nil {
			return issues, err
		}
		return slices.Delete(issues, idx, idx+1), nil
	})
}
