package datasource

import (
	"fmt"
	"slices"
	"strings"

	"design-system-api/internal/cache"
	"design-system-api/internal/fixtures"
	"design-system-api/internal/models"
)

// ContributionFilter narrows the contribution list. Empty fields match
// everything; Author compares names case-insensitively.
type ContributionFilter struct {
	Status      models.ContributionStatus `form:"status"`
	ComponentID string                    `form:"componentId"`
	Author      string                    `form:"author"`
}

// Contributions holds branches and the contributions proposed from them.
// Like the issue tracker it is local only; branches and contributions are
// persisted separately and each replaces its default list once saved.
type Contributions struct {
	*Domain[models.ContributionBoard]
	state *cache.State
}

// NewContributions builds the contribution board.
func NewContributions(state *cache.State, opts Options) *Contributions {
	c := &Contributions{state: state}
	c.Domain = NewDomain(Config[models.ContributionBoard]{
		Name:     "contributions",
		Fixture:  fixtures.Contributions,
		Overlay:  c.saved,
		Clone:    models.ContributionBoard.Clone,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
		Notifier: opts.Notifier,
	})
	return c
}

func (c *Contributions) saved(b models.ContributionBoard) models.ContributionBoard {
	var branches []models.Branch
	if c.state.Get(cache.KeyBranches, &branches) {
		b.Branches = branches
	}
	var contributions []models.Contribution
	if c.state.Get(cache.KeyContributions, &contributions) {
		b.Contributions = contributions
	}
	return b
}

// change runs fn over the board and persists both lists.
func (c *Contributions) change(fn func(*models.ContributionBoard) error) error {
	return c.Update(func(b models.ContributionBoard) (models.ContributionBoard, error) {
		if err := fn(&b); err != nil {
			return b, err
		}
		c.state.Set(cache.KeyBranches, b.Branches)
		c.state.Set(cache.KeyContributions, b.Contributions)
		return b, nil
	})
}

func contributionIndex(list []models.Contribution, id string) (int, error) {
	idx := slices.IndexFunc(list, func(c models.Contribution) bool { return c.ID == id })
	if idx < 0 {
		return idx, fmt.Errorf("contribution %q: %w", id, ErrNotFound)
	}
	return idx, nil
}

func branchIndex(list []models.Branch, id string) (int, error) {
	idx := slices.IndexFunc(list, func(b models.Branch) bool { return b.ID == id })
	if idx < 0 {
		return idx, fmt.Errorf("branch %q: %w", id, ErrNotFound)
	}
	return idx, nil
}

// edit applies fn to the contribution with id and stamps its update time.
func (c *Contributions) edit(id string, fn func(*models.ContributionBoard, *models.Contribution) error) (models.Contribution, error) {
	var result models.Contribution
	err := c.change(func(b *models.ContributionBoard) error {
		idx, err := contributionIndex(b.Contributions, id)
		if err != nil {
			return err
		}
		contrib := &b.Contributions[idx]
		if err := fn(b, contrib); err != nil {
			return err
		}
		contrib.UpdatedAt = timestamp()
		result = contrib.Clone()
		return nil
	})
	return result, err
}

// Branches lists the branches, optionally only those of one component.
func (c *Contributions) Branches(componentID string) []models.Branch {
	all := c.Snapshot().Data.Branches
	if componentID == "" {
		return all
	}
	out := make([]models.Branch, 0, len(all))
	for _, b := range all {
		if b.ComponentID == componentID {
			out = append(out, b)
		}
	}
	return out
}

// ActiveBranches lists the branches other than the default one.
func (c *Contributions) ActiveBranches() []models.Branch {
	all := c.Snapshot().Data.Branches
	out := make([]models.Branch, 0, len(all))
	for _, b := range all {
		if !b.IsDefault {
			out = append(out, b)
		}
	}
	return out
}

// CreateBranch opens a branch by author.
func (c *Contributions) CreateBranch(draft models.BranchDraft, author models.Author) (models.Branch, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return models.Branch{}, fmt.Errorf("branch name is required: %w", ErrInvalid)
	}
	var created models.Branch
	err := c.change(func(b *models.ContributionBoard) error {
		ids := make([]string, len(b.Branches))
		for n, branch := range b.Branches {
			if branch.Name == name {
				return fmt.Errorf("branch %q already exists: %w", name, ErrInvalid)
			}
			ids[n] = branch.ID
		}
		created = models.Branch{
			ID:          nextID("branch", ids),
			Name:        name,
			ComponentID: draft.ComponentID,
			BasedOn:     draft.BasedOn,
			Author:      author,
			CreatedAt:   timestamp(),
		}
		b.Branches = append(b.Branches, created)
		return nil
	})
	return created, err
}

// List returns the contributions matching f, newest first.
func (c *Contributions) List(f ContributionFilter) []models.Contribution {
	all := c.Snapshot().Data.Contributions
	out := make([]models.Contribution, 0, len(all))
	for _, contrib := range all {
		switch {
		case f.Status != "" && contrib.Status != f.Status,
			f.ComponentID != "" && contrib.ComponentID != f.ComponentID,
			f.Author != "" && !strings.EqualFold(contrib.Author.Name, f.Author):
			continue
		}
		out = append(out, contrib)
	}
	return out
}

// Get returns the contribution with id.
func (c *Contributions) Get(id string) (models.Contribution, error) {
	all := c.Snapshot().Data.Contributions
	idx, err := contributionIndex(all, id)
	if err != nil {
		return models.Contribution{}, err
	}
	return all[idx], nil
}

// ByStatus groups the contributions. Every status is present.
func (c *Contributions) ByStatus() map[models.ContributionStatus][]models.Contribution {
	grouped := make(map[models.ContributionStatus][]models.Contribution, len(models.ContributionStatuses))
	for _, s := range models.ContributionStatuses {
		grouped[s] = []models.Contribution{}
	}
	for _, contrib := range c.Snapshot().Data.Contributions {
		grouped[contrib.Status] = append(grouped[contrib.Status], contrib)
	}
	return grouped
}

// Stats counts the contributions by outcome.
func (c *Contributions) Stats() models.ContributionStats {
	var s models.ContributionStats
	for _, contrib := range c.Snapshot().Data.Contributions {
		s.Total++
		switch contrib.Status {
		case models.ContributionPendingReview:
			s.Pending++
		case models.ContributionApproved:
			s.Approved++
		case models.ContributionMerged:
			s.Merged++
		case models.ContributionRejected:
			s.Rejected++
		}
	}
	return s
}

// Pending lists a component's contributions still awaiting a merge: those
// pending review or approved.
func (c *Contributions) Pending(componentID string) []models.Contribution {
	var out []models.Contribution
	for _, contrib := range c.List(ContributionFilter{ComponentID: componentID}) {
		if contrib.Status == models.ContributionPendingReview || contrib.Status == models.ContributionApproved {
			out = append(out, contrib)
		}
	}
	if out == nil {
		out = []models.Contribution{}
	}
	return out
}

// Create proposes changes from an existing branch and puts them first. The
// component is the branch's; the status defaults to draft.
func (c *Contributions) Create(draft models.ContributionInput, author models.Author) (models.Contribution, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return models.Contribution{}, fmt.Errorf("contribution title is required: %w", ErrInvalid)
	}
	status := draft.Status
	if status == "" {
		status = models.ContributionDraft
	}
	if status != models.ContributionDraft && status != models.ContributionPendingReview {
		return models.Contribution{}, fmt.Errorf("contribution status %q: %w", status, ErrInvalid)
	}
	at := timestamp()

	var created models.Contribution
	err := c.change(func(b *models.ContributionBoard) error {
		bi, err := branchIndex(b.Branches, draft.BranchID)
		if err != nil {
			return err
		}
		ids := make([]string, len(b.Contributions))
		for n, contrib := range b.Contributions {
			ids[n] = contrib.ID
		}
		created = models.Contribution{
			ID:          nextID("contrib", ids),
			Title:       title,
			Description: draft.Description,
			BranchID:    draft.BranchID,
			ComponentID: b.Branches[bi].ComponentID,
			Status:      status,
			Author:      author,
			Changes:     append([]models.Change{}, draft.Changes...),
			Reviews:     []models.Review{},
			CreatedAt:   at,
			UpdatedAt:   at,
		}
		b.Contributions = append([]models.Contribution{created.Clone()}, b.Contributions...)
		return nil
	})
	return created, err
}

// Edit changes the fields set in p.
func (c *Contributions) Edit(id string, p models.ContributionPatch) (models.Contribution, error) {
	return c.edit(id, func(_ *models.ContributionBoard, contrib *models.Contribution) error {
		if p.Title != nil {
			title := strings.TrimSpace(*p.Title)
			if title == "" {
				return fmt.Errorf("contribution title is required: %w", ErrInvalid)
			}
			contrib.Title = title
		}
		if p.Description != nil {
			contrib.Description = *p.Description
		}
		if p.Changes != nil {
			contrib.Changes = slices.Clone(p.Changes)
		}
		return nil
	})
}

// SubmitForReview moves the contribution to pending review.
func (c *Contributions) SubmitForReview(id string) (models.Contribution, error) {
	return c.edit(id, func(_ *models.ContributionBoard, contrib *models.Contribution) error {
		contrib.Status = models.ContributionPendingReview
		return nil
	})
}

// Review records a reviewer's verdict. An approval approves the
// contribution once every review on it is an approval; a request for
// changes sends it back to pending review.
func (c *Contributions) Review(id string, draft models.ReviewDraft, reviewer models.Author) (models.Contribution, error) {
	return c.edit(id, func(b *models.ContributionBoard, contrib *models.Contribution) error {
		return addReview(b, contrib, draft, reviewer)
	})
}

// Approve records an approval and approves the contribution outright.
func (c *Contributions) Approve(id string, reviewer models.Author, comment string) (models.Contribution, error) {
	return c.edit(id, func(b *models.ContributionBoard, contrib *models.Contribution) error {
		draft := models.ReviewDraft{Status: models.ReviewApproved, Comment: comment}
		if err := addReview(b, contrib, draft, reviewer); err != nil {
			return err
		}
		contrib.Status = models.ContributionApproved
		return nil
	})
}

// Reject records a request for changes and rejects the contribution.
func (c *Contributions) Reject(id string, reviewer models.Author, comment string) (models.Contribution, error) {
	return c.edit(id, func(b *models.ContributionBoard, contrib *models.Contribution) error {
		draft := models.ReviewDraft{Status: models.ReviewChangesRequested, Comment: comment}
		if err := addReview(b, contrib, draft, reviewer); err != nil {
			return err
		}
		contrib.Status = models.ContributionRejected
		return nil
	})
}

// Merge marks the contribution merged and deletes its branch. The default
// branch is never deleted.
func (c *Contributions) Merge(id string) (models.Contribution, error) {
	return c.edit(id, func(b *models.ContributionBoard, contrib *models.Contribution) error {
		contrib.Status = models.ContributionMerged
		if bi, err := branchIndex(b.Branches, contrib.BranchID); err == nil && !b.Branches[bi].IsDefault {
			b.Branches = slices.Delete(b.Branches, bi, bi+1)
		}
		return nil
	})
}

func addReview(b *models.ContributionBoard, contrib *models.Contribution, draft models.ReviewDraft, reviewer models.Author) error {
	switch draft.Status {
	case models.ReviewApproved, models.ReviewChangesRequested, models.ReviewCommented:
	default:
		return fmt.Errorf("review status %q: %w", draft.Status, ErrInvalid)
	}
	var ids []string
	for _, other := range b.Contributions {
		for _, r := range other.Reviews {
			ids = append(ids, r.ID)
		}
	}
	contrib.Reviews = append(contrib.Reviews, models.Review{
		ID:        nextID("review", ids),
		Author:    reviewer,
		Status:    draft.Status,
		Comment:   draft.Comment,
		CreatedAt: timestamp(),
	})
	switch draft.Status {
	case models.ReviewApproved:
		allApproved := true
		for _, r := range contrib.Reviews {
			allApproved = allApproved && r.Status == models.ReviewApproved
		}
		if allApproved {
			contrib.Status = models.ContributionApproved
		}
	case models.ReviewChangesRequested:
		contrib.Status = models.ContributionPendingReview
	}
	return nil
}
