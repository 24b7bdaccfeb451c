package models

import "slices"

// Branch is a working copy of a component that contributions are made on
type Branch struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	ComponentID string `json:"componentId" yaml:"componentId"`
	BasedOn     string `json:"basedOn" yaml:"basedOn"`
	Author      Author `json:"author" yaml:"author"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
	IsDefault   bool   `json:"isDefault" yaml:"isDefault"`
}

// ContributionStatus is where a contribution is in review
type ContributionStatus string

const (
	ContributionDraft         ContributionStatus = "draft"
	ContributionPendingReview ContributionStatus = "pending_review"
	ContributionApproved      ContributionStatus = "approved"
	ContributionRejected      ContributionStatus = "rejected"
	ContributionMerged        ContributionStatus = "merged"
)

// ContributionStatuses lists the statuses in board order.
var ContributionStatuses = []ContributionStatus{
	ContributionDraft,
	ContributionPendingReview,
	ContributionApproved,
	ContributionRejected,
	ContributionMerged,
}

// ReviewStatus is a reviewer's verdict
type ReviewStatus string

const (
	ReviewApproved         ReviewStatus = "approved"
	ReviewChangesRequested ReviewStatus = "changes_requested"
	ReviewCommented        ReviewStatus = "commented"
)

// Change describes one edited aspect of a component
type Change struct {
	Field       string `json:"field" yaml:"field" binding:"required"`
	Before      string `json:"before" yaml:"before"`
	After       string `json:"after" yaml:"after"`
	Description string `json:"description" yaml:"description"`
}

// Review is one reviewer's response to a contribution
type Review struct {
	ID        string       `json:"id" yaml:"id"`
	Author    Author       `json:"author" yaml:"author"`
	Status    ReviewStatus `json:"status" yaml:"status"`
	Comment   string       `json:"comment" yaml:"comment"`
	CreatedAt string       `json:"createdAt" yaml:"createdAt"`
}

// Contribution proposes changes to a component from a branch
type Contribution struct {
	ID          string             `json:"id" yaml:"id"`
	Title       string             `json:"title" yaml:"title"`
	Description string             `json:"description" yaml:"description"`
	BranchID    string             `json:"branchId" yaml:"branchId"`
	ComponentID string             `json:"componentId" yaml:"componentId"`
	Status      ContributionStatus `json:"status" yaml:"status"`
	Author      Author             `json:"author" yaml:"author"`
	Changes     []Change           `json:"changes" yaml:"changes"`
	Reviews     []Review           `json:"reviews" yaml:"reviews"`
	CreatedAt   string             `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string             `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a copy that shares no slices with c
func (c Contribution) Clone() Contribution {
	c.Changes = slices.Clone(c.Changes)
	c.Reviews = slices.Clone(c.Reviews)
	return c
}

// ContributionBoard holds the branches and the contributions made on them
type ContributionBoard struct {
	Branches      []Branch       `json:"branches" yaml:"branches"`
	Contributions []Contribution `json:"contributions" yaml:"contributions"`
}

// Clone returns a copy that shares nothing with b
func (b ContributionBoard) Clone() ContributionBoard {
	b.Branches = slices.Clone(b.Branches)
	b.Contributions = slices.Clone(b.Contributions)
	for i, c := range b.Contributions {
		b.Contributions[i] = c.Clone()
	}
	return b
}

// ContributionStats counts contributions per review outcome
type ContributionStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Merged   int `json:"merged"`
	Rejected int `json:"rejected"`
}

// BranchDraft is what a user submits to open a branch
type BranchDraft struct {
	Name        string `json:"name" binding:"required,max=100"`
	ComponentID string `json:"componentId" binding:"required"`
	BasedOn     string `json:"basedOn" binding:"max=50"`
}

// ContributionInput is what a user submits to propose changes
type ContributionInput struct {
	Title       string             `json:"title" binding:"required,max=200"`
	Description string             `json:"description" binding:"max=5000"`
	BranchID    string             `json:"branchId" binding:"required"`
	Status      ContributionStatus `json:"status" binding:"omitempty,oneof=draft pending_review"`
	Changes     []Change           `json:"changes" binding:"dive"`
}

// ContributionPatch changes the fields that are set
type ContributionPatch struct {
	Title       *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=5000"`
	Changes     []Change `json:"changes" binding:"omitempty,dive"`
}

// ReviewDraft is a reviewer's verdict and comment
type ReviewDraft struct {
	Status  ReviewStatus `json:"status" binding:"required,oneof=approved changes_requested commented"`
	Comment string       `json:"comment" binding:"max=2000"`
}
