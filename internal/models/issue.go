package models

import "slices"

// IssueType classifies a tracker issue
type IssueType string

const (
	IssueBug           IssueType = "bug"
	IssueEnhancement   IssueType = "enhancement"
	IssueDocumentation IssueType = "documentation"
	IssueQuestion      IssueType = "question"
)

// IssueStatus is where an issue is in its lifecycle
type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
	IssueClosed     IssueStatus = "closed"
)

// IssueStatuses lists the statuses in board order.
var IssueStatuses = []IssueStatus{IssueOpen, IssueInProgress, IssueResolved, IssueClosed}

// IssueComment is one entry in an issue's discussion
type IssueComment struct {
	ID        string `json:"id" yaml:"id"`
	Author    Author `json:"author" yaml:"author"`
	Content   string `json:"content" yaml:"content"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
}

// Issue is a tracker entry filed against a component
type Issue struct {
	ID          string          `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Type        IssueType       `json:"type" yaml:"type"`
	Status      IssueStatus     `json:"status" yaml:"status"`
	Priority    RequestPriority `json:"priority" yaml:"priority"`
	ComponentID string          `json:"componentId" yaml:"componentId"`
	Labels      []string        `json:"labels" yaml:"labels"`
	Assignee    *Author         `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Author      Author          `json:"author" yaml:"author"`
	CreatedAt   string          `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string          `json:"updatedAt" yaml:"updatedAt"`
	Comments    []IssueComment  `json:"comments" yaml:"comments"`
}

// Clone returns a copy that shares nothing with i
func (i Issue) Clone() Issue {
	i.Labels = slices.Clone(i.Labels)
	i.Comments = slices.Clone(i.Comments)
	if i.Assignee != nil {
		a := *i.Assignee
		i.Assignee = &a
	}
	return i
}

// IssueStats counts issues per status. Bugs, Enhancements and Critical
// only count issues that are not closed.
type IssueStats struct {
	Total        int `json:"total"`
	Open         int `json:"open"`
	InProgress   int `json:"inProgress"`
	Resolved     int `json:"resolved"`
	Closed       int `json:"closed"`
	Bugs         int `json:"bugs"`
	Enhancements int `json:"enhancements"`
	Critical     int `json:"critical"`
}

// IssueDraft is what a user submits to file an issue
type IssueDraft struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=5000"`
	Type        IssueType       `json:"type" binding:"required,oneof=bug enhancement documentation question"`
	Priority    RequestPriority `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	ComponentID string          `json:"componentId" binding:"required"`
	Labels      []string        `json:"labels"`
	Assignee    *Author         `json:"assignee"`
}

// IssuePatch changes the fields that are set
type IssuePatch struct {
	Title       *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	Type        *IssueType       `json:"type" binding:"omitempty,oneof=bug enhancement documentation question"`
	Status      *IssueStatus     `json:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
	Priority    *RequestPriority `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	ComponentID *string          `json:"componentId" binding:"omitempty,min=1"`
	Labels      []string         `json:"labels"`
}
