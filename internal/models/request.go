package models

import "slices"

// RequestStatus represents where a component request is in the pipeline
type RequestStatus string

const (
	RequestSubmitted     RequestStatus = "submitted"
	RequestUnderReview   RequestStatus = "under_review"
	RequestInDevelopment RequestStatus = "in_development"
	RequestReady         RequestStatus = "ready"
)

// RequestPriority represents the priority of a component request
type RequestPriority string

const (
	PriorityLow      RequestPriority = "low"
	PriorityMedium   RequestPriority = "medium"
	PriorityHigh     RequestPriority = "high"
	PriorityCritical RequestPriority = "critical"
)

// Author identifies who created a request
type Author struct {
	Name   string `json:"name" yaml:"name"`
	Avatar string `json:"avatar" yaml:"avatar"`
}

// ComponentRequest represents a request for a new component
type ComponentRequest struct {
	ID                string          `json:"id" yaml:"id"`
	Title             string          `json:"title" yaml:"title"`
	Description       string          `json:"description" yaml:"description"`
	UserStory         string          `json:"userStory" yaml:"userStory"`
	Status            RequestStatus   `json:"status" yaml:"status"`
	Priority          RequestPriority `json:"priority" yaml:"priority"`
	Votes             int             `json:"votes" yaml:"votes"`
	VotedBy           []string        `json:"votedBy" yaml:"votedBy"`
	CreatedAt         string          `json:"createdAt" yaml:"createdAt"`
	UpdatedAt         string          `json:"updatedAt" yaml:"updatedAt"`
	Author            Author          `json:"author" yaml:"author"`
	Attachments       []string        `json:"attachments" yaml:"attachments"`
	SimilarComponents []string        `json:"similarComponents" yaml:"similarComponents"`
	AffectedProjects  int             `json:"affectedProjects" yaml:"affectedProjects"`
}

// HasVoted reports whether userID is in VotedBy
func (r ComponentRequest) HasVoted(userID string) bool {
	for _, id := range r.VotedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with r
func (r ComponentRequest) Clone() ComponentRequest {
	r.VotedBy = slices.Clone(r.VotedBy)
	r.Attachments = slices.Clone(r.Attachments)
	r.SimilarComponents = slices.Clone(r.SimilarComponents)
	return r
}

// RequestStats counts requests per status
type RequestStats struct {
	Total         int `json:"total"`
	Submitted     int `json:"submitted"`
	UnderReview   int `json:"underReview"`
	InDevelopment int `json:"inDevelopment"`
	Ready         int `json:"ready"`
}

// RequestDraft is what a user submits to request a new component
type RequestDraft struct {
	Title             string          `json:"title" binding:"required,max=200"`
	Description       string          `json:"description" binding:"max=5000"`
	UserStory         string          `json:"userStory" binding:"max=2000"`
	Priority          RequestPriority `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	Attachments       []string        `json:"attachments"`
	SimilarComponents []string        `json:"similarComponents"`
	AffectedProjects  int             `json:"affectedProjects" binding:"gte=0"`
}
