package handlers

import (
	"errors"
	"io"
	"net/http"

	"design-system-api/internal/datasource"
	"design-system-api/internal/models"

	"github.com/gin-gonic/gin"
)

// ListBranches returns the branches, optionally of one component or only
// the non-default ones.
// GET /api/branches?componentId=&active=true
func (h *Handler) ListBranches(c *gin.Context) {
	if c.Query("active") == "true" {
		c.JSON(http.StatusOK, h.svc.Contributions.ActiveBranches())
		return
	}
	c.JSON(http.StatusOK, h.svc.Contributions.Branches(c.Query("componentId")))
}

// CreateBranch opens a branch for the current user.
// POST /api/branches
func (h *Handler) CreateBranch(c *gin.Context) {
	a, ok := author(c)
	if !ok {
		return
	}
	var draft models.BranchDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	branch, err := h.svc.Contributions.CreateBranch(draft, a)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish("", map[string]any{"type": "branch_created", "branchId": branch.ID})
	c.JSON(http.StatusCreated, branch)
}

// ListContributions returns the contributions matching the query filter.
// GET /api/contributions?status=&componentId=&author=
func (h *Handler) ListContributions(c *gin.Context) {
	var f datasource.ContributionFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.svc.Contributions.List(f))
}

// ContributionsByStatus groups the contributions.
// GET /api/contributions/by-status
func (h *Handler) ContributionsByStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Contributions.ByStatus())
}

// ContributionStats counts the contributions by outcome.
// GET /api/contributions/stats
func (h *Handler) ContributionStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Contributions.Stats())
}

// PendingContributions lists a component's contributions awaiting merge.
// GET /api/contributions/pending?componentId=
func (h *Handler) PendingContributions(c *gin.Context) {
	componentID := c.Query("componentId")
	if componentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "componentId is required"})
		return
	}
	c.JSON(http.StatusOK, h.svc.Contributions.Pending(componentID))
}

// GetContribution returns one contribution.
// GET /api/contributions/:id
func (h *Handler) GetContribution(c *gin.Context) {
	contrib, err := h.svc.Contributions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contrib)
}

// CreateContribution proposes changes from a branch.
// POST /api/contributions
func (h *Handler) CreateContribution(c *gin.Context) {
	a, ok := author(c)
	if !ok {
		return
	}
	var draft models.ContributionInput
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contrib, err := h.svc.Contributions.Create(draft, a)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.contributionChanged(contrib)
	c.JSON(http.StatusCreated, contrib)
}

// UpdateContribution changes the fields present in the body.
// PATCH /api/contributions/:id
func (h *Handler) UpdateContribution(c *gin.Context) {
	var patch models.ContributionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondContribution(c)(h.svc.Contributions.Edit(c.Param("id"), patch))
}

// SubmitContribution sends a contribution to review.
// POST /api/contributions/:id/submit
func (h *Handler) SubmitContribution(c *gin.Context) {
	h.respondContribution(c)(h.svc.Contributions.SubmitForReview(c.Param("id")))
}

// ReviewContribution records the current user's review.
// POST /api/contributions/:id/reviews
func (h *Handler) ReviewContribution(c *gin.Context) {
	a, ok := author(c)
	if !ok {
		return
	}
	var draft models.ReviewDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondContribution(c)(h.svc.Contributions.Review(c.Param("id"), draft, a))
}

type verdict struct {
	Comment string `json:"comment" binding:"max=2000"`
}

// bindVerdict accepts an empty body as a verdict without comment.
func bindVerdict(c *gin.Context) (verdict, bool) {
	var body verdict
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return body, false
	}
	return body, true
}

// ApproveContribution approves a contribution as the current user.
// POST /api/contributions/:id/approve
func (h *Handler) ApproveContribution(c *gin.Context) {
	a, ok := author(c)
	if !ok {
		return
	}
	body, ok := bindVerdict(c)
	if !ok {
		return
	}
	h.respondContribution(c)(h.svc.Contributions.Approve(c.Param("id"), a, body.Comment))
}

// RejectContribution rejects a contribution as the current user.
// POST /api/contributions/:id/reject
func (h *Handler) RejectContribution(c *gin.Context) {
	a, ok := author(c)
	if !ok {
		return
	}
	body, ok := bindVerdict(c)
	if !ok {
		return
	}
	h.respondContribution(c)(h.svc.Contributions.Reject(c.Param("id"), a, body.Comment))
}

// MergeContribution merges a contribution and deletes its branch.
// POST /api/contributions/:id/merge
func (h *Handler) MergeContribution(c *gin.Context) {
	h.respondContribution(c)(h.svc.Contributions.Merge(c.Param("id")))
}

func (h *Handler) contributionChanged(contrib models.Contribution) {
	h.publish("", map[string]any{
		"type":           "contribution_changed",
		"contributionId": contrib.ID,
		"status":         contrib.Status,
	})
}

func (h *Handler) respondContribution(c *gin.Context) func(models.Contribution, error) {
	return func(contrib models.Contribution, err error) {
		if err != nil {
			h.respondError(c, err)
			return
		}
		h.contributionChanged(contrib)
		c.JSON(http.StatusOK, contrib)
	}
}
