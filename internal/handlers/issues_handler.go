package handlers

import (
	"net/http"

	"design-system-api/internal/datasource"
	"design-system-api/internal/models"

	"github.com/gin-gonic/gin"
)

// ListIssues returns the issues matching the query filter.
// GET /api/issues?type=&status=&priority=&componentId=&search=
func (h *Handler) ListIssues(c *gin.Context) {
	var f datasource.IssueFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.svc.Issues.List(f))
}

// IssuesByStatus groups the issues into board columns.
// GET /api/issues/by-status
func (h *Handler) IssuesByStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Issues.ByStatus())
}

// IssueStats counts the issues.
// GET /api/issues/stats
func (h *Handler) IssueStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Issues.Stats())
}

// IssueLabels returns the label vocabulary and where it came from.
// GET /api/issues/labels
func (h *Handler) IssueLabels(c *gin.Context) {
	labels, source := h.svc.Issues.Labels(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"labels": labels, "dataSource": source})
}

// GetIssue returns one issue.
// GET /api/issues/:id
func (h *Handler) GetIssue(c *gin.Context) {
	issue, err := h.svc.Issues.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// CreateIssue files an issue for the current user.
// POST /api/issues
func (h *Handler) CreateIssue(c *gin.Context) {
	a, ok := author(c)
	if !ok {
		return
	}
	var draft models.IssueDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	issue, err := h.svc.Issues.Create(draft, a)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.issueChanged("issue_created", issue)
	c.JSON(http.StatusCreated, issue)
}

// UpdateIssue changes the fields present in the body.
// PATCH /api/issues/:id
func (h *Handler) UpdateIssue(c *gin.Context) {
	var patch models.IssuePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondIssue(c, "issue_updated")(h.svc.Issues.Edit(c.Param("id"), patch))
}

// SetIssueStatus moves an issue on the board.
// PUT /api/issues/:id/status
func (h *Handler) SetIssueStatus(c *gin.Context) {
	var body struct {
		Status models.IssueStatus `json:"status" binding:"required,oneof=open in_progress resolved closed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondIssue(c, "issue_updated")(h.svc.Issues.SetStatus(c.Param("id"), body.Status))
}

// CloseIssue closes an issue.
// POST /api/issues/:id/close
func (h *Handler) CloseIssue(c *gin.Context) {
	h.respondIssue(c, "issue_updated")(h.svc.Issues.Close(c.Param("id")))
}

// ReopenIssue reopens an issue.
// POST /api/issues/:id/reopen
func (h *Handler) ReopenIssue(c *gin.Context) {
	h.respondIssue(c, "issue_updated")(h.svc.Issues.Reopen(c.Param("id")))
}

// AssignIssue sets or, with a null assignee, clears the assignee.
// PUT /api/issues/:id/assignee
func (h *Handler) AssignIssue(c *gin.Context) {
	var body struct {
		Assignee *models.Author `json:"assignee"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondIssue(c, "issue_updated")(h.svc.Issues.Assign(c.Param("id"), body.Assignee))
}

// CommentOnIssue adds a comment by the current user.
// POST /api/issues/:id/comments
func (h *Handler) CommentOnIssue(c *gin.Context) {
	a, ok := author(c)
	if !ok {
		return
	}
	var body struct {
		Content string `json:"content" binding:"required,max=5000"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	comment, err := h.svc.Issues.Comment(id, body.Content, a)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish("", map[string]any{"type": "issue_commented", "issueId": id, "commentId": comment.ID})
	c.JSON(http.StatusCreated, comment)
}

// DeleteIssue removes an issue.
// DELETE /api/issues/:id
func (h *Handler) DeleteIssue(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Issues.Delete(id); err != nil {
		h.respondError(c, err)
		return
	}
	h.publish("", map[string]any{"type": "issue_deleted", "issueId": id})
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted", "id": id})
}

func (h *Handler) issueChanged(kind string, issue models.Issue) {
	h.publish("", map[string]any{"type": kind, "issueId": issue.ID, "status": issue.Status})
}

// respondIssue answers with the changed issue, or the error.
func (h *Handler) respondIssue(c *gin.Context, kind string) func(models.Issue, error) {
	return func(issue models.Issue, err error) {
		if err != nil {
			h.respondError(c, err)
			return
		}
		h.issueChanged(kind, issue)
		c.JSON(http.StatusOK, issue)
	}
}
