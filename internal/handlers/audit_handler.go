package handlers

import (
	"net/http"

	"design-system-api/internal/datasource"

	"github.com/gin-gonic/gin"
)

func bindAuditFilter(c *gin.Context) (datasource.AuditFilter, bool) {
	var f datasource.AuditFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return f, false
	}
	return f, true
}

// AuditIssues returns the open issues.
// GET /api/audit/issues?severity=&project=
func (h *Handler) AuditIssues(c *gin.Context) {
	f, ok := bindAuditFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.Audit.Issues(f))
}

// AutoFixableIssues returns the open issues that can be fixed in bulk.
// GET /api/audit/issues/auto-fixable
func (h *Handler) AutoFixableIssues(c *gin.Context) {
	f, ok := bindAuditFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.Audit.AutoFixable(f))
}

// AuditProjects returns the audited projects.
// GET /api/audit/projects
func (h *Handler) AuditProjects(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Audit.Projects())
}

// AuditStats returns the issue counts.
// GET /api/audit/stats
func (h *Handler) AuditStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Audit.Stats())
}

// IssuesBySeverity groups the open issues.
// GET /api/audit/severity
func (h *Handler) IssuesBySeverity(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Audit.BySeverity())
}

// FixIssue marks an issue fixed.
// PATCH /api/audit/issues/:id/fix
func (h *Handler) FixIssue(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Audit.FixIssue(id); err != nil {
		h.respondError(c, err)
		return
	}
	h.publish("", map[string]any{"type": "audit_issue_fixed", "issueId": id})
	c.JSON(http.StatusOK, gin.H{"message": "Issue fixed", "id": id})
}

// FixAllIssues fixes every auto-fixable issue.
// POST /api/audit/issues/fix-all
func (h *Handler) FixAllIssues(c *gin.Context) {
	n := h.svc.Audit.FixAllAutoFixable()
	if n > 0 {
		h.publish("", map[string]any{"type": "audit_issues_fixed", "count": n})
	}
	c.JSON(http.StatusOK, gin.H{"fixed": n})
}

// IgnoreIssue removes an issue from the list.
// DELETE /api/audit/issues/:id
func (h *Handler) IgnoreIssue(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Audit.IgnoreIssue(id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue ignored", "id": id})
}
