package handlers

import (
	"fmt"
	"net/http"

	"design-system-api/internal/models"

	"github.com/gin-gonic/gin"
)

func bindComponentFilter(c *gin.Context) (models.ComponentFilter, bool) {
	var f models.ComponentFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return f, false
	}
	return f, true
}

// ListComponents returns the components matching the query filter.
// GET /api/components?search=&platform=&category=&status=
func (h *Handler) ListComponents(c *gin.Context) {
	f, ok := bindComponentFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.Components.List(f))
}

// ComponentsByCategory groups the filtered components by category.
// GET /api/components/by-category
func (h *Handler) ComponentsByCategory(c *gin.Context) {
	f, ok := bindComponentFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.Components.ByCategory(f))
}

// ComponentStats returns status counts and per-category counts.
// GET /api/components/stats
func (h *Handler) ComponentStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":      h.svc.Components.Stats(),
		"categories": h.svc.Components.CategoryStats(),
	})
}

// GetComponent returns one component.
// GET /api/components/:id
func (h *Handler) GetComponent(c *gin.Context) {
	comp, err := h.svc.Components.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

// ComponentReadme returns the component's docs page as markdown.
// GET /api/components/:id/readme
func (h *Handler) ComponentReadme(c *gin.Context) {
	id := c.Param("id")
	text, err := h.svc.Components.Readme(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if text == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("documentation for %q is not available", id)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "content": text})
}
