package handlers

import (
	"net/http"
	"strconv"

	"design-system-api/internal/models"

	"github.com/gin-gonic/gin"
)

// AnalyticsStats returns the headline numbers with the averaged
// implementation time.
// GET /api/analytics/stats
func (h *Handler) AnalyticsStats(c *gin.Context) {
	stats := h.svc.Analytics.Stats()
	stats.AvgImplementationTime = h.svc.Analytics.AvgImplementationTime()
	c.JSON(http.StatusOK, stats)
}

// Adoption returns the weekly adoption series.
// GET /api/analytics/adoption
func (h *Handler) Adoption(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Analytics.Adoption())
}

// TopComponents ranks component usage, optionally for one platform.
// GET /api/analytics/top?platform=
func (h *Handler) TopComponents(c *gin.Context) {
	platform := models.Platform(c.Query("platform"))
	c.JSON(http.StatusOK, h.svc.Analytics.TopComponents(platform))
}

// ProjectCoverage returns coverage per project.
// GET /api/analytics/coverage
func (h *Handler) ProjectCoverage(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Analytics.ProjectCoverage())
}

// PlatformUsage returns usage per platform.
// GET /api/analytics/platforms
func (h *Handler) PlatformUsage(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Analytics.PlatformUsage())
}

// Alerts returns the alerts that are still shown.
// GET /api/analytics/alerts
func (h *Handler) Alerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Analytics.Alerts())
}

// DismissAlert hides an alert for good.
// DELETE /api/analytics/alerts/:id
func (h *Handler) DismissAlert(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Analytics.DismissAlert(id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert dismissed", "id": id})
}

// Recommendations returns suggested component actions.
// GET /api/analytics/recommendations
func (h *Handler) Recommendations(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Analytics.Recommendations())
}

// VersionHistory returns recent releases.
// GET /api/analytics/versions
func (h *Handler) VersionHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Analytics.VersionHistory())
}

// Charts returns the chart series.
// GET /api/analytics/charts
func (h *Handler) Charts(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Analytics.Charts())
}

// Releases lists the latest published package versions.
// GET /api/analytics/releases?limit=
func (h *Handler) Releases(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	versions, err := h.svc.Analytics.Releases(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

// PackageSummary reads the package's latest version and weekly downloads.
// GET /api/analytics/package
func (h *Handler) PackageSummary(c *gin.Context) {
	summary, err := h.svc.Analytics.Package(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
