// Package handlers serves the dashboard domains over HTTP.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"design-system-api/internal/auth"
	"design-system-api/internal/datasource"
	"design-system-api/internal/logging"
	"design-system-api/internal/middleware"
	"design-system-api/internal/models"
	"design-system-api/internal/realtime"
	"design-system-api/internal/remote"

	"github.com/gin-gonic/gin"
)

// Handler holds the collaborators every endpoint needs.
type Handler struct {
	svc    *datasource.Service
	tokens *auth.Service
	hub    *realtime.Hub
	logger *slog.Logger
}

// New returns a Handler. hub may be nil, in which case nothing is pushed.
func New(svc *datasource.Service, tokens *auth.Service, hub *realtime.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		tokens: tokens,
		hub:    hub,
		logger: logging.Component(logger, "handlers"),
	}
}

// voter reads the acting user set by the JWT middleware.
func voter(c *gin.Context) (datasource.Voter, bool) {
	v := datasource.Voter{
		ID:   c.GetString(middleware.UserIDKey),
		Name: c.GetString(middleware.UsernameKey),
	}
	return v, v.ID != ""
}

// author is the acting user as shown on issues, comments and reviews.
func author(c *gin.Context) (models.Author, bool) {
	v, ok := voter(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return models.Author{}, false
	}
	return models.Author{Name: v.Name}, true
}

func (h *Handler) publish(userID string, evt map[string]any) {
	if h.hub == nil {
		return
	}
	h.hub.Publish(userID, evt)
}

// respondError maps domain errors onto status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	var fetchErr *remote.FetchError
	switch {
	case errors.Is(err, datasource.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, datasource.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case remote.IsRateLimited(err):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	case errors.As(err, &fetchErr):
		h.logger.Warn("remote read failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// Lifecycle exposes the state, fetch, reset and refresh operations of one
// domain.
type Lifecycle struct {
	State   gin.HandlerFunc
	Fetch   gin.HandlerFunc
	Reset   gin.HandlerFunc
	Refresh gin.HandlerFunc
}

// DomainLifecycle builds the lifecycle endpoints for d. Fetch and refresh
// answer with the state as of when the request ended, which is still
// loading if the client went away first.
func DomainLifecycle[T any](d *datasource.Domain[T]) Lifecycle {
	return Lifecycle{
		State: func(c *gin.Context) {
			c.JSON(http.StatusOK, d.Snapshot())
		},
		Fetch: func(c *gin.Context) {
			c.JSON(http.StatusOK, d.Fetch(c.Request.Context()))
		},
		Reset: func(c *gin.Context) {
			c.JSON(http.StatusOK, d.Reset())
		},
		Refresh: func(c *gin.Context) {
			c.JSON(http.StatusOK, d.Refresh(c.Request.Context()))
		},
	}
}
