package handlers

import (
	"net/http"
	"strconv"

	"design-system-api/internal/datasource"
	"design-system-api/internal/models"

	"github.com/gin-gonic/gin"
)

const defaultTopVoted = 5

// ListRequests returns the requests matching the query filter.
// GET /api/requests?status=&priority=
func (h *Handler) ListRequests(c *gin.Context) {
	var f datasource.RequestFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.svc.Requests.List(f))
}

// RequestsByStatus groups the requests into board columns.
// GET /api/requests/by-status
func (h *Handler) RequestsByStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Requests.ByStatus())
}

// RequestStats counts requests per status.
// GET /api/requests/stats
func (h *Handler) RequestStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Requests.Stats())
}

// TopVotedRequests returns the most voted requests.
// GET /api/requests/top?limit=5
func (h *Handler) TopVotedRequests(c *gin.Context) {
	limit := defaultTopVoted
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.svc.Requests.TopVoted(limit))
}

// GetRequest returns one request.
// GET /api/requests/:id
func (h *Handler) GetRequest(c *gin.Context) {
	req, err := h.svc.Requests.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// SubmitRequest files a new component request for the current user.
// POST /api/requests
func (h *Handler) SubmitRequest(c *gin.Context) {
	v, ok := voter(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}
	var draft models.RequestDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.svc.Requests.Submit(draft, v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.publish("", map[string]any{
		"type":      "request_submitted",
		"requestId": created.ID,
		"userId":    v.ID,
	})
	c.JSON(http.StatusCreated, created)
}

// Vote adds the current user's vote.
// POST /api/requests/:id/vote
func (h *Handler) Vote(c *gin.Context) {
	h.vote(c, true)
}

// Unvote withdraws the current user's vote.
// DELETE /api/requests/:id/vote
func (h *Handler) Unvote(c *gin.Context) {
	h.vote(c, false)
}

func (h *Handler) vote(c *gin.Context, voted bool) {
	v, ok := voter(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}
	var (
		req models.ComponentRequest
		err error
	)
	if voted {
		req, err = h.svc.Requests.Vote(c.Param("id"), v.ID)
	} else {
		req, err = h.svc.Requests.Unvote(c.Param("id"), v.ID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(v.ID, map[string]any{
		"type":      "request_voted",
		"requestId": req.ID,
		"votes":     req.Votes,
		"voted":     voted,
	})
	c.JSON(http.StatusOK, req)
}
