package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"design-system-api/internal/mapper"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Login handles the login endpoint (dummy authentication). The user id is
// derived from the username so the same person keeps their votes.
// POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	username := strings.TrimSpace(req.Username)
	userID := strings.ToLower(username)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	if strings.HasPrefix(userID, mapper.SyntheticVoterPrefix) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Username is reserved.",
		})
		return
	}

	token, err := h.tokens.GenerateToken(userID, username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   userID,
		Username: username,
		Message:  "Login successful",
	})
}
