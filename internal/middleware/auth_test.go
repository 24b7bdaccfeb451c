package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"design-system-api/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *auth.Service) {
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewService(auth.Config{Secret: "s", Issuer: "i", Audience: "a"})
	require.NoError(t, err)
	r := gin.New()
	r.Use(JWTAuthMiddleware(tokens))
	r.GET("/protected", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(UserIDKey)) })
	return r, tokens
}

func TestJWTAuthMiddleware_Success(t *testing.T) {
	r, tokens := newRouter(t)
	token, err := tokens.GenerateToken("user-1", "alice")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", w.Body.String())
}

func TestJWTAuthMiddleware_QueryToken(t *testing.T) {
	r, tokens := newRouter(t)
	token, err := tokens.GenerateToken("user-2", "bob")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	r, _ := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_InvalidToken(t *testing.T) {
	r, _ := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
