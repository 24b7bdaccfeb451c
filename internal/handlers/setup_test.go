package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"design-system-api/internal/auth"
	"design-system-api/internal/cache"
	"design-system-api/internal/datasource"
	"design-system-api/internal/github"
	"design-system-api/internal/kvstore"
	"design-system-api/internal/middleware"
	"design-system-api/internal/npm"
	"design-system-api/internal/realtime"
	"design-system-api/internal/remote"
	"design-system-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errOffline = &remote.FetchError{Source: "GitHub", StatusCode: http.StatusServiceUnavailable, Status: "Service Unavailable"}

// offline answers every remote call with an error, so fetches fall back.
type offline struct{}

func (offline) RepoInfo(context.Context) (github.RepoInfo, error) {
	return github.RepoInfo{}, errOffline
}
func (offline) ComponentsList(context.Context) ([]github.Content, error) { return nil, errOffline }
func (offline) BugIssues(context.Context, int) ([]github.Issue, error)   { return nil, errOffline }
func (offline) FeatureRequests(context.Context, int) ([]github.Issue, error) {
	return nil, errOffline
}
func (offline) Releases(context.Context, int) ([]github.Release, error) { return nil, errOffline }
func (offline) Labels(context.Context) ([]github.Label, error)          { return nil, errOffline }
func (offline) ComponentReadme(context.Context, string) string          { return "" }
func (offline) PackageInfo(context.Context) (npm.PackageInfo, error) {
	return npm.PackageInfo{}, errOffline
}
func (offline) DownloadStats(context.Context) (npm.DownloadPoint, error) {
	return npm.DownloadPoint{}, errOffline
}
func (offline) DailyDownloads(context.Context) (npm.DownloadRange, error) {
	return npm.DownloadRange{}, errOffline
}
func (offline) WeeklyDownloads(context.Context) (npm.DownloadPoint, error) {
	return npm.DownloadPoint{}, errOffline
}
func (offline) LatestVersion(context.Context) (string, error) { return "", errOffline }
func (offline) RecentVersions(context.Context, int) ([]npm.Version, error) {
	return nil, errOffline
}
func (offline) ClearCache() {}

type recordingClient struct {
	mu   sync.Mutex
	msgs []map[string]any
}

func (c *recordingClient) Send(message []byte) bool {
	var evt map[string]any
	if err := json.Unmarshal(message, &evt); err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, evt)
	return true
}

func (c *recordingClient) Close() {}

func (c *recordingClient) events() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]map[string]any(nil), c.msgs...)
}

type testEnv struct {
	router *gin.Engine
	h      *Handler
	svc    *datasource.Service
	tokens *auth.Service
	hub    *realtime.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	state := cache.NewState(kvstore.NewSQLStore(db, 0), cache.Options{})

	hub := realtime.NewHub(nil)
	svc := datasource.NewService(offline{}, offline{}, "https://github.com/ant-design/ant-design", state,
		datasource.Options{Notifier: hub})
	tokens, err := auth.NewService(auth.Config{Secret: "test", Issuer: "design-system-api", Audience: "dashboard"})
	require.NoError(t, err)
	h := New(svc, tokens, hub, nil)

	r := gin.New()
	r.POST("/api/login", h.Login)
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(tokens))

	lc := DomainLifecycle(svc.Components.Domain)
	api.GET("/components/state", lc.State)
	api.POST("/components/fetch", lc.Fetch)
	api.POST("/components/reset", lc.Reset)
	api.GET("/components", h.ListComponents)
	api.GET("/components/by-category", h.ComponentsByCategory)
	api.GET("/components/stats", h.ComponentStats)
	api.GET("/components/:id", h.GetComponent)
	api.GET("/components/:id/readme", h.ComponentReadme)

	api.GET("/analytics/stats", h.AnalyticsStats)
	api.GET("/analytics/top", h.TopComponents)
	api.GET("/analytics/alerts", h.Alerts)
	api.DELETE("/analytics/alerts/:id", h.DismissAlert)
	api.GET("/analytics/charts", h.Charts)
	api.GET("/analytics/releases", h.Releases)
	api.GET("/analytics/package", h.PackageSummary)

	api.GET("/audit/issues", h.AuditIssues)
	api.GET("/audit/stats", h.AuditStats)
	api.PATCH("/audit/issues/:id/fix", h.FixIssue)
	api.POST("/audit/issues/fix-all", h.FixAllIssues)
	api.DELETE("/audit/issues/:id", h.IgnoreIssue)

	api.GET("/requests", h.ListRequests)
	api.GET("/requests/top", h.TopVotedRequests)
	api.GET("/requests/:id", h.GetRequest)
	api.POST("/requests", h.SubmitRequest)
	api.POST("/requests/:id/vote", h.Vote)
	api.DELETE("/requests/:id/vote", h.Unvote)

	api.GET("/issues", h.ListIssues)
	api.POST("/issues", h.CreateIssue)
	api.GET("/issues/stats", h.IssueStats)
	api.GET("/issues/labels", h.IssueLabels)
	api.GET("/issues/:id", h.GetIssue)
	api.PATCH("/issues/:id", h.UpdateIssue)
	api.DELETE("/issues/:id", h.DeleteIssue)
	api.PUT("/issues/:id/status", h.SetIssueStatus)
	api.PUT("/issues/:id/assignee", h.AssignIssue)
	api.POST("/issues/:id/comments", h.CommentOnIssue)
	api.POST("/issues/:id/close", h.CloseIssue)

	api.GET("/branches", h.ListBranches)
	api.POST("/branches", h.CreateBranch)
	api.GET("/contributions", h.ListContributions)
	api.POST("/contributions", h.CreateContribution)
	api.GET("/contributions/pending", h.PendingContributions)
	api.GET("/contributions/:id", h.GetContribution)
	api.POST("/contributions/:id/reviews", h.ReviewContribution)
	api.POST("/contributions/:id/approve", h.ApproveContribution)
	api.POST("/contributions/:id/reject", h.RejectContribution)
	api.POST("/contributions/:id/merge", h.MergeContribution)

	return &testEnv{router: r, h: h, svc: svc, tokens: tokens, hub: hub}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(userID, userID)
	require.NoError(t, err)
	return token
}

// do performs a request as userID and decodes the JSON response into out
// when out is not nil.
func (e *testEnv) do(t *testing.T, method, path, userID string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, userID))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}
