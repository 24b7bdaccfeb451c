package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"design-system-api/internal/auth"
	"design-system-api/internal/datasource"
	"design-system-api/internal/handlers"
	"design-system-api/internal/logging"
	"design-system-api/internal/middleware"
	"design-system-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NPMProxyPrefix is where the npm downloads API is mirrored for browsers
// that cannot call it cross-origin.
const NPMProxyPrefix = "/npm-api"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Service *datasource.Service
	Tokens  *auth.Service
	Hub     *realtime.Hub

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// NPMDownloadsURL is the proxy target. Empty disables the proxy.
	NPMDownloadsURL string

	Logger *slog.Logger
}

func SetupRoutes(deps Deps) (*gin.Engine, error) {
	logger := logging.Component(deps.Logger, "http")

	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger(logger))

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Design System API is running",
		})
	})

	if deps.Gatherer != nil {
		ginRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if deps.NPMDownloadsURL != "" {
		proxy, err := npmProxy(deps.NPMDownloadsURL, logger)
		if err != nil {
			return nil, err
		}
		ginRouter.GET(NPMProxyPrefix+"/*path", proxy)
	}

	h := handlers.New(deps.Service, deps.Tokens, deps.Hub, deps.Logger)

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", h.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(deps.Tokens))
	{
		protectedRoutes.GET("/ws", h.WebSocket)

		components := protectedRoutes.Group("/components")
		lifecycle(components, handlers.DomainLifecycle(deps.Service.Components.Domain))
		components.GET("", h.ListComponents)
		components.GET("/by-category", h.ComponentsByCategory)
		components.GET("/stats", h.ComponentStats)
		components.GET("/:id", h.GetComponent)
		components.GET("/:id/readme", h.ComponentReadme)

		analytics := protectedRoutes.Group("/analytics")
		lifecycle(analytics, handlers.DomainLifecycle(deps.Service.Analytics.Domain))
		analytics.GET("/stats", h.AnalyticsStats)
		analytics.GET("/adoption", h.Adoption)
		analytics.GET("/top", h.TopComponents)
		analytics.GET("/coverage", h.ProjectCoverage)
		analytics.GET("/platforms", h.PlatformUsage)
		analytics.GET("/alerts", h.Alerts)
		analytics.DELETE("/alerts/:id", h.DismissAlert)
		analytics.GET("/recommendations", h.Recommendations)
		analytics.GET("/versions", h.VersionHistory)
		analytics.GET("/charts", h.Charts)
		analytics.GET("/releases", h.Releases)
		analytics.GET("/package", h.PackageSummary)

		audit := protectedRoutes.Group("/audit")
		lifecycle(audit, handlers.DomainLifecycle(deps.Service.Audit.Domain))
		audit.GET("/issues", h.AuditIssues)
		audit.GET("/issues/auto-fixable", h.AutoFixableIssues)
		audit.PATCH("/issues/:id/fix", h.FixIssue)
		audit.POST("/issues/fix-all", h.FixAllIssues)
		audit.DELETE("/issues/:id", h.IgnoreIssue)
		audit.GET("/projects", h.AuditProjects)
		audit.GET("/stats", h.AuditStats)
		audit.GET("/severity", h.IssuesBySeverity)

		requests := protectedRoutes.Group("/requests")
		lifecycle(requests, handlers.DomainLifecycle(deps.Service.Requests.Domain))
		requests.GET("", h.ListRequests)
		requests.POST("", h.SubmitRequest)
		requests.GET("/by-status", h.RequestsByStatus)
		requests.GET("/stats", h.RequestStats)
		requests.GET("/top", h.TopVotedRequests)
		requests.GET("/:id", h.GetRequest)
		requests.POST("/:id/vote", h.Vote)
		requests.DELETE("/:id/vote", h.Unvote)

		issues := protectedRoutes.Group("/issues")
		issues.GET("/state", handlers.DomainLifecycle(deps.Service.Issues.Domain).State)
		issues.GET("", h.ListIssues)
		issues.POST("", h.CreateIssue)
		issues.GET("/by-status", h.IssuesByStatus)
		issues.GET("/stats", h.IssueStats)
		issues.GET("/labels", h.IssueLabels)
		issues.GET("/:id", h.GetIssue)
		issues.PATCH("/:id", h.UpdateIssue)
		issues.DELETE("/:id", h.DeleteIssue)
		issues.PUT("/:id/status", h.SetIssueStatus)
		issues.PUT("/:id/assignee", h.AssignIssue)
		issues.POST("/:id/comments", h.CommentOnIssue)
		issues.POST("/:id/close", h.CloseIssue)
		issues.POST("/:id/reopen", h.ReopenIssue)

		branches := protectedRoutes.Group("/branches")
		branches.GET("", h.ListBranches)
		branches.POST("", h.CreateBranch)

		contributions := protectedRoutes.Group("/contributions")
		contributions.GET("/state", handlers.DomainLifecycle(deps.Service.Contributions.Domain).State)
		contributions.GET("", h.ListContributions)
		contributions.POST("", h.CreateContribution)
		contributions.GET("/by-status", h.ContributionsByStatus)
		contributions.GET("/stats", h.ContributionStats)
		contributions.GET("/pending", h.PendingContributions)
		contributions.GET("/:id", h.GetContribution)
		contributions.PATCH("/:id", h.UpdateContribution)
		contributions.POST("/:id/submit", h.SubmitContribution)
		contributions.POST("/:id/reviews", h.ReviewContribution)
		contributions.POST("/:id/approve", h.ApproveContribution)
		contributions.POST("/:id/reject", h.RejectContribution)
		contributions.POST("/:id/merge", h.MergeContribution)
	}

	return ginRouter, nil
}

func lifecycle(g *gin.RouterGroup, l handlers.Lifecycle) {
	g.GET("/state", l.State)
	g.POST("/fetch", l.Fetch)
	g.POST("/reset", l.Reset)
	g.POST("/refresh", l.Refresh)
}

// npmProxy forwards /npm-api/<path> to <target>/<path>, keeping the query.
func npmProxy(target string, logger *slog.Logger) (gin.HandlerFunc, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid npm downloads url %q", target)
	}
	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(u)
			r.Out.Header.Del("Authorization")
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("npm proxy failed", "path", r.URL.Path, "error", err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}
	return func(c *gin.Context) {
		req := c.Request.Clone(c.Request.Context())
		req.URL.Path = strings.TrimPrefix(req.URL.Path, NPMProxyPrefix)
		req.URL.RawPath = strings.TrimPrefix(req.URL.RawPath, NPMProxyPrefix)
		proxy.ServeHTTP(c.Writer, req)
	}, nil
}
