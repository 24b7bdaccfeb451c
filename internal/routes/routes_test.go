package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"design-system-api/internal/auth"
	"design-system-api/internal/cache"
	"design-system-api/internal/datasource"
	"design-system-api/internal/github"
	"design-system-api/internal/kvstore"
	"design-system-api/internal/metrics"
	"design-system-api/internal/npm"
	"design-system-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, downloadsURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	store := kvstore.NewMemoryStore(0)
	apiCache := cache.NewExpiring(store, cache.Options{Metrics: m})
	state := cache.NewState(store, cache.Options{})
	gh := github.New(github.Config{BaseURL: "http://127.0.0.1:1", Owner: "ant-design", Repo: "ant-design"}, nil, apiCache, nil, m)
	pkg := npm.New(npm.Config{RegistryURL: "http://127.0.0.1:1", DownloadsURL: "http://127.0.0.1:1", Package: "antd"}, nil, apiCache, nil, m)

	hub := realtime.NewHub(nil)
	svc := datasource.NewService(gh, pkg, "https://github.com/ant-design/ant-design", state,
		datasource.Options{Metrics: m, Notifier: hub})
	tokens, err := auth.NewService(auth.Config{Secret: "test", Issuer: "design-system-api", Audience: "dashboard"})
	require.NoError(t, err)

	r, err := SetupRoutes(Deps{
		Service:         svc,
		Tokens:          tokens,
		Hub:             hub,
		Gatherer:        reg,
		NPMDownloadsURL: downloadsURL,
	})
	require.NoError(t, err)
	return r
}

func TestHealth(t *testing.T) {
	r := newRouter(t, "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(t, "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/components", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoginThenFetchFallsBackAndCountsMetrics(t *testing.T) {
	r := newRouter(t, "")

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "x"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct{ Token string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/components/fetch", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		Source string `json:"dataSource"`
		Error  string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.Equal(t, "mock", state.Source)
	require.NotEmpty(t, state.Error)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `dsm_datasource_transitions_total{domain="components",source="mock"} 1`)
}

func TestNPMProxy(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"downloads":42}`))
	}))
	defer upstream.Close()

	r := newRouter(t, upstream.URL)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/npm-api/downloads/point/last-week/@ant-design%2Ficons?x=1", nil)
	req.Header.Set("Authorization", "Bearer secret")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"downloads":42}`, w.Body.String())
	require.Equal(t, "/downloads/point/last-week/@ant-design%2Ficons", gotPath)
	require.Equal(t, "x=1", gotQuery)
	require.Empty(t, gotAuth)
}

func TestNPMProxyRejectsBadTarget(t *testing.T) {
	_, err := SetupRoutes(Deps{NPMDownloadsURL: "not a url"})
	require.Error(t, err)
}
