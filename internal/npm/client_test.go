package npm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"design-system-api/internal/cache"
	"design-system-api/internal/kvstore"
	"design-system-api/internal/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packageDoc = `{
	"_id": "antd",
	"name": "antd",
	"dist-tags": {"latest": "5.12.0", "next": "6.0.0-alpha.1"},
	"versions": {"5.11.0": {"name": "antd", "version": "5.11.0"}, "5.12.0": {"name": "antd", "version": "5.12.0"}},
	"time": {
		"created": "2015-01-01T00:00:00.000Z",
		"modified": "2023-12-10T00:00:00.000Z",
		"5.10.0": "2023-10-01T00:00:00.000Z",
		"5.11.0": "2023-11-01T00:00:00.000Z",
		"5.12.0": "2023-12-01T00:00:00.000Z"
	}
}`

func newTestClient(t *testing.T, pkg string, mux *http.ServeMux) (*Client, cache.Cache) {
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := cache.NewExpiring(kvstore.NewMemoryStore(0), cache.Options{})
	cfg := Config{RegistryURL: srv.URL, DownloadsURL: srv.URL + "/", Package: pkg}
	return New(cfg, srv.Client(), c, nil, nil), c
}

func TestPackageInfoAndVersions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/antd", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(packageDoc))
	})
	client, c := newTestClient(t, "antd", mux)
	ctx := context.Background()

	latest, err := client.LatestVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5.12.0", latest)
	assert.False(t, c.IsExpired("npm_package_info"))

	versions, err := client.RecentVersions(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []Version{
		{Version: "5.12.0", Date: "2023-12-01T00:00:00.000Z"},
		{Version: "5.11.0", Date: "2023-11-01T00:00:00.000Z"},
	}, versions)
}

func TestLatestVersion_MissingTag(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/antd", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"antd","dist-tags":{"next":"6.0.0"}}`))
	})
	client, _ := newTestClient(t, "antd", mux)

	_, err := client.LatestVersion(context.Background())
	require.ErrorIs(t, err, remote.ErrInvalidPayload)
}

func TestDownloads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/downloads/point/last-month/antd", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"downloads":5000000,"start":"2024-01-01","end":"2024-01-31","package":"antd"}`))
	})
	mux.HandleFunc("/downloads/point/last-week/antd", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"downloads":1200000,"start":"2024-01-24","end":"2024-01-31","package":"antd"}`))
	})
	mux.HandleFunc("/downloads/range/last-month/antd", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"start":"2024-01-01","end":"2024-01-02","package":"antd","downloads":[{"downloads":10,"day":"2024-01-01"},{"downloads":20,"day":"2024-01-02"}]}`))
	})
	client, c := newTestClient(t, "antd", mux)
	ctx := context.Background()

	month, err := client.DownloadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5000000, month.Downloads)

	week, err := client.WeeklyDownloads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1200000, week.Downloads)

	daily, err := client.DailyDownloads(ctx)
	require.NoError(t, err)
	require.Len(t, daily.Downloads, 2)
	assert.Equal(t, "2024-01-02", daily.Downloads[1].Day)

	client.ClearCache()
	for _, key := range []string{"npm_downloads_month", "npm_downloads_week", "npm_downloads_daily"} {
		assert.True(t, c.IsExpired(key), key)
	}
}

func TestDailyDownloads_RejectsMalformedDay(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/downloads/range/last-month/antd", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"package":"antd","downloads":[{"downloads":10,"day":"01/01/2024"}]}`))
	})
	client, _ := newTestClient(t, "antd", mux)

	_, err := client.DailyDownloads(context.Background())
	require.ErrorIs(t, err, remote.ErrInvalidPayload)
}

func TestScopedPackagePath(t *testing.T) {
	var path string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"name":"@ant-design/icons","dist-tags":{"latest":"5.0.0"}}`))
	})
	client, _ := newTestClient(t, "@ant-design/icons", mux)

	_, err := client.PackageInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/@ant-design%2Ficons", path)
}

func TestRecentVersions_NoLimit(t *testing.T) {
	info := PackageInfo{Time: map[string]string{"created": "x", "1.0.0": "2020-01-01T00:00:00Z"}}
	assert.Equal(t, []Version{{Version: "1.0.0", Date: "2020-01-01T00:00:00Z"}}, RecentVersions(info, 0))
}
