package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"design-system-api/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8008", cfg.Port)
	assert.Equal(t, "antd", cfg.NPM.Package)
	assert.Equal(t, cache.DefaultTTL, cfg.Cache.TTL)
	assert.Equal(t, cache.DefaultCachePrefix, cfg.Cache.Prefix)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "https://github.com/ant-design/ant-design", cfg.GitHub.RepoURL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DSM_PORT", "9000")
	t.Setenv("DSM_GITHUB_TOKEN", "ghp_test")
	t.Setenv("DSM_JWT_SECRET", "s3cret")
	t.Setenv("DSM_CACHE_TTL", "5m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "ghp_test", cfg.GitHub.Token)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dsm.yaml"), []byte(`
npm:
  package: "@ant-design/icons"
github:
  owner: acme
  repo: ui
log:
  format: json
`), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "@ant-design/icons", cfg.NPM.Package)
	assert.Equal(t, "https://github.com/acme/ui", cfg.GitHub.RepoURL())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"empty package":    func(c *Config) { c.NPM.Package = " " },
		"negative ttl":     func(c *Config) { c.Cache.TTL = -time.Second },
		"negative timeout": func(c *Config) { c.HTTPTimeout = -time.Second },
		"overlap":          func(c *Config) { c.Cache.StatePrefix = c.Cache.Prefix + "state:" },
		"same prefix":      func(c *Config) { c.Cache.StatePrefix = c.Cache.Prefix },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

// chdir changes the working directory for the duration of the test,
// like testing.T.Chdir in newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
