// Package config loads server settings from defaults, an optional config
// file and DSM_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"design-system-api/internal/cache"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. DSM_PORT.
const EnvPrefix = "DSM"

// Config is the full server configuration.
type Config struct {
	Port        string        `mapstructure:"port"`
	DBPath      string        `mapstructure:"db_path"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	Log         Log           `mapstructure:"log"`
	Cache       Cache         `mapstructure:"cache"`
	GitHub      GitHub        `mapstructure:"github"`
	NPM         NPM           `mapstructure:"npm"`
	JWT         JWT           `mapstructure:"jwt"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Cache configures the two key/value namespaces.
type Cache struct {
	Prefix      string        `mapstructure:"prefix"`
	StatePrefix string        `mapstructure:"state_prefix"`
	TTL         time.Duration `mapstructure:"ttl"`
	MaxEntries  int           `mapstructure:"max_entries"`
}

// GitHub identifies the design system repository.
type GitHub struct {
	BaseURL string `mapstructure:"base_url"`
	Owner   string `mapstructure:"owner"`
	Repo    string `mapstructure:"repo"`
	Token   string `mapstructure:"token"`
}

// RepoURL is the repository's web address.
func (g GitHub) RepoURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", g.Owner, g.Repo)
}

// NPM identifies the published package.
type NPM struct {
	RegistryURL  string `mapstructure:"registry_url"`
	DownloadsURL string `mapstructure:"downloads_url"`
	Package      string `mapstructure:"package"`
	// Proxy mirrors DownloadsURL under /npm-api.
	Proxy bool `mapstructure:"proxy"`
}

// JWT configures token signing.
type JWT struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8008")
	v.SetDefault("db_path", "design_system.db")
	v.SetDefault("http_timeout", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("cache.prefix", cache.DefaultCachePrefix)
	v.SetDefault("cache.state_prefix", cache.DefaultStatePrefix)
	v.SetDefault("cache.ttl", cache.DefaultTTL)
	v.SetDefault("cache.max_entries", 0)
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.owner", "ant-design")
	v.SetDefault("github.repo", "ant-design")
	v.SetDefault("github.token", "")
	v.SetDefault("npm.registry_url", "https://registry.npmjs.org")
	v.SetDefault("npm.downloads_url", "https://api.npmjs.org")
	v.SetDefault("npm.package", "antd")
	v.SetDefault("npm.proxy", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "design-system-api")
	v.SetDefault("jwt.audience", "design-system-dashboard")
	v.SetDefault("jwt.ttl", 24*time.Hour)
}

// Load reads the configuration. An empty path looks for dsm.yaml in the
// working directory and carries on without it if absent; an explicit path
// must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dsm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.NPM.Package) == "" {
		errs = append(errs, errors.New("npm.package must not be empty"))
	}
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		errs = append(errs, errors.New("github.owner and github.repo are required"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}
	if c.JWT.TTL < 0 {
		errs = append(errs, errors.New("jwt.ttl must not be negative"))
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, errors.New("http_timeout must not be negative"))
	}
	if c.Cache.MaxEntries < 0 {
		errs = append(errs, errors.New("cache.max_entries must not be negative"))
	}
	if c.Cache.Prefix == "" || c.Cache.StatePrefix == "" {
		errs = append(errs, errors.New("cache prefixes must not be empty"))
	} else if cache.Overlaps(c.Cache.Prefix, c.Cache.StatePrefix) {
		errs = append(errs, fmt.Errorf("cache.prefix %q and cache.state_prefix %q overlap", c.Cache.Prefix, c.Cache.StatePrefix))
	}
	return errors.Join(errs...)
}
