package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"design-system-api/internal/auth"
	"design-system-api/internal/cache"
	"design-system-api/internal/config"
	"design-system-api/internal/database"
	"design-system-api/internal/datasource"
	"design-system-api/internal/github"
	"design-system-api/internal/kvstore"
	"design-system-api/internal/logging"
	"design-system-api/internal/metrics"
	"design-system-api/internal/npm"
	"design-system-api/internal/realtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *gorm.DB
	registry *prometheus.Registry
	apiCache *cache.Expiring
	github   *github.Client
	npm      *npm.Client
	hub      *realtime.Hub
	service  *datasource.Service
}

// newApp wires every component. An ephemeral app keeps cache and state in
// memory and forgets them on exit.
func newApp(cfg config.Config, ephemeral bool) (*app, error) {
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})

	var (
		db    *gorm.DB
		store kvstore.Store
	)
	if ephemeral {
		store = kvstore.NewMemoryStore(cfg.Cache.MaxEntries)
		logger.Info("using in-memory store, nothing will be persisted")
	} else {
		var err error
		db, err = database.Open(cfg.DBPath, database.LogLevel(cfg.Log.Level))
		if err != nil {
			return nil, err
		}
		store = kvstore.NewSQLStore(db, cfg.Cache.MaxEntries)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	apiCache := cache.NewExpiring(store, cache.Options{
		Prefix:  cfg.Cache.Prefix,
		TTL:     cfg.Cache.TTL,
		Logger:  logger,
		Metrics: m,
	})
	state := cache.NewState(store, cache.Options{
		Prefix:  cfg.Cache.StatePrefix,
		Logger:  logger,
		Metrics: m,
	})

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gh := github.New(github.Config{
		BaseURL: cfg.GitHub.BaseURL,
		Owner:   cfg.GitHub.Owner,
		Repo:    cfg.GitHub.Repo,
		Token:   cfg.GitHub.Token,
	}, httpClient, apiCache, logger, m)
	pkg := npm.New(npm.Config{
		RegistryURL:  cfg.NPM.RegistryURL,
		DownloadsURL: cfg.NPM.DownloadsURL,
		Package:      cfg.NPM.Package,
	}, httpClient, apiCache, logger, m)

	hub := realtime.NewHub(logger)
	svc := datasource.NewService(gh, pkg, cfg.GitHub.RepoURL(), state, datasource.Options{
		Logger:   logger,
		Metrics:  m,
		Notifier: hub,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		registry: registry,
		apiCache: apiCache,
		github:   gh,
		npm:      pkg,
		hub:      hub,
		service:  svc,
	}, nil
}

// tokens builds the token service. Without a configured secret a random one
// is used, so tokens stop validating when the server restarts.
func (a *app) tokens() (*auth.Service, error) {
	secret := a.cfg.JWT.Secret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		a.logger.Warn("no jwt secret configured, using an ephemeral one", "env", config.EnvPrefix+"_JWT_SECRET")
	}
	return auth.NewService(auth.Config{
		Secret:   secret,
		Issuer:   a.cfg.JWT.Issuer,
		Audience: a.cfg.JWT.Audience,
		TTL:      a.cfg.JWT.TTL,
	})
}

func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
