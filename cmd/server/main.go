package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"design-system-api/internal/config"
	"design-system-api/internal/datasource"
	"design-system-api/internal/routes"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		ephemeral  bool
	)
	load := func() (*app, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return newApp(cfg, ephemeral)
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(cmd.Context())
		},
	}

	rootCmd := &cobra.Command{
		Use:          "server",
		Short:        "Design system dashboard data API",
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./dsm.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep cache and state in memory only")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newFetchCommand(load))
	rootCmd.AddCommand(newCacheCommand(load))
	return rootCmd
}

// newFetchCommand fetches one domain and prints the resulting state.
func newFetchCommand(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:       "fetch <domain>",
		Short:     "Fetch one domain once and print its state as JSON",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: datasource.Domains,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.Close()

			var state any
			ctx := cmd.Context()
			switch args[0] {
			case "components":
				state = a.service.Components.Fetch(ctx)
			case "analytics":
				state = a.service.Analytics.Fetch(ctx)
			case "audit":
				state = a.service.Audit.Fetch(ctx)
			case "requests":
				state = a.service.Requests.Fetch(ctx)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		},
	}
}

// newCacheCommand manages the API response cache. Persisted state is never
// touched.
func newCacheCommand(load func() (*app, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the API response cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached API response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.Close()
			a.apiCache.Clear()
			fmt.Fprintf(cmd.OutOrStdout(), "cleared cache namespace %s\n", a.apiCache.Prefix())
			return nil
		},
	})
	return cmd
}

func (a *app) serve(parent context.Context) error {
	tokens, err := a.tokens()
	if err != nil {
		return err
	}
	deps := routes.Deps{
		Service:  a.service,
		Tokens:   tokens,
		Hub:      a.hub,
		Gatherer: a.registry,
		Logger:   a.logger,
	}
	if a.cfg.NPM.Proxy {
		deps.NPMDownloadsURL = a.cfg.NPM.DownloadsURL
	}
	ginRoutes, err := routes.SetupRoutes(deps)
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           ginRoutes,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", srv.Addr, "package", a.cfg.NPM.Package,
			"repo", a.cfg.GitHub.Owner+"/"+a.cfg.GitHub.Repo)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
