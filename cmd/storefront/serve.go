package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/router"
	"storefront/internal/search"
	"storefront/internal/session"
	"storefront/internal/store"
)

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cfg, noCache)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "serve catalog reads without the response cache")
	return cmd
}

func serve(cfg *config.Config, noCache bool) error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	// Valkey backs sessions and the catalog response cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SessionSecure)

	userStore := store.NewUserStore(db)
	productStore := store.NewProductStore(db)
	cacheLogStore := store.NewCacheLogStore(db)
	questionStore := store.NewQuestionStore(db)
	manager := catalog.NewManager(store.NewCategoryStore(db), catalog.WithLogger(slog.Default()))
	scorer := search.NewScorer(cfg.SearchWeights)

	// A nil interface disables caching in the handlers.
	var responseCache handlers.ResponseCache
	if !noCache {
		responseCache = cache.NewCatalogCache(valkeyClient, cfg.CatalogCacheTTL)
	} else {
		slog.Warn("catalog response cache disabled")
	}

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	defer loginLimiter.Stop()

	r := router.New(sessionStore, loginLimiter, router.Handlers{
		Auth:       handlers.NewAuth(sessionStore, userStore),
		Categories: handlers.NewCategories(manager, responseCache, cacheLogStore),
		Products:   handlers.NewProducts(productStore, manager, scorer, responseCache, cacheLogStore),
		Questions:  handlers.NewQuestions(questionStore, manager),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
