// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package app builds the catalog service from configuration. The HTTP
// server and the Lambda entrypoint share it so both run the same stack.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"attrcatalog/internal/cache"
	"attrcatalog/internal/config"
	"attrcatalog/internal/database"
	"attrcatalog/internal/handlers"
	"attrcatalog/internal/metrics"
	"attrcatalog/internal/middleware"
	"attrcatalog/internal/router"
	"attrcatalog/internal/seed"
	"attrcatalog/internal/store"
)

// App holds the wired service and the resources it must release.
type App struct {
	Router *chi.Mux

	db      *sql.DB
	valkey  *redis.Client
	limiter *middleware.RateLimiter
}

// SetupLogger installs the default slog logger: text in development,
// JSON everywhere else.
func SetupLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// New connects to PostgreSQL, applies migrations, seeds the demo catalog
// when allowed, and wires stores, handlers and routes. Valkey is optional:
// without VALKEY_HOST the tree is read from the database every time.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}
	a := &App{db: db}

	if err := database.Migrate(db); err != nil {
		a.Close()
		return nil, err
	}

	collector := metrics.NewCollector()
	paths := store.NewTreePathStore(db, collector)
	categories := store.NewCategoryStore(db, paths)
	attributes := store.NewAttributeStore(db, paths)
	products := store.NewProductStore(db, paths)

	var tree *cache.TreeCache
	if cfg.ValkeyHost != "" {
		a.valkey, err = cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			a.Close()
			return nil, err
		}
		tree = cache.NewTreeCache(a.valkey, cfg.TreeCacheTTL, collector)
	} else {
		slog.Warn("valkey not configured, category tree cache disabled")
	}

	if cfg.ShouldSeed() {
		if err := seed.New(categories, attributes).Run(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		tree.Invalidate(ctx)
	}

	if cfg.RateLimitPerMinute > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	}

	a.Router = router.New(router.Handlers{
		Categories: handlers.NewCategories(categories, tree),
		Attributes: handlers.NewAttributes(attributes, tree),
		Products:   handlers.NewProducts(products, tree),
		Health:     handlers.NewHealth(handlers.DatabaseProbe(db, cfg.HealthTimeout)),
	}, router.Options{
		CORSOrigins: cfg.CORSAllowedOrigins,
		RateLimiter: a.limiter,
		Metrics:     collector,
	})
	return a, nil
}

// Close releases the database pool, the Valkey client and the limiter.
func (a *App) Close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.valkey != nil {
		if err := a.valkey.Close(); err != nil {
			slog.Warn("close valkey", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			slog.Warn("close database", "error", err)
		}
	}
}
