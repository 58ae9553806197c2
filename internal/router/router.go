// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// catalog API. Reads are open; writes go through the rate limiter.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"attrcatalog/internal/handlers"
	"attrcatalog/internal/metrics"
	"attrcatalog/internal/middleware"
)

// Handlers groups the resource handlers mounted by New.
type Handlers struct {
	Categories *handlers.Categories
	Attributes *handlers.Attributes
	Products   *handlers.Products
	Health     http.Handler
}

// Options tunes the middleware stack. Zero values disable the optional
// pieces: no metrics endpoint, no rate limiting, no CORS origins.
type Options struct {
	CORSOrigins []string
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Collector
}

// New creates the configured chi router.
func New(h Handlers, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         300,
	}))

	r.Method(http.MethodGet, "/health", h.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	writes := func(r chi.Router) chi.Router {
		if opts.RateLimiter == nil {
			return r
		}
		return r.With(opts.RateLimiter.Middleware)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			c := h.Categories
			r.Get("/", c.List)
			r.Get("/tree", c.Tree)
			r.Get("/{id}", c.Get)
			r.Get("/{id}/ancestors", c.Ancestors)

			w := writes(r)
			w.Post("/", c.Create)
			w.Patch("/{id}", c.Update)
			w.Delete("/{id}", c.Delete)
		})

		r.Route("/attributes", func(r chi.Router) {
			a := h.Attributes
			r.Get("/", a.List)
			r.Get("/{id}", a.Get)

			w := writes(r)
			w.Post("/", a.Create)
			w.Patch("/{id}", a.Update)
			w.Put("/{id}/categories", a.SetCategories)
			w.Delete("/{id}", a.Delete)
		})

		r.Route("/products", func(r chi.Router) {
			p := h.Products
			r.Get("/", p.List)
			r.Get("/{id}", p.Get)

			w := writes(r)
			w.Post("/", p.Create)
			w.Patch("/{id}", p.Update)
			w.Delete("/{id}", p.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"route not found"}`))
	})

	return r
}
