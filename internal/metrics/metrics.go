// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes the Prometheus collectors of the catalog service.
// Every recorder is safe to call on a nil *Collector so stores and caches
// can run without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "attrcatalog"

// Collector holds all Prometheus metrics for the service.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	ClosureRowsWritten prometheus.Counter

	TreeCacheHits   prometheus.Counter
	TreeCacheMisses prometheus.Counter
}

// NewCollector creates a collector backed by its own registry, so that
// several collectors can coexist in one test binary.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ClosureRowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "closure_rows_written_total",
			Help:      "Total number of category tree path rows inserted",
		}),
		TreeCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tree_cache_hits_total",
			Help:      "Total number of category tree cache hits",
		}),
		TreeCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tree_cache_misses_total",
			Help:      "Total number of category tree cache misses",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.ClosureRowsWritten,
		c.TreeCacheHits,
		c.TreeCacheMisses,
	)
	return c
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveRequest records one finished HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// AddClosureRows counts tree path rows written by the closure maintainer.
func (c *Collector) AddClosureRows(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.ClosureRowsWritten.Add(float64(n))
}

// TreeCacheHit counts a category tree served from the cache.
func (c *Collector) TreeCacheHit() {
	if c == nil {
		return
	}
	c.TreeCacheHits.Inc()
}

// TreeCacheMiss counts a category tree rebuilt from the database.
func (c *Collector) TreeCacheMiss() {
	if c == nil {
		return
	}
	c.TreeCacheMisses.Inc()
}
