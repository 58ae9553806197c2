// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"attrcatalog/internal/database"
)

// ProbeFunc checks a dependency and returns nil when it is reachable.
type ProbeFunc func(ctx context.Context) error

// Health serves the liveness probe.
type Health struct {
	probe ProbeFunc
	now   func() time.Time
}

// NewHealth creates a health handler probing probe.
func NewHealth(probe ProbeFunc) *Health {
	return &Health{probe: probe, now: time.Now}
}

// DatabaseProbe races a trivial query against timeout.
func DatabaseProbe(db *sql.DB, timeout time.Duration) ProbeFunc {
	return func(ctx context.Context) error {
		return database.Probe(ctx, db, timeout)
	}
}

type healthResponse struct {
	Status string    `json:"status"`
	DB     string    `json:"db"`
	TS     time.Time `json:"ts"`
}

// ServeHTTP handles GET /health. A failing or slow database answers 503
// with status "down".
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", DB: "up", TS: h.now().UTC()}
	status := http.StatusOK
	if err := h.probe(r.Context()); err != nil {
		slog.Warn("health probe failed", "error", err)
		resp.Status, resp.DB = "down", "down"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
