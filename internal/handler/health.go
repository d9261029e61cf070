// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/olegiv/ocms-headless/internal/version"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sql.DB, info version.Info) *HealthHandler {
	return &HealthHandler{db: db, version: info, startTime: time.Now()}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status  string           `json:"status"`
	Version string           `json:"version"`
	Uptime  string           `json:"uptime"`
	Checks  map[string]Check `json:"checks"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health. It answers 503 when the database does not
// respond to a ping.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	db := h.checkDatabase(r.Context())

	status := HealthStatus{
		Status:  "ok",
		Version: h.version.String(),
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Checks:  map[string]Check{"database": db},
	}
	code := http.StatusOK
	if db.Status != "ok" {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	render.Status(r, code)
	render.JSON(w, r, status)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "alive"})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		slog.ErrorContext(ctx, "database health check failed", "error", err)
		return Check{Status: "error"}
	}
	return Check{Status: "ok", Latency: time.Since(start).String()}
}
