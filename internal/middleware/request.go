// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/ocms-headless/internal/logging"
)

// RequestContext stores the request id, method, path and client address in
// the context so that logging.ContextHandler attaches them to every record.
// It must run after chi's RequestID and RealIP.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequest(r.Context(), logging.RequestInfo{
			ID:         chimw.GetReqID(r.Context()),
			Method:     r.Method,
			Path:       r.URL.Path,
			RemoteAddr: getClientIP(r),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DevDelay holds every request for d before serving it, so that front-end
// loading states can be observed locally. A zero d returns next unchanged.
func DevDelay(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(d):
				next.ServeHTTP(w, r)
			case <-r.Context().Done():
			}
		})
	}
}
