// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"filippo.io/csrf/gorilla"
)

// MsgCSRFFailed is the error returned for rejected cross-origin writes.
const MsgCSRFFailed = "Forbidden - CSRF validation failed"

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata headers instead of tokens,
// so no key material is required.
type CSRFConfig struct {
	// ErrorHandler is called when CSRF validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins lists host[:port] values allowed to make cross-origin
	// state-changing requests (the SPA front end).
	TrustedOrigins []string
}

// CSRFConfigForOrigins builds a config trusting the hosts of the given
// CORS origins. Unparseable or host-less entries are skipped.
func CSRFConfigForOrigins(origins []string) CSRFConfig {
	var cfg CSRFConfig
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			continue
		}
		cfg.TrustedOrigins = append(cfg.TrustedOrigins, u.Host)
	}
	return cfg
}

// CSRF returns a middleware that rejects cross-origin state-changing requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	var opts []csrf.Option

	if cfg.ErrorHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.ErrorHandler))
	} else {
		opts = append(opts, csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)))
	}

	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(nil, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reasonStr := "unknown"
	if reason := csrf.FailureReason(r); reason != nil {
		reasonStr = reason.Error()
	}
	slog.WarnContext(r.Context(), "CSRF validation failed",
		"reason", reasonStr,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	WriteError(w, r, http.StatusForbidden, MsgCSRFFailed)
}
