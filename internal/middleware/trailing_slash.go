// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"
)

// StripTrailingSlash redirects paths ending in a slash to the same path
// without it. Safe methods get a 301; other methods get a 308 so clients
// repeat the method and body. The root path is left alone.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" || !strings.HasSuffix(path, "/") {
			next.ServeHTTP(w, r)
			return
		}

		// "//host" would be read as a scheme-relative URL.
		target := "/" + strings.TrimLeft(strings.TrimRight(path, "/"), "/")
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}

		status := http.StatusPermanentRedirect
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			status = http.StatusMovedPermanently
		}
		http.Redirect(w, r, target, status)
	})
}
