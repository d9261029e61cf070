// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"

	"github.com/go-chi/render"
)

// Messages written by middleware rejections.
const (
	MsgAccessDenied    = "Access denied"
	MsgTooManyRequests = "Too many requests, please slow down"
	MsgRequestTimeout  = "Request timeout"
	MsgServerError     = "Server error, apologies"
)

// errorEnvelope mirrors the handler response envelope for failures.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// WriteError writes a failure envelope with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorEnvelope{Error: msg})
}
