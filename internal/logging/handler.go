// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the application logger. Records logged with a
// request context carry the request id, method, path and client address.
package logging

import (
	"context"
	"log/slog"
)

// RequestInfo identifies the request a record was logged for.
type RequestInfo struct {
	ID         string
	Method     string
	Path       string
	RemoteAddr string
}

type requestInfoKey struct{}

// WithRequest returns a context carrying info.
func WithRequest(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestFrom returns the request info stored in ctx.
func RequestFrom(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}

// ContextHandler is a slog.Handler that wraps another handler and appends
// the RequestInfo found in the record's context.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler wraps inner.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if info, ok := RequestFrom(ctx); ok {
			r = r.Clone()
			r.AddAttrs(requestAttrs(info)...)
		}
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}

func requestAttrs(info RequestInfo) []slog.Attr {
	attrs := make([]slog.Attr, 0, 4)
	if info.ID != "" {
		attrs = append(attrs, slog.String("request_id", info.ID))
	}
	attrs = append(attrs,
		slog.String("method", info.Method),
		slog.String("path", info.Path),
		slog.String("remote_addr", info.RemoteAddr),
	)
	return attrs
}
