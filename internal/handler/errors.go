// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-headless/internal/access"
	"github.com/olegiv/ocms-headless/internal/content"
	"github.com/olegiv/ocms-headless/internal/middleware"
	"github.com/olegiv/ocms-headless/internal/schema"
	"github.com/olegiv/ocms-headless/internal/store"
)

// inputError is a client mistake whose message is shown as is.
type inputError struct {
	msg string
	err error
}

func (e *inputError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *inputError) Unwrap() error { return e.err }

// statusFor maps an error to its response status and public message.
// ok is false for errors that are not the caller's fault.
func statusFor(err error) (status int, msg string, ok bool) {
	var (
		inErr  *inputError
		valErr *content.ValidationError
		dupErr *store.DuplicateKeyError
	)

	switch {
	case errors.As(err, &inErr):
		return http.StatusBadRequest, inErr.msg, true
	case errors.Is(err, schema.ErrInvalidIdentifier):
		return http.StatusBadRequest, MsgInvalidName, true
	case errors.Is(err, schema.ErrContentTypeNotFound):
		return http.StatusBadRequest, MsgNoContentType, true
	case errors.As(err, &valErr):
		return http.StatusBadRequest, valErr.Message, true
	case access.IsDenied(err):
		return http.StatusForbidden, middleware.MsgAccessDenied, true
	case errors.Is(err, content.ErrRecordNotFound):
		return http.StatusBadRequest, MsgNoContent, true
	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusBadRequest, MsgNoUser, true
	case errors.As(err, &dupErr):
		return http.StatusBadRequest, duplicateMessage(dupErr.Column), true
	}
	return http.StatusInternalServerError, middleware.MsgServerError, false
}

// duplicateMessage names the column that is already taken.
func duplicateMessage(column string) string {
	if column == "" {
		return "Value already in use"
	}
	return strings.ToUpper(column[:1]) + column[1:] + " already in use"
}

// writeError answers with the mapped status. Unexpected errors are logged
// with the request context and hidden from the caller.
func writeError(w http.ResponseWriter, r *http.Request, key string, err error) {
	status, msg, ok := statusFor(err)
	if !ok {
		slog.ErrorContext(r.Context(), "request failed", "error", err)
	} else if status == http.StatusForbidden {
		slog.WarnContext(r.Context(), "access denied", "user_id", middleware.GetUserID(r), "error", err)
	}
	fail(w, r, status, msg, key)
}
