// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-headless/internal/model"
	"github.com/olegiv/ocms-headless/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser holds the authenticated *model.User.
const ContextKeyUser ContextKey = "user"

// SessionKeyUserID is the session key holding the logged in user's id.
const SessionKeyUserID = "user_id"

// UserLoader looks users up by id.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
}

// LoadUser loads the session's user into the request context. A session
// pointing at a user that no longer exists is destroyed and the request
// continues anonymously.
func LoadUser(sm *scs.SessionManager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if errors.Is(err, store.ErrUserNotFound) {
				slog.InfoContext(r.Context(), "session user no longer exists", "user_id", userID)
				if err := sm.Destroy(r.Context()); err != nil {
					slog.ErrorContext(r.Context(), "failed to destroy session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to load session user", "error", err, "user_id", userID)
				WriteError(w, r, http.StatusInternalServerError, MsgServerError)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// RequireUser rejects anonymous requests with 403.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) == nil {
			denyAccess(w, r, "", "authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose user does not have role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				denyAccess(w, r, "", role)
				return
			}
			if user.Role != role {
				denyAccess(w, r, user.Role, role)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireRole(model.RoleAdmin).
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)(next)
}

// RequireAnonymous rejects requests that already carry a logged in user.
func RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := GetUser(r); user != nil {
			denyAccess(w, r, user.Role, "anonymous")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserCounter reports how many users exist.
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// RequireNoUsers admits requests only while no user account exists.
func RequireNoUsers(users UserCounter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count, err := users.Count(r.Context())
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to count users", "error", err)
				WriteError(w, r, http.StatusInternalServerError, MsgServerError)
				return
			}
			if count > 0 {
				denyAccess(w, r, roleOf(GetUser(r)), "no users")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func roleOf(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.Role
}

func denyAccess(w http.ResponseWriter, r *http.Request, userRole, required string) {
	slog.WarnContext(r.Context(), "access denied",
		"status", http.StatusForbidden,
		"user_id", GetUserID(r),
		"user_role", userRole,
		"required", required,
	)
	WriteError(w, r, http.StatusForbidden, MsgAccessDenied)
}
