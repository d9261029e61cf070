// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-headless/internal/auth"
	"github.com/olegiv/ocms-headless/internal/middleware"
	"github.com/olegiv/ocms-headless/internal/model"
	"github.com/olegiv/ocms-headless/internal/store"
)

// AuthHandler serves the /auth routes.
type AuthHandler struct {
	users     *store.UserStore
	sm        *scs.SessionManager
	guard     *middleware.LoginProtection
	passwords auth.Params
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users *store.UserStore, sm *scs.SessionManager, guard *middleware.LoginProtection, passwords auth.Params) *AuthHandler {
	return &AuthHandler{users: users, sm: sm, guard: guard, passwords: passwords}
}

// AdminExists handles GET /auth/admin-exists.
func (h *AuthHandler) AdminExists(w http.ResponseWriter, r *http.Request) {
	admins, err := h.users.CountByRole(r.Context(), model.RoleAdmin)
	if err != nil {
		writeError(w, r, keyAdminExists, err)
		return
	}
	respond(w, r, http.StatusOK, "", keyAdminExists, admins > 0)
}

// CreateAdmin handles POST /auth/create-admin. The route is only reachable
// while no user exists.
func (h *AuthHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeObject(r)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	in, err := parseCredentials(payload)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	in.Role = model.RoleAdmin
	in.Privileges = model.AllPrivileges()

	user, err := h.createUser(r, in)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}

	slog.InfoContext(r.Context(), "admin created", "user_id", user.ID, "username", user.Username)
	respond(w, r, http.StatusOK, MsgAdminCreated, keyUser, user.View())
}

// GetUser handles GET /auth/get-user. Anonymous callers get a null user.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		respond(w, r, http.StatusOK, "", keyUser, nil)
		return
	}
	respond(w, r, http.StatusOK, "", keyUser, user.View())
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeObject(r)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	username, _ := payload["username"].(string)
	password, _ := payload["password"].(string)
	if username == "" || password == "" {
		fail(w, r, http.StatusBadRequest, MsgBadCredentials, keyUser)
		return
	}

	if locked, remaining := h.guard.IsAccountLocked(username); locked {
		slog.WarnContext(r.Context(), "login attempt on locked account", "username", username, "remaining", remaining)
		fail(w, r, http.StatusTooManyRequests, MsgAccountLocked, keyUser)
		return
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if errors.Is(err, store.ErrUserNotFound) {
		auth.DummyCheck(password)
		h.rejectLogin(w, r, username)
		return
	}
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}

	match, err := auth.CheckPassword(password, user.Password)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	if !match {
		h.rejectLogin(w, r, username)
		return
	}
	h.guard.RecordSuccessfulLogin(username)

	if h.passwords.NeedsRehash(user.Password) {
		h.rehash(r, &user, password)
	}

	if err := h.sm.RenewToken(r.Context()); err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	h.sm.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID, "username", user.Username)
	respond(w, r, http.StatusOK, MsgLoggedIn, keyUser, user.View())
}

func (h *AuthHandler) rejectLogin(w http.ResponseWriter, r *http.Request, username string) {
	if locked, d := h.guard.RecordFailedAttempt(username); locked {
		slog.WarnContext(r.Context(), "account locked", "username", username, "duration", d)
	}
	fail(w, r, http.StatusBadRequest, MsgBadCredentials, keyUser)
}

// rehash upgrades a stored hash to the current cost parameters. Failure
// only costs the upgrade, never the login.
func (h *AuthHandler) rehash(r *http.Request, user *model.User, password string) {
	hash, err := h.passwords.Hash(password)
	if err != nil {
		slog.WarnContext(r.Context(), "password rehash failed", "user_id", user.ID, "error", err)
		return
	}
	user.Password = hash
	if err := h.users.Update(r.Context(), *user); err != nil {
		slog.WarnContext(r.Context(), "storing rehashed password failed", "user_id", user.ID, "error", err)
	}
}

// Logout handles GET /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sm.Destroy(r.Context()); err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	slog.InfoContext(r.Context(), "user logged out", "user_id", middleware.GetUserID(r))
	respond(w, r, http.StatusOK, MsgLoggedOut, keyUser, nil)
}

func (h *AuthHandler) createUser(r *http.Request, in userInput) (model.User, error) {
	hash, err := h.passwords.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}
	user := model.User{
		Username:   in.Username,
		Password:   hash,
		Role:       in.Role,
		Privileges: in.Privileges,
	}
	if user.ID, err = h.users.Create(r.Context(), user); err != nil {
		return model.User{}, err
	}
	return user, nil
}
