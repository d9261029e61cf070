// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/olegiv/ocms-headless/internal/auth"
	"github.com/olegiv/ocms-headless/internal/middleware"
	"github.com/olegiv/ocms-headless/internal/model"
	"github.com/olegiv/ocms-headless/internal/store"
)

// UsersHandler serves admin user management under /api.
type UsersHandler struct {
	users     *store.UserStore
	passwords auth.Params
}

// NewUsersHandler creates a UsersHandler.
func NewUsersHandler(users *store.UserStore, passwords auth.Params) *UsersHandler {
	return &UsersHandler{users: users, passwords: passwords}
}

// userID parses the {id} path parameter. A malformed id cannot name a
// user, so it answers like a missing one.
func userID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.ErrUserNotFound
	}
	return id, nil
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, keyUsers, err)
		return
	}
	views := lo.Map(users, func(u model.User, _ int) model.UserView { return u.View() })
	respond(w, r, http.StatusOK, "", keyUsers, views)
}

// Get handles GET /api/user/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	respond(w, r, http.StatusOK, "", keyUser, user.View())
}

// Create handles POST /api/user.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeObject(r)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	in, err := parseUserInput(payload, true)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}

	hash, err := h.passwords.Hash(in.Password)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	user := model.User{Username: in.Username, Password: hash, Role: in.Role, Privileges: in.Privileges}
	if user.ID, err = h.users.Create(r.Context(), user); err != nil {
		writeError(w, r, keyUser, err)
		return
	}

	slog.InfoContext(r.Context(), "user created", "user_id", user.ID, "username", user.Username, "created_by", middleware.GetUserID(r))
	respond(w, r, http.StatusOK, MsgUserCreated, keyUser, user.View())
}

// Update handles PUT /api/user/{id}. An omitted password keeps the stored one.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	payload, err := decodeObject(r)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	in, err := parseUserInput(payload, false)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}

	existing, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	if existing.IsAdmin() && in.Role != model.RoleAdmin {
		if last, err := h.isLastAdmin(r); err != nil {
			writeError(w, r, keyUser, err)
			return
		} else if last {
			fail(w, r, http.StatusBadRequest, MsgLastAdmin, keyUser)
			return
		}
	}

	user := model.User{ID: id, Username: in.Username, Role: in.Role, Privileges: in.Privileges}
	if in.Password != "" {
		if user.Password, err = h.passwords.Hash(in.Password); err != nil {
			writeError(w, r, keyUser, err)
			return
		}
	}
	if err := h.users.Update(r.Context(), user); err != nil {
		writeError(w, r, keyUser, err)
		return
	}

	slog.InfoContext(r.Context(), "user updated", "user_id", id, "updated_by", middleware.GetUserID(r))
	respond(w, r, http.StatusOK, MsgUserUpdated, keyUser, user.View())
}

// Delete handles DELETE /api/user/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	if id == middleware.GetUserID(r) {
		fail(w, r, http.StatusBadRequest, MsgCannotDeleteSelf, keyUser)
		return
	}

	existing, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, keyUser, err)
		return
	}
	if existing.IsAdmin() {
		if last, err := h.isLastAdmin(r); err != nil {
			writeError(w, r, keyUser, err)
			return
		} else if last {
			fail(w, r, http.StatusBadRequest, MsgLastAdmin, keyUser)
			return
		}
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, keyUser, err)
		return
	}

	slog.InfoContext(r.Context(), "user deleted", "user_id", id, "deleted_by", middleware.GetUserID(r))
	respond(w, r, http.StatusOK, MsgUserDeleted, keyUser, nil)
}

func (h *UsersHandler) isLastAdmin(r *http.Request) (bool, error) {
	admins, err := h.users.CountByRole(r.Context(), model.RoleAdmin)
	if err != nil {
		return false, err
	}
	return admins <= 1, nil
}
