// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/olegiv/ocms-headless/internal/auth"
	"github.com/olegiv/ocms-headless/internal/config"
	"github.com/olegiv/ocms-headless/internal/content"
	"github.com/olegiv/ocms-headless/internal/middleware"
	"github.com/olegiv/ocms-headless/internal/store"
	"github.com/olegiv/ocms-headless/internal/version"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	DB        *sql.DB
	Users     *store.UserStore
	Content   *content.Service
	Sessions  *scs.SessionManager
	Login     *middleware.LoginProtection
	Passwords auth.Params
	Version   version.Info
}

// NewRouter assembles the middleware chain and every route.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	authHandler := NewAuthHandler(deps.Users, deps.Sessions, deps.Login, deps.Passwords)
	usersHandler := NewUsersHandler(deps.Users, deps.Passwords)
	contentHandler := NewContentHandler(deps.Content)
	healthHandler := NewHealthHandler(deps.DB, deps.Version)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.CompressJSON(middleware.DefaultCompressMinSize))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, http.StatusNotFound, MsgNoRoute, keyUser)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, http.StatusMethodNotAllowed, MsgMethodNotAllowed, "")
	})

	r.Get(RouteHealth, healthHandler.Health)
	r.Get(RouteHealth+"/live", healthHandler.Liveness)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(middleware.CSRFConfigForOrigins(cfg.CORSOrigins)))
		r.Use(deps.Sessions.LoadAndSave)
		r.Use(middleware.LoadUser(deps.Sessions, deps.Users))
		r.Use(middleware.DevDelay(cfg.DevDelay))

		r.Route(RouteAuth, func(r chi.Router) {
			r.Get(RouteAdminExists, authHandler.AdminExists)
			r.With(middleware.RequireNoUsers(deps.Users)).Post(RouteCreateAdmin, authHandler.CreateAdmin)
			r.Get(RouteGetUser, authHandler.GetUser)
			r.With(middleware.RequireAnonymous, deps.Login.Middleware()).Post(RouteLogin, authHandler.Login)
			r.With(middleware.RequireUser).Get(RouteLogout, authHandler.Logout)
		})

		r.Route(RouteAPI, func(r chi.Router) {
			r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Middleware())

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post(RouteUser, usersHandler.Create)
				r.Get(RouteUserID, usersHandler.Get)
				r.Put(RouteUserID, usersHandler.Update)
				r.Delete(RouteUserID, usersHandler.Delete)
				r.Get(RouteUsers, usersHandler.List)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Post(RouteContent, contentHandler.Create)
				r.Get(RouteContent, contentHandler.List)
				r.Get(RouteContentID, contentHandler.Get)
				r.Put(RouteContentID, contentHandler.Update)
				r.Delete(RouteContentID, contentHandler.Delete)
				r.Get(RouteContentTypes, contentHandler.Schema)
			})
		})
	})

	return r
}
