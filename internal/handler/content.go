// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-headless/internal/content"
	"github.com/olegiv/ocms-headless/internal/middleware"
	"github.com/olegiv/ocms-headless/internal/schema"
)

// ContentHandler serves the content pipeline under /api.
type ContentHandler struct {
	svc *content.Service
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(svc *content.Service) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// Create handles POST /api/content/{name}.
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := schema.ValidateIdentifier(name); err != nil {
		writeError(w, r, keyContent, err)
		return
	}
	payload, err := decodeObject(r)
	if err != nil {
		writeError(w, r, keyContent, err)
		return
	}

	item, err := h.svc.Create(r.Context(), middleware.GetUser(r), name, payload)
	if err != nil {
		writeError(w, r, keyContent, err)
		return
	}
	respond(w, r, http.StatusOK, MsgContentCreated, keyContent, item)
}

// List handles GET /api/content/{name}.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), middleware.GetUser(r), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, keyContent, err)
		return
	}
	respond(w, r, http.StatusOK, "", keyContent, items)
}

// Get handles GET /api/content/{name}/{id}.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), middleware.GetUser(r), chi.URLParam(r, "name"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, keyContent, err)
		return
	}
	respond(w, r, http.StatusOK, "", keyContent, item)
}

// Update handles PUT /api/content/{name}/{id}.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := schema.ValidateIdentifier(name); err != nil {
		writeError(w, r, keyContent, err)
		return
	}
	payload, err := decodeObject(r)
	if err != nil {
		writeError(w, r, keyContent, err)
		return
	}

	item, err := h.svc.Update(r.Context(), middleware.GetUser(r), name, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, r, keyContent, err)
		return
	}
	respond(w, r, http.StatusOK, MsgContentUpdated, keyContent, item)
}

// Delete handles DELETE /api/content/{name}/{id}.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.GetUser(r), chi.URLParam(r, "name"), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, keyContent, err)
		return
	}
	respond(w, r, http.StatusOK, MsgContentDeleted, keyContent, nil)
}

// Schema handles GET /api/content-types/{name} with the JSON Schema of the
// content type's writable fields.
func (h *ContentHandler) Schema(w http.ResponseWriter, r *http.Request) {
	ct, err := h.svc.Describe(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, keySchema, err)
		return
	}
	respond(w, r, http.StatusOK, "", keySchema, schema.JSONSchema(ct))
}
