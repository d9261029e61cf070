// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	RouteHealth = "/health"
	RouteAuth   = "/auth"
	RouteAPI    = "/api"

	RouteAdminExists = "/admin-exists"
	RouteCreateAdmin = "/create-admin"
	RouteGetUser     = "/get-user"
	RouteLogin       = "/login"
	RouteLogout      = "/logout"

	RouteUser   = "/user"
	RouteUserID = RouteUser + "/{id}"
	RouteUsers  = "/users"

	RouteContent      = "/content/{name}"
	RouteContentID    = RouteContent + "/{id}"
	RouteContentTypes = "/content-types/{name}"
)

// Response messages. Error strings are part of the public contract.
const (
	MsgInvalidName      = "Name param must be a valid content type name"
	MsgNoContentType    = "Content type does not exist"
	MsgNoUser           = "No user exists with this id"
	MsgUsernameTaken    = "Username already in use"
	MsgNoContent        = "No content exists with this id"
	MsgBadCredentials   = "Incorrect username or password"
	MsgNoRoute          = "No route exists"
	MsgMethodNotAllowed = "Method not allowed"
	MsgInvalidJSON      = "Request body must be a JSON object"
	MsgUserCreated      = "User successfully created"
	MsgUserUpdated      = "User successfully updated"
	MsgUserDeleted      = "User successfully deleted"
	MsgAdminCreated     = "Admin successfully created"
	MsgContentCreated   = "Content successfully created"
	MsgContentUpdated   = "Content successfully updated"
	MsgContentDeleted   = "Content successfully deleted"
	MsgLoggedIn         = "Successfully logged in"
	MsgLoggedOut        = "Successfully logged out"
	MsgCannotDeleteSelf = "You cannot delete your own account"
	MsgLastAdmin        = "Cannot remove the last admin"
	MsgAccountLocked    = "Account temporarily locked, please try again later"
)

// Envelope payload keys.
const (
	keyUser        = "user"
	keyUsers       = "users"
	keyContent     = "content"
	keyAdminExists = "adminExists"
	keySchema      = "schema"
)
