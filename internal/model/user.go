// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain models shared across the application:
// users, roles and the per-user privilege matrix.
package model

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRoles contains all valid user roles.
var ValidRoles = []string{RoleAdmin, RoleUser}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents a CMS user.
type User struct {
	ID         int64      `db:"id" json:"id"`
	Username   string     `db:"username" json:"username"`
	Password   string     `db:"password" json:"-"` // Never expose in JSON
	Role       string     `db:"role" json:"role"`
	Privileges Privileges `db:"privileges" json:"privileges"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserView is the outward representation of a user. It has no password field.
type UserView struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Role       string     `json:"role"`
	Privileges Privileges `json:"privileges"`
}

// View returns the outward representation of u.
func (u *User) View() UserView {
	return UserView{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		Privileges: u.Privileges,
	}
}
