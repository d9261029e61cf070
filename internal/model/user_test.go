// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{
			name: "admin role",
			role: RoleAdmin,
			want: true,
		},
		{
			name: "user role",
			role: RoleUser,
			want: false,
		},
		{
			name: "empty role",
			role: "",
			want: false,
		},
		{
			name: "Admin uppercase",
			role: "Admin",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"admin", "user"} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "editor", "ADMIN", "root"} {
		if IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = true, want false", role)
		}
	}
}

func TestUserJSONOmitsPassword(t *testing.T) {
	u := User{ID: 1, Username: "Bilbo", Password: "$argon2id$secret", Role: RoleAdmin}

	for name, v := range map[string]any{"user": u, "view": u.View()} {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("%s: Marshal: %v", name, err)
		}
		if strings.Contains(string(b), "password") || strings.Contains(string(b), "argon2id") {
			t.Errorf("%s: JSON contains password: %s", name, b)
		}
	}
}
