// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/ocms-headless/internal/auth"
	"github.com/olegiv/ocms-headless/internal/model"
)

// SeedAdmin creates an admin with every privilege when the users table is
// empty. It does nothing when username is empty or users already exist.
func SeedAdmin(ctx context.Context, users *UserStore, username, password string) error {
	if username == "" {
		return nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking for users: %w", err)
	}
	if count > 0 {
		slog.Info("users already exist, skipping admin seed")
		return nil
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	id, err := users.Create(ctx, model.User{
		Username:   username,
		Password:   passwordHash,
		Role:       model.RoleAdmin,
		Privileges: model.AllPrivileges(),
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", id, "username", username)
	return nil
}
