// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Account rules.
const (
	MinPasswordLength = 6
	MaxUsernameLength = 50
)

// Credential rule violations. The messages are shown to API callers.
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("username must be at most 50 characters")
	ErrUsernameSpaces   = errors.New("username must not contain whitespace")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// ValidateUsername checks the username rules.
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return ErrUsernameRequired
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return ErrUsernameTooLong
	case strings.IndexFunc(username, unicode.IsSpace) >= 0:
		return ErrUsernameSpaces
	}
	return nil
}

// ValidatePassword checks the password rules.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
