// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import "errors"

// ErrInvalidIdentifier is returned for a content type name that is not made
// of ASCII letters and underscores only.
var ErrInvalidIdentifier = errors.New("invalid content type name")

// ValidName reports whether name is non-empty and every byte is an ASCII
// letter or an underscore.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// ValidateIdentifier returns ErrInvalidIdentifier unless ValidName(name).
// Names that pass are safe to place inside quoted storage identifiers.
func ValidateIdentifier(name string) error {
	if !ValidName(name) {
		return ErrInvalidIdentifier
	}
	return nil
}
