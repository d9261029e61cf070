// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// String returns the version, or "dev" for builds without ldflags.
func (i Info) String() string {
	if i.Version == "" {
		return "dev"
	}
	return i.Version
}

// Long returns the version with commit and build time, as printed by -version.
func (i Info) Long() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", i.String(), orUnknown(i.GitCommit), orUnknown(i.BuildTime))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
