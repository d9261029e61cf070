// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Capability names as they appear in the serialized privilege object.
const (
	CapCreate    = "create"
	CapReadOwn   = "read own"
	CapReadAny   = "read any"
	CapUpdateOwn = "update own"
	CapUpdateAny = "update any"
	CapDeleteOwn = "delete own"
	CapDeleteAny = "delete any"
)

// Capabilities lists every capability name in canonical order.
var Capabilities = []string{
	CapCreate,
	CapReadOwn,
	CapReadAny,
	CapUpdateOwn,
	CapUpdateAny,
	CapDeleteOwn,
	CapDeleteAny,
}

// Privileges is the per-user capability matrix. The bits are independent:
// nothing implies anything else, and an absent bit is false.
type Privileges struct {
	Create    bool `json:"create"`
	ReadOwn   bool `json:"read own"`
	ReadAny   bool `json:"read any"`
	UpdateOwn bool `json:"update own"`
	UpdateAny bool `json:"update any"`
	DeleteOwn bool `json:"delete own"`
	DeleteAny bool `json:"delete any"`
}

// AllPrivileges returns a matrix with every capability granted.
func AllPrivileges() Privileges {
	return Privileges{
		Create:    true,
		ReadOwn:   true,
		ReadAny:   true,
		UpdateOwn: true,
		UpdateAny: true,
		DeleteOwn: true,
		DeleteAny: true,
	}
}

// Set grants or revokes the named capability. It reports false for an
// unknown name.
func (p *Privileges) Set(name string, granted bool) bool {
	switch name {
	case CapCreate:
		p.Create = granted
	case CapReadOwn:
		p.ReadOwn = granted
	case CapReadAny:
		p.ReadAny = granted
	case CapUpdateOwn:
		p.UpdateOwn = granted
	case CapUpdateAny:
		p.UpdateAny = granted
	case CapDeleteOwn:
		p.DeleteOwn = granted
	case CapDeleteAny:
		p.DeleteAny = granted
	default:
		return false
	}
	return true
}

// Scan implements sql.Scanner. Privileges are stored as a JSON object.
// NULL and empty values scan to the zero matrix.
func (p *Privileges) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Privileges{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scanning privileges: unsupported type %T", src)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		*p = Privileges{}
		return nil
	}

	var decoded Privileges
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decoding privileges: %w", err)
	}
	*p = decoded
	return nil
}

// Value implements driver.Valuer.
func (p Privileges) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding privileges: %w", err)
	}
	return string(b), nil
}
