// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package access decides whether the current user may perform an operation.
// Every decision fails closed: a missing user, a role mismatch or an absent
// privilege bit all deny.
package access

import (
	"errors"
	"fmt"

	"github.com/olegiv/ocms-headless/internal/model"
)

// Denial reasons. Both are answered with 403 "Access denied".
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAccessDenied    = errors.New("access denied")
)

// Operation is the kind of content operation being authorized.
type Operation int

// Operations gated by the privilege matrix. OpNone marks role-only checks.
const (
	OpNone Operation = iota
	OpCreate
	OpRead
	OpUpdate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpCreate:
		return "create"
	case OpRead:
		return "read"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// Request describes one access decision.
type Request struct {
	// Role, when set, must equal the user's role exactly.
	Role string
	// Op is the privilege-gated operation. OpNone skips the privilege check.
	Op Operation
	// Owner is the id of the user owning the target record. Nil means no
	// target record; only the "any" bit can then admit read/update/delete.
	Owner *int64
}

// Check admits or denies req for user u. A nil error admits.
func Check(u *model.User, req Request) error {
	if u == nil {
		return ErrUnauthenticated
	}

	if req.Role != "" && u.Role != req.Role {
		return fmt.Errorf("%w: role %q required, user has %q", ErrAccessDenied, req.Role, u.Role)
	}

	if req.Op == OpNone {
		return nil
	}

	ownMatch := req.Owner != nil && *req.Owner == u.ID
	if !Allows(u.Privileges, req.Op, ownMatch) {
		return fmt.Errorf("%w: %s not permitted for user %d", ErrAccessDenied, req.Op, u.ID)
	}
	return nil
}

// Allows evaluates the privilege matrix for op. ownMatch reports whether the
// acting user owns the target record. The "own" and "any" bits are OR-ed;
// neither implies the other.
func Allows(p model.Privileges, op Operation, ownMatch bool) bool {
	switch op {
	case OpCreate:
		return p.Create
	case OpRead:
		return (ownMatch && p.ReadOwn) || p.ReadAny
	case OpUpdate:
		return (ownMatch && p.UpdateOwn) || p.UpdateAny
	case OpDelete:
		return (ownMatch && p.DeleteOwn) || p.DeleteAny
	default:
		return false
	}
}

// Scope is the set of records a listing may return.
type Scope int

// Listing scopes.
const (
	ScopeNone Scope = iota
	ScopeOwn
	ScopeAny
)

// ListScope returns which records u may list. "read any" lists everything,
// "read own" alone restricts the listing to u's records.
func ListScope(u *model.User) (Scope, error) {
	if u == nil {
		return ScopeNone, ErrUnauthenticated
	}
	switch {
	case u.Privileges.ReadAny:
		return ScopeAny, nil
	case u.Privileges.ReadOwn:
		return ScopeOwn, nil
	default:
		return ScopeNone, fmt.Errorf("%w: read not permitted for user %d", ErrAccessDenied, u.ID)
	}
}

// IsDenied reports whether err is an access-control denial.
func IsDenied(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrAccessDenied)
}
