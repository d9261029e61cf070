// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/olegiv/ocms-headless/internal/auth"
	"github.com/olegiv/ocms-headless/internal/model"
)

var userFields = []string{"username", "password", "role", "privileges"}

// userInput is a validated user payload. Password is empty when the
// payload left it out.
type userInput struct {
	Username   string
	Password   string
	Role       string
	Privileges model.Privileges
}

func invalid(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

// parseUserInput checks a user payload. The password may be omitted only
// when requirePassword is false.
func parseUserInput(payload map[string]any, requirePassword bool) (userInput, error) {
	var in userInput

	unknown := lo.Filter(lo.Keys(payload), func(k string, _ int) bool {
		return !slices.Contains(userFields, k)
	})
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return in, invalid("unexpected field `%s`", unknown[0])
	}

	var err error
	if in.Username, err = stringField(payload, "username", true); err != nil {
		return in, err
	}
	if err := auth.ValidateUsername(in.Username); err != nil {
		return in, &inputError{msg: err.Error()}
	}

	if in.Password, err = stringField(payload, "password", requirePassword); err != nil {
		return in, err
	}
	if _, present := payload["password"]; present || requirePassword {
		if err := auth.ValidatePassword(in.Password); err != nil {
			return in, &inputError{msg: err.Error()}
		}
	}

	if in.Role, err = stringField(payload, "role", true); err != nil {
		return in, err
	}
	if !model.IsValidRole(in.Role) {
		return in, invalid("role must be one of %s", strings.Join(model.ValidRoles, ", "))
	}

	in.Privileges, err = parsePrivileges(payload["privileges"])
	return in, err
}

// parseCredentials accepts only a username and a password.
func parseCredentials(payload map[string]any) (userInput, error) {
	var in userInput
	for _, k := range sortedKeys(payload) {
		if k != "username" && k != "password" {
			return in, invalid("unexpected field `%s`", k)
		}
	}

	var err error
	if in.Username, err = stringField(payload, "username", true); err != nil {
		return in, err
	}
	if err := auth.ValidateUsername(in.Username); err != nil {
		return in, &inputError{msg: err.Error()}
	}
	if in.Password, err = stringField(payload, "password", true); err != nil {
		return in, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return in, &inputError{msg: err.Error()}
	}
	return in, nil
}

func sortedKeys(m map[string]any) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func stringField(payload map[string]any, name string, required bool) (string, error) {
	v, ok := payload[name]
	if !ok || v == nil {
		if required {
			return "", invalid("%s is required", name)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalid("%s must be a string", name)
	}
	return s, nil
}

// parsePrivileges requires an object carrying every capability, and
// nothing else, as a boolean.
func parsePrivileges(raw any) (model.Privileges, error) {
	var p model.Privileges
	if raw == nil {
		return p, invalid("privileges is required")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return p, invalid("privileges must be an object")
	}

	for _, k := range sortedKeys(obj) {
		if !slices.Contains(model.Capabilities, k) {
			return p, invalid("privileges has unexpected key `%s`", k)
		}
	}
	for _, name := range model.Capabilities {
		v, ok := obj[name]
		if !ok {
			return p, invalid("privileges is missing `%s`", name)
		}
		granted, ok := v.(bool)
		if !ok {
			return p, invalid("privileges `%s` must be a boolean", name)
		}
		p.Set(name, granted)
	}
	return p, nil
}
