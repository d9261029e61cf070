// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import (
	"math"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/samber/lo"
)

const draft202012 = "https://json-schema.org/draft/2020-12/schema"

// JSONSchema describes the payload accepted for ct. System fields are left
// out and unknown properties are forbidden.
func JSONSchema(ct *ContentType) *jsonschema.Schema {
	editable := ct.Editable()

	s := &jsonschema.Schema{
		Schema:     draft202012,
		Title:      ct.Name,
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(editable)),
		Required: lo.FilterMap(editable, func(f Field, _ int) (string, bool) {
			return f.Name, f.Required()
		}),
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
	for _, f := range editable {
		s.Properties[f.Name] = fieldSchema(f)
	}
	return s
}

func fieldSchema(f Field) *jsonschema.Schema {
	s := &jsonschema.Schema{Description: f.DeclaredType}
	typ := ""

	switch f.Type.Kind {
	case KindText:
		typ = "string"
		if f.Type.MaxLength > 0 {
			s.MaxLength = lo.ToPtr(f.Type.MaxLength)
		}
	case KindInteger:
		typ = "integer"
		lower, upper := integerRange(f.Type)
		s.Minimum = &lower
		s.Maximum = &upper
	case KindFloat, KindDecimal:
		typ = "number"
	case KindBoolean:
		typ = "boolean"
	case KindDate:
		typ = "string"
		s.Format = "date"
	case KindDateTime:
		typ = "string"
		s.Format = "date-time"
	case KindTime:
		typ = "string"
		s.Format = "time"
	case KindEnum:
		s.Enum = lo.Map(f.Type.Values, func(v string, _ int) any { return v })
		if f.Nullable {
			s.Enum = append(s.Enum, nil)
		}
	}

	switch {
	case typ == "":
	case f.Nullable:
		s.Types = []string{typ, "null"}
	default:
		s.Type = typ
	}
	return s
}

// integerRange returns the bounds of an integer column as float64.
func integerRange(t FieldType) (float64, float64) {
	bits := t.Bits
	if bits <= 0 || bits > 64 {
		bits = 64
	}
	if t.Unsigned {
		return 0, math.Pow(2, float64(bits)) - 1
	}
	half := math.Pow(2, float64(bits-1))
	return -half, half - 1
}
