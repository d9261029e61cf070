// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import (
	"strconv"
	"strings"
)

// Kind is the variant of a FieldType.
type Kind int

// Field type variants.
const (
	KindUnknown Kind = iota
	KindText
	KindInteger
	KindFloat
	KindDecimal
	KindBoolean
	KindDate
	KindDateTime
	KindTime
	KindEnum
)

var kindNames = [...]string{
	KindUnknown:  "unknown",
	KindText:     "text",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindDecimal:  "decimal",
	KindBoolean:  "boolean",
	KindDate:     "date",
	KindDateTime: "datetime",
	KindTime:     "time",
	KindEnum:     "enum",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// FieldType is a parsed declared column type. Only the members relevant to
// Kind are set.
type FieldType struct {
	Kind Kind

	// MaxLength bounds KindText in characters; 0 means unbounded.
	MaxLength int

	// Bits and Unsigned describe KindInteger.
	Bits     int
	Unsigned bool

	// Precision and Scale describe KindDecimal; Precision 0 means unbounded.
	Precision int
	Scale     int

	// Values lists the labels of KindEnum.
	Values []string
}

// Expected describes the values a field of this type accepts, for use in
// validation messages.
func (t FieldType) Expected() string {
	switch t.Kind {
	case KindText:
		if t.MaxLength > 0 {
			return "a string of at most " + strconv.Itoa(t.MaxLength) + " characters"
		}
		return "a string"
	case KindInteger:
		if t.Unsigned {
			return "a non-negative integer"
		}
		return "an integer"
	case KindFloat:
		return "a number"
	case KindDecimal:
		if t.Precision > 0 {
			return "a decimal with at most " + strconv.Itoa(t.Precision-t.Scale) +
				" integer digits and " + strconv.Itoa(t.Scale) + " fractional digits"
		}
		return "a decimal number"
	case KindBoolean:
		return "a boolean"
	case KindDate:
		return "a date (YYYY-MM-DD)"
	case KindDateTime:
		return "a date and time (YYYY-MM-DD HH:MM:SS or RFC 3339)"
	case KindTime:
		return "a time (HH:MM:SS)"
	case KindEnum:
		return "one of " + strings.Join(t.Values, ", ")
	default:
		return "a scalar value"
	}
}

// integerBits maps integer type names to their storage width.
var integerBits = map[string]int{
	"tinyint":   8,
	"smallint":  16,
	"int2":      16,
	"mediumint": 24,
	"int":       32,
	"int4":      32,
	"serial":    32,
	"year":      16,
	"integer":   64, // only SQLite reports it; MySQL says int, PostgreSQL int4
	"bigint":    64,
	"int8":      64,
	"bigserial": 64,
}

var textTypes = map[string]bool{
	"char": true, "varchar": true, "character": true, "character varying": true,
	"nchar": true, "nvarchar": true, "varying character": true, "native character": true,
	"text": true, "tinytext": true, "mediumtext": true, "longtext": true,
	"clob": true, "string": true, "citext": true, "uuid": true,
}

var floatTypes = map[string]bool{
	"float": true, "double": true, "double precision": true, "real": true,
	"float4": true, "float8": true,
}

var dateTimeTypes = map[string]bool{
	"datetime": true, "timestamp": true, "timestamptz": true,
	"timestamp without time zone": true, "timestamp with time zone": true,
}

var timeTypes = map[string]bool{
	"time": true, "timetz": true,
	"time without time zone": true, "time with time zone": true,
}

// ParseType parses a declared column type as reported by MySQL, PostgreSQL
// or SQLite. enumValues supplies enum labels reported outside the type
// string. Unrecognized types parse as KindUnknown.
func ParseType(raw string, enumValues []string) FieldType {
	s := strings.ToLower(strings.TrimSpace(raw))

	unsigned := false
	for _, mod := range []string{" zerofill", " unsigned"} {
		if strings.HasSuffix(s, mod) {
			s = strings.TrimSpace(strings.TrimSuffix(s, mod))
			if mod == " unsigned" {
				unsigned = true
			}
		}
	}

	base, args := s, ""
	if i := strings.IndexByte(s, '('); i >= 0 {
		base = strings.TrimSpace(s[:i])
		if j := strings.LastIndexByte(s, ')'); j > i {
			args = s[i+1 : j]
		}
	}

	switch {
	case base == "enum":
		values := enumValues
		if len(values) == 0 {
			// Labels keep their case, so parse them from the raw string.
			values = parseEnumLabels(raw)
		}
		return FieldType{Kind: KindEnum, Values: values}
	case base == "bool" || base == "boolean" || (base == "tinyint" && args == "1"):
		return FieldType{Kind: KindBoolean}
	case integerBits[base] > 0:
		return FieldType{Kind: KindInteger, Bits: integerBits[base], Unsigned: unsigned}
	case base == "decimal" || base == "numeric" || base == "dec":
		t := FieldType{Kind: KindDecimal}
		if p, sc, ok := strings.Cut(args, ","); ok {
			t.Precision = atoi(p)
			t.Scale = atoi(sc)
		} else if args != "" {
			t.Precision = atoi(args)
		}
		return t
	case floatTypes[base]:
		return FieldType{Kind: KindFloat}
	case textTypes[base]:
		return FieldType{Kind: KindText, MaxLength: atoi(args)}
	case base == "date":
		return FieldType{Kind: KindDate}
	case dateTimeTypes[base]:
		return FieldType{Kind: KindDateTime}
	case timeTypes[base]:
		return FieldType{Kind: KindTime}
	}

	if len(enumValues) > 0 {
		return FieldType{Kind: KindEnum, Values: enumValues}
	}
	return FieldType{Kind: KindUnknown}
}

// parseEnumLabels reads the quoted labels of enum('a','b''c').
func parseEnumLabels(raw string) []string {
	i := strings.IndexByte(raw, '(')
	j := strings.LastIndexByte(raw, ')')
	if i < 0 || j <= i {
		return nil
	}
	body := raw[i+1 : j]

	var (
		labels []string
		cur    strings.Builder
		quoted bool
	)
	for k := 0; k < len(body); k++ {
		c := body[k]
		switch {
		case quoted && c == '\'' && k+1 < len(body) && body[k+1] == '\'':
			cur.WriteByte('\'')
			k++
		case c == '\'':
			if quoted {
				labels = append(labels, cur.String())
				cur.Reset()
			}
			quoted = !quoted
		case quoted:
			cur.WriteByte(c)
		}
	}
	return labels
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
