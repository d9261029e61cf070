// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/olegiv/ocms-headless/internal/schema"
)

// ValidationError is the first rule a payload broke. Message is shown to
// the caller as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func unexpectedField(name string) *ValidationError {
	return &ValidationError{Field: name, Message: fmt.Sprintf("unexpected field `%s`", name)}
}

func missingField(name string) *ValidationError {
	return &ValidationError{Field: name, Message: fmt.Sprintf("missing required field `%s`", name)}
}

func nullField(name string) *ValidationError {
	return &ValidationError{Field: name, Message: fmt.Sprintf("field `%s` cannot be null", name)}
}

func mismatch(f schema.Field) *ValidationError {
	return &ValidationError{Field: f.Name, Message: fmt.Sprintf("field `%s` must be %s", f.Name, f.Type.Expected())}
}

// Record holds validated column values in field declaration order.
type Record struct {
	Columns []string
	Values  []any
}

// Len returns the number of columns.
func (r Record) Len() int { return len(r.Columns) }

// Get returns the value of column.
func (r Record) Get(column string) (any, bool) {
	i := slices.Index(r.Columns, column)
	if i < 0 {
		return nil, false
	}
	return r.Values[i], true
}

func (r *Record) add(column string, value any) {
	r.Columns = append(r.Columns, column)
	r.Values = append(r.Values, value)
}

// Validate checks payload against ct and returns the converted values of
// the fields it carries. It stops at the first violation: unknown keys are
// reported first in lexicographic order, then fields are checked in
// declaration order. Validate has no side effects.
func Validate(payload map[string]any, ct *schema.ContentType) (Record, error) {
	keys := lo.Keys(payload)
	slices.Sort(keys)
	for _, key := range keys {
		if f, ok := ct.Field(key); !ok || f.System {
			return Record{}, unexpectedField(key)
		}
	}

	var rec Record
	for _, f := range ct.Editable() {
		v, present := payload[f.Name]
		switch {
		case !present && f.Required():
			return Record{}, missingField(f.Name)
		case !present:
			continue
		case v == nil && f.Required():
			return Record{}, missingField(f.Name)
		case v == nil && !f.Nullable:
			return Record{}, nullField(f.Name)
		case v == nil:
			rec.add(f.Name, nil)
			continue
		}

		converted, ok := rules[f.Type.Kind](f.Type, v)
		if !ok {
			return Record{}, mismatch(f)
		}
		rec.add(f.Name, converted)
	}
	return rec, nil
}

// ConvertKey converts a raw primary key taken from a URL to the key field's
// type. ok is false when raw cannot identify a record.
func ConvertKey(ct *schema.ContentType, raw string) (any, bool) {
	f, found := ct.Field(ct.PrimaryKey)
	if !found || raw == "" {
		return nil, false
	}
	return rules[f.Type.Kind](f.Type, raw)
}

// rule converts v to the column type, reporting false when it cannot be
// converted without loss.
type rule func(t schema.FieldType, v any) (any, bool)

var rules = map[schema.Kind]rule{
	schema.KindUnknown:  scalarRule,
	schema.KindText:     textRule,
	schema.KindInteger:  integerRule,
	schema.KindFloat:    floatRule,
	schema.KindDecimal:  decimalRule,
	schema.KindBoolean:  booleanRule,
	schema.KindDate:     dateRule,
	schema.KindDateTime: dateTimeRule,
	schema.KindTime:     timeRule,
	schema.KindEnum:     enumRule,
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, json.Number, bool,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func scalarRule(_ schema.FieldType, v any) (any, bool) {
	if !isScalar(v) {
		return nil, false
	}
	if n, ok := v.(json.Number); ok {
		return n.String(), true
	}
	return v, true
}

func textRule(t schema.FieldType, v any) (any, bool) {
	if !isScalar(v) {
		return nil, false
	}
	if n, ok := v.(json.Number); ok {
		v = n.String()
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, false
	}
	if t.MaxLength > 0 && utf8.RuneCountInString(s) > t.MaxLength {
		return nil, false
	}
	return s, true
}

func integerRule(t schema.FieldType, v any) (any, bool) {
	n, ok := toBigInt(v)
	if !ok {
		return nil, false
	}

	bits := t.Bits
	if bits <= 0 || bits > 64 {
		bits = 64
	}
	var lower, upper *big.Int
	if t.Unsigned {
		lower = big.NewInt(0)
		upper = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
	} else {
		half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		lower = new(big.Int).Neg(half)
		upper = new(big.Int).Sub(half, big.NewInt(1))
	}
	if n.Cmp(lower) < 0 || n.Cmp(upper) > 0 {
		return nil, false
	}

	if n.IsInt64() {
		return n.Int64(), true
	}
	return n.Uint64(), true
}

// toBigInt accepts integral numbers and strings holding them.
func toBigInt(v any) (*big.Int, bool) {
	switch x := v.(type) {
	case json.Number:
		return parseBigInt(x.String())
	case string:
		return parseBigInt(strings.TrimSpace(x))
	case float64:
		return floatToBigInt(x)
	case float32:
		return floatToBigInt(float64(x))
	case int, int8, int16, int32, int64:
		return big.NewInt(cast.ToInt64(x)), true
	case uint, uint8, uint16, uint32, uint64:
		return new(big.Int).SetUint64(cast.ToUint64(x)), true
	}
	return nil, false
}

func parseBigInt(s string) (*big.Int, bool) {
	if s == "" || len(s) > maxNumberLength {
		return nil, false
	}
	if n, ok := new(big.Int).SetString(s, 10); ok {
		return n, true
	}
	// Accept "5.0" and "5e2" but not "5.5".
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, false
	}
	if d.IsZero() {
		return new(big.Int), true
	}
	if !withinDigits(d, maxIntegerDigits, 0) || !d.IsInteger() {
		return nil, false
	}
	return d.BigInt(), true
}

const (
	// maxIntegerDigits is the length of the largest uint64.
	maxIntegerDigits = 20
	// maxUnboundedDigits caps both sides of the point for decimals
	// declared without a precision.
	maxUnboundedDigits = 1000
	// maxNumberLength bounds numeric text before it is parsed.
	maxNumberLength = 2*maxUnboundedDigits + 16
)

// withinDigits reports whether d fits maxInt integer digits without
// significant digits past maxFrac fractional places. Only the coefficient
// length and the exponent are read, so 1e99999999 is never expanded. The
// fractional bound is loose; callers still compare against a truncation.
func withinDigits(d decimal.Decimal, maxInt, maxFrac int) bool {
	if d.IsZero() {
		return true
	}
	digits := int64(d.NumDigits())
	exp := int64(d.Exponent())
	if digits+exp > int64(maxInt) {
		return false
	}
	return -exp <= digits+int64(maxFrac)
}

func floatToBigInt(f float64) (*big.Int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false
	}
	n, _ := big.NewFloat(f).Int(nil)
	return n, true
}

func floatRule(_ schema.FieldType, v any) (any, bool) {
	var (
		f   float64
		err error
	)
	switch x := v.(type) {
	case json.Number:
		f, err = x.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	case bool:
		return nil, false
	default:
		if !isScalar(v) {
			return nil, false
		}
		f, err = cast.ToFloat64E(v)
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return f, true
}

func decimalRule(t schema.FieldType, v any) (any, bool) {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case json.Number:
		d, err = parseDecimal(x.String())
	case string:
		d, err = parseDecimal(strings.TrimSpace(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
		d = decimal.NewFromFloat(x)
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		d, err = decimal.NewFromString(cast.ToString(x))
	default:
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	if d.IsZero() {
		d = decimal.Zero
	}

	if t.Precision == 0 {
		if !withinDigits(d, maxUnboundedDigits, maxUnboundedDigits) {
			return nil, false
		}
		return d.String(), true
	}
	if !withinDigits(d, t.Precision-t.Scale, t.Scale) {
		return nil, false
	}
	scale := int32(t.Scale)
	if !d.Equal(d.Truncate(scale)) {
		return nil, false
	}
	return d.StringFixed(scale), true
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if len(s) > maxNumberLength {
		return decimal.Decimal{}, errors.New("number too long")
	}
	return decimal.NewFromString(s)
}

func booleanRule(_ schema.FieldType, v any) (any, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	case json.Number:
		switch x.String() {
		case "0":
			return false, true
		case "1":
			return true, true
		}
		return nil, false
	case float64:
		if x == 0 || x == 1 {
			return x == 1, true
		}
		return nil, false
	case int, int64:
		n := cast.ToInt64(x)
		if n == 0 || n == 1 {
			return n == 1, true
		}
		return nil, false
	}
	return nil, false
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	timeLayout     = "15:04:05"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	dateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	dateLayout,
}

func dateRule(_ schema.FieldType, v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return d.Format(dateLayout), true
}

func dateTimeRule(_ schema.FieldType, v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return nil, false
}

func timeRule(_ schema.FieldType, v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{timeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(timeLayout), true
		}
	}
	return nil, false
}

func enumRule(t schema.FieldType, v any) (any, bool) {
	if !isScalar(v) {
		return nil, false
	}
	if n, ok := v.(json.Number); ok {
		v = n.String()
	}
	s, err := cast.ToStringE(v)
	if err != nil || !slices.Contains(t.Values, s) {
		return nil, false
	}
	return s, true
}
