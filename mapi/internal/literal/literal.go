// Package literal converts typed host values into syntactically valid
// SQL literal text, and validates the domain types (inet, url, uuid,
// json) that require it before their literal is ever put on the wire
// (spec §4.8).
package literal

import (
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error is raised for a value that cannot be turned into a valid literal
// for its target type: malformed domain values, or a decimal whose
// rounded precision exceeds the target's.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func errf(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Null is the literal for a nil host value, valid for any target type
// (spec §4.8 "Null: literal NULL regardless of declared target type").
const Null = "NULL"

// Int formats a signed integer literal.
func Int(v int64) string { return strconv.FormatInt(v, 10) }

// Float formats a float/real/double literal in canonical textual form.
func Float(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// Bool formats a boolean literal.
func Bool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Decimal rounds d to scale using HALF_UP and formats it as an unquoted
// literal, after checking the rounded value still fits within
// precision (spec §4.8 "Decimal / numeric").
func Decimal(d decimal.Decimal, precision, scale int) (string, error) {
	rounded := d.Round(int32(scale))
	digits := rounded.NumDigits()
	if digits > precision {
		return "", errf("decimal value %s rounds to %d digits, exceeding target precision %d", d.String(), digits, precision)
	}
	return rounded.StringFixed(int32(scale)), nil
}

// String escapes s for use as a quoted char/varchar/clob literal:
// single quotes are doubled per SQL standard, and backslashes are also
// escaped when the session is in C-style string mode (spec §4.8).
func String(s string, cStyleStrings bool) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			sb.WriteString("''")
		case '\\':
			if cStyleStrings {
				sb.WriteString(`\\`)
			} else {
				sb.WriteRune(r)
			}
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// Blob hex-encodes b and wraps it in a blob literal.
func Blob(b []byte) string {
	return "blob '" + hex.EncodeToString(b) + "'"
}

// BlobFromHex validates that s is well-formed hex before wrapping it in
// a blob literal (used when the host value already arrives hex-encoded).
func BlobFromHex(s string) (string, error) {
	if _, err := hex.DecodeString(s); err != nil {
		return "", errf("invalid hex in blob literal: %v", err)
	}
	return "blob '" + s + "'", nil
}

// Date formats t as a date literal in t's own location.
func Date(t time.Time) string {
	return "date '" + t.Format("2006-01-02") + "'"
}

// Time formats t as a time or timetz literal (spec §4.8: "for timetz
// columns emit timetz 'HH:MM:SS.sss±HH:MM'").
func Time(t time.Time, withZone bool) string {
	if withZone {
		return "timetz '" + t.Format("15:04:05.000-07:00") + "'"
	}
	return "time '" + t.Format("15:04:05.000") + "'"
}

// Timestamp formats t as a timestamp or timestamptz literal.
func Timestamp(t time.Time, withZone bool) string {
	if withZone {
		return "timestamptz '" + t.Format("2006-01-02 15:04:05.000-07:00") + "'"
	}
	return "timestamp '" + t.Format("2006-01-02 15:04:05.000") + "'"
}

// Inet validates s as an IP address or CIDR network and wraps it in an
// inet literal.
func Inet(s string) (string, error) {
	if ip := net.ParseIP(s); ip != nil {
		return "inet '" + s + "'", nil
	}
	if _, _, err := net.ParseCIDR(s); err == nil {
		return "inet '" + s + "'", nil
	}
	return "", errf("invalid inet value %q", s)
}

// URL validates s as an absolute URI and wraps it in a url literal.
func URL(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return "", errf("invalid url value %q", s)
	}
	return "url '" + strings.ReplaceAll(s, "'", "''") + "'", nil
}

// UUID validates s as a UUID and wraps it in a uuid literal.
func UUID(s string) (string, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", errf("invalid uuid value %q: %v", s, err)
	}
	return "uuid '" + s + "'", nil
}

// JSON does a shape check on s (the first and last non-whitespace
// characters must agree on object/array/string/literal/number, per
// spec §4.8) and wraps it in a json literal.
func JSON(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", errf("empty json value")
	}
	if !jsonShapeOK(trimmed) {
		return "", errf("invalid json value %q", s)
	}
	return "json '" + strings.ReplaceAll(s, "'", "''") + "'", nil
}

func jsonShapeOK(s string) bool {
	first, last := s[0], s[len(s)-1]
	switch first {
	case '{':
		return last == '}'
	case '[':
		return last == ']'
	case '"':
		return len(s) >= 2 && last == '"'
	default:
		switch s {
		case "true", "false", "null":
			return true
		}
		// numeric literal: first char is a digit or sign, last is a digit.
		if (first == '-' || (first >= '0' && first <= '9')) && last >= '0' && last <= '9' {
			return true
		}
		return false
	}
}

// XML accepts any string; the server validates XML shape itself (spec
// §4.8 "XML accepts any string (server validates)").
func XML(s string) string {
	return "xml '" + strings.ReplaceAll(s, "'", "''") + "'"
}
