// Package qstring decodes the MAPI server's C-style quoted strings, as
// found in "%"-prefixed header metadata lines (spec §4.9).
//
// Escapes recognized: \\, \", \f, \n, \r, \t, and three-digit octal \NNN
// (first digit 0-3, remaining two digits 0-7).
package qstring

import "fmt"

// ParseError reports a malformed quoted string, with the byte offset (into
// the input passed to Parse) where the problem was detected.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("qstring: %s at offset %d", e.Msg, e.Offset)
}

// Parse decodes a double-quoted, escaped string starting at s[0] (which
// must be '"'). It returns the decoded value and the number of bytes of s
// consumed, including both surrounding quotes.
//
// The happy path (no backslash escapes) returns a substring of s without
// copying; a backslash forces a growing buffer to be materialized (spec
// §9 "Quoted-string parser lazy-allocation").
func Parse(s string) (string, int, error) {
	if len(s) == 0 || s[0] != '"' {
		return "", 0, &ParseError{Offset: 0, Msg: "expected opening quote"}
	}

	i := 1
	hasEscape := false
	for i < len(s) {
		switch s[i] {
		case '"':
			if !hasEscape {
				return s[1:i], i + 1, nil
			}
			return decodeEscaped(s[1:i]), i + 1, nil
		case '\\':
			hasEscape = true
			n, err := escapeLen(s, i)
			if err != nil {
				return "", 0, err
			}
			i += n
		default:
			i++
		}
	}
	return "", 0, &ParseError{Offset: len(s), Msg: "unterminated quoted string"}
}

// escapeLen returns the number of bytes the escape sequence starting at
// s[i] (s[i] == '\\') occupies, validating it without decoding.
func escapeLen(s string, i int) (int, error) {
	if i+1 >= len(s) {
		return 0, &ParseError{Offset: i, Msg: "truncated escape sequence"}
	}
	switch s[i+1] {
	case '\\', '"', 'f', 'n', 'r', 't':
		return 2, nil
	case '0', '1', '2', '3':
		if i+3 >= len(s) {
			return 0, &ParseError{Offset: i, Msg: "truncated octal escape"}
		}
		d1, d2 := s[i+2], s[i+3]
		if d1 < '0' || d1 > '7' || d2 < '0' || d2 > '7' {
			return 0, &ParseError{Offset: i, Msg: "invalid octal escape"}
		}
		return 4, nil
	default:
		return 0, &ParseError{Offset: i, Msg: fmt.Sprintf("invalid escape character %q", s[i+1])}
	}
}

func decodeEscaped(body string) string {
	buf := make([]byte, 0, len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			buf = append(buf, c)
			i++
			continue
		}
		switch body[i+1] {
		case '\\':
			buf = append(buf, '\\')
			i += 2
		case '"':
			buf = append(buf, '"')
			i += 2
		case 'f':
			buf = append(buf, '\f')
			i += 2
		case 'n':
			buf = append(buf, '\n')
			i += 2
		case 'r':
			buf = append(buf, '\r')
			i += 2
		case 't':
			buf = append(buf, '\t')
			i += 2
		default:
			// three-digit octal, already validated by escapeLen
			v := (int(body[i+1]-'0') << 6) | (int(body[i+2]-'0') << 3) | int(body[i+3]-'0')
			buf = append(buf, byte(v))
			i += 4
		}
	}
	return string(buf)
}
