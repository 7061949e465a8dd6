package proto

import (
	"strings"

	"github.com/MonetDB/monetdb-go/mapi/internal/qstring"
)

// SplitFields tokenizes a comma-separated field list the way the server
// emits it in both header (`%`) and row (`[`) lines: fields are separated
// by "," (any surrounding whitespace/tabs are trimmed), except inside a
// double-quoted field, where qstring escaping and embedded commas must be
// respected.
func SplitFields(s string) []string {
	var out []string
	i := 0
	n := len(s)
	for i < n {
		for i < n && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}
		if s[i] == '"' {
			val, consumed, err := qstring.Parse(s[i:])
			if err != nil {
				// fall back to raw scanning up to the next comma
				start := i
				for i < n && s[i] != ',' {
					i++
				}
				out = append(out, strings.TrimSpace(s[start:i]))
			} else {
				out = append(out, val)
				i += consumed
			}
			i = skipToComma(s, i)
			continue
		}
		start := i
		for i < n && s[i] != ',' {
			i++
		}
		out = append(out, strings.TrimSpace(s[start:i]))
		i = skipToComma(s, i)
	}
	return out
}

func skipToComma(s string, i int) int {
	n := len(s)
	for i < n && s[i] != ',' {
		i++
	}
	if i < n {
		i++ // skip the comma itself
	}
	return i
}
