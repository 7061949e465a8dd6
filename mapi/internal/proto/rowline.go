package proto

import (
	"fmt"
	"strings"
)

// ParseRowLine parses a `[ v1,\tv2,\t... ]` data-row line into its field
// values (spec §6: "Result rows: `[ v1,\tv2,\t… ]`"). Quoted fields are
// decoded; NULL and bare numeric/literal fields are returned verbatim so
// the literalizer/type-mapper layer can interpret them against the
// column's declared SQL type.
func ParseRowLine(line string) ([]string, error) {
	if len(line) == 0 || line[0] != '[' {
		return nil, fmt.Errorf("proto: not a row line: %q", line)
	}
	body := strings.TrimSpace(line[1:])
	body = strings.TrimSuffix(body, "]")
	return SplitFields(body), nil
}
