package proto

import (
	"fmt"
	"strings"
)

// HeaderLine is one parsed `%` metadata line: a row of comma-separated
// values (one per result column), tagged with the attribute they
// describe (spec §4.1 table, §4.4: "Header-line parser ... parses the %
// metadata lines (column name, length, SQL type, table origin, type
// size/scale)").
type HeaderLine struct {
	Attr   string
	Values []string
}

// ParseHeaderLine parses a line of the form
// `% v1,\tv2,\t...\t# attrname`. Values that look like quoted strings
// are decoded with the shared SplitFields tokenizer; plain tokens are
// used verbatim.
func ParseHeaderLine(line string) (*HeaderLine, error) {
	if len(line) == 0 || line[0] != '%' {
		return nil, fmt.Errorf("proto: not a header line: %q", line)
	}
	body := line[1:]

	hashIdx := strings.LastIndex(body, "#")
	if hashIdx < 0 {
		return nil, fmt.Errorf("proto: header line missing attribute marker: %q", line)
	}
	valuesPart := body[:hashIdx]
	attr := strings.TrimSpace(body[hashIdx+1:])

	return &HeaderLine{Attr: attr, Values: SplitFields(valuesPart)}, nil
}
