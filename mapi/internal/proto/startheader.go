package proto

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag discriminates the kind of start-of-header line (spec §4.4).
type Tag int

const (
	TagParse   Tag = 0 // prepare-result; never appears at top level of a user query
	TagTable   Tag = 1 // tabular result
	TagUpdate  Tag = 2 // affected-row count + last-insert id
	TagSchema  Tag = 3 // DDL ack, no fields
	TagTrans   Tag = 4 // autocommit toggle
	TagPrepare Tag = 5 // prepare-result rows describing parameters/result columns
	TagBlock   Tag = 6 // data-block continuation
)

// Header is the parsed, typed form of a `&T v1 v2 ...` line.
type Header struct {
	Tag Tag

	// TagTable, TagPrepare
	ID       int64
	Tuples   int64
	Columns  int64
	RowCount int64

	// TagUpdate
	Affected int64
	LastID   int64

	// TagTrans
	AutoCommit bool

	// TagBlock
	Offset int64
}

// ParseStartOfHeader tokenizes a `&T v1 v2 v3 v4 ...` line into a typed
// Header. An invalid first-field token is a protocol error; the caller
// must discard the containing response to the next prompt.
func ParseStartOfHeader(line string) (*Header, error) {
	if len(line) == 0 || line[0] != '&' {
		return nil, fmt.Errorf("proto: not a start-of-header line: %q", line)
	}
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return nil, fmt.Errorf("proto: empty start-of-header line")
	}
	tagNum, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("proto: invalid start-of-header tag %q: %w", fields[0], err)
	}
	tag := Tag(tagNum)
	args := fields[1:]

	h := &Header{Tag: tag}
	switch tag {
	case TagTable, TagPrepare:
		if len(args) < 4 {
			return nil, fmt.Errorf("proto: short %s header: %q", tagName(tag), line)
		}
		h.ID, err = parseInt64(args[0])
		if err != nil {
			return nil, err
		}
		h.Tuples, err = parseInt64(args[1])
		if err != nil {
			return nil, err
		}
		h.Columns, err = parseInt64(args[2])
		if err != nil {
			return nil, err
		}
		h.RowCount, err = parseInt64(args[3])
		if err != nil {
			return nil, err
		}
	case TagUpdate:
		if len(args) < 1 {
			return nil, fmt.Errorf("proto: short update header: %q", line)
		}
		h.Affected, err = parseInt64(args[0])
		if err != nil {
			return nil, err
		}
		if len(args) >= 2 {
			h.LastID, err = parseInt64(args[1])
			if err != nil {
				return nil, err
			}
		}
	case TagSchema:
		// no fields
	case TagTrans:
		if len(args) < 1 {
			return nil, fmt.Errorf("proto: short transaction header: %q", line)
		}
		switch args[0] {
		case "t":
			h.AutoCommit = true
		case "f":
			h.AutoCommit = false
		default:
			return nil, fmt.Errorf("proto: invalid transaction flag %q", args[0])
		}
	case TagBlock:
		if len(args) < 4 {
			return nil, fmt.Errorf("proto: short block header: %q", line)
		}
		h.ID, err = parseInt64(args[0])
		if err != nil {
			return nil, err
		}
		h.Columns, err = parseInt64(args[1])
		if err != nil {
			return nil, err
		}
		h.RowCount, err = parseInt64(args[2])
		if err != nil {
			return nil, err
		}
		h.Offset, err = parseInt64(args[3])
		if err != nil {
			return nil, err
		}
	case TagParse:
		// never a top-level response in this role; nothing to capture
	default:
		return nil, fmt.Errorf("proto: unknown start-of-header tag %d", tagNum)
	}
	return h, nil
}

func parseInt64(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("proto: invalid integer field %q: %w", s, err)
	}
	return n, nil
}

func tagName(t Tag) string {
	switch t {
	case TagParse:
		return "parse"
	case TagTable:
		return "table"
	case TagUpdate:
		return "update"
	case TagSchema:
		return "schema"
	case TagTrans:
		return "trans"
	case TagPrepare:
		return "prepare"
	case TagBlock:
		return "block"
	default:
		return "unknown"
	}
}
