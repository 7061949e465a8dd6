package mapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MonetDB/monetdb-go/mapi/internal/proto"
)

// Kind classifies the errors this driver core can raise (spec §7).
type Kind int

const (
	// KindConnection covers network failures, handshake failures, socket
	// timeouts and unexpected EOF. Fatal: closes the session.
	KindConnection Kind = iota
	// KindAuth covers credential rejection at open time. Fatal at open time.
	KindAuth
	// KindProtocol covers malformed headers, truncated quoted strings and
	// unknown line types. Fatal to the current call only.
	KindProtocol
	// KindSQL covers server-reported errors carrying a SQLSTATE.
	KindSQL
	// KindDataConversion covers literalizer rejections.
	KindDataConversion
	// KindAPIMisuse covers missing parameters, use of closed resources and
	// unsupported features.
	KindAPIMisuse
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindAuth:
		return "auth"
	case KindProtocol:
		return "protocol"
	case KindSQL:
		return "sql"
	case KindDataConversion:
		return "data-conversion"
	case KindAPIMisuse:
		return "api-misuse"
	default:
		return "unknown"
	}
}

// driver-generated SQLSTATE classes (spec §7: "driver-generated local
// errors using class M0M/M1M").
const (
	sqlStateLocalProtocol = "M0M03"
	sqlStateLocalMisuse   = "M1M05"
	sqlStateLocalConn     = "M0M10"
	sqlStateDataConv      = "22M29"
)

// Error is the error type raised by this module. Every error carries a
// SQLSTATE: the driver-generated class for local errors, or the server's
// own SQLSTATE for Kind == KindSQL.
type Error struct {
	Kind     Kind
	SQLState string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("%s: %s [%s]", e.Kind, e.Message, e.SQLState)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, sqlState, msg string, cause error) *Error {
	return &Error{Kind: kind, SQLState: sqlState, Message: msg, cause: cause}
}

func connErr(msg string, cause error) *Error {
	if errors.Is(cause, proto.ErrConnTimeout) {
		cause = fmt.Errorf("%w: %w", ErrTimeout, cause)
	}
	return newErr(KindConnection, sqlStateLocalConn, msg, cause)
}

func authErr(msg string, cause error) *Error {
	return newErr(KindAuth, "28000", msg, cause)
}

func protocolErr(msg string, cause error) *Error {
	return newErr(KindProtocol, sqlStateLocalProtocol, msg, cause)
}

func misuseErr(msg string) *Error {
	return newErr(KindAPIMisuse, sqlStateLocalMisuse, msg, nil)
}

func dataConversionErr(msg string, cause error) *Error {
	return newErr(KindDataConversion, sqlStateDataConv, msg, cause)
}

// ErrClosed is returned (wrapped) by every operation attempted against a
// session after it has been closed, except for idempotent Close calls and
// status checks. A closed Statement, PreparedStatement or ResultSet
// reports a KindAPIMisuse *Error instead.
var ErrClosed = errors.New("mapi: session closed")

// ErrTimeout is returned (wrapped) when a socket operation exceeds the
// session's configured timeout; the session transitions to closed.
var ErrTimeout = errors.New("mapi: connection timeout")

// SQLError is a single server-reported error: a 5-character SQLSTATE and a
// message (spec §4.5 step 5, §7).
type SQLError struct {
	SQLState string
	Message  string
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("%s: %s", e.SQLState, e.Message)
}

// SQLErrors chains every error line seen during one server turn (spec
// §4.5 step 5: "first has its SQLSTATE parsed ... subsequent ones become
// connection errors"). The first element takes its SQLSTATE from the
// first five characters of the first line (when that line is at least six
// characters long); every later element carries the driver's connection
// class.
type SQLErrors struct {
	Errors []*SQLError
}

func (e *SQLErrors) Error() string {
	parts := make([]string, len(e.Errors))
	for i, se := range e.Errors {
		parts[i] = se.Error()
	}
	return strings.Join(parts, "; ")
}

// Kind reports KindSQL so callers can type-switch generically.
func (e *SQLErrors) Kind() Kind { return KindSQL }

// newSQLErrors builds a chained error from the raw lines accumulated
// during a server turn, per spec §4.5 step 5: the first line has its
// SQLSTATE parsed from chars 0..4 and message from char 6 on; subsequent
// lines become connection-class errors.
func newSQLErrors(raw string) *SQLErrors {
	lines := strings.Split(raw, "\n")
	out := &SQLErrors{}
	for i, line := range lines {
		if line == "" {
			continue
		}
		if i == 0 && len(line) >= 6 {
			out.Errors = append(out.Errors, &SQLError{SQLState: line[0:5], Message: line[6:]})
			continue
		}
		out.Errors = append(out.Errors, &SQLError{SQLState: sqlStateLocalConn, Message: line})
	}
	return out
}
