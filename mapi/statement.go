package mapi

import (
	"context"

	"github.com/MonetDB/monetdb-go/mapi/internal/proto"
)

// Statement executes text against a Session and walks the resulting
// heterogeneous response sequence (spec §3 "Statement", §9 "Heterogeneous
// Response sequence").
type Statement struct {
	session *Session
	maxRows int

	list *proto.ResponseList
	pos  int

	closed bool
}

// NewStatement creates a Statement bound to s. The session weakly tracks
// it so Session.Close can cascade (spec §3 "Ownership").
func NewStatement(s *Session) *Statement {
	st := &Statement{session: s}
	s.mu.Lock()
	if s.statements != nil {
		s.statements[st] = struct{}{}
	}
	s.mu.Unlock()
	return st
}

// SetMaxRows caps the number of rows a subsequent Execute's result sets
// will fetch per the server default fetch size; 0 restores the session
// default, -1 requests no cap (spec §4.5 step 2).
func (st *Statement) SetMaxRows(n int) { st.maxRows = n }

// Execute submits text as a single query turn (spec §4.5). Any
// previously walked response list is discarded.
func (st *Statement) Execute(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st.closed {
		return misuseErr("mapi: statement closed")
	}
	want := effectiveReplySize(0, st.maxRows, st.session.defaultReplySize)
	list, err := st.session.runTurn(want, func() error { return st.session.writer.WriteQuery(text) })
	st.list = list
	st.pos = 0
	return err
}

// NextResult advances to the next response in the sequence, returning
// false once exhausted (spec §3 "next_result").
func (st *Statement) NextResult() bool {
	if st.list == nil || st.pos >= len(st.list.Responses) {
		return false
	}
	st.pos++
	return true
}

func (st *Statement) current() proto.Response {
	if st.list == nil || st.pos == 0 || st.pos > len(st.list.Responses) {
		return nil
	}
	return st.list.Responses[st.pos-1]
}

// UpdateCount returns the affected-row count of the current response, if
// it is an update response (spec §3 "update_count").
func (st *Statement) UpdateCount() (int64, bool) {
	if u, ok := st.current().(*updateResponse); ok {
		return u.Affected(), true
	}
	return 0, false
}

// LastInsertID returns the generated key of the current response's last
// inserted row, if any.
func (st *Statement) LastInsertID() (int64, bool) {
	if u, ok := st.current().(*updateResponse); ok {
		return u.LastInsertID(), true
	}
	return 0, false
}

// ResultSet returns the current response as a ResultSet, if it is one
// (spec §3 "result_set").
func (st *Statement) ResultSet() (*ResultSet, bool) {
	rs, ok := st.current().(*ResultSet)
	return rs, ok
}

// Warnings returns the info lines accumulated by the statement's most
// recent Execute call.
func (st *Statement) Warnings() []string {
	if st.list == nil {
		return nil
	}
	return st.list.Warnings
}

// Close releases the statement and any still-open result sets it
// produced. Idempotent.
func (st *Statement) Close() error {
	st.session.mu.Lock()
	defer st.session.mu.Unlock()
	return st.closeLocked()
}

// closeLocked assumes the caller already holds session.mu (used by
// Session.Close's cascade).
func (st *Statement) closeLocked() error {
	if st.closed {
		return nil
	}
	st.closed = true
	if st.session.statements != nil {
		delete(st.session.statements, st)
	}
	if st.list != nil {
		for _, r := range st.list.Responses {
			if rs, ok := r.(*ResultSet); ok {
				rs.closed = true
				if st.session.openResults != nil {
					delete(st.session.openResults, rs.id)
				}
			}
		}
	}
	return nil
}
