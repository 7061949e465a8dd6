package mapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/MonetDB/monetdb-go/mapi/internal/proto"
)

// PreparedStatement is a server-side prepared statement (spec §3
// "PreparedStatement", §4.7 "Prepared-statement engine").
type PreparedStatement struct {
	session *Session
	id      int64

	resultCols []ColumnMeta
	params     []ColumnMeta
	values     []string

	closed bool
}

func isNullLiteral(s string) bool { return s == "NULL" }

// Prepare sends `prepare <text>` with the fetch size temporarily raised
// to unlimited, so every descriptor row lands in a single block (spec
// §4.7: "temporarily raise fetch size to read all descriptor rows in
// one block"). The raise is undone by restoreDefaultReplySize on every
// exit path after the prepare turn, including a failed one (spec §4.7/§9).
func Prepare(ctx context.Context, s *Session, text string) (ps *PreparedStatement, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if restoreErr := s.restoreDefaultReplySize(); restoreErr != nil && err == nil {
			ps, err = nil, restoreErr
		}
	}()
	list, err := s.runTurn(-1, func() error { return s.writer.WriteQuery("prepare " + text) })
	if err != nil {
		return nil, err
	}

	var desc *ResultSet
	for _, r := range list.Responses {
		if rs, ok := r.(*ResultSet); ok && rs.header.Tag == proto.TagPrepare {
			desc = rs
			break
		}
	}
	if desc == nil {
		return nil, protocolErr("prepare did not return a descriptor result", nil)
	}

	ps = &PreparedStatement{session: s, id: desc.id}
	if err := ps.loadDescriptor(desc); err != nil {
		return nil, err
	}

	// the descriptor result and the prepared statement share an id; drop
	// the descriptor's registry entry without sending Xclose, which would
	// release the prepared statement itself.
	s.mu.Lock()
	if s.openResults != nil {
		delete(s.openResults, desc.id)
	}
	s.mu.Unlock()
	desc.closed = true

	return ps, nil
}

// loadDescriptor splits the prepare descriptor's rows at the first row
// whose "column" attribute is NULL: everything before is a result-column
// descriptor, everything from there on is a parameter descriptor (spec
// §4.7 "descriptor split at first null-column row").
func (ps *PreparedStatement) loadDescriptor(rs *ResultSet) error {
	idx := make(map[string]int, len(rs.cols))
	for i, c := range rs.Columns() {
		idx[c.Name] = i
	}
	for _, want := range []string{"column", "type", "digits", "scale", "table"} {
		if _, ok := idx[want]; !ok {
			return protocolErr(fmt.Sprintf("prepare descriptor missing %q column", want), nil)
		}
	}

	seenNull := false
	for i := int64(0); i < rs.tuples; i++ {
		row, err := rs.GetRow(i)
		if err != nil {
			return err
		}
		column := row[idx["column"]]
		if !seenNull && isNullLiteral(column) {
			seenNull = true
		}
		meta := ColumnMeta{
			SQLType:   row[idx["type"]],
			TableName: row[idx["table"]],
			Column:    column,
			Name:      column,
		}
		fmt.Sscanf(row[idx["digits"]], "%d", &meta.Precision)
		fmt.Sscanf(row[idx["scale"]], "%d", &meta.Scale)

		if !seenNull {
			ps.resultCols = append(ps.resultCols, meta)
		} else {
			ps.params = append(ps.params, meta)
		}
	}
	ps.values = make([]string, len(ps.params))
	return nil
}

// ParamCount returns the number of bind slots this statement expects.
func (ps *PreparedStatement) ParamCount() int { return len(ps.params) }

// Params returns the parameter descriptors, in bind-slot order.
func (ps *PreparedStatement) Params() []ColumnMeta { return ps.params }

// ResultColumns returns the descriptors of the columns a subsequent
// Execute's ResultSet will carry, if the prepared text is a query.
func (ps *PreparedStatement) ResultColumns() []ColumnMeta { return ps.resultCols }

// SetParam stores the SQL literal for bind slot i (spec §4.8 for how
// literals for host values are produced). literal must already be a
// valid SQL literal for the slot's declared type.
func (ps *PreparedStatement) SetParam(i int, literal string) error {
	if ps.closed {
		return misuseErr("mapi: prepared statement closed")
	}
	if i < 0 || i >= len(ps.params) {
		return misuseErr(fmt.Sprintf("mapi: parameter index %d out of range (0..%d)", i, len(ps.params)-1))
	}
	ps.values[i] = literal
	return nil
}

// Execute re-invokes the prepared statement as `exec id(v1,v2,...)`
// (spec §4.7) and returns a Statement positioned at its response
// sequence. Every bind slot must have been set; bound values persist
// across Execute calls until overwritten.
func (ps *PreparedStatement) Execute(ctx context.Context) (*Statement, error) {
	if ps.closed {
		return nil, misuseErr("mapi: prepared statement closed")
	}
	for i, v := range ps.values {
		if v == "" {
			return nil, misuseErr(fmt.Sprintf("mapi: parameter %d not set", i))
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "exec %d(", ps.id)
	sb.WriteString(strings.Join(ps.values, ","))
	sb.WriteString(")")

	st := NewStatement(ps.session)
	if err := st.Execute(ctx, sb.String()); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// Close releases the server-side prepared statement (spec §4.7
// "Xrelease"). Idempotent.
func (ps *PreparedStatement) Close() error {
	if ps.closed {
		return nil
	}
	ps.closed = true
	_, err := ps.session.runTurn(0, func() error {
		return ps.session.writer.WriteControl(fmt.Sprintf("release %d", ps.id))
	})
	return err
}
