package mapi

import (
	"context"
	"strconv"
	"testing"

	"github.com/MonetDB/monetdb-go/mapi/mapitest"
)

func newTestSession(t *testing.T, script mapitest.Script) (*Session, *mapitest.Server) {
	t.Helper()
	srv, err := mapitest.New(script)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { srv.Close() })

	host, port := srv.HostPort()
	portNum, err := strconv.Atoi(port)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &Config{Host: host, Port: portNum, Language: LangSQL, FetchSize: DefaultReplySize}

	s, err := NewSession(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, srv
}

func TestSessionExecuteUpdate(t *testing.T) {
	s, _ := newTestSession(t, mapitest.Script{
		"delete from t": {Lines: []string{"&2 3 0"}},
	})

	st := NewStatement(s)
	defer st.Close()
	if err := st.Execute(context.Background(), "delete from t"); err != nil {
		t.Fatal(err)
	}
	if !st.NextResult() {
		t.Fatal("expected one response")
	}
	n, ok := st.UpdateCount()
	if !ok || n != 3 {
		t.Errorf("got %d, %v, want 3, true", n, ok)
	}
}

func TestSessionExecuteResultSet(t *testing.T) {
	s, _ := newTestSession(t, mapitest.Script{
		"select * from t": {Lines: []string{
			"&1 99 7 2 2",
			"% t,\tt\t# table_name",
			"% a,\tb\t# name",
			"% int,\tint\t# type",
			"[ 1,\t10 ]",
			"[ 2,\t20 ]",
		}},
	})

	st := NewStatement(s)
	defer st.Close()
	if err := st.Execute(context.Background(), "select * from t"); err != nil {
		t.Fatal(err)
	}
	if !st.NextResult() {
		t.Fatal("expected one response")
	}
	rs, ok := st.ResultSet()
	if !ok {
		t.Fatal("expected a result set")
	}
	if rs.RowCount() != 7 {
		t.Errorf("rowcount = %d, want 7", rs.RowCount())
	}
	cols := rs.Columns()
	if len(cols) != 2 || cols[0].Name != "a" || cols[1].SQLType != "int" {
		t.Errorf("got cols %+v", cols)
	}
	row, err := rs.GetRow(1)
	if err != nil {
		t.Fatal(err)
	}
	if row[0] != "2" || row[1] != "20" {
		t.Errorf("got row %v", row)
	}
}

func TestSessionExecuteSyntaxError(t *testing.T) {
	s, _ := newTestSession(t, mapitest.Script{})

	st := NewStatement(s)
	defer st.Close()
	err := st.Execute(context.Background(), "bogus sql")
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	s, _ := newTestSession(t, mapitest.Script{})
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if !s.IsClosed() {
		t.Error("expected session to report closed")
	}
}
