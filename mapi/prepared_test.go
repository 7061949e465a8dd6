package mapi

import (
	"context"
	"testing"

	"github.com/MonetDB/monetdb-go/mapi/mapitest"
)

func TestPreparedStatementRoundTrip(t *testing.T) {
	s, _ := newTestSession(t, mapitest.Script{
		"reply_size -1": {},
		"prepare select a from t where a = ?": {Lines: []string{
			"&5 42 2 5 2",
			"% t,\tt,\tt,\tt,\tt\t# table_name",
			"% column,\ttype,\tdigits,\tscale,\ttable\t# name",
			"[ a,\tint,\t32,\t0,\tt ]",
			"[ NULL,\tint,\t32,\t0,\tt ]",
		}},
		"reply_size 250": {},
		"exec 42(42)": {Lines: []string{
			"&1 43 1 1 1",
			"% t\t# table_name",
			"% a\t# name",
			"% int\t# type",
			"[ 42 ]",
		}},
	})

	ps, err := Prepare(context.Background(), s, "select a from t where a = ?")
	if err != nil {
		t.Fatal(err)
	}
	defer ps.Close()

	if ps.ParamCount() != 1 {
		t.Fatalf("param count = %d, want 1", ps.ParamCount())
	}
	if len(ps.ResultColumns()) != 1 || ps.ResultColumns()[0].Column != "a" {
		t.Errorf("result columns = %+v", ps.ResultColumns())
	}

	if err := ps.SetParam(0, "42"); err != nil {
		t.Fatal(err)
	}
	st, err := ps.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	if !st.NextResult() {
		t.Fatal("expected one response")
	}
	rs, ok := st.ResultSet()
	if !ok {
		t.Fatal("expected a result set")
	}
	row, err := rs.GetRow(0)
	if err != nil {
		t.Fatal(err)
	}
	if row[0] != "42" {
		t.Errorf("got row %v", row)
	}
}

func TestPreparedStatementRejectsUnsetParam(t *testing.T) {
	s, _ := newTestSession(t, mapitest.Script{
		"reply_size -1": {},
		"prepare select a from t where a = ?": {Lines: []string{
			"&5 42 2 5 2",
			"% t,\tt,\tt,\tt,\tt\t# table_name",
			"% column,\ttype,\tdigits,\tscale,\ttable\t# name",
			"[ a,\tint,\t32,\t0,\tt ]",
			"[ NULL,\tint,\t32,\t0,\tt ]",
		}},
		"reply_size 250": {},
	})

	ps, err := Prepare(context.Background(), s, "select a from t where a = ?")
	if err != nil {
		t.Fatal(err)
	}
	defer ps.Close()

	if _, err := ps.Execute(context.Background()); err == nil {
		t.Fatal("expected an error for unset parameter")
	}
}
