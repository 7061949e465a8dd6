package proto

import (
	"testing"
	"time"
)

// fakeTableResponse is a minimal Response used to test RunTurn without
// depending on the mapi package's ResultSet.
type fakeTableResponse struct {
	header     *Header
	headerAttr []string
	rows       [][]string
	wantRows   int
}

func (r *fakeTableResponse) Header() *Header          { return r.header }
func (r *fakeTableResponse) WantsHeaderLine() bool     { return len(r.headerAttr) < 2 }
func (r *fakeTableResponse) WantsRow() bool            { return len(r.rows) < r.wantRows }
func (r *fakeTableResponse) AddHeaderLine(hl *HeaderLine) error {
	r.headerAttr = append(r.headerAttr, hl.Attr)
	return nil
}
func (r *fakeTableResponse) AddRow(line string) error {
	fields, err := ParseRowLine(line)
	if err != nil {
		return err
	}
	r.rows = append(r.rows, fields)
	return nil
}

type fakeBuilder struct{ built []*fakeTableResponse }

func (b *fakeBuilder) Build(h *Header) (Response, error) {
	r := &fakeTableResponse{header: h, wantRows: int(h.RowCount)}
	b.built = append(b.built, r)
	return r, nil
}

type emptyRegistry struct{}

func (emptyRegistry) Lookup(int64) (BlockTarget, bool) { return nil, false }

type noopTransfer struct{}

func (noopTransfer) HandleTransfer(*LineReader, *Writer, *TransferCommand) error { return nil }

func TestRunTurnTableResponse(t *testing.T) {
	client, server := pipe(t)
	lr := NewLineReader(client, time.Second)

	go func() {
		server.Write([]byte("&1 7 2 2 2\n"))
		server.Write([]byte("% a,\tb\t# table_name\n"))
		server.Write([]byte("% x,\ty\t# name\n"))
		server.Write([]byte("[ 1,\t2 ]\n"))
		server.Write([]byte("[ 3,\t4 ]\n"))
		server.Write([]byte("^\n"))
	}()

	builder := &fakeBuilder{}
	list, raw, err := RunTurn(lr, nil, emptyRegistry{}, builder, noopTransfer{})
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if raw != "" {
		t.Errorf("unexpected error text: %q", raw)
	}
	if len(list.Responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(list.Responses))
	}
	resp := list.Responses[0].(*fakeTableResponse)
	if len(resp.rows) != 2 || resp.rows[0][0] != "1" || resp.rows[1][1] != "4" {
		t.Errorf("got rows %v", resp.rows)
	}
}

func TestRunTurnCollectsErrorLines(t *testing.T) {
	client, server := pipe(t)
	lr := NewLineReader(client, time.Second)

	go func() {
		server.Write([]byte("!42000!syntax error\n"))
		server.Write([]byte("^\n"))
	}()

	_, raw, err := RunTurn(lr, nil, emptyRegistry{}, &fakeBuilder{}, noopTransfer{})
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if raw != "42000!syntax error" {
		t.Errorf("got %q", raw)
	}
}

func TestRunTurnInfoLinesBecomeWarnings(t *testing.T) {
	client, server := pipe(t)
	lr := NewLineReader(client, time.Second)

	go func() {
		server.Write([]byte("#some warning\n"))
		server.Write([]byte("^\n"))
	}()

	list, _, err := RunTurn(lr, nil, emptyRegistry{}, &fakeBuilder{}, noopTransfer{})
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if len(list.Warnings) != 1 || list.Warnings[0] != "some warning" {
		t.Errorf("got %v", list.Warnings)
	}
}
