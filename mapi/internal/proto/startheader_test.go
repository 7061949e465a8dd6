package proto

import "testing"

func TestParseStartOfHeaderTable(t *testing.T) {
	h, err := ParseStartOfHeader("&1 7 10000 3 250")
	if err != nil {
		t.Fatal(err)
	}
	if h.Tag != TagTable || h.ID != 7 || h.Tuples != 10000 || h.Columns != 3 || h.RowCount != 250 {
		t.Errorf("got %+v", h)
	}
}

func TestParseStartOfHeaderUpdate(t *testing.T) {
	h, err := ParseStartOfHeader("&2 1 42")
	if err != nil {
		t.Fatal(err)
	}
	if h.Tag != TagUpdate || h.Affected != 1 || h.LastID != 42 {
		t.Errorf("got %+v", h)
	}
}

func TestParseStartOfHeaderTrans(t *testing.T) {
	h, err := ParseStartOfHeader("&4 t")
	if err != nil {
		t.Fatal(err)
	}
	if !h.AutoCommit {
		t.Error("expected autocommit true")
	}
	h, err = ParseStartOfHeader("&4 f")
	if err != nil {
		t.Fatal(err)
	}
	if h.AutoCommit {
		t.Error("expected autocommit false")
	}
}

func TestParseStartOfHeaderBlock(t *testing.T) {
	h, err := ParseStartOfHeader("&6 7 3 250 250")
	if err != nil {
		t.Fatal(err)
	}
	if h.Tag != TagBlock || h.ID != 7 || h.Columns != 3 || h.RowCount != 250 || h.Offset != 250 {
		t.Errorf("got %+v", h)
	}
}

func TestParseStartOfHeaderRejectsShortTable(t *testing.T) {
	if _, err := ParseStartOfHeader("&1 7 10000"); err == nil {
		t.Fatal("expected error for short table header")
	}
}

func TestParseStartOfHeaderRejectsNonHeader(t *testing.T) {
	if _, err := ParseStartOfHeader("not a header"); err == nil {
		t.Fatal("expected error")
	}
}
