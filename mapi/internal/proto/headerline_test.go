package proto

import (
	"reflect"
	"testing"
)

func TestParseHeaderLineSimple(t *testing.T) {
	hl, err := ParseHeaderLine("% a,\tb,\tc\t# name")
	if err != nil {
		t.Fatal(err)
	}
	if hl.Attr != "name" {
		t.Errorf("attr = %q", hl.Attr)
	}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(hl.Values, want) {
		t.Errorf("got %v, want %v", hl.Values, want)
	}
}

func TestParseHeaderLineWithQuotedEmbeddedComma(t *testing.T) {
	line := "% \"a,b\",\tplain\t# name"
	hl, err := ParseHeaderLine(line)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a,b", "plain"}
	if !reflect.DeepEqual(hl.Values, want) {
		t.Errorf("got %v, want %v", hl.Values, want)
	}
}

func TestParseHeaderLineRejectsMissingAttr(t *testing.T) {
	if _, err := ParseHeaderLine("% a,b,c"); err == nil {
		t.Fatal("expected error for missing attribute marker")
	}
}

func TestParseHeaderLineRejectsNonHeaderLine(t *testing.T) {
	if _, err := ParseHeaderLine("[ 1 ]"); err == nil {
		t.Fatal("expected error")
	}
}
