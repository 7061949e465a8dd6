package proto

import (
	"reflect"
	"testing"
)

func TestParseRowLine(t *testing.T) {
	fields, err := ParseRowLine("[ 1,\tNULL,\t\"a,b\" ]")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1", "NULL", "a,b"}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("got %v, want %v", fields, want)
	}
}

func TestParseRowLineRejectsNonRowLine(t *testing.T) {
	if _, err := ParseRowLine("% a # name"); err == nil {
		t.Fatal("expected error")
	}
}
