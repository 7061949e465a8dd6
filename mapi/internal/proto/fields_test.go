package proto

import (
	"reflect"
	"testing"
)

func TestSplitFieldsPlain(t *testing.T) {
	got := SplitFields("a,\tb,\tc")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSplitFieldsQuotedWithEmbeddedComma(t *testing.T) {
	got := SplitFields(`"a,b",plain,"c\td"`)
	want := []string{"a,b", "plain", "c\td"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSplitFieldsEmpty(t *testing.T) {
	got := SplitFields("")
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
