package proto

import (
	"bufio"
	"io"
	"testing"
)

func TestWriterTemplates(t *testing.T) {
	client, server := pipe(t)
	read := bufio.NewReader(server)
	w := NewWriter(client, SQLTemplate)

	go func() { _ = w.WriteQuery("select 1") }()
	got, _ := read.ReadString(';')
	if got != "sselect 1\n;" {
		t.Errorf("sql template: got %q", got)
	}

	w.SetTemplate(MALTemplate)
	go func() { _ = w.WriteQuery("io.print(1)") }()
	got, _ = read.ReadString('\n')
	if got != "io.print(1);\n" {
		t.Errorf("mal template: got %q", got)
	}

	go func() { _ = w.WriteControl("reply_size 100") }()
	buf := make([]byte, len("Xreply_size 100"))
	if _, err := io.ReadFull(read, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "Xreply_size 100" {
		t.Errorf("control template: got %q", buf)
	}
}
