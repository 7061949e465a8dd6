package proto

import "testing"

func TestParseTransferCommandUploadText(t *testing.T) {
	cmd, err := ParseTransferCommand("r 1 /tmp/data.csv")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Kind != TransferUploadText || cmd.Offset != 1 || cmd.Path != "/tmp/data.csv" {
		t.Errorf("got %+v", cmd)
	}
}

func TestParseTransferCommandUploadBinary(t *testing.T) {
	cmd, err := ParseTransferCommand("rb /tmp/data.bin")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Kind != TransferUploadBinary || cmd.Path != "/tmp/data.bin" {
		t.Errorf("got %+v", cmd)
	}
}

func TestParseTransferCommandDownloadText(t *testing.T) {
	cmd, err := ParseTransferCommand("w /tmp/out.csv")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Kind != TransferDownloadText || cmd.Path != "/tmp/out.csv" {
		t.Errorf("got %+v", cmd)
	}
}

func TestParseTransferCommandPathWithSpaces(t *testing.T) {
	cmd, err := ParseTransferCommand("w /tmp/my file.csv")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Path != "/tmp/my file.csv" {
		t.Errorf("path = %q", cmd.Path)
	}
}

func TestParseTransferCommandUnknown(t *testing.T) {
	if _, err := ParseTransferCommand("zz /tmp/x"); err == nil {
		t.Fatal("expected error")
	}
}
