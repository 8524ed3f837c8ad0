package xlsx

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	c := NewCodec()
	header := []string{"name", "phone_number", "business", "prompt"}
	rows := [][]any{
		{"Ana", "+5511999998888", "Acme", "script"},
		{"Bia", "+14155552671", "Beta & Co", "outro"},
	}

	data, err := c.Encode("Processed Data", header, rows)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("Encode() did not produce a zip container")
	}

	grid, err := c.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := [][]string{
		header,
		{"Ana", "+5511999998888", "Acme", "script"},
		{"Bia", "+14155552671", "Beta & Co", "outro"},
	}
	if !reflect.DeepEqual(grid, want) {
		t.Errorf("Decode() = %q, want %q", grid, want)
	}
}

func TestCodec_DecodeRejectsNonWorkbook(t *testing.T) {
	_, err := NewCodec().Decode(strings.NewReader("razao_social,nome_socio\n"))
	if err == nil {
		t.Error("Decode() of plain text succeeded")
	}
}
