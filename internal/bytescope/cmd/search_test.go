package cmd

import (
	"bytes"
	"testing"
)

func TestParsePatternHex(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"7f454c46", []byte{0x7F, 0x45, 0x4C, 0x46}},
		{"7f 45 4c 46", []byte{0x7F, 0x45, 0x4C, 0x46}},
		{"DE:AD:BE:EF", []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{"00", []byte{0x00}},
	}
	for _, tt := range tests {
		got, err := parsePattern(tt.in, "")
		if err != nil {
			t.Errorf("parsePattern(%q): %v", tt.in, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("parsePattern(%q) = %x, want %x", tt.in, got, tt.want)
		}
	}
}

func TestParsePatternText(t *testing.T) {
	got, err := parsePattern("", "MZ")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("MZ")) {
		t.Fatalf("got %q", got)
	}
}

func TestParsePatternErrors(t *testing.T) {
	if _, err := parsePattern("", ""); err == nil {
		t.Error("no pattern accepted")
	}
	if _, err := parsePattern("ff", "x"); err == nil {
		t.Error("both flags accepted")
	}
	if _, err := parsePattern("zz", ""); err == nil {
		t.Error("invalid hex accepted")
	}
	if _, err := parsePattern("f", ""); err == nil {
		t.Error("odd-length hex accepted")
	}
}
