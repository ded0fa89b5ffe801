package funding

import (
	"math/big"
	"testing"
)

func TestParseFixed(t *testing.T) {
	cases := []struct {
		input    string
		decimals uint8
		want     string
	}{
		{"0.4", 18, "400000000000000000"},
		{"0.005", 18, "5000000000000000"},
		{"50000", 18, "50000000000000000000000"},
		{"1.5", 6, "1500000"},
		{" 2 ", 0, "2"},
	}
	for _, tc := range cases {
		got, err := ParseFixed(tc.input, tc.decimals)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.input, err)
		}
		if got.String() != tc.want {
			t.Fatalf("parse %q: got %s want %s", tc.input, got, tc.want)
		}
	}
}

func TestParseFixedRejects(t *testing.T) {
	for _, input := range []string{"", "abc", "-1", "0.0000001", "3/4", "1/1"} {
		if _, err := ParseFixed(input, 6); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestRescale(t *testing.T) {
	answer := big.NewInt(250012345678) // 2500.12345678 with 8 decimals
	up := Rescale(answer, 8, 18)
	if up.String() != "2500123456780000000000" {
		t.Fatalf("rescale up: %s", up)
	}
	down := Rescale(up, 18, 6)
	if down.String() != "2500123456" {
		t.Fatalf("rescale down: %s", down)
	}
	same := Rescale(answer, 8, 8)
	if same.Cmp(answer) != 0 || same == answer {
		t.Fatalf("rescale same must copy the value")
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(big.NewInt(-1500000), 6); got != "-1.500000" {
		t.Fatalf("format: %s", got)
	}
	if got := FormatAmount(nil, 18); got != "0" {
		t.Fatalf("format nil: %s", got)
	}
	if got := FormatAmount(big.NewInt(42), 0); got != "42" {
		t.Fatalf("format zero decimals: %s", got)
	}
}
