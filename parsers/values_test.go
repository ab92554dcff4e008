package parsers

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want float64
	}{
		{"simple", "1234.56", 1234.56},
		{"comma decimal", "1234,56", 1234.56},
		{"thousands space", "1 234,56", 1234.56},
		{"currency suffix", "1 500,00 DH", 1500.00},
		{"negative", "-250,5", -250.5},
		{"empty", "", 0},
		{"garbage", "abc", 0},
		{"nil", nil, 0},
		{"float cell", 99.9, 99.9},
		{"int cell", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAmount(tt.raw); got != tt.want {
				t.Errorf("ParseAmount(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		raw  interface{}
		want int
	}{
		{"3", 3},
		{"2.0", 2},
		{3.0, 3},
		{"", 0},
		{"abc", 0},
		{nil, 0},
	}

	for _, tt := range tests {
		if got := ParseInt(tt.raw); got != tt.want {
			t.Errorf("ParseInt(%v) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	truthy := []interface{}{"true", "TRUE", "1", "oui", "Oui", "x", true, 1.0}
	for _, raw := range truthy {
		if !ParseBool(raw) {
			t.Errorf("ParseBool(%v) = false, want true", raw)
		}
	}

	falsy := []interface{}{"", "false", "0", "non", nil, 0.0, 2.0}
	for _, raw := range falsy {
		if ParseBool(raw) {
			t.Errorf("ParseBool(%v) = true, want false", raw)
		}
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		raw  interface{}
		want string
	}{
		{"  ACME  ", "ACME"},
		{1024.0, "1024"},
		{12.5, "12.5"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := CellString(tt.raw); got != tt.want {
			t.Errorf("CellString(%v) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
