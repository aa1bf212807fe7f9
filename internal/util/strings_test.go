package util

import "testing"

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"needs truncation", "hello world", 8, "hello..."},
		{"tiny max", "hello", 3, "..."},
		{"multibyte runes", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("hello", 3); got != "hel" {
		t.Errorf("TruncateRunes = %q, want %q", got, "hel")
	}
	if got := TruncateRunes("héllo", 2); got != "hé" {
		t.Errorf("TruncateRunes = %q, want %q", got, "hé")
	}
	if got := TruncateRunes("hi", 10); got != "hi" {
		t.Errorf("TruncateRunes = %q, want %q", got, "hi")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0.1, 1.0, 0.5},
		{-2, 0.1, 1.0, 0.1},
		{3, 0.1, 1.0, 1.0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestContainsAny(t *testing.T) {
	if !ContainsAny("according to the study", []string{"study", "report"}) {
		t.Error("ContainsAny should match 'study'")
	}
	if ContainsAny("nothing here", []string{"study", "report"}) {
		t.Error("ContainsAny should not match")
	}
}
