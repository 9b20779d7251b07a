package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Fort Lauderdale  ", "Fort Lauderdale"},
		{"multiple spaces between words", "3 Nova    Trail", "3 Nova Trail"},
		{"tabs and newlines", "Yearnes\t\nSmith", "Yearnes Smith"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve special characters", " Café & Spa ", "Café & Spa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  EYearnes0@SFGate.com "); got != "eyearnes0@sfgate.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestNormalizeState(t *testing.T) {
	if got := NormalizeState(" fl "); got != "FL" {
		t.Errorf("NormalizeState() = %q", got)
	}
}

func TestNormalizePostalCode(t *testing.T) {
	if got := NormalizePostalCode(" 333 05 "); got != "33305" {
		t.Errorf("NormalizePostalCode() = %q", got)
	}
}
