package normalize

import "testing"

func TestPhone(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"(415) 555-1234", "4155551234"},
		{"+1 415 555 1234", "+14155551234"},
		{"415.555.1234", "4155551234"},
		{"1-800-FLOWERS", "18003569377"},
		{"+33 1 42 68 53 00", "+33142685300"},
		{"  ", ""},
		{"+", ""},
		{"ext", "398"},
		{"", ""},
	}
	for _, tt := range tests {
		got := Phone(tt.input)
		if got != tt.want {
			t.Errorf("Phone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMinMatch(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"4155551234", "5551234"},
		{"+14155551234", "5551234"},
		{"5551234", "5551234"},
		{"1234", "1234"},
		{"", ""},
	}
	for _, tt := range tests {
		got := MinMatch(tt.input)
		if got != tt.want {
			t.Errorf("MinMatch(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestE164(t *testing.T) {
	tests := []struct {
		number, country, want string
	}{
		{"4155551234", "US", "+14155551234"},
		{"4155551234", "us", "+14155551234"},
		{"+14155551234", "FR", "+14155551234"}, // already international
		{"142685300", "FR", "+33142685300"},
		{"4155551234", "ZZ", ""}, // unknown country: no E.164 twin
		{"", "US", ""},
	}
	for _, tt := range tests {
		got := E164(tt.number, tt.country)
		if got != tt.want {
			t.Errorf("E164(%q, %q) = %q, want %q", tt.number, tt.country, got, tt.want)
		}
	}
}
