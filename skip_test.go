package autolocale

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want SkipReason
	}{
		{"", SkipEmpty},
		{"   \n\t", SkipEmpty},
		{"42", SkipInteger},
		{"-7", SkipInteger},
		{"https://x.com/a", SkipURL},
		{"  http://example.org  ", SkipURL},
		{"a@b.com", SkipEmail},
		{"RWF 10,000", SkipSymbols},
		{"12.50 USD", SkipSymbols},
		{"+250 788 123 456", SkipSymbols},
		{"***", SkipSymbols},
		{"$9.99", SkipSymbols},
		{"A", SkipTooShort},
		{"é", SkipTooShort},
		{"ID", SkipCode},
		{"SKU42", SkipCode},
		{"N/A", SkipCode},
		{"Hello", SkipNone},
		{"Availability", SkipNone},
		{"Book now", SkipNone},
		{"Price: 10 RWF", SkipNone},
		{"USD", SkipCode},
		{"ABOUT THE HOTEL", SkipNone},
		{"CONFIGURATION", SkipNone},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
			if got := ShouldSkip(tt.text); got != (tt.want != SkipNone) {
				t.Errorf("ShouldSkip(%q) = %v", tt.text, got)
			}
		})
	}
}
