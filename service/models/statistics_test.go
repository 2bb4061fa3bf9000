package models

import (
	"testing"

	ex "github.com/labib-r/portfolio-risk/data/extensions"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		name     string
		expected int
	}{
		{"daily", Daily},
		{" Weekly ", Weekly},
		{"months", Monthly},
		{"quarter", Quarterly},
		{"annual", Yearly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseFrequency(tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			ex.AssertAreEqual(t, "factor", tt.expected, res)
		})
	}

	if _, err := ParseFrequency("hourly"); err == nil {
		t.Fatalf("expected an error for intraday frequencies")
	}
}

func TestConvertFrequencyToString(t *testing.T) {
	for _, f := range []int{Daily, Weekly, Monthly, Quarterly, Yearly} {
		res, err := ParseFrequency(ConvertFrequencyToString(f))
		if err != nil {
			t.Fatalf("frequency %d did not round trip: %v", f, err)
		}
		ex.AssertAreEqual(t, "round trip", f, res)
	}
	ex.AssertAreEqual(t, "unknown", "", ConvertFrequencyToString(7))
}
