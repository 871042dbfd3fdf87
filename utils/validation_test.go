package utils

import "testing"

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		in        string
		valid     bool
		clean     string
		formatted string
	}{
		{"05551234567", true, "5551234567", "0555 123 45 67"},
		{"5551234567", true, "5551234567", "0555 123 45 67"},
		{"0555 123 45 67", true, "5551234567", "0555 123 45 67"},
		{"(0555) 123-45-67", true, "5551234567", "0555 123 45 67"},
		{"1234", false, "1234", "1234"},
		{"1234567", false, "1234567", "1234567"},
		{"4551234567", false, "4551234567", "4551234567"},
		{"055512345678", false, "55512345678", "055512345678"},
		{"", false, "", ""},
		{"abc", false, "", "abc"},
	}

	for _, tc := range cases {
		got := ValidatePhone(tc.in)
		if got.IsValid != tc.valid {
			t.Errorf("ValidatePhone(%q).IsValid = %v, want %v", tc.in, got.IsValid, tc.valid)
		}
		if got.Clean != tc.clean {
			t.Errorf("ValidatePhone(%q).Clean = %q, want %q", tc.in, got.Clean, tc.clean)
		}
		if got.Formatted != tc.formatted {
			t.Errorf("ValidatePhone(%q).Formatted = %q, want %q", tc.in, got.Formatted, tc.formatted)
		}
	}
}

func TestValidatePhoneDropsOnlyOneLeadingZero(t *testing.T) {
	got := ValidatePhone("005551234567")
	if got.IsValid {
		t.Fatalf("expected double leading zero to be invalid, got %+v", got)
	}
	if got.Clean != "05551234567" {
		t.Errorf("Clean = %q", got.Clean)
	}
}

func TestInternationalPhone(t *testing.T) {
	cases := map[string]string{
		"05551234567":      "905551234567",
		"5551234567":       "905551234567",
		"0555 123 45 67":   "905551234567",
		"905551234567":     "905551234567",
		"+90 555 123 4567": "905551234567",
	}
	for in, want := range cases {
		if got := InternationalPhone(in); got != want {
			t.Errorf("InternationalPhone(%q) = %q, want %q", in, got, want)
		}
	}
}
