package email

import "testing"

func TestValidAddress(t *testing.T) {
	valid := []string{
		"doc@example.com",
		"first.last@hospital.org",
		"a@b.co",
		"nurse+tag@clinic.example.ng",
	}
	for _, addr := range valid {
		if !ValidAddress(addr) {
			t.Errorf("ValidAddress(%q) = false, want true", addr)
		}
	}

	invalid := []string{
		"",
		"no-at-sign",
		"@example.com",
		"doc@",
		"doc@nodot",
		"doc@.com",
		"doc@example.",
		"doc@exa@mple.com",
	}
	for _, addr := range invalid {
		if ValidAddress(addr) {
			t.Errorf("ValidAddress(%q) = true, want false", addr)
		}
	}
}

func TestDeriveNameFromEmail(t *testing.T) {
	cases := []struct {
		in          string
		first, last string
	}{
		{"jane.doe@example.com", "Jane", "Doe"},
		{"jdoe@example.com", "Jdoe", "User"},
		{"a_b-c@example.com", "A", "C"},
		{"@example.com", "User", "User"},
	}
	for _, tc := range cases {
		first, last := DeriveNameFromEmail(tc.in)
		if first != tc.first || last != tc.last {
			t.Errorf("DeriveNameFromEmail(%q) = (%q, %q), want (%q, %q)", tc.in, first, last, tc.first, tc.last)
		}
	}
}
