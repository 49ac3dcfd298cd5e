package normalize

import "testing"

func TestFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Mainstreet", "mainstreet"},
		{"  Main  Street  ", "main street"},
		{"Main\tStreet\n12", "main street 12"},
		{"ALREADY lower", "already lower"},
	}

	for _, tc := range cases {
		if got := Fold(tc.in); got != tc.want {
			t.Errorf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPostcode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234ab", "1234AB"},
		{" 1234 AB ", "1234AB"},
		{"1234\tAb", "1234AB"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Postcode(tc.in); got != tc.want {
			t.Errorf("Postcode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidPostcode(t *testing.T) {
	valid := []string{"1234AB", "1234 ab", " 9999 zz "}
	for _, s := range valid {
		if !ValidPostcode(s) {
			t.Errorf("ValidPostcode(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "12AB", "12345AB", "1234A", "ABCDEF", "1234A8", "1234ABC"}
	for _, s := range invalid {
		if ValidPostcode(s) {
			t.Errorf("ValidPostcode(%q) = true, want false", s)
		}
	}
}
