package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Joe's Pizza", "joes-pizza"},
		{"Wade's Plumbing & Septic", "wades-plumbing-septic"},
		{"  Trimmed  ", "trimmed"},
		{"Already-Slugged", "already-slugged"},
		{"Multiple   Spaces!!", "multiple-spaces"},
		{"Café 24/7", "caf-24-7"},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
