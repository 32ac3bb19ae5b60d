package lang_test

import (
	"testing"

	"unspool/internal/media/lang"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "und"},
		{"  ", "und"},
		{"und", "und"},
		{"en", "en"},
		{"eng", "en"},
		{"jpn", "ja"},
		{"JA", "ja"},
		{"pt-BR", "pt"},
		{"../etc", "etc"},
		{"a*b?", "ab"},
		{"***", "und"},
	}
	for _, tc := range cases {
		if got := lang.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
