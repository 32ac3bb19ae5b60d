package title_test

import (
	"strings"
	"testing"
	"time"

	"unspool/internal/title"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Movie (2024).mkv", "my-movie-2024"},
		{"/tmp/upload/Épisode_01.mp4", "pisode-01"},
		{"....", ""},
		{"weird***name.avi", "weird-name"},
	}
	for _, tc := range cases {
		if got := title.Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewIDIsUniquePerCall(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	first := title.NewID("movie.mkv", now)
	second := title.NewID("movie.mkv", now)
	if first == second {
		t.Fatalf("ids collide: %q", first)
	}
	if !strings.HasPrefix(first, "20260830-120000-movie-") {
		t.Fatalf("unexpected id shape: %q", first)
	}
}

func TestNewIDWithoutUsableSlug(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	id := title.NewID("....", now)
	if strings.Contains(id, "--") {
		t.Fatalf("empty slug left a double hyphen: %q", id)
	}
}
