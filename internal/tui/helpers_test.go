package tui

import (
	"strings"
	"testing"
	"time"
)

func TestTruncStr(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"héllo wörld", 4, "hél…"},
		{"anything", 0, ""},
	}
	for _, tc := range tests {
		if got := truncStr(tc.in, tc.max); got != tc.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestTruncateToHeight(t *testing.T) {
	s := "a\nb\nc\nd\n"
	if got := truncateToHeight(s, 2); got != "a\nb\n" {
		t.Errorf("got %q", got)
	}
	if got := truncateToHeight(s, 0); got != s {
		t.Errorf("maxLines 0 should not truncate, got %q", got)
	}
	if got := truncateToHeight("one line", 3); got != "one line" {
		t.Errorf("got %q", got)
	}
}

func TestAnsweredAt(t *testing.T) {
	if got := answeredAt(time.Time{}); got != "" {
		t.Errorf("zero time = %q", got)
	}
	if got := answeredAt(time.Now()); got != "just now" {
		t.Errorf("now = %q", got)
	}
	if got := answeredAt(time.Now().Add(-3 * time.Minute)); got != "3 minutes ago" {
		t.Errorf("3m = %q", got)
	}
	if got := answeredAt(time.Now().Add(-2 * time.Hour)); !strings.HasSuffix(got, "ago") {
		t.Errorf("2h = %q", got)
	}
}

func TestCenter(t *testing.T) {
	if got := center("ab", 6); got != "  ab" {
		t.Errorf("got %q", got)
	}
	if got := center("too wide", 3); got != "too wide" {
		t.Errorf("got %q", got)
	}
}
