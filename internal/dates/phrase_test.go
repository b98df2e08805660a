package dates

import (
	"testing"
	"time"
)

// All phrase tests anchor on Wednesday 2026-03-11.
var phraseNow = time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

func TestParsePhraseExplicitLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-04-01", "2026-04-01"},
		{"2026/04/01", "2026-04-01"},
		{"04/01/2026", "2026-04-01"},
		{"jan 5, 2027", "2027-01-05"},
		{"5 jan 2027", "2027-01-05"},
	}
	for _, tc := range cases {
		got, ok := ParsePhrase(tc.in, phraseNow, time.Monday)
		if !ok {
			t.Fatalf("ParsePhrase(%q) did not match", tc.in)
		}
		if FormatDate(got) != tc.want {
			t.Fatalf("ParsePhrase(%q) = %s, want %s", tc.in, FormatDate(got), tc.want)
		}
	}
}

func TestParsePhraseRelative(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"today", "2026-03-11"},
		{"tomorrow", "2026-03-12"},
		{"yesterday", "2026-03-10"},
		{"next friday", "2026-03-13"},
		{"next wednesday", "2026-03-18"}, // strictly after today
		{"this monday", "2026-03-09"},    // current week, even though passed
		{"this weekend", "2026-03-14"},
		{"next week", "2026-03-16"},
		{"next month", "2026-04-01"},
		{"next year", "2027-01-01"},
		{"in 3 days", "2026-03-14"},
		{"in 2 weeks", "2026-03-25"},
		{"in 1 month", "2026-04-11"},
		{"jan 5", "2027-01-05"}, // already passed this year
		{"jun 5", "2026-06-05"},
	}
	for _, tc := range cases {
		got, ok := ParsePhrase(tc.in, phraseNow, time.Monday)
		if !ok {
			t.Fatalf("ParsePhrase(%q) did not match", tc.in)
		}
		if FormatDate(got) != tc.want {
			t.Fatalf("ParsePhrase(%q) = %s, want %s", tc.in, FormatDate(got), tc.want)
		}
	}
}

func TestParsePhraseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "blorple"} {
		if got, ok := ParsePhrase(in, phraseNow, time.Monday); ok {
			t.Fatalf("ParsePhrase(%q) unexpectedly matched %s", in, FormatDate(got))
		}
	}
}

func TestParseDateRoundTrip(t *testing.T) {
	orig := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)
	parsed, ok := ParseDate(FormatDate(orig), time.UTC)
	if !ok {
		t.Fatalf("ParseDate did not accept FormatDate output %q", FormatDate(orig))
	}
	if !SameDay(orig, parsed) {
		t.Fatalf("round trip moved the date: %s -> %s", FormatDate(orig), FormatDate(parsed))
	}
}

func TestParseDateRejectsRelative(t *testing.T) {
	if _, ok := ParseDate("tomorrow", time.UTC); ok {
		t.Fatal("ParseDate accepted a relative phrase")
	}
}
