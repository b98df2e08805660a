package dates

import (
	"testing"
	"time"
)

func TestExpandDayShorthand(t *testing.T) {
	cases := []struct {
		in   string
		want []time.Weekday
		ok   bool
	}{
		{"MWF", []time.Weekday{time.Monday, time.Wednesday, time.Friday}, true},
		{"TTh", []time.Weekday{time.Tuesday, time.Thursday}, true},
		{"MTWThF", []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, true},
		{"SaSu", []time.Weekday{time.Saturday, time.Sunday}, true},
		{"MM", nil, false},
		{"XQ", nil, false},
		{"", nil, false},
	}
	for _, tc := range cases {
		got, ok := ExpandDayShorthand(tc.in)
		if ok != tc.ok {
			t.Fatalf("ExpandDayShorthand(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if len(got) != len(tc.want) {
			t.Fatalf("ExpandDayShorthand(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("ExpandDayShorthand(%q)[%d] = %v, want %v", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}

func TestWeekdayOffsetRespectsWeekStart(t *testing.T) {
	if off := WeekdayOffset(time.Sunday, time.Monday); off != 6 {
		t.Fatalf("sunday offset from monday start = %d, want 6", off)
	}
	if off := WeekdayOffset(time.Sunday, time.Sunday); off != 0 {
		t.Fatalf("sunday offset from sunday start = %d, want 0", off)
	}
	if off := WeekdayOffset(time.Wednesday, time.Monday); off != 2 {
		t.Fatalf("wednesday offset from monday start = %d, want 2", off)
	}
}

func TestStartOfWeek(t *testing.T) {
	// 2026-02-12 is a Thursday.
	thursday := time.Date(2026, 2, 12, 9, 30, 0, 0, time.UTC)
	start := StartOfWeek(thursday, time.Monday)
	if FormatDate(start) != "2026-02-09" {
		t.Fatalf("start of week (monday) = %s, want 2026-02-09", FormatDate(start))
	}
	start = StartOfWeek(thursday, time.Sunday)
	if FormatDate(start) != "2026-02-08" {
		t.Fatalf("start of week (sunday) = %s, want 2026-02-08", FormatDate(start))
	}
}

func TestNextWeekdayIsStrictlyAfter(t *testing.T) {
	// 2026-02-10 is a Tuesday; next tuesday must be a full week out.
	tuesday := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	next := NextWeekday(tuesday, time.Tuesday)
	if FormatDate(next) != "2026-02-17" {
		t.Fatalf("next tuesday from a tuesday = %s, want 2026-02-17", FormatDate(next))
	}
	next = NextWeekday(tuesday, time.Friday)
	if FormatDate(next) != "2026-02-13" {
		t.Fatalf("next friday from a tuesday = %s, want 2026-02-13", FormatDate(next))
	}
}

func TestLastDayOfMonth(t *testing.T) {
	if d := LastDayOfMonth(2026, time.February); d != 28 {
		t.Fatalf("feb 2026 has %d days, want 28", d)
	}
	if d := LastDayOfMonth(2028, time.February); d != 29 {
		t.Fatalf("feb 2028 has %d days, want 29", d)
	}
	if d := LastDayOfMonth(2026, time.April); d != 30 {
		t.Fatalf("apr 2026 has %d days, want 30", d)
	}
}

func TestClampedDate(t *testing.T) {
	got := ClampedDate(2026, time.February, 31, time.UTC)
	if FormatDate(got) != "2026-02-28" {
		t.Fatalf("clamped feb 31 = %s, want 2026-02-28", FormatDate(got))
	}
	if got.Hour() != 12 {
		t.Fatalf("clamped date hour = %d, want noon", got.Hour())
	}
}

func TestAddBusinessDays(t *testing.T) {
	// 2026-02-13 is a Friday; one business day later is Monday the 16th.
	friday := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)
	got := AddBusinessDays(friday, 1)
	if FormatDate(got) != "2026-02-16" {
		t.Fatalf("friday + 1 business day = %s, want 2026-02-16", FormatDate(got))
	}
	got = AddBusinessDays(friday, 3)
	if FormatDate(got) != "2026-02-18" {
		t.Fatalf("friday + 3 business days = %s, want 2026-02-18", FormatDate(got))
	}
}

func TestNoonNormalization(t *testing.T) {
	late := time.Date(2026, 3, 8, 23, 45, 0, 0, time.UTC)
	noon := Noon(late)
	if noon.Hour() != 12 || noon.Minute() != 0 {
		t.Fatalf("noon = %s, want 12:00", noon.Format("15:04"))
	}
	if !SameDay(late, noon) {
		t.Fatalf("noon changed the calendar day: %s vs %s", FormatDate(late), FormatDate(noon))
	}
}
