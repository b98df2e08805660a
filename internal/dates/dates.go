// Package dates holds the calendar and text helpers shared by the rule
// parser and the next-occurrence calculator: weekday/month alias tables,
// shorthand weekday sets, week math relative to a configurable week start,
// and noon normalization.
package dates

import (
	"strings"
	"time"
)

// DateLayout is the canonical on-disk date format. Dates round-trip through
// FormatDate and ParseDate without loss.
const DateLayout = "2006-01-02"

var weekdayAliases = map[string]time.Weekday{
	"su": time.Sunday, "sun": time.Sunday, "sunday": time.Sunday,
	"m": time.Monday, "mo": time.Monday, "mon": time.Monday, "monday": time.Monday,
	"tu": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"w": time.Wednesday, "we": time.Wednesday, "wed": time.Wednesday, "weds": time.Wednesday, "wednesday": time.Wednesday,
	"th": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"f": time.Friday, "fr": time.Friday, "fri": time.Friday, "friday": time.Friday,
	"sa": time.Saturday, "sat": time.Saturday, "saturday": time.Saturday,
}

var monthAliases = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ParseWeekday resolves a weekday name or common abbreviation.
func ParseWeekday(s string) (time.Weekday, bool) {
	d, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// ParseMonth resolves a month name or common abbreviation.
func ParseMonth(s string) (time.Month, bool) {
	m, ok := monthAliases[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

// ExpandDayShorthand expands compact weekday run syntax ("MWF", "TTh",
// "MTWThF") into an ordered weekday list. The scan is greedy: two-letter
// tokens (Th, Sa, Su, Tu) win over single letters so "TTh" is Tuesday and
// Thursday, not three tokens. Returns false when any character does not
// start a known token or when a day repeats.
func ExpandDayShorthand(s string) ([]time.Weekday, bool) {
	compact := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if compact == "" {
		return nil, false
	}
	out := make([]time.Weekday, 0, 7)
	seen := make(map[time.Weekday]bool, 7)
	for i := 0; i < len(compact); {
		var d time.Weekday
		var width int
		switch {
		case strings.HasPrefix(compact[i:], "th"):
			d, width = time.Thursday, 2
		case strings.HasPrefix(compact[i:], "tu"):
			d, width = time.Tuesday, 2
		case strings.HasPrefix(compact[i:], "sa"):
			d, width = time.Saturday, 2
		case strings.HasPrefix(compact[i:], "su"):
			d, width = time.Sunday, 2
		case compact[i] == 'm':
			d, width = time.Monday, 1
		case compact[i] == 't':
			d, width = time.Tuesday, 1
		case compact[i] == 'w':
			d, width = time.Wednesday, 1
		case compact[i] == 'f':
			d, width = time.Friday, 1
		case compact[i] == 's':
			d, width = time.Saturday, 1
		default:
			return nil, false
		}
		if seen[d] {
			return nil, false
		}
		seen[d] = true
		out = append(out, d)
		i += width
	}
	return out, true
}

// Noon normalizes a time to local noon on the same calendar day. Noon keeps
// date arithmetic clear of DST boundary shifts.
func Noon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatDate renders a date in the canonical YYYY-MM-DD format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayOffset returns the 0..6 position of d within a week beginning on
// weekStart.
func WeekdayOffset(d, weekStart time.Weekday) int {
	return (int(d) - int(weekStart) + 7) % 7
}

// StartOfWeek returns noon of the first day of t's week for the given week
// start.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	return Noon(t.AddDate(0, 0, -WeekdayOffset(t.Weekday(), weekStart)))
}

// NextWeekday returns noon of the first occurrence of d strictly after from.
func NextWeekday(from time.Time, d time.Weekday) time.Time {
	delta := (int(d) - int(from.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return Noon(from.AddDate(0, 0, delta))
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 12, 0, 0, 0, time.Local).AddDate(0, 1, -1).Day()
}

// ClampedDate builds noon of year/month/day, clamping day to the month's
// length so day 31 in February lands on the 28th or 29th.
func ClampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := LastDayOfMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 12, 0, 0, 0, loc)
}

// IsBusinessDay reports whether t falls on Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// AddBusinessDays advances n business days from t, skipping weekends while
// counting.
func AddBusinessDays(t time.Time, n int) time.Time {
	cur := t
	for added := 0; added < n; {
		cur = cur.AddDate(0, 0, 1)
		if IsBusinessDay(cur) {
			added++
		}
	}
	return Noon(cur)
}
