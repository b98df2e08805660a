// Package rule implements structured recurrence rules: parsing permissive
// human phrasings into a tagged Rule value and computing the next occurrence
// of a rule relative to a base date.
package rule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cadence-tools/cadence/internal/dates"
)

type Kind string

const (
	KindDaily             Kind = "daily"
	KindWeekday           Kind = "weekday"
	KindBusinessDaily     Kind = "business_daily"
	KindWeekly            Kind = "weekly"
	KindMonthlyDay        Kind = "monthly_day"
	KindMonthlyNth        Kind = "monthly_nth"
	KindMonthlyMultiNth   Kind = "monthly_multi_nth"
	KindMonthlyNthFromEnd Kind = "monthly_nth_from_end"
	KindMonthlyLastDay    Kind = "monthly_last_day"
	KindMonthlyMultiDay   Kind = "monthly_multi_day"
	KindMonthlyMixedDay   Kind = "monthly_mixed_day"
	KindMonthlyNthWeekday Kind = "monthly_nth_weekday"
	KindYearly            Kind = "yearly"
	KindYearlyNth         Kind = "yearly_nth"
)

// OrdinalLast marks "the last <weekday> of the month" in Ordinal fields.
const OrdinalLast = -1

// LastDayToken marks the end-of-month sentinel inside a Days list.
const LastDayToken = -1

type Which string

const (
	WhichFirst Which = "first"
	WhichLast  Which = "last"
)

var (
	ErrInvalidKind    = errors.New("rule: invalid rule kind")
	ErrInvalidRule    = errors.New("rule: invalid rule")
	ErrNoNext         = errors.New("rule: no next occurrence")
	ErrUnparsed       = errors.New("rule: text did not match any recurrence phrasing")
	ErrInvalidOrdinal = errors.New("rule: invalid ordinal")
)

// Options carries the calendar configuration both parsing and occurrence
// math depend on.
type Options struct {
	WeekStart time.Weekday
}

func DefaultOptions() Options {
	return Options{WeekStart: time.Monday}
}

// Rule is a complete recurrence pattern. Kind selects the variant; the other
// fields are meaningful only for the kinds that name them. A Rule is either
// fully constructed by Parse or absent, never partial.
type Rule struct {
	Kind Kind

	// Interval in the kind's native unit: days, weeks, or months.
	Interval int

	// ByDay holds the weekly day set, ordered by week-start offset.
	ByDay []time.Weekday

	// Day is the day-of-month for monthly_day (0 derives from the base date)
	// and the day for yearly.
	Day int

	// Ordinal is 1..5 or OrdinalLast for monthly_nth and yearly_nth.
	Ordinal int

	// Ordinals holds the ordinal list for monthly_multi_nth, ascending.
	Ordinals []int

	// NthFromEnd counts backward for monthly_nth_from_end: 2 means
	// second-to-last.
	NthFromEnd int

	// Days holds sorted day-of-month tokens for monthly_multi_day and
	// monthly_mixed_day; a LastDayToken entry means the month's final day.
	Days []int

	// IncludeLast adds the month's final day to a monthly_mixed_day list.
	IncludeLast bool

	// Weekday anchors the ordinal-based monthly and yearly kinds.
	Weekday time.Weekday

	// Which selects first or last for monthly_nth_weekday.
	Which Which

	// Month anchors yearly kinds; 0 means anniversary-of-base for yearly.
	Month time.Month

	// Raw preserves the text the rule was parsed from, for display.
	Raw string
}

func (r Rule) Validate() error {
	switch r.Kind {
	case KindDaily, KindBusinessDaily:
		if r.Interval < 1 {
			return fmt.Errorf("%w: %s interval %d", ErrInvalidRule, r.Kind, r.Interval)
		}
	case KindWeekday:
	case KindWeekly:
		if r.Interval < 1 {
			return fmt.Errorf("%w: weekly interval %d", ErrInvalidRule, r.Interval)
		}
	case KindMonthlyDay:
		if r.Interval < 1 || r.Day < 0 || r.Day > 31 {
			return fmt.Errorf("%w: monthly day %d every %d", ErrInvalidRule, r.Day, r.Interval)
		}
	case KindMonthlyNth:
		if r.Interval < 1 || !validOrdinal(r.Ordinal) {
			return fmt.Errorf("%w: ordinal %d", ErrInvalidOrdinal, r.Ordinal)
		}
	case KindMonthlyMultiNth:
		if len(r.Ordinals) == 0 {
			return fmt.Errorf("%w: empty ordinal list", ErrInvalidRule)
		}
		for _, o := range r.Ordinals {
			if !validOrdinal(o) {
				return fmt.Errorf("%w: ordinal %d", ErrInvalidOrdinal, o)
			}
		}
	case KindMonthlyNthFromEnd:
		if r.NthFromEnd < 1 || r.NthFromEnd > 5 {
			return fmt.Errorf("%w: nth-from-end %d", ErrInvalidRule, r.NthFromEnd)
		}
	case KindMonthlyLastDay:
	case KindMonthlyMultiDay, KindMonthlyMixedDay:
		if len(r.Days) == 0 {
			return fmt.Errorf("%w: empty day list", ErrInvalidRule)
		}
		for _, d := range r.Days {
			if d != LastDayToken && (d < 1 || d > 31) {
				return fmt.Errorf("%w: day-of-month %d", ErrInvalidRule, d)
			}
		}
	case KindMonthlyNthWeekday:
		if r.Which != WhichFirst && r.Which != WhichLast {
			return fmt.Errorf("%w: which %q", ErrInvalidRule, r.Which)
		}
	case KindYearly:
		if r.Month != 0 && (r.Day < 1 || r.Day > 31) {
			return fmt.Errorf("%w: yearly %s %d", ErrInvalidRule, r.Month, r.Day)
		}
	case KindYearlyNth:
		if r.Month < time.January || r.Month > time.December || !validOrdinal(r.Ordinal) {
			return fmt.Errorf("%w: yearly nth %s ordinal %d", ErrInvalidRule, r.Month, r.Ordinal)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, r.Kind)
	}
	return nil
}

func validOrdinal(o int) bool {
	return o == OrdinalLast || (o >= 1 && o <= 5)
}

// Describe renders a short human-readable summary of the rule.
func (r Rule) Describe() string {
	switch r.Kind {
	case KindDaily:
		if r.Interval == 1 {
			return "every day"
		}
		return fmt.Sprintf("every %d days", r.Interval)
	case KindWeekday:
		return "every weekday"
	case KindBusinessDaily:
		if r.Interval == 1 {
			return "every business day"
		}
		return fmt.Sprintf("every %d business days", r.Interval)
	case KindWeekly:
		prefix := "every week"
		if r.Interval > 1 {
			prefix = fmt.Sprintf("every %d weeks", r.Interval)
		}
		if len(r.ByDay) == 0 {
			return prefix
		}
		names := make([]string, 0, len(r.ByDay))
		for _, d := range r.ByDay {
			names = append(names, d.String()[:3])
		}
		return prefix + " on " + strings.Join(names, ", ")
	case KindMonthlyDay:
		prefix := "every month"
		if r.Interval > 1 {
			prefix = fmt.Sprintf("every %d months", r.Interval)
		}
		if r.Day == 0 {
			return prefix
		}
		return fmt.Sprintf("%s on the %s", prefix, ordinalWord(r.Day))
	case KindMonthlyNth:
		if r.Ordinal == OrdinalLast {
			return fmt.Sprintf("the last %s of the month", r.Weekday)
		}
		return fmt.Sprintf("the %s %s of the month", ordinalWord(r.Ordinal), r.Weekday)
	case KindMonthlyMultiNth:
		parts := make([]string, 0, len(r.Ordinals))
		for _, o := range r.Ordinals {
			parts = append(parts, ordinalWord(o))
		}
		return fmt.Sprintf("the %s %s of the month", strings.Join(parts, " and "), r.Weekday)
	case KindMonthlyNthFromEnd:
		return fmt.Sprintf("the %s-to-last %s of the month", ordinalWord(r.NthFromEnd-1), r.Weekday)
	case KindMonthlyLastDay:
		return "the last day of the month"
	case KindMonthlyMultiDay, KindMonthlyMixedDay:
		parts := make([]string, 0, len(r.Days)+1)
		for _, d := range r.Days {
			if d == LastDayToken {
				parts = append(parts, "last day")
				continue
			}
			parts = append(parts, ordinalWord(d))
		}
		if r.Kind == KindMonthlyMixedDay && r.IncludeLast {
			parts = append(parts, "last day")
		}
		return fmt.Sprintf("the %s of the month", strings.Join(parts, " and "))
	case KindMonthlyNthWeekday:
		return fmt.Sprintf("the %s weekday of the month", r.Which)
	case KindYearly:
		if r.Month == 0 {
			return "every year"
		}
		return fmt.Sprintf("every year on %s %d", r.Month, r.Day)
	case KindYearlyNth:
		if r.Ordinal == OrdinalLast {
			return fmt.Sprintf("the last %s of %s, yearly", r.Weekday, r.Month)
		}
		return fmt.Sprintf("the %s %s of %s, yearly", ordinalWord(r.Ordinal), r.Weekday, r.Month)
	default:
		return string(r.Kind)
	}
}

func ordinalWord(n int) string {
	switch n % 10 {
	case 1:
		if n%100 != 11 {
			return fmt.Sprintf("%dst", n)
		}
	case 2:
		if n%100 != 12 {
			return fmt.Sprintf("%dnd", n)
		}
	case 3:
		if n%100 != 13 {
			return fmt.Sprintf("%drd", n)
		}
	}
	return fmt.Sprintf("%dth", n)
}

// Preview computes up to count successive occurrences starting strictly
// after from.
func (r Rule) Preview(from time.Time, count int, opts Options) []time.Time {
	out := make([]time.Time, 0, count)
	cursor := dates.Noon(from)
	for i := 0; i < count; i++ {
		next, ok := Next(r, NextInput{Due: &cursor, AdvanceFrom: AdvanceFromDue}, cursor, opts)
		if !ok {
			break
		}
		out = append(out, next)
		cursor = next
	}
	return out
}

// sortByWeekStart orders a weekday set by its offset from the configured
// week start so "weekly on sun, wed" iterates in week order.
func sortByWeekStart(days []time.Weekday, weekStart time.Weekday) []time.Weekday {
	sorted := append([]time.Weekday(nil), days...)
	sort.Slice(sorted, func(i, j int) bool {
		return dates.WeekdayOffset(sorted[i], weekStart) < dates.WeekdayOffset(sorted[j], weekStart)
	})
	return sorted
}
