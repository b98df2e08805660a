package rule

import (
	"time"

	"github.com/cadence-tools/cadence/internal/dates"
)

type AdvanceMode string

const (
	AdvanceFromDue        AdvanceMode = "due"
	AdvanceFromCompletion AdvanceMode = "completion"
)

// NextInput is the scheduling state the calculator reads: the task's current
// due date, if any, and how the series advances.
type NextInput struct {
	Due         *time.Time
	AdvanceFrom AdvanceMode
}

const (
	// monthWalkCap bounds the month-by-month candidate search so impossible
	// day/weekday combinations terminate.
	monthWalkCap = 48

	// driftLimit bounds drift correction for long-dormant series.
	driftLimit = 36
)

// Next computes the earliest occurrence of r strictly after both the base
// date and today. The base is today when advancing from completion,
// otherwise the existing due date, falling back to today. Returns false when
// the rule admits no occurrence.
func Next(r Rule, in NextInput, today time.Time, opts Options) (time.Time, bool) {
	if err := r.Validate(); err != nil {
		return time.Time{}, false
	}
	now := dates.Noon(today)
	base := now
	if in.AdvanceFrom != AdvanceFromCompletion && in.Due != nil && !in.Due.IsZero() {
		base = dates.Noon(*in.Due)
	}
	candidate, ok := nextAfter(r, base, opts)
	if !ok {
		return time.Time{}, false
	}
	// Drift correction: a dormant series can compute a candidate that is
	// still in the past; re-base on the candidate until it clears today.
	for depth := 0; !candidate.After(now); depth++ {
		if depth >= driftLimit {
			return time.Time{}, false
		}
		candidate, ok = nextAfter(r, candidate, opts)
		if !ok {
			return time.Time{}, false
		}
	}
	return candidate, true
}

// nextAfter computes the earliest occurrence strictly after base, with no
// regard for today.
func nextAfter(r Rule, base time.Time, opts Options) (time.Time, bool) {
	base = dates.Noon(base)
	switch r.Kind {
	case KindDaily:
		return dates.Noon(base.AddDate(0, 0, r.Interval)), true
	case KindWeekday:
		probe := base.AddDate(0, 0, 1)
		for !dates.IsBusinessDay(probe) {
			probe = probe.AddDate(0, 0, 1)
		}
		return dates.Noon(probe), true
	case KindBusinessDaily:
		return dates.AddBusinessDays(base, r.Interval), true
	case KindWeekly:
		return nextWeekly(r, base, opts), true
	case KindMonthlyDay:
		return nextMonthlyDay(r, base), true
	case KindMonthlyNth, KindMonthlyMultiNth, KindMonthlyNthFromEnd, KindMonthlyNthWeekday:
		return nextMonthlyOrdinal(r, base)
	case KindMonthlyLastDay:
		return nextMonthlyLastDay(base), true
	case KindMonthlyMultiDay, KindMonthlyMixedDay:
		return nextMonthlyDayList(r, base)
	case KindYearly:
		return nextYearly(r, base), true
	case KindYearlyNth:
		return nextYearlyNth(r, base)
	default:
		return time.Time{}, false
	}
}

func nextWeekly(r Rule, base time.Time, opts Options) time.Time {
	if len(r.ByDay) == 0 {
		return dates.Noon(base.AddDate(0, 0, 7*r.Interval))
	}
	days := sortByWeekStart(r.ByDay, opts.WeekStart)
	baseOffset := dates.WeekdayOffset(base.Weekday(), opts.WeekStart)
	weekStart := dates.StartOfWeek(base, opts.WeekStart)
	for _, d := range days {
		if off := dates.WeekdayOffset(d, opts.WeekStart); off > baseOffset {
			return dates.Noon(weekStart.AddDate(0, 0, off))
		}
	}
	// Nothing left this week: jump ahead and take the first configured day.
	next := weekStart.AddDate(0, 0, 7*r.Interval)
	return dates.Noon(next.AddDate(0, 0, dates.WeekdayOffset(days[0], opts.WeekStart)))
}

func nextMonthlyDay(r Rule, base time.Time) time.Time {
	y, m, _ := base.Date()
	day := r.Day
	monthEnd := day == 0 && base.Day() == dates.LastDayOfMonth(y, m)
	if day == 0 && !monthEnd {
		day = base.Day()
	}

	if r.Interval == 1 {
		// The current month's occurrence may still be ahead.
		candidate := monthlyDayInMonth(y, m, day, monthEnd, base.Location())
		if candidate.After(base) {
			return candidate
		}
	}
	target := time.Date(y, m, 1, 12, 0, 0, 0, base.Location()).AddDate(0, r.Interval, 0)
	ty, tm, _ := target.Date()
	return monthlyDayInMonth(ty, tm, day, monthEnd, base.Location())
}

// monthlyDayInMonth resolves the rule's day within one month: the final day
// when the rule tracks month ends, otherwise the requested day clamped to
// the month's length.
func monthlyDayInMonth(y int, m time.Month, day int, monthEnd bool, loc *time.Location) time.Time {
	if monthEnd {
		day = dates.LastDayOfMonth(y, m)
	}
	return dates.ClampedDate(y, m, day, loc)
}

func nextMonthlyOrdinal(r Rule, base time.Time) (time.Time, bool) {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}
	y, m, _ := base.Date()
	for step := 0; step < monthWalkCap; step++ {
		stride := interval
		if step == 0 {
			stride = 0
		}
		probe := time.Date(y, m, 1, 12, 0, 0, 0, base.Location()).AddDate(0, stride, 0)
		y, m = probe.Year(), probe.Month()
		if candidate, ok := earliestOrdinalInMonth(r, y, m, base); ok {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// earliestOrdinalInMonth resolves the rule's ordinal candidates within one
// month and returns the earliest strictly after base.
func earliestOrdinalInMonth(r Rule, y int, m time.Month, base time.Time) (time.Time, bool) {
	var candidates []time.Time
	switch r.Kind {
	case KindMonthlyNth:
		if t, ok := nthWeekdayOfMonth(y, m, r.Ordinal, r.Weekday, base.Location()); ok {
			candidates = append(candidates, t)
		}
	case KindMonthlyMultiNth:
		for _, o := range r.Ordinals {
			if t, ok := nthWeekdayOfMonth(y, m, o, r.Weekday, base.Location()); ok {
				candidates = append(candidates, t)
			}
		}
	case KindMonthlyNthFromEnd:
		if t, ok := nthWeekdayFromEnd(y, m, r.NthFromEnd, r.Weekday, base.Location()); ok {
			candidates = append(candidates, t)
		}
	case KindMonthlyNthWeekday:
		candidates = append(candidates, nthBusinessDayBoundary(y, m, r.Which, base.Location()))
	}
	var best time.Time
	found := false
	for _, c := range candidates {
		if !c.After(base) {
			continue
		}
		if !found || c.Before(best) {
			best, found = c, true
		}
	}
	return best, found
}

// nthWeekdayOfMonth resolves "the Nth <weekday>" by direct calendar walk;
// ordinal OrdinalLast counts from the month's end.
func nthWeekdayOfMonth(y int, m time.Month, ordinal int, wd time.Weekday, loc *time.Location) (time.Time, bool) {
	if ordinal == OrdinalLast {
		return nthWeekdayFromEnd(y, m, 1, wd, loc)
	}
	first := time.Date(y, m, 1, 12, 0, 0, 0, loc)
	firstMatch := 1 + (int(wd)-int(first.Weekday())+7)%7
	day := firstMatch + 7*(ordinal-1)
	if day > dates.LastDayOfMonth(y, m) {
		return time.Time{}, false
	}
	return time.Date(y, m, day, 12, 0, 0, 0, loc), true
}

// nthWeekdayFromEnd resolves "the Nth-to-last <weekday>"; n=1 is the last.
func nthWeekdayFromEnd(y int, m time.Month, n int, wd time.Weekday, loc *time.Location) (time.Time, bool) {
	last := dates.LastDayOfMonth(y, m)
	lastDate := time.Date(y, m, last, 12, 0, 0, 0, loc)
	lastMatch := last - (int(lastDate.Weekday())-int(wd)+7)%7
	day := lastMatch - 7*(n-1)
	if day < 1 {
		return time.Time{}, false
	}
	return time.Date(y, m, day, 12, 0, 0, 0, loc), true
}

// nthBusinessDayBoundary resolves the first or last business day of a month.
func nthBusinessDayBoundary(y int, m time.Month, which Which, loc *time.Location) time.Time {
	if which == WhichFirst {
		probe := time.Date(y, m, 1, 12, 0, 0, 0, loc)
		for !dates.IsBusinessDay(probe) {
			probe = probe.AddDate(0, 0, 1)
		}
		return probe
	}
	probe := time.Date(y, m, dates.LastDayOfMonth(y, m), 12, 0, 0, 0, loc)
	for !dates.IsBusinessDay(probe) {
		probe = probe.AddDate(0, 0, -1)
	}
	return probe
}

func nextMonthlyLastDay(base time.Time) time.Time {
	y, m, _ := base.Date()
	candidate := time.Date(y, m, dates.LastDayOfMonth(y, m), 12, 0, 0, 0, base.Location())
	if candidate.After(base) {
		return candidate
	}
	next := time.Date(y, m, 1, 12, 0, 0, 0, base.Location()).AddDate(0, 1, 0)
	return time.Date(next.Year(), next.Month(), dates.LastDayOfMonth(next.Year(), next.Month()), 12, 0, 0, 0, base.Location())
}

func nextMonthlyDayList(r Rule, base time.Time) (time.Time, bool) {
	y, m, _ := base.Date()
	for step := 0; step < monthWalkCap; step++ {
		probe := time.Date(y, m, 1, 12, 0, 0, 0, base.Location()).AddDate(0, step, 0)
		py, pm := probe.Year(), probe.Month()
		var best time.Time
		found := false
		consider := func(day int) {
			c := dates.ClampedDate(py, pm, day, base.Location())
			if !c.After(base) {
				return
			}
			if !found || c.Before(best) {
				best, found = c, true
			}
		}
		for _, d := range r.Days {
			if d == LastDayToken {
				consider(dates.LastDayOfMonth(py, pm))
				continue
			}
			consider(d)
		}
		if r.Kind == KindMonthlyMixedDay && r.IncludeLast {
			consider(dates.LastDayOfMonth(py, pm))
		}
		if found {
			return best, true
		}
	}
	return time.Time{}, false
}

func nextYearly(r Rule, base time.Time) time.Time {
	if r.Month == 0 {
		// Anniversary of the base date.
		return dates.ClampedDate(base.Year()+1, base.Month(), base.Day(), base.Location())
	}
	candidate := dates.ClampedDate(base.Year(), r.Month, r.Day, base.Location())
	if candidate.After(base) {
		return candidate
	}
	return dates.ClampedDate(base.Year()+1, r.Month, r.Day, base.Location())
}

func nextYearlyNth(r Rule, base time.Time) (time.Time, bool) {
	for year := base.Year(); year <= base.Year()+monthWalkCap/12+1; year++ {
		if candidate, ok := nthWeekdayOfMonth(year, r.Month, r.Ordinal, r.Weekday, base.Location()); ok && candidate.After(base) {
			return candidate, true
		}
	}
	return time.Time{}, false
}
