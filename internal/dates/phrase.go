package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Phrase parsing is layered: explicit date formats first, then the
// deterministic relative grammar, then the natural-language fallback.
// Deterministic layers come first so the common phrases stay reproducible
// regardless of fallback rule changes.

var explicitLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var inIntervalRe = regexp.MustCompile(`^in (\d+) (day|days|week|weeks|month|months|year|years)$`)

var fallback = newFallbackParser()

func newFallbackParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParsePhrase resolves a free-text date phrase against now, honoring the
// configured week start for week-relative phrases. The result is normalized
// to local noon. Returns false when no layer recognizes the text.
func ParsePhrase(text string, now time.Time, weekStart time.Weekday) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range explicitLayouts {
		if t, err := time.ParseInLocation(layout, titleWords(s), now.Location()); err == nil {
			return Noon(t), true
		}
	}

	if t, ok := parseRelative(s, now, weekStart); ok {
		return t, true
	}

	if res, err := fallback.Parse(text, now); err == nil && res != nil {
		return Noon(res.Time), true
	}
	return time.Time{}, false
}

func parseRelative(s string, now time.Time, weekStart time.Weekday) (time.Time, bool) {
	today := Noon(now)
	switch s {
	case "today", "tod":
		return today, true
	case "tomorrow", "tom", "tmrw":
		return today.AddDate(0, 0, 1), true
	case "yesterday":
		return today.AddDate(0, 0, -1), true
	case "this weekend":
		return NextWeekday(today.AddDate(0, 0, -1), time.Saturday), true
	case "next weekend":
		return Noon(StartOfWeek(today, weekStart).AddDate(0, 0, 7+WeekdayOffset(time.Saturday, weekStart))), true
	case "next week":
		return StartOfWeek(today, weekStart).AddDate(0, 0, 7), true
	case "next month":
		y, m, _ := today.Date()
		return time.Date(y, m, 1, 12, 0, 0, 0, today.Location()).AddDate(0, 1, 0), true
	case "next year":
		return time.Date(today.Year()+1, time.January, 1, 12, 0, 0, 0, today.Location()), true
	}

	if rest, ok := strings.CutPrefix(s, "next "); ok {
		if wd, ok := ParseWeekday(rest); ok {
			return NextWeekday(today, wd), true
		}
	}
	if rest, ok := strings.CutPrefix(s, "this "); ok {
		if wd, ok := ParseWeekday(rest); ok {
			// "this tuesday" is tuesday of the current week, even if passed.
			return Noon(StartOfWeek(today, weekStart).AddDate(0, 0, WeekdayOffset(wd, weekStart))), true
		}
	}
	if wd, ok := ParseWeekday(s); ok {
		return NextWeekday(today, wd), true
	}

	if m := inIntervalRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return time.Time{}, false
		}
		switch strings.TrimSuffix(m[2], "s") {
		case "day":
			return today.AddDate(0, 0, n), true
		case "week":
			return today.AddDate(0, 0, 7*n), true
		case "month":
			return today.AddDate(0, n, 0), true
		case "year":
			return today.AddDate(n, 0, 0), true
		}
	}

	if t, ok := parseMonthDay(s, today); ok {
		return t, true
	}
	return time.Time{}, false
}

// parseMonthDay handles "jan 5" / "january 5th" with no year: this year's
// date, rolled to next year when already past.
func parseMonthDay(s string, today time.Time) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return time.Time{}, false
	}
	month, ok := ParseMonth(fields[0])
	if !ok {
		return time.Time{}, false
	}
	day, ok := parseDayNumber(fields[1])
	if !ok {
		return time.Time{}, false
	}
	candidate := ClampedDate(today.Year(), month, day, today.Location())
	if candidate.Before(today) {
		candidate = ClampedDate(today.Year()+1, month, day, today.Location())
	}
	return candidate, true
}

var ordinalSuffixRe = regexp.MustCompile(`^(\d{1,2})(st|nd|rd|th)?$`)

func parseDayNumber(s string) (int, bool) {
	m := ordinalSuffixRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

// ParseDate resolves explicit calendar forms only, no relative phrases. It is
// the inverse of FormatDate plus a few lenient layouts.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range explicitLayouts {
		if t, err := time.ParseInLocation(layout, titleWords(trimmed), loc); err == nil {
			return Noon(t), true
		}
	}
	return time.Time{}, false
}

// titleWords capitalizes each word so lowercased input still matches month
// name layouts, which time.Parse treats case-sensitively.
func titleWords(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		if f != "" && f[0] >= 'a' && f[0] <= 'z' {
			fields[i] = strings.ToUpper(f[:1]) + f[1:]
		}
	}
	return strings.Join(fields, " ")
}
