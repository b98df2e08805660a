package rule

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cadence-tools/cadence/internal/dates"
)

// Parse converts freeform recurrence text into a Rule. Matching walks an
// ordered set of phrase families; the first family that recognizes the text
// wins. Text that matches no family returns false; the parser performs no
// I/O and never errors.
//
// Family order, most specific first within each tier:
//  1. bare weekday shorthand and loose day lists, only when the text carries
//     no digit or ordinal word
//  2. keyword-to-interval table (quarterly, semiannual, twice a year, ...)
//  3. daily / weekday / weekend anchors
//  4. weekly and every-N-day forms, with optional "on <days>"
//  5. monthly variants: explicit days, end of month, ordinal weekdays,
//     penultimate, first/last weekday, day lists, every-N-months
//  6. yearly variants: month + day, ordinal weekday of a month
func Parse(text string, opts Options) (Rule, bool) {
	raw := strings.TrimSpace(text)
	s := normalize(raw)
	if s == "" {
		return Rule{}, false
	}

	type family func(string, Options) (Rule, bool)
	families := []family{
		parseBareDays,
		parseKeywordIntervals,
		parseSimpleAnchors,
		parseWeeklyForms,
		parseMonthlyForms,
		parseYearlyForms,
	}
	for _, f := range families {
		if r, ok := f(s, opts); ok {
			r.Raw = raw
			if r.Kind == KindWeekly && len(r.ByDay) > 0 {
				r.ByDay = sortByWeekStart(r.ByDay, opts.WeekStart)
			}
			if r.Validate() != nil {
				return Rule{}, false
			}
			return r, true
		}
	}
	return Rule{}, false
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	return strings.Join(strings.Fields(s), " ")
}

// ordinalHintRe guards the loose day-list family: the presence of a digit or
// ordinal word means a more specific monthly or yearly phrasing should get
// the first shot, so "the 1st of every month" is not misread as a day list.
var ordinalHintRe = regexp.MustCompile(`\d|\b(first|second|third|fourth|fifth|last|penultimate)\b`)

func hasOrdinalHint(s string) bool {
	return ordinalHintRe.MatchString(s)
}

// 1. Bare shorthand sets and loose day lists.

func parseBareDays(s string, _ Options) (Rule, bool) {
	if hasOrdinalHint(s) {
		return Rule{}, false
	}
	if days, ok := dates.ExpandDayShorthand(s); ok && len(days) > 0 {
		return Rule{Kind: KindWeekly, Interval: 1, ByDay: days}, true
	}
	if days, ok := parseDayList(s); ok {
		return Rule{Kind: KindWeekly, Interval: 1, ByDay: days}, true
	}
	return Rule{}, false
}

var dayListSepRe = regexp.MustCompile(`\s*(?:,|/|&|\band\b|\bon\b)\s*|\s+`)

// parseDayList accepts a list of weekday names separated by commas, slashes,
// "and", or spaces. Every token must resolve to a weekday.
func parseDayList(s string) ([]time.Weekday, bool) {
	tokens := dayListSepRe.Split(s, -1)
	out := make([]time.Weekday, 0, len(tokens))
	seen := make(map[time.Weekday]bool, 7)
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		d, ok := dates.ParseWeekday(tok)
		if !ok {
			d, ok = dates.ParseWeekday(strings.TrimSuffix(tok, "s"))
		}
		if !ok {
			return nil, false
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// 2. Keyword-to-interval table.

func parseKeywordIntervals(s string, _ Options) (Rule, bool) {
	switch s {
	case "weekly", "every week", "each week":
		return Rule{Kind: KindWeekly, Interval: 1}, true
	case "biweekly", "fortnightly", "every other week":
		return Rule{Kind: KindWeekly, Interval: 2}, true
	case "monthly", "every month", "each month":
		return Rule{Kind: KindMonthlyDay, Interval: 1}, true
	case "bimonthly", "every other month":
		return Rule{Kind: KindMonthlyDay, Interval: 2}, true
	case "quarterly", "every quarter", "each quarter":
		return Rule{Kind: KindMonthlyDay, Interval: 3}, true
	case "semiannually", "semi-annually", "semiannual", "twice a year", "twice yearly", "every half year":
		return Rule{Kind: KindMonthlyDay, Interval: 6}, true
	case "yearly", "annually", "every year", "each year":
		return Rule{Kind: KindYearly}, true
	}
	return Rule{}, false
}

// 3. Simple daily, weekday, and weekend anchors.

func parseSimpleAnchors(s string, _ Options) (Rule, bool) {
	switch s {
	case "daily", "every day", "each day":
		return Rule{Kind: KindDaily, Interval: 1}, true
	case "every other day":
		return Rule{Kind: KindDaily, Interval: 2}, true
	case "every weekday", "each weekday", "weekdays", "every business day", "every work day", "every workday":
		return Rule{Kind: KindWeekday}, true
	case "every weekend", "each weekend", "weekends":
		return Rule{Kind: KindWeekly, Interval: 1, ByDay: []time.Weekday{time.Saturday}}, true
	}
	return Rule{}, false
}

// 4. Weekly and every-N-day forms.

var (
	everyNWeeksRe  = regexp.MustCompile(`^(?:every|each) (\S+) weeks?(?: on (.+))?$`)
	weeklyOnRe     = regexp.MustCompile(`^(?:(?:every|each) week|weekly) on (.+)$`)
	everyNDaysRe   = regexp.MustCompile(`^(?:every|each) (\S+) days?$`)
	everyNBizRe    = regexp.MustCompile(`^(?:every|each) (\S+) (?:business|work(?:ing)?) days?$`)
	everyOtherDay  = regexp.MustCompile(`^(?:every|each) other (.+)$`)
	everyDayListRe = regexp.MustCompile(`^(?:every|each) (.+)$`)
)

func parseWeeklyForms(s string, _ Options) (Rule, bool) {
	if m := everyNBizRe.FindStringSubmatch(s); m != nil {
		if n, ok := parseCount(m[1]); ok {
			return Rule{Kind: KindBusinessDaily, Interval: n}, true
		}
	}
	if m := everyNWeeksRe.FindStringSubmatch(s); m != nil {
		if n, ok := parseCount(m[1]); ok {
			r := Rule{Kind: KindWeekly, Interval: n}
			if m[2] != "" {
				days, ok := parseDayList(m[2])
				if !ok {
					return Rule{}, false
				}
				r.ByDay = days
			}
			return r, true
		}
	}
	if m := weeklyOnRe.FindStringSubmatch(s); m != nil {
		if days, ok := parseDayList(m[1]); ok {
			return Rule{Kind: KindWeekly, Interval: 1, ByDay: days}, true
		}
	}
	if m := everyNDaysRe.FindStringSubmatch(s); m != nil {
		if n, ok := parseCount(m[1]); ok {
			return Rule{Kind: KindDaily, Interval: n}, true
		}
	}
	if m := everyOtherDay.FindStringSubmatch(s); m != nil {
		if days, ok := parseDayList(m[1]); ok && len(days) == 1 {
			return Rule{Kind: KindWeekly, Interval: 2, ByDay: days}, true
		}
	}
	if m := everyDayListRe.FindStringSubmatch(s); m != nil {
		if days, ok := parseDayList(m[1]); ok {
			return Rule{Kind: KindWeekly, Interval: 1, ByDay: days}, true
		}
	}
	return Rule{}, false
}

var countWords = map[string]int{
	"other": 2, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

func parseCount(tok string) (int, bool) {
	if n, ok := countWords[tok]; ok {
		return n, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > 365 {
		return 0, false
	}
	return n, true
}

// 5. Monthly variants.

var (
	lastDayOfMonthRe  = regexp.MustCompile(`^(?:on )?(?:the )?last day of (?:the |every |each )?month$`)
	nthWeekdayBoundRe = regexp.MustCompile(`^(?:every|each|the) (first|last) (?:weekday|business day)(?: of (?:the|every|each) month)?$`)
	nthFromEndRe      = regexp.MustCompile(`^(?:every|each|the) (?:(second|third|2nd|3rd)[ -]to[ -]last|penultimate) (\S+?)s?(?: of (?:the|every|each) month)?$`)
	ordinalWeekdayRe  = regexp.MustCompile(`^(?:every|each|the) (.+?) (\S+?)s?(?: of (?:the|every|each) month)?$`)
	dayListOfMonthRe  = regexp.MustCompile(`^(?:on )?the (.+?)(?: days?)? of (?:the|every|each) month$`)
	monthOnDaysRe     = regexp.MustCompile(`^(?:every|each) month on (?:the )?(.+)$`)
	everyNMonthsRe    = regexp.MustCompile(`^(?:every|each) (\S+) months?(?: on (?:the )?(\d{1,2})(?:st|nd|rd|th)?)?$`)
	bareMonthDayRe    = regexp.MustCompile(`^(?:every|each) (\d{1,2})(?:st|nd|rd|th)$`)
)

func parseMonthlyForms(s string, _ Options) (Rule, bool) {
	if lastDayOfMonthRe.MatchString(s) {
		return Rule{Kind: KindMonthlyLastDay}, true
	}
	if m := nthWeekdayBoundRe.FindStringSubmatch(s); m != nil {
		return Rule{Kind: KindMonthlyNthWeekday, Which: Which(m[1])}, true
	}
	if m := nthFromEndRe.FindStringSubmatch(s); m != nil {
		if wd, ok := dates.ParseWeekday(m[2]); ok {
			n := 2
			switch m[1] {
			case "third", "3rd":
				n = 3
			case "", "second", "2nd":
				n = 2
			}
			return Rule{Kind: KindMonthlyNthFromEnd, NthFromEnd: n, Weekday: wd}, true
		}
	}
	if m := everyNMonthsRe.FindStringSubmatch(s); m != nil {
		if n, ok := parseCount(m[1]); ok {
			day := 0
			if m[2] != "" {
				day, _ = strconv.Atoi(m[2])
			}
			return Rule{Kind: KindMonthlyDay, Interval: n, Day: day}, true
		}
	}
	if m := ordinalWeekdayRe.FindStringSubmatch(s); m != nil {
		if r, ok := buildOrdinalWeekday(m[1], m[2]); ok {
			return r, true
		}
	}
	if m := dayListOfMonthRe.FindStringSubmatch(s); m != nil {
		if r, ok := buildMonthlyDayList(m[1]); ok {
			return r, true
		}
	}
	if m := monthOnDaysRe.FindStringSubmatch(s); m != nil {
		if r, ok := buildMonthlyDayList(m[1]); ok {
			return r, true
		}
	}
	if m := bareMonthDayRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		return Rule{Kind: KindMonthlyDay, Interval: 1, Day: day}, true
	}
	return Rule{}, false
}

// buildOrdinalWeekday handles "every 2nd tuesday", "the 1st and 3rd friday
// of the month", "the last monday".
func buildOrdinalWeekday(ordinalsText, weekdayText string) (Rule, bool) {
	wd, ok := dates.ParseWeekday(weekdayText)
	if !ok {
		return Rule{}, false
	}
	ordinals, ok := parseOrdinalList(ordinalsText)
	if !ok {
		return Rule{}, false
	}
	if len(ordinals) == 1 {
		return Rule{Kind: KindMonthlyNth, Interval: 1, Ordinal: ordinals[0], Weekday: wd}, true
	}
	return Rule{Kind: KindMonthlyMultiNth, Ordinals: ordinals, Weekday: wd}, true
}

var listSepRe = regexp.MustCompile(`\s*(?:,|&|\band\b)\s*`)

func parseOrdinalList(s string) ([]int, bool) {
	tokens := listSepRe.Split(s, -1)
	out := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		o, ok := parseOrdinalToken(tok)
		if !ok {
			return nil, false
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func parseOrdinalToken(tok string) (int, bool) {
	switch tok {
	case "first", "1st":
		return 1, true
	case "second", "2nd":
		return 2, true
	case "third", "3rd":
		return 3, true
	case "fourth", "4th":
		return 4, true
	case "fifth", "5th":
		return 5, true
	case "last":
		return OrdinalLast, true
	}
	return 0, false
}

var monthDayTokenRe = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?$`)

// buildMonthlyDayList handles numeric day lists with an optional end-of-month
// entry: "1st and 15th", "1st, 10th and 20th", "1st and last day",
// "15th", "last day".
func buildMonthlyDayList(s string) (Rule, bool) {
	tokens := listSepRe.Split(s, -1)
	days := make([]int, 0, len(tokens))
	includeLast := false
	for _, tok := range tokens {
		tok = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(tok), " day"))
		if tok == "" {
			continue
		}
		if tok == "last" || tok == "last day" {
			includeLast = true
			continue
		}
		m := monthDayTokenRe.FindStringSubmatch(tok)
		if m == nil {
			return Rule{}, false
		}
		d, err := strconv.Atoi(m[1])
		if err != nil || d < 1 || d > 31 {
			return Rule{}, false
		}
		days = append(days, d)
	}
	sort.Ints(days)
	switch {
	case len(days) == 0 && includeLast:
		return Rule{Kind: KindMonthlyLastDay}, true
	case len(days) == 1 && !includeLast:
		return Rule{Kind: KindMonthlyDay, Interval: 1, Day: days[0]}, true
	case len(days) > 0 && includeLast:
		return Rule{Kind: KindMonthlyMixedDay, Days: days, IncludeLast: true}, true
	case len(days) > 1:
		return Rule{Kind: KindMonthlyMultiDay, Days: days}, true
	}
	return Rule{}, false
}

// 6. Yearly variants.

var (
	yearlyMonthDayRe = regexp.MustCompile(`^(?:every|each|annually on|every year on) (\S+) (\d{1,2})(?:st|nd|rd|th)?$`)
	yearlyNthRe      = regexp.MustCompile(`^(?:every|each|the) (\S+) (\S+?)s? (?:of|in) (\S+)(?: every year)?$`)
)

func parseYearlyForms(s string, _ Options) (Rule, bool) {
	if m := yearlyMonthDayRe.FindStringSubmatch(s); m != nil {
		if month, ok := dates.ParseMonth(m[1]); ok {
			day, err := strconv.Atoi(m[2])
			if err == nil && day >= 1 && day <= 31 {
				return Rule{Kind: KindYearly, Month: month, Day: day}, true
			}
		}
	}
	if m := yearlyNthRe.FindStringSubmatch(s); m != nil {
		ordinal, okOrd := parseOrdinalToken(m[1])
		wd, okDay := dates.ParseWeekday(m[2])
		month, okMonth := dates.ParseMonth(m[3])
		if okOrd && okDay && okMonth {
			return Rule{Kind: KindYearlyNth, Month: month, Ordinal: ordinal, Weekday: wd}, true
		}
	}
	return Rule{}, false
}
