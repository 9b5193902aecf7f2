package commitment

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DeadlineMatch is the output of RecognizeDeadline.
type DeadlineMatch struct {
	Deadline   time.Time
	Confidence float64
	SourceText string
	// Pattern names the rule that matched, "" when none did.
	Pattern string
}

type resolver func(m []string, now time.Time) (time.Time, bool)

type deadlinePattern struct {
	name    string
	re      *regexp.Regexp
	resolve resolver
}

const (
	weekdayExpr = `(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`
	dateExpr    = `(\d{1,2})/(\d{1,2})`

	// endOfDayHour is the clock time used for EOD and M/D deadlines.
	endOfDayHour = 17
)

// Order is the tie-break: the first pattern that matches wins even when a
// later one would match earlier in the text.
var deadlinePatterns = []deadlinePattern{
	{"by weekday", regexp.MustCompile(`(?i)\bby\s+` + weekdayExpr + `\b`), resolveWeekday},
	{"by date", regexp.MustCompile(`(?i)\bby\s+` + dateExpr + `\b`), resolveDate},
	{"due weekday", regexp.MustCompile(`(?i)\bdue\s+` + weekdayExpr + `\b`), resolveWeekday},
	{"deadline date", regexp.MustCompile(`(?i)\bdeadline\b[^.!?\n]*?\b` + dateExpr + `\b`), resolveDate},
	{"no later than weekday", regexp.MustCompile(`(?i)\bno\s+later\s+than\s+` + weekdayExpr + `\b`), resolveWeekday},
	{"before weekday", regexp.MustCompile(`(?i)\bbefore\s+` + weekdayExpr + `\b`), resolveWeekday},
	{"eod", regexp.MustCompile(`(?i)\beod\b`), resolveEOD},
	{"tomorrow", regexp.MustCompile(`(?i)\btomorrow\b`), offsetDays(1)},
	{"next week", regexp.MustCompile(`(?i)\bnext\s+week\b`), offsetDays(7)},
}

// DeadlinePatterns lists the recognized pattern names in priority order.
func DeadlinePatterns() []string {
	names := make([]string, len(deadlinePatterns))
	for i, p := range deadlinePatterns {
		names[i] = p.name
	}
	return names
}

// RecognizeDeadline finds the first matching deadline pattern in text and
// resolves it relative to now.
func RecognizeDeadline(text string, now time.Time) DeadlineMatch {
	if strings.TrimSpace(text) == "" {
		return DeadlineMatch{
			Deadline:   now.AddDate(0, 0, 1),
			Confidence: ConfidenceEmpty,
		}
	}

	for _, p := range deadlinePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		// A date like 14/40 matches the shape but not the calendar; keep scanning.
		deadline, ok := p.resolve(m, now)
		if !ok {
			continue
		}
		return DeadlineMatch{
			Deadline:   deadline,
			Confidence: ConfidenceMatched,
			SourceText: m[0],
			Pattern:    p.name,
		}
	}

	return DeadlineMatch{
		Deadline:   now.AddDate(0, 0, 2),
		Confidence: ConfidenceDefault,
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NextWeekday returns the next occurrence of day strictly after now's date,
// keeping now's clock time. Today rolls forward a full week.
func NextWeekday(now time.Time, day time.Weekday) time.Time {
	days := (int(day) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

func resolveWeekday(m []string, now time.Time) (time.Time, bool) {
	day, ok := weekdays[strings.ToLower(m[1])]
	if !ok {
		return time.Time{}, false
	}
	return NextWeekday(now, day), true
}

// resolveDate reads M/D in the current year, rolling to next year when the
// date already passed.
func resolveDate(m []string, now time.Time) (time.Time, bool) {
	month, err := strconv.Atoi(m[len(m)-2])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[len(m)-1])
	if err != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(now.Year(), time.Month(month), day, endOfDayHour, 0, 0, 0, now.Location())
	if t.Day() != day {
		return time.Time{}, false
	}
	if t.Before(now) {
		t = t.AddDate(1, 0, 0)
	}
	return t, true
}

func resolveEOD(_ []string, now time.Time) (time.Time, bool) {
	eod := time.Date(now.Year(), now.Month(), now.Day(), endOfDayHour, 0, 0, 0, now.Location())
	if !eod.After(now) {
		eod = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
	}
	return eod, true
}

func offsetDays(n int) resolver {
	return func(_ []string, now time.Time) (time.Time, bool) {
		return now.AddDate(0, 0, n), true
	}
}
