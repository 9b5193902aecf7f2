// Package timeutil parses the compact durations accepted by flags and config
// ("45m", "1h30m", "3d", or a bare number in a caller-chosen unit).
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Day is the calendar-naive day used for offsets.
const Day = 24 * time.Hour

var (
	segmentPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	barePattern    = regexp.MustCompile(`^\s*(\d+)\s*$`)
	unitMap        = map[string]time.Duration{
		"s":       time.Second,
		"sec":     time.Second,
		"secs":    time.Second,
		"second":  time.Second,
		"seconds": time.Second,
		"m":       time.Minute,
		"min":     time.Minute,
		"mins":    time.Minute,
		"minute":  time.Minute,
		"minutes": time.Minute,
		"h":       time.Hour,
		"hr":      time.Hour,
		"hrs":     time.Hour,
		"hour":    time.Hour,
		"hours":   time.Hour,
		"d":       Day,
		"day":     Day,
		"days":    Day,
		"w":       7 * Day,
		"wk":      7 * Day,
		"wks":     7 * Day,
		"week":    7 * Day,
		"weeks":   7 * Day,
	}
)

// ParseDuration reads a duration such as "1w2d6h" or "45m". A bare number is
// multiplied by bare, so ParseDuration("45", time.Minute) is 45 minutes. An
// empty input returns fallback.
func ParseDuration(input string, bare, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return fallback, nil
	}

	if m := barePattern.FindStringSubmatch(trimmed); m != nil {
		if bare <= 0 {
			return 0, fmt.Errorf("duration %q needs a unit", input)
		}
		value, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration value %q: %w", m[1], err)
		}
		if value <= 0 {
			return 0, fmt.Errorf("duration must be greater than zero")
		}
		return time.Duration(value) * bare, nil
	}

	remaining := trimmed
	total := time.Duration(0)
	for len(remaining) > 0 {
		matches := segmentPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, fmt.Errorf("invalid duration segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration value %q: %w", matches[1], err)
		}
		base, ok := unitMap[matches[2]]
		if !ok {
			return 0, fmt.Errorf("unsupported duration unit %q", matches[2])
		}
		total += time.Duration(value) * base
		remaining = strings.TrimLeft(remaining[len(matches[0]):], " ")
	}

	if total <= 0 {
		return 0, fmt.Errorf("duration must be greater than zero")
	}
	return total, nil
}

// Days rounds d down to whole days, never below one.
func Days(d time.Duration) int {
	n := int(d / Day)
	if n < 1 {
		return 1
	}
	return n
}

// FormatDuration renders a duration using week/day/hour/minute/second tokens.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	type unit struct {
		label string
		value time.Duration
	}
	units := []unit{
		{"w", 7 * Day},
		{"d", Day},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	}

	var parts []string
	remaining := d
	for _, u := range units {
		if remaining < u.value {
			continue
		}
		count := remaining / u.value
		remaining -= count * u.value
		parts = append(parts, fmt.Sprintf("%d%s", count, u.label))
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, "")
}
