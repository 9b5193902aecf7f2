package action

import (
	"sort"
	"time"

	"tableflip.dev/momentum/pkg/backend"
)

// SlotOptions shape FreeSlots.
type SlotOptions struct {
	Duration time.Duration
	DayStart int
	DayEnd   int
	Limit    int
	Location *time.Location
}

// FreeSlots returns up to Limit slots of Duration inside working hours
// (DayStart to DayEnd, Monday to Friday) between from and to that do not
// overlap any busy interval. Slots start on Duration boundaries counted from
// local midnight.
func FreeSlots(from, to time.Time, busy []backend.Interval, opts SlotOptions) []backend.Interval {
	if opts.Duration <= 0 || opts.Limit <= 0 || !to.After(from) || opts.DayEnd <= opts.DayStart {
		return nil
	}
	loc := opts.Location
	if loc == nil {
		loc = from.Location()
	}
	from, to = from.In(loc), to.In(loc)
	merged := merge(busy)

	var slots []backend.Interval
	for day := midnight(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		start := later(day.Add(time.Duration(opts.DayStart)*time.Hour), from)
		end := earlier(day.Add(time.Duration(opts.DayEnd)*time.Hour), to)

		for t := ceil(start, opts.Duration); !t.Add(opts.Duration).After(end); {
			slot := backend.Interval{Start: t, End: t.Add(opts.Duration)}
			if b, hit := overlapping(merged, slot); hit {
				t = ceil(b.End.In(loc), opts.Duration)
				continue
			}
			slots = append(slots, slot)
			if len(slots) == opts.Limit {
				return slots
			}
			t = slot.End
		}
	}
	return slots
}

func merge(busy []backend.Interval) []backend.Interval {
	sorted := make([]backend.Interval, 0, len(busy))
	for _, b := range busy {
		if b.End.After(b.Start) {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var out []backend.Interval
	for _, b := range sorted {
		if n := len(out); n > 0 && !b.Start.After(out[n-1].End) {
			if b.End.After(out[n-1].End) {
				out[n-1].End = b.End
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

func overlapping(busy []backend.Interval, slot backend.Interval) (backend.Interval, bool) {
	for _, b := range busy {
		if b.Start.Before(slot.End) && b.End.After(slot.Start) {
			return b, true
		}
	}
	return backend.Interval{}, false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func ceil(t time.Time, d time.Duration) time.Time {
	if r := t.Sub(midnight(t)) % d; r != 0 {
		return t.Add(d - r)
	}
	return t
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
