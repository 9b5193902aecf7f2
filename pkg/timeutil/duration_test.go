package timeutil

import (
	"testing"
	"time"
)

func TestParseDurationFallback(t *testing.T) {
	dur, err := ParseDuration("", time.Minute, 45*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dur != 45*time.Minute {
		t.Fatalf("expected fallback, got %v", dur)
	}
}

func TestParseDurationBareNumber(t *testing.T) {
	dur, err := ParseDuration("90", time.Minute, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dur != 90*time.Minute {
		t.Fatalf("expected 90m, got %v", dur)
	}

	days, err := ParseDuration(" 3 ", Day, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Days(days) != 3 {
		t.Fatalf("expected 3 days, got %d", Days(days))
	}
}

func TestParseDurationComposite(t *testing.T) {
	dur, err := ParseDuration("1w2d6h30m", time.Minute, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (7*24+2*24+6)*time.Hour + 30*time.Minute
	if dur != want {
		t.Fatalf("expected %v, got %v", want, dur)
	}
	if label := FormatDuration(dur); label != "1w2d6h30m" {
		t.Fatalf("unexpected label: %s", label)
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3 fortnights", "0m", "0"} {
		if _, err := ParseDuration(in, time.Minute, 0); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
	if _, err := ParseDuration("12", 0, 0); err == nil {
		t.Fatalf("expected error for bare number without a unit")
	}
}

func TestDaysFloor(t *testing.T) {
	if Days(2*time.Hour) != 1 {
		t.Fatalf("expected at least one day")
	}
	if Days(50*time.Hour) != 2 {
		t.Fatalf("expected two days")
	}
}
