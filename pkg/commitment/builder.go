package commitment

import (
	"strings"
	"time"
)

// Override forces fields after the independent classifiers ran. Zero fields
// are left alone.
type Override struct {
	Name       string
	Match      func(text string) bool
	Type       Type
	Title      string
	Confidence float64
}

var overrides = []Override{
	{
		Name: "past due invoice",
		Match: func(text string) bool {
			lower := strings.ToLower(text)
			return strings.Contains(lower, "invoice") && strings.Contains(lower, "past due")
		},
		Type:       TypeIOwe,
		Title:      InvoiceTitle,
		Confidence: ConfidenceOverride,
	},
}

// Overrides returns the override table in evaluation order.
func Overrides() []Override {
	out := make([]Override, len(overrides))
	copy(out, overrides)
	return out
}

// Builder composes the recognizers into a Commitment. Now defaults to
// time.Now and exists so tests can fix the clock.
type Builder struct {
	Now func() time.Time
}

// Build parses text. It never fails; empty text yields the documented
// low-confidence defaults.
func (b Builder) Build(text string) Commitment {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return Build(text, now())
}

// Build parses text relative to now.
func Build(text string, now time.Time) Commitment {
	match := RecognizeDeadline(text, now)
	c := Commitment{
		Type:       TypeIOwe,
		Title:      DefaultTitle,
		Deadline:   At(match.Deadline),
		Confidence: match.Confidence,
		SourceText: match.SourceText,
	}
	if strings.TrimSpace(text) == "" {
		return c
	}

	c.Type = ClassifyIntent(text)
	c.Title = ExtractTitle(text)
	return applyOverrides(c, text)
}

// applyOverrides runs last and wins unconditionally on the fields it sets.
func applyOverrides(c Commitment, text string) Commitment {
	for _, o := range overrides {
		if !o.Match(text) {
			continue
		}
		if o.Type != "" {
			c.Type = o.Type
		}
		if o.Title != "" {
			c.Title = o.Title
		}
		if o.Confidence != 0 {
			c.Confidence = o.Confidence
		}
	}
	return c
}
