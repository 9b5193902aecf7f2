// Package commitment turns free-form email text into a typed,
// confidence-scored Commitment using deadline patterns, intent phrases and
// title extraction.
package commitment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type says who owes the work.
type Type string

const (
	// TypeIOwe is something the reader promised to do.
	TypeIOwe Type = "i-owe"
	// TypeWaitingOn is something the reader expects from someone else.
	TypeWaitingOn Type = "waiting-on"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t == TypeIOwe || t == TypeWaitingOn
}

// Confidence calibration points. These are fixed, not tunable per call.
const (
	ConfidenceEmpty    = 0.1
	ConfidenceDefault  = 0.5
	ConfidenceMatched  = 0.75
	ConfidenceOverride = 0.9
)

const (
	DefaultTitle     = "Process email request"
	InvoiceTitle     = "Process past due invoice payment"
	TitleLimit       = 50
	TruncationMarker = "..."
)

// Commitment is the structured result of parsing an email. Callers may amend
// a copy before handing it to the orchestrator.
type Commitment struct {
	Type       Type      `json:"type" yaml:"type"`
	Title      string    `json:"title" yaml:"title"`
	Deadline   Timestamp `json:"deadline" yaml:"deadline"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
	// SourceText is the literal text that triggered deadline detection, or ""
	// when nothing matched. Used for highlighting only.
	SourceText string `json:"sourceText" yaml:"sourceText"`
}

// Validate checks an amended commitment before it is acted upon.
func (c Commitment) Validate() error {
	if !c.Type.Valid() {
		return fmt.Errorf("commitment: unknown type %q", c.Type)
	}
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("commitment: title is required")
	}
	if c.Deadline.IsZero() {
		return errors.New("commitment: deadline is required")
	}
	if c.Confidence < ConfidenceEmpty || c.Confidence > 1 {
		return fmt.Errorf("commitment: confidence %.2f out of range", c.Confidence)
	}
	return nil
}

// ParseTime reads an ISO 8601 / RFC 3339 timestamp.
func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Timestamp encodes as RFC 3339 in JSON and YAML.
type Timestamp struct {
	time.Time
}

// At wraps t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var timestamp string
	if err := json.Unmarshal(b, &timestamp); err != nil {
		return err
	}
	if timestamp == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	t.Time, err = ParseTime(timestamp)
	return err
}

func (t Timestamp) MarshalYAML() (interface{}, error) {
	if t.IsZero() {
		return "", nil
	}
	return t.Format(time.RFC3339), nil
}

func (t Timestamp) String() string {
	return t.Format(time.RFC3339)
}
