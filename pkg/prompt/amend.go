// Package prompt lets the user review an inferred commitment before it is
// planned.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/manifoldco/promptui"

	"tableflip.dev/momentum/pkg/commitment"
)

// ConfidenceConfirmed is assigned once the user has amended a commitment.
const ConfidenceConfirmed = 1.0

var templates = &promptui.PromptTemplates{
	Prompt:  "{{ . }}: ",
	Valid:   "{{ . | green }}: ",
	Invalid: "{{ . | red }}: ",
	Success: "{{ . | bold }}: ",
}

// Amender asks for the type, title and deadline, offering the inferred
// values as editable defaults.
type Amender struct {
	In  io.Reader
	Out io.Writer
	Now func() time.Time
}

func (a Amender) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Amend returns c with the user's edits. Unchanged answers leave the field
// and its confidence alone.
func (a Amender) Amend(c commitment.Commitment) (commitment.Commitment, error) {
	types := []commitment.Type{commitment.TypeIOwe, commitment.TypeWaitingOn}
	cursor := 0
	if c.Type == commitment.TypeWaitingOn {
		cursor = 1
	}
	sel := promptui.Select{
		Label:     "Type",
		Items:     types,
		CursorPos: cursor,
		HideHelp:  true,
		Stdin:     a.stdin(),
		Stdout:    a.stdout(),
	}
	i, _, err := sel.Run()
	if err != nil {
		return c, fmt.Errorf("prompt: type: %w", err)
	}

	title, err := a.ask("Title", c.Title, ValidateTitle)
	if err != nil {
		return c, fmt.Errorf("prompt: title: %w", err)
	}

	now := a.now()
	current := c.Deadline.Format(time.RFC3339)
	answer, err := a.ask("Deadline", current, func(in string) error {
		_, err := ResolveDeadline(in, now)
		return err
	})
	if err != nil {
		return c, fmt.Errorf("prompt: deadline: %w", err)
	}

	out := c
	out.Type = types[i]
	out.Title = strings.TrimSpace(title)
	if strings.TrimSpace(answer) != current {
		deadline, err := ResolveDeadline(answer, now)
		if err != nil {
			return c, err
		}
		out.Deadline = commitment.At(deadline)
	}
	if out.Type != c.Type || out.Title != c.Title || !out.Deadline.Equal(c.Deadline.Time) {
		out.Confidence = ConfidenceConfirmed
	}
	return out, nil
}

func (a Amender) ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Templates: templates,
		Validate:  validate,
		Stdin:     a.stdin(),
		Stdout:    a.stdout(),
	}
	return p.Run()
}

func (a Amender) stdin() io.ReadCloser {
	if a.In == nil {
		return nil
	}
	return io.NopCloser(a.In)
}

func (a Amender) stdout() io.WriteCloser {
	if a.Out == nil {
		return nil
	}
	return nopWriteCloser{a.Out}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// ValidateTitle accepts non-blank titles up to commitment.TitleLimit runes.
func ValidateTitle(in string) error {
	in = strings.TrimSpace(in)
	if in == "" {
		return errors.New("title is empty")
	}
	if n := len([]rune(in)); n > commitment.TitleLimit {
		return fmt.Errorf("title is %d characters, limit is %d", n, commitment.TitleLimit)
	}
	return nil
}

var layouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

// ResolveDeadline accepts an RFC3339 timestamp, "2006-01-02 15:04", a bare
// date (17:00 local), or any phrase the deadline recognizer understands such
// as "by Monday" or "tomorrow".
func ResolveDeadline(in string, now time.Time) (time.Time, error) {
	in = strings.TrimSpace(in)
	if in == "" {
		return time.Time{}, errors.New("deadline is empty")
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, in, now.Location()); err == nil {
			return t, nil
		}
	}
	if d, err := time.ParseInLocation("2006-01-02", in, now.Location()); err == nil {
		return d.Add(17 * time.Hour), nil
	}
	if m := commitment.RecognizeDeadline(in, now); m.Pattern != "" {
		return m.Deadline, nil
	}
	return time.Time{}, fmt.Errorf("cannot read %q as a deadline", in)
}
