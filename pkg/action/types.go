package action

import (
	"time"

	"tableflip.dev/momentum/pkg/backend"
	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/lists"
)

const (
	DefaultPrepTime      = 45 * time.Minute
	DefaultBumpAfterDays = 3
	DefaultSlotDuration  = 30 * time.Minute
	DefaultDayStart      = 9
	DefaultDayEnd        = 17
	DefaultSlotLimit     = 5
	// SlotWindow is how far ahead ProposeSlots looks.
	SlotWindow = 72 * time.Hour
)

// Options tune the flows. Zero values fall back to the defaults above.
type Options struct {
	PrepTime      time.Duration
	BumpAfterDays int
	SlotDuration  time.Duration
	DayStart      int
	DayEnd        int
	SlotLimit     int
	// Location is the zone working hours are evaluated in. Defaults to the
	// location of Now.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.PrepTime <= 0 {
		o.PrepTime = DefaultPrepTime
	}
	if o.BumpAfterDays <= 0 {
		o.BumpAfterDays = DefaultBumpAfterDays
	}
	if o.SlotDuration <= 0 {
		o.SlotDuration = DefaultSlotDuration
	}
	if o.DayStart <= 0 && o.DayEnd <= 0 {
		o.DayStart, o.DayEnd = DefaultDayStart, DefaultDayEnd
	}
	if o.SlotLimit <= 0 {
		o.SlotLimit = DefaultSlotLimit
	}
	return o
}

// PlanRequest asks for the plan-this flow on an i-owe commitment.
type PlanRequest struct {
	Commitment commitment.Commitment
	// PrepTime is the length of the calendar block ending at the deadline.
	PrepTime    time.Duration
	CreateTask  bool
	CreateDraft bool
	ThreadID    string
	To          string
}

// PlanResult holds whatever sub-actions succeeded. Unrequested or failed
// parts are nil and absent from the encoded form.
type PlanResult struct {
	CalendarEvent *backend.Event `json:"calendarEvent,omitempty" yaml:"calendarEvent,omitempty"`
	Task          *backend.Task  `json:"task,omitempty" yaml:"task,omitempty"`
	Draft         *backend.Draft `json:"draft,omitempty" yaml:"draft,omitempty"`
}

// WaitingRequest asks for the waiting-on flow.
type WaitingRequest struct {
	Commitment    commitment.Commitment
	BumpAfterDays int
	ThreadID      string
	To            string
}

type WaitingResult struct {
	Task  *backend.Task  `json:"task,omitempty" yaml:"task,omitempty"`
	Draft *backend.Draft `json:"draft,omitempty" yaml:"draft,omitempty"`
}

type SlotsRequest struct {
	ThreadID string
}

type SlotsResult struct {
	Slots []backend.Interval `json:"slots" yaml:"slots"`
}

type ConnectionResult struct {
	Success bool            `json:"success" yaml:"success"`
	Profile backend.Profile `json:"profile" yaml:"profile"`
}

type InitResult struct {
	Lists lists.Mapping `json:"lists" yaml:"lists"`
}
