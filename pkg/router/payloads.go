package router

import "tableflip.dev/momentum/pkg/commitment"

type ParsePayload struct {
	EmailText string  `json:"emailText"`
	ThreadID  *string `json:"threadId"`
}

type ParseResult struct {
	Commitment commitment.Commitment `json:"commitment" yaml:"commitment"`
	ThreadID   string                `json:"threadId,omitempty" yaml:"threadId,omitempty"`
}

// PlanPayload leaves optional fields as pointers so absent and zero differ.
// PrepTime is in minutes.
type PlanPayload struct {
	Commitment  commitment.Commitment `json:"commitment"`
	PrepTime    *int                  `json:"prepTime,omitempty"`
	CreateTask  *bool                 `json:"createTask,omitempty"`
	CreateDraft *bool                 `json:"createDraft,omitempty"`
	ThreadID    string                `json:"threadId,omitempty"`
	To          string                `json:"to,omitempty"`
}

type WaitingPayload struct {
	Commitment    commitment.Commitment `json:"commitment"`
	BumpAfterDays *int                  `json:"bumpAfterDays,omitempty"`
	ThreadID      string                `json:"threadId,omitempty"`
	To            string                `json:"to,omitempty"`
}

type SlotsPayload struct {
	ThreadID string `json:"threadId,omitempty"`
}
