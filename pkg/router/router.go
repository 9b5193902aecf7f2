// Package router accepts tagged requests, runs them without blocking the
// caller and delivers exactly one response per request.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/momentum/pkg/action"
	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/failure"
	"tableflip.dev/momentum/pkg/logging"
)

// Kind tags a request.
type Kind string

const (
	InitializeAuth  Kind = "initialize-auth"
	ParseCommitment Kind = "parse-commitment"
	PlanThis        Kind = "plan-this"
	ProposeSlots    Kind = "propose-slots"
	CreateWaitingOn Kind = "create-waiting-on"
	TestConnection  Kind = "test-connection"
)

// Kinds lists every request tag the router understands.
func Kinds() []Kind {
	return []Kind{InitializeAuth, ParseCommitment, PlanThis, ProposeSlots, CreateWaitingOn, TestConnection}
}

type Status string

const (
	StatusOK        Status = "ok"
	StatusError     Status = "error"
	StatusUnhandled Status = "unhandled"
)

type Request struct {
	ID      string          `json:"id,omitempty"`
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response answers a Request. An error response may still carry the partial
// payload of the sub-steps that succeeded.
type Response struct {
	ID      string          `json:"id"`
	Kind    Kind            `json:"kind"`
	Status  Status          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *failure.Body   `json:"error,omitempty"`
}

// Actions is the set of flows the router hands work to.
type Actions interface {
	PlanThis(ctx context.Context, req action.PlanRequest) (action.PlanResult, error)
	WaitingOn(ctx context.Context, req action.WaitingRequest) (action.WaitingResult, error)
	ProposeSlots(ctx context.Context, req action.SlotsRequest) (action.SlotsResult, error)
	TestConnection(ctx context.Context) (action.ConnectionResult, error)
	InitializeAuth(ctx context.Context) (action.InitResult, error)
}

// Defaults fill payload fields the caller left out.
type Defaults struct {
	PrepTime      time.Duration
	BumpAfterDays int
}

// Router dispatches requests to Actions.
type Router struct {
	Actions  Actions
	Now      func() time.Time
	Defaults Defaults
	Logger   logging.Logger

	wg sync.WaitGroup
}

// New returns a router over actions with the standard defaults.
func New(actions Actions, logger logging.Logger) *Router {
	return &Router{
		Actions: actions,
		Defaults: Defaults{
			PrepTime:      action.DefaultPrepTime,
			BumpAfterDays: action.DefaultBumpAfterDays,
		},
		Logger: logger,
	}
}

// Dispatch returns immediately. The request runs on its own goroutine and
// reply is called exactly once with its response.
func (r *Router) Dispatch(ctx context.Context, req Request, reply func(Response)) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	respond := once(reply)
	log := logging.OrNop(r.Logger)
	log.Printf("router: dispatch %s %s", req.Kind, req.ID)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				respond(errorResponse(req, nil, fmt.Errorf("router: %s panicked: %v", req.Kind, p)))
			}
		}()
		start := time.Now()
		resp := r.handle(ctx, req)
		log.Printf("router: %s %s finished %s in %s", req.Kind, req.ID, resp.Status, time.Since(start).Round(time.Millisecond))
		respond(resp)
	}()
}

// Do dispatches req and waits for its response.
func (r *Router) Do(ctx context.Context, req Request) Response {
	ch := make(chan Response, 1)
	r.Dispatch(ctx, req, func(resp Response) { ch <- resp })
	return <-ch
}

// Wait blocks until every dispatched request has been answered.
func (r *Router) Wait() {
	r.wg.Wait()
}

func once(reply func(Response)) func(Response) {
	var o sync.Once
	return func(resp Response) {
		o.Do(func() {
			if reply != nil {
				reply(resp)
			}
		})
	}
}

func (r *Router) handle(ctx context.Context, req Request) Response {
	if r.Actions == nil && req.Kind != ParseCommitment {
		return errorResponse(req, nil, failure.Missing(string(req.Kind), fmt.Errorf("no actions configured")))
	}

	var (
		payload any
		err     error
	)
	switch req.Kind {
	case ParseCommitment:
		payload, err = r.parse(req.Payload)
	case PlanThis:
		payload, err = r.plan(ctx, req.Payload)
	case CreateWaitingOn:
		payload, err = r.waiting(ctx, req.Payload)
	case ProposeSlots:
		payload, err = r.slots(ctx, req.Payload)
	case TestConnection:
		payload, err = nilOnError(r.Actions.TestConnection(ctx))
	case InitializeAuth:
		payload, err = nilOnError(r.Actions.InitializeAuth(ctx))
	default:
		return Response{
			ID:     req.ID,
			Kind:   req.Kind,
			Status: StatusUnhandled,
			Error:  failure.Describe(failure.Unhandled(string(req.Kind))),
		}
	}
	if err != nil {
		return errorResponse(req, payload, err)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return errorResponse(req, nil, fmt.Errorf("router: encode %s: %w", req.Kind, err))
	}
	return Response{ID: req.ID, Kind: req.Kind, Status: StatusOK, Payload: raw}
}

func errorResponse(req Request, partial any, err error) Response {
	resp := Response{ID: req.ID, Kind: req.Kind, Status: StatusError, Error: failure.Describe(err)}
	if partial != nil {
		if raw, mErr := json.Marshal(partial); mErr == nil && string(raw) != "{}" {
			resp.Payload = raw
		}
	}
	return resp
}

func nilOnError[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decode(kind Kind, raw json.RawMessage, into any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return failure.Invalid(string(kind), err)
	}
	return nil
}

func (r *Router) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Router) parse(raw json.RawMessage) (any, error) {
	var p ParsePayload
	if err := decode(ParseCommitment, raw, &p); err != nil {
		return nil, err
	}
	out := ParseResult{Commitment: commitment.Build(p.EmailText, r.now())}
	if p.ThreadID != nil {
		out.ThreadID = *p.ThreadID
	}
	return out, nil
}

func (r *Router) plan(ctx context.Context, raw json.RawMessage) (any, error) {
	var p PlanPayload
	if err := decode(PlanThis, raw, &p); err != nil {
		return nil, err
	}
	prep := r.Defaults.PrepTime
	if p.PrepTime != nil {
		prep = time.Duration(*p.PrepTime) * time.Minute
		if prep == 0 {
			return nil, failure.Invalid(string(PlanThis), fmt.Errorf("prepTime must be positive"))
		}
	}
	res, err := r.Actions.PlanThis(ctx, action.PlanRequest{
		Commitment:  p.Commitment,
		PrepTime:    prep,
		CreateTask:  boolOr(p.CreateTask, true),
		CreateDraft: boolOr(p.CreateDraft, true),
		ThreadID:    p.ThreadID,
		To:          p.To,
	})
	return res, err
}

func (r *Router) waiting(ctx context.Context, raw json.RawMessage) (any, error) {
	var p WaitingPayload
	if err := decode(CreateWaitingOn, raw, &p); err != nil {
		return nil, err
	}
	days := r.Defaults.BumpAfterDays
	if p.BumpAfterDays != nil {
		days = *p.BumpAfterDays
		if days == 0 {
			return nil, failure.Invalid(string(CreateWaitingOn), fmt.Errorf("bumpAfterDays must be positive"))
		}
	}
	res, err := r.Actions.WaitingOn(ctx, action.WaitingRequest{
		Commitment:    p.Commitment,
		BumpAfterDays: days,
		ThreadID:      p.ThreadID,
		To:            p.To,
	})
	return res, err
}

func (r *Router) slots(ctx context.Context, raw json.RawMessage) (any, error) {
	var p SlotsPayload
	if err := decode(ProposeSlots, raw, &p); err != nil {
		return nil, err
	}
	return nilOnError(r.Actions.ProposeSlots(ctx, action.SlotsRequest{ThreadID: p.ThreadID}))
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
