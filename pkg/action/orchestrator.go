// Package action turns a commitment into calendar blocks, tasks and drafts.
package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/momentum/pkg/backend"
	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/failure"
	"tableflip.dev/momentum/pkg/lists"
	"tableflip.dev/momentum/pkg/logging"
)

// ListEnsurer yields the task list mapping, creating the lists if needed.
type ListEnsurer interface {
	Ensure(ctx context.Context) (lists.Mapping, error)
}

// Orchestrator runs the multi-step flows. Every flow passes the token gate
// first so an auth failure never reaches the backend.
type Orchestrator struct {
	Tokens  backend.TokenSource
	Backend backend.Backend
	Lists   ListEnsurer
	Now     func() time.Time
	Options Options
	Logger  logging.Logger
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) opts() Options {
	return o.Options.withDefaults()
}

func (o *Orchestrator) log() logging.Logger {
	return logging.OrNop(o.Logger)
}

func (o *Orchestrator) gate(ctx context.Context, op string) error {
	if o.Tokens == nil {
		return failure.Auth(op, errors.New("no token source configured"))
	}
	if _, err := o.Tokens.Token(ctx); err != nil {
		if failure.KindOf(err) == "" {
			err = failure.Auth(op, err)
		}
		return err
	}
	if o.Backend == nil {
		return failure.Missing(op, errors.New("backend is not configured"))
	}
	return nil
}

func (o *Orchestrator) ensureLists(ctx context.Context, op string) (lists.Mapping, error) {
	if o.Lists == nil {
		return lists.Mapping{}, failure.Missing(op, errors.New("task lists are not configured"))
	}
	return o.Lists.Ensure(ctx)
}

// PlanThis blocks prep time before the deadline, then creates the task and
// the reply draft when asked. A failed calendar block stops the flow. Task
// and draft are independent: whichever succeeds is returned together with
// the joined error of the ones that did not.
func (o *Orchestrator) PlanThis(ctx context.Context, req PlanRequest) (PlanResult, error) {
	const op = "plan-this"
	var res PlanResult

	if err := req.Commitment.Validate(); err != nil {
		return res, failure.Invalid(op, err)
	}
	if req.Commitment.Type != commitment.TypeIOwe {
		return res, failure.Invalid(op, fmt.Errorf("%s commitments are tracked with create-waiting-on", req.Commitment.Type))
	}
	if req.PrepTime < 0 {
		return res, failure.Invalid(op, fmt.Errorf("negative prep time %s", req.PrepTime))
	}
	if req.CreateDraft {
		if _, err := backend.Recipients(req.To); err != nil {
			return res, failure.Invalid(op, err)
		}
	}
	prep := req.PrepTime
	if prep == 0 {
		prep = o.opts().PrepTime
	}
	if err := o.gate(ctx, op); err != nil {
		return res, err
	}

	c := req.Commitment
	deadline := c.Deadline.Time
	event, err := o.Backend.CreateEvent(ctx, backend.Event{
		Summary:     "Prep: " + c.Title,
		Description: c.SourceText,
		Start:       deadline.Add(-prep),
		End:         deadline,
	})
	if err != nil {
		o.log().Printf("plan-this: calendar block for %q failed: %v", c.Title, err)
		return res, err
	}
	res.CalendarEvent = &event

	var g errgroup.Group
	var taskErr, draftErr error
	if req.CreateTask {
		g.Go(func() error {
			m, err := o.ensureLists(ctx, op)
			if err != nil {
				taskErr = err
				return err
			}
			task, err := o.Backend.CreateTask(ctx, m.IOwe, backend.Task{Title: c.Title, Notes: c.SourceText, Due: deadline})
			if err != nil {
				taskErr = err
				return err
			}
			res.Task = &task
			return nil
		})
	}
	if req.CreateDraft {
		g.Go(func() error {
			draft, err := o.draft(ctx, replyDraft, c, req.ThreadID, req.To)
			if err != nil {
				draftErr = err
				return err
			}
			res.Draft = &draft
			return nil
		})
	}
	// Each branch records its own error; Wait only tells us one of them.
	_ = g.Wait()

	if err := errors.Join(taskErr, draftErr); err != nil {
		o.log().Printf("plan-this: %q partially planned: %v", c.Title, err)
		return res, err
	}
	return res, nil
}

// WaitingOn files a follow-up task due after BumpAfterDays and drafts a bump
// message. The draft is attempted even when the task fails.
func (o *Orchestrator) WaitingOn(ctx context.Context, req WaitingRequest) (WaitingResult, error) {
	const op = "create-waiting-on"
	var res WaitingResult

	if err := req.Commitment.Validate(); err != nil {
		return res, failure.Invalid(op, err)
	}
	if req.BumpAfterDays < 0 {
		return res, failure.Invalid(op, fmt.Errorf("negative bump delay %d", req.BumpAfterDays))
	}
	if _, err := backend.Recipients(req.To); err != nil {
		return res, failure.Invalid(op, err)
	}
	days := req.BumpAfterDays
	if days == 0 {
		days = o.opts().BumpAfterDays
	}
	if err := o.gate(ctx, op); err != nil {
		return res, err
	}

	c := req.Commitment
	var taskErr error
	if m, err := o.ensureLists(ctx, op); err != nil {
		taskErr = err
	} else {
		task, err := o.Backend.CreateTask(ctx, m.WaitingOn, backend.Task{
			Title: "Follow up: " + c.Title,
			Notes: c.SourceText,
			Due:   o.now().AddDate(0, 0, days),
		})
		if err != nil {
			taskErr = err
		} else {
			res.Task = &task
		}
	}

	var draftErr error
	if draft, err := o.draft(ctx, bumpDraft, c, req.ThreadID, req.To); err != nil {
		draftErr = err
	} else {
		res.Draft = &draft
	}

	if err := errors.Join(taskErr, draftErr); err != nil {
		o.log().Printf("create-waiting-on: %q: %v", c.Title, err)
		return res, err
	}
	return res, nil
}

// ProposeSlots reads busy time for the next three days and offers free
// working-hour slots.
func (o *Orchestrator) ProposeSlots(ctx context.Context, req SlotsRequest) (SlotsResult, error) {
	if err := o.gate(ctx, "propose-slots"); err != nil {
		return SlotsResult{}, err
	}
	from := o.now()
	to := from.Add(SlotWindow)
	busy, err := o.Backend.Busy(ctx, from, to)
	if err != nil {
		return SlotsResult{}, err
	}
	opts := o.opts()
	slots := FreeSlots(from, to, busy, SlotOptions{
		Duration: opts.SlotDuration,
		DayStart: opts.DayStart,
		DayEnd:   opts.DayEnd,
		Limit:    opts.SlotLimit,
		Location: opts.Location,
	})
	if slots == nil {
		slots = []backend.Interval{}
	}
	return SlotsResult{Slots: slots}, nil
}

// TestConnection checks the credential against the mail profile endpoint.
func (o *Orchestrator) TestConnection(ctx context.Context) (ConnectionResult, error) {
	if err := o.gate(ctx, "test-connection"); err != nil {
		return ConnectionResult{}, err
	}
	p, err := o.Backend.Profile(ctx)
	if err != nil {
		return ConnectionResult{}, err
	}
	return ConnectionResult{Success: true, Profile: p}, nil
}

// InitializeAuth acquires the credential and bootstraps the task lists.
func (o *Orchestrator) InitializeAuth(ctx context.Context) (InitResult, error) {
	const op = "initialize-auth"
	if err := o.gate(ctx, op); err != nil {
		return InitResult{}, err
	}
	m, err := o.ensureLists(ctx, op)
	if err != nil {
		return InitResult{}, err
	}
	return InitResult{Lists: m}, nil
}

func (o *Orchestrator) draft(ctx context.Context, tmpl draftTemplate, c commitment.Commitment, thread, to string) (backend.Draft, error) {
	subject, body, err := tmpl.render(newDraftData(c, o.opts().Location))
	if err != nil {
		return backend.Draft{}, fmt.Errorf("action: render draft: %w", err)
	}
	return o.Backend.CreateDraft(ctx, backend.Draft{ThreadID: thread, To: to, Subject: subject, Body: body})
}
