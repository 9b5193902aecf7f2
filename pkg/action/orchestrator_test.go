package action

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"tableflip.dev/momentum/pkg/auth"
	"tableflip.dev/momentum/pkg/backend"
	"tableflip.dev/momentum/pkg/backend/backendtest"
	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/failure"
	"tableflip.dev/momentum/pkg/lists"
	"tableflip.dev/momentum/pkg/store"
)

// 2026-10-14 is a Wednesday.
var now = time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)

func okTokens() *auth.Cache {
	return auth.NewCache(auth.StaticProvider{AccessToken: "tok"}, time.Second)
}

func failingTokens() *auth.Cache {
	return auth.NewCache(auth.ProviderFunc(func(context.Context) (*oauth2.Token, error) {
		return nil, errors.New("user cancelled")
	}), time.Second)
}

func newOrchestrator(tokens backend.TokenSource) (*Orchestrator, *backendtest.Fake) {
	fake := backendtest.New()
	return &Orchestrator{
		Tokens:  tokens,
		Backend: fake,
		Lists:   &lists.Bootstrapper{Store: store.NewMemory(), Backend: fake},
		Now:     func() time.Time { return now },
	}, fake
}

func owed() commitment.Commitment {
	return commitment.Commitment{
		Type:       commitment.TypeIOwe,
		Title:      "Send the quarterly report",
		Deadline:   commitment.At(time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)),
		Confidence: commitment.ConfidenceMatched,
		SourceText: "by Friday",
	}
}

func TestPlanThisCreatesEverything(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	res, err := o.PlanThis(context.Background(), PlanRequest{
		Commitment:  owed(),
		CreateTask:  true,
		CreateDraft: true,
		ThreadID:    "thread-1",
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if res.CalendarEvent == nil || res.Task == nil || res.Draft == nil {
		t.Fatalf("expected all three results, got %+v", res)
	}

	deadline := owed().Deadline.Time
	if !res.CalendarEvent.End.Equal(deadline) || !res.CalendarEvent.Start.Equal(deadline.Add(-DefaultPrepTime)) {
		t.Fatalf("unexpected block %v - %v", res.CalendarEvent.Start, res.CalendarEvent.End)
	}
	if res.CalendarEvent.Summary != "Prep: Send the quarterly report" {
		t.Fatalf("unexpected summary %q", res.CalendarEvent.Summary)
	}

	if !res.Task.Due.Equal(deadline) {
		t.Fatalf("task due %v, want %v", res.Task.Due, deadline)
	}
	if res.Task.ListID != fake.Lists[0].ID || fake.Lists[0].Title != lists.DefaultNames.IOwe {
		t.Fatalf("task should land in the owed list, got %q (lists %+v)", res.Task.ListID, fake.Lists)
	}

	if res.Draft.ThreadID != "thread-1" || res.Draft.Subject != "Re: Send the quarterly report" {
		t.Fatalf("unexpected draft %+v", res.Draft)
	}
	if !strings.Contains(res.Draft.Body, "Friday, October 16 at 10:00 AM") {
		t.Fatalf("draft should mention the deadline:\n%s", res.Draft.Body)
	}
}

func TestPlanThisCustomPrep(t *testing.T) {
	o, _ := newOrchestrator(okTokens())
	res, err := o.PlanThis(context.Background(), PlanRequest{Commitment: owed(), PrepTime: 2 * time.Hour})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if got := res.CalendarEvent.End.Sub(res.CalendarEvent.Start); got != 2*time.Hour {
		t.Fatalf("expected a two hour block, got %s", got)
	}
}

func TestPlanThisOnlyCalendarEvent(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	res, err := o.PlanThis(context.Background(), PlanRequest{Commitment: owed()})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected only calendarEvent, got %s", b)
	}
	if _, ok := keys["calendarEvent"]; !ok {
		t.Fatalf("expected calendarEvent, got %s", b)
	}
	if fake.Calls("CreateTaskList") != 0 || fake.Calls("CreateTask") != 0 || fake.Calls("CreateDraft") != 0 {
		t.Fatalf("unexpected backend calls beyond the calendar block")
	}
}

func TestPlanThisCalendarFailureStops(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	fake.Fail["CreateEvent"] = failure.Backend("create event", 500, "down")
	res, err := o.PlanThis(context.Background(), PlanRequest{Commitment: owed(), CreateTask: true, CreateDraft: true})
	if !failure.Is(err, failure.KindBackend) {
		t.Fatalf("expected backend failure, got %v", err)
	}
	if res.CalendarEvent != nil || res.Task != nil || res.Draft != nil {
		t.Fatalf("expected no results, got %+v", res)
	}
	if fake.Calls("CreateTask") != 0 || fake.Calls("CreateDraft") != 0 {
		t.Fatalf("nothing should follow a failed calendar block")
	}
}

func TestPlanThisPartialSuccess(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	fake.Fail["CreateTask"] = failure.Backend("create task", 503, "busy")
	res, err := o.PlanThis(context.Background(), PlanRequest{Commitment: owed(), CreateTask: true, CreateDraft: true})
	if !failure.Is(err, failure.KindBackend) {
		t.Fatalf("expected backend failure, got %v", err)
	}
	if res.CalendarEvent == nil || res.Draft == nil {
		t.Fatalf("calendar block and draft should survive, got %+v", res)
	}
	if res.Task != nil {
		t.Fatalf("task should be absent, got %+v", res.Task)
	}
	if len(fake.Events) != 1 {
		t.Fatalf("prior successes must not be rolled back")
	}
}

func TestPlanThisBothOptionalStepsFail(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	fake.Fail["CreateTaskList"] = failure.Backend("create task list", 500, "a")
	fake.Fail["CreateDraft"] = failure.Timeout("create draft", context.DeadlineExceeded)
	res, err := o.PlanThis(context.Background(), PlanRequest{Commitment: owed(), CreateTask: true, CreateDraft: true})
	if !failure.Is(err, failure.KindBackend) || !failure.Is(err, failure.KindTimeout) {
		t.Fatalf("expected both failures joined, got %v", err)
	}
	if res.CalendarEvent == nil {
		t.Fatalf("calendar block should be reported")
	}
}

func TestAuthFailureMakesNoBackendCalls(t *testing.T) {
	ctx := context.Background()
	o, fake := newOrchestrator(failingTokens())

	if _, err := o.PlanThis(ctx, PlanRequest{Commitment: owed(), CreateTask: true, CreateDraft: true}); !failure.Is(err, failure.KindAuth) {
		t.Fatalf("plan-this: expected auth failure, got %v", err)
	}
	if _, err := o.WaitingOn(ctx, WaitingRequest{Commitment: owed()}); !failure.Is(err, failure.KindAuth) {
		t.Fatalf("waiting-on: expected auth failure, got %v", err)
	}
	if _, err := o.TestConnection(ctx); !failure.Is(err, failure.KindAuth) {
		t.Fatalf("test-connection: expected auth failure, got %v", err)
	}
	if _, err := o.ProposeSlots(ctx, SlotsRequest{}); !failure.Is(err, failure.KindAuth) {
		t.Fatalf("propose-slots: expected auth failure, got %v", err)
	}
	if _, err := o.InitializeAuth(ctx); !failure.Is(err, failure.KindAuth) {
		t.Fatalf("initialize-auth: expected auth failure, got %v", err)
	}
	if n := fake.TotalCalls(); n != 0 {
		t.Fatalf("expected no backend calls, got %d", n)
	}
}

func TestInvalidCommitmentIsRejected(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	c := owed()
	c.Title = ""
	if _, err := o.PlanThis(context.Background(), PlanRequest{Commitment: c}); !failure.Is(err, failure.KindInvalid) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if _, err := o.PlanThis(context.Background(), PlanRequest{Commitment: owed(), PrepTime: -time.Minute}); !failure.Is(err, failure.KindInvalid) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if fake.TotalCalls() != 0 {
		t.Fatalf("invalid requests must not reach the backend")
	}
}

func TestPlanThisRejectsWaitingOn(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	c := owed()
	c.Type = commitment.TypeWaitingOn
	_, err := o.PlanThis(context.Background(), PlanRequest{Commitment: c, CreateTask: true, CreateDraft: true})
	if !failure.Is(err, failure.KindInvalid) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if fake.TotalCalls() != 0 {
		t.Fatalf("rejected plans must not reach the backend")
	}
}

func TestRecipientWithLineBreakIsRejected(t *testing.T) {
	ctx := context.Background()
	o, fake := newOrchestrator(okTokens())
	to := "boss@example.com\r\nBcc: attacker@evil.test"

	if _, err := o.PlanThis(ctx, PlanRequest{Commitment: owed(), CreateDraft: true, To: to}); !failure.Is(err, failure.KindInvalid) {
		t.Fatalf("plan-this: expected invalid request, got %v", err)
	}
	if _, err := o.WaitingOn(ctx, WaitingRequest{Commitment: owed(), To: to}); !failure.Is(err, failure.KindInvalid) {
		t.Fatalf("waiting-on: expected invalid request, got %v", err)
	}
	if fake.TotalCalls() != 0 {
		t.Fatalf("rejected requests must not reach the backend")
	}

	res, err := o.PlanThis(ctx, PlanRequest{Commitment: owed(), CreateDraft: true, To: "Boss <boss@example.com>"})
	if err != nil {
		t.Fatalf("plan-this: %v", err)
	}
	if res.Draft == nil || res.Draft.To != "Boss <boss@example.com>" {
		t.Fatalf("unexpected draft %+v", res.Draft)
	}
}

func TestWaitingOn(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	c := owed()
	c.Type = commitment.TypeWaitingOn
	res, err := o.WaitingOn(context.Background(), WaitingRequest{Commitment: c, ThreadID: "thread-2"})
	if err != nil {
		t.Fatalf("waiting-on: %v", err)
	}
	if res.Task == nil || res.Draft == nil {
		t.Fatalf("expected task and draft, got %+v", res)
	}
	if res.Task.Title != "Follow up: Send the quarterly report" {
		t.Fatalf("unexpected task title %q", res.Task.Title)
	}
	if want := now.AddDate(0, 0, DefaultBumpAfterDays); !res.Task.Due.Equal(want) {
		t.Fatalf("task due %v, want %v", res.Task.Due, want)
	}
	if res.Task.ListID != fake.Lists[1].ID || fake.Lists[1].Title != lists.DefaultNames.WaitingOn {
		t.Fatalf("task should land in the waiting-on list, got %q", res.Task.ListID)
	}
	if res.Draft.Subject != "Following up: Send the quarterly report" || res.Draft.ThreadID != "thread-2" {
		t.Fatalf("unexpected draft %+v", res.Draft)
	}
	if !strings.Contains(res.Draft.Body, "by Friday") {
		t.Fatalf("bump should quote the source text:\n%s", res.Draft.Body)
	}
}

func TestWaitingOnCustomBump(t *testing.T) {
	o, _ := newOrchestrator(okTokens())
	res, err := o.WaitingOn(context.Background(), WaitingRequest{Commitment: owed(), BumpAfterDays: 7})
	if err != nil {
		t.Fatalf("waiting-on: %v", err)
	}
	if want := now.AddDate(0, 0, 7); !res.Task.Due.Equal(want) {
		t.Fatalf("task due %v, want %v", res.Task.Due, want)
	}
}

func TestWaitingOnAttemptsDraftWhenTaskFails(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	fake.Fail["CreateTask"] = failure.Backend("create task", 500, "x")
	res, err := o.WaitingOn(context.Background(), WaitingRequest{Commitment: owed()})
	if !failure.Is(err, failure.KindBackend) {
		t.Fatalf("expected backend failure, got %v", err)
	}
	if res.Task != nil || res.Draft == nil {
		t.Fatalf("expected only the draft, got %+v", res)
	}
}

func TestProposeSlots(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	fake.BusyIntervals = []backend.Interval{
		{Start: now, End: now.Add(2 * time.Hour)},
	}
	res, err := o.ProposeSlots(context.Background(), SlotsRequest{})
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(res.Slots) != DefaultSlotLimit {
		t.Fatalf("expected %d slots, got %d", DefaultSlotLimit, len(res.Slots))
	}
	if want := now.Add(2 * time.Hour); !res.Slots[0].Start.Equal(want) {
		t.Fatalf("first slot %v, want %v", res.Slots[0].Start, want)
	}
	if fake.Calls("Busy") != 1 {
		t.Fatalf("expected one busy query")
	}
}

func TestTestConnection(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	fake.Account = backend.Profile{Email: "me@example.test"}
	res, err := o.TestConnection(context.Background())
	if err != nil {
		t.Fatalf("test connection: %v", err)
	}
	if !res.Success || res.Profile.Email != "me@example.test" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestInitializeAuthBootstrapsLists(t *testing.T) {
	o, fake := newOrchestrator(okTokens())
	res, err := o.InitializeAuth(context.Background())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !res.Lists.Complete() || fake.Calls("CreateTaskList") != 2 {
		t.Fatalf("expected both lists, got %+v", res)
	}
	if _, err := o.InitializeAuth(context.Background()); err != nil {
		t.Fatalf("second init: %v", err)
	}
	if fake.Calls("CreateTaskList") != 2 {
		t.Fatalf("second init must not create lists")
	}
}

func TestMissingLists(t *testing.T) {
	o, _ := newOrchestrator(okTokens())
	o.Lists = nil
	res, err := o.PlanThis(context.Background(), PlanRequest{Commitment: owed(), CreateTask: true})
	if !failure.Is(err, failure.KindMissing) {
		t.Fatalf("expected missing prerequisite, got %v", err)
	}
	if res.CalendarEvent == nil {
		t.Fatalf("calendar block does not depend on the list mapping")
	}
}
