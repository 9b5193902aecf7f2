package router

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"tableflip.dev/momentum/pkg/action"
	"tableflip.dev/momentum/pkg/auth"
	"tableflip.dev/momentum/pkg/backend/backendtest"
	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/failure"
	"tableflip.dev/momentum/pkg/lists"
	"tableflip.dev/momentum/pkg/store"
)

// 2026-10-14 is a Wednesday.
var now = time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func newRouter(provider auth.Provider) (*Router, *backendtest.Fake) {
	fake := backendtest.New()
	o := &action.Orchestrator{
		Tokens:  auth.NewCache(provider, time.Second),
		Backend: fake,
		Lists:   &lists.Bootstrapper{Store: store.NewMemory(), Backend: fake},
		Now:     clock,
	}
	r := New(o, nil)
	r.Now = clock
	return r, fake
}

func okRouter() (*Router, *backendtest.Fake) {
	return newRouter(auth.StaticProvider{AccessToken: "tok"})
}

func request(t *testing.T, kind Kind, payload any) Request {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return Request{ID: "req-1", Kind: kind, Payload: raw}
}

func commitmentJSON() map[string]any {
	return map[string]any{
		"type":       "i-owe",
		"title":      "Send the quarterly report",
		"deadline":   "2026-10-16T10:00:00Z",
		"confidence": 0.75,
		"sourceText": "by Friday",
	}
}

func keys(t *testing.T, raw json.RawMessage) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("payload %s: %v", raw, err)
	}
	return m
}

func TestParseCommitment(t *testing.T) {
	r, fake := okRouter()
	resp := r.Do(context.Background(), request(t, ParseCommitment, map[string]any{
		"emailText": "Can you please send the report by Friday",
		"threadId":  "t-1",
	}))
	if resp.Status != StatusOK {
		t.Fatalf("unexpected response %+v", resp)
	}
	var out ParseResult
	if err := json.Unmarshal(resp.Payload, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	c := out.Commitment
	if c.Type != commitment.TypeWaitingOn || c.Confidence != commitment.ConfidenceMatched || c.SourceText != "by Friday" {
		t.Fatalf("unexpected commitment %+v", c)
	}
	if c.Deadline.Weekday() != time.Friday || !c.Deadline.After(now) {
		t.Fatalf("expected a future Friday, got %v", c.Deadline)
	}
	if out.ThreadID != "t-1" {
		t.Fatalf("thread id not echoed: %+v", out)
	}
	if fake.TotalCalls() != 0 {
		t.Fatalf("parsing must not touch the backend")
	}
}

func TestPlanThisOnlyCalendarEvent(t *testing.T) {
	r, fake := okRouter()
	resp := r.Do(context.Background(), request(t, PlanThis, map[string]any{
		"commitment":  commitmentJSON(),
		"createTask":  false,
		"createDraft": false,
	}))
	if resp.Status != StatusOK {
		t.Fatalf("unexpected response %+v", resp)
	}
	got := keys(t, resp.Payload)
	if _, ok := got["calendarEvent"]; !ok || len(got) != 1 {
		t.Fatalf("expected only calendarEvent, got %s", resp.Payload)
	}
	if fake.Calls("CreateTask") != 0 || fake.Calls("CreateDraft") != 0 {
		t.Fatalf("task and draft were not requested")
	}
}

func TestPlanThisDefaults(t *testing.T) {
	r, fake := okRouter()
	resp := r.Do(context.Background(), request(t, PlanThis, map[string]any{"commitment": commitmentJSON()}))
	if resp.Status != StatusOK {
		t.Fatalf("unexpected response %+v", resp)
	}
	got := keys(t, resp.Payload)
	for _, k := range []string{"calendarEvent", "task", "draft"} {
		if _, ok := got[k]; !ok {
			t.Fatalf("expected %s by default, got %s", k, resp.Payload)
		}
	}
	ev := fake.Events[0]
	if d := ev.End.Sub(ev.Start); d != 45*time.Minute {
		t.Fatalf("expected default 45 minute prep, got %s", d)
	}
}

func TestPlanThisPrepMinutes(t *testing.T) {
	r, fake := okRouter()
	resp := r.Do(context.Background(), request(t, PlanThis, map[string]any{
		"commitment":  commitmentJSON(),
		"prepTime":    90,
		"createTask":  false,
		"createDraft": false,
	}))
	if resp.Status != StatusOK {
		t.Fatalf("unexpected response %+v", resp)
	}
	if d := fake.Events[0].End.Sub(fake.Events[0].Start); d != 90*time.Minute {
		t.Fatalf("expected 90 minute prep, got %s", d)
	}
}

func TestPartialFailureCarriesPayload(t *testing.T) {
	r, fake := okRouter()
	fake.Fail["CreateDraft"] = failure.Backend("create draft", 500, "nope")
	resp := r.Do(context.Background(), request(t, PlanThis, map[string]any{"commitment": commitmentJSON()}))
	if resp.Status != StatusError || resp.Error == nil || resp.Error.Kind != failure.KindBackend {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Error.Status != 500 {
		t.Fatalf("expected status to be carried, got %+v", resp.Error)
	}
	got := keys(t, resp.Payload)
	if _, ok := got["calendarEvent"]; !ok {
		t.Fatalf("expected calendarEvent in partial payload, got %s", resp.Payload)
	}
	if _, ok := got["task"]; !ok {
		t.Fatalf("expected task in partial payload, got %s", resp.Payload)
	}
	if _, ok := got["draft"]; ok {
		t.Fatalf("failed draft must be absent, got %s", resp.Payload)
	}
}

func TestAuthFailureFlows(t *testing.T) {
	r, fake := newRouter(auth.ProviderFunc(func(context.Context) (*oauth2.Token, error) {
		return nil, errors.New("popup closed")
	}))
	ctx := context.Background()
	for _, req := range []Request{
		request(t, PlanThis, map[string]any{"commitment": commitmentJSON()}),
		request(t, CreateWaitingOn, map[string]any{"commitment": commitmentJSON()}),
		request(t, TestConnection, nil),
		request(t, InitializeAuth, nil),
		request(t, ProposeSlots, nil),
	} {
		resp := r.Do(ctx, req)
		if resp.Status != StatusError || resp.Error == nil || resp.Error.Kind != failure.KindAuth {
			t.Fatalf("%s: expected AuthFailure, got %+v", req.Kind, resp)
		}
		if len(resp.Payload) != 0 {
			t.Fatalf("%s: expected no payload, got %s", req.Kind, resp.Payload)
		}
	}
	if n := fake.TotalCalls(); n != 0 {
		t.Fatalf("expected no backend calls, got %d", n)
	}
}

func TestWaitingOnDefaults(t *testing.T) {
	r, fake := okRouter()
	resp := r.Do(context.Background(), request(t, CreateWaitingOn, map[string]any{"commitment": commitmentJSON()}))
	if resp.Status != StatusOK {
		t.Fatalf("unexpected response %+v", resp)
	}
	if want := now.AddDate(0, 0, 3); !fake.Tasks[0].Due.Equal(want) {
		t.Fatalf("task due %v, want %v", fake.Tasks[0].Due, want)
	}
	got := keys(t, resp.Payload)
	if _, ok := got["task"]; !ok {
		t.Fatalf("expected task, got %s", resp.Payload)
	}
	if _, ok := got["draft"]; !ok {
		t.Fatalf("expected draft, got %s", resp.Payload)
	}
}

func TestTestConnection(t *testing.T) {
	r, fake := okRouter()
	fake.Account.Email = "me@example.test"
	resp := r.Do(context.Background(), Request{Kind: TestConnection})
	if resp.Status != StatusOK {
		t.Fatalf("unexpected response %+v", resp)
	}
	var out action.ConnectionResult
	if err := json.Unmarshal(resp.Payload, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.Profile.Email != "me@example.test" {
		t.Fatalf("unexpected payload %s", resp.Payload)
	}
	if _, err := uuid.Parse(resp.ID); err != nil {
		t.Fatalf("expected a generated uuid, got %q", resp.ID)
	}
}

func TestUnhandledKind(t *testing.T) {
	r, _ := okRouter()
	resp := r.Do(context.Background(), Request{ID: "x", Kind: "open-pod-bay-doors"})
	if resp.Status != StatusUnhandled {
		t.Fatalf("expected unhandled, got %+v", resp)
	}
	if resp.Error == nil || resp.Error.Kind != failure.KindUnhandled {
		t.Fatalf("expected UnhandledRequest body, got %+v", resp.Error)
	}
	if resp.ID != "x" || resp.Kind != "open-pod-bay-doors" {
		t.Fatalf("request identity not echoed: %+v", resp)
	}
}

func TestInvalidPayload(t *testing.T) {
	r, fake := okRouter()
	for _, req := range []Request{
		{Kind: PlanThis, Payload: json.RawMessage(`{"commitment":`)},
		{Kind: PlanThis, Payload: json.RawMessage(`{}`)},
		{Kind: PlanThis, Payload: json.RawMessage(`{"prepTime":0}`)},
		{Kind: CreateWaitingOn, Payload: json.RawMessage(`{"commitment":{"type":"nope"}}`)},
	} {
		resp := r.Do(context.Background(), req)
		if resp.Status != StatusError || resp.Error.Kind != failure.KindInvalid {
			t.Fatalf("%s %s: expected InvalidRequest, got %+v", req.Kind, req.Payload, resp)
		}
	}
	if fake.TotalCalls() != 0 {
		t.Fatalf("invalid requests must not reach the backend")
	}
}

type blockingActions struct {
	action.Orchestrator
	release chan struct{}
}

func (b *blockingActions) TestConnection(ctx context.Context) (action.ConnectionResult, error) {
	<-b.release
	return action.ConnectionResult{Success: true}, nil
}

func TestDispatchDoesNotBlock(t *testing.T) {
	actions := &blockingActions{release: make(chan struct{})}
	r := New(actions, nil)

	var calls int32
	done := make(chan Response, 2)
	for i := 0; i < 2; i++ {
		r.Dispatch(context.Background(), Request{Kind: TestConnection}, func(resp Response) {
			atomic.AddInt32(&calls, 1)
			done <- resp
		})
	}
	// Both dispatches returned while the work is still blocked.
	select {
	case resp := <-done:
		t.Fatalf("response arrived before release: %+v", resp)
	case <-time.After(20 * time.Millisecond):
	}

	close(actions.release)
	r.Wait()
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected one reply per request, got %d", got)
	}
	for i := 0; i < 2; i++ {
		if resp := <-done; resp.Status != StatusOK {
			t.Fatalf("unexpected response %+v", resp)
		}
	}
}

type panickingActions struct {
	action.Orchestrator
}

func (panickingActions) TestConnection(context.Context) (action.ConnectionResult, error) {
	panic("boom")
}

func TestPanicStillReplies(t *testing.T) {
	r := New(&panickingActions{}, nil)
	resp := r.Do(context.Background(), Request{Kind: TestConnection})
	if resp.Status != StatusError || !strings.Contains(resp.Error.Message, "boom") {
		t.Fatalf("expected error response, got %+v", resp)
	}
}

func TestOnceReplies(t *testing.T) {
	var n int
	reply := once(func(Response) { n++ })
	reply(Response{})
	reply(Response{})
	if n != 1 {
		t.Fatalf("expected a single reply, got %d", n)
	}
}

func TestServeJSON(t *testing.T) {
	r, _ := okRouter()
	in := strings.Join([]string{
		`{"id":"a","kind":"parse-commitment","payload":{"emailText":"I will send it by EOD"}}`,
		``,
		`not json`,
		`{"id":"b","kind":"unknown"}`,
		`{"id":"c","kind":"test-connection"}`,
	}, "\n")
	var out strings.Builder
	if err := r.ServeJSON(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("serve: %v", err)
	}

	byID := map[string]Response{}
	sc := bufio.NewScanner(strings.NewReader(out.String()))
	for sc.Scan() {
		var resp Response
		if err := json.Unmarshal(sc.Bytes(), &resp); err != nil {
			t.Fatalf("bad response line %q: %v", sc.Text(), err)
		}
		byID[resp.ID] = resp
	}
	if len(byID) != 4 {
		t.Fatalf("expected 4 responses, got %d:\n%s", len(byID), out.String())
	}
	if byID["a"].Status != StatusOK || byID["c"].Status != StatusOK {
		t.Fatalf("unexpected responses:\n%s", out.String())
	}
	if byID["b"].Status != StatusUnhandled {
		t.Fatalf("expected unhandled for b, got %+v", byID["b"])
	}
	if bad := byID[""]; bad.Status != StatusError || bad.Error.Kind != failure.KindInvalid {
		t.Fatalf("expected invalid request for the bad line, got %+v", bad)
	}
}
