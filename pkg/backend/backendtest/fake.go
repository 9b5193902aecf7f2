// Package backendtest provides an in-memory backend.Backend for tests.
package backendtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tableflip.dev/momentum/pkg/backend"
)

// Fake records every call and fails the ones named in Fail.
type Fake struct {
	mu sync.Mutex

	// Fail maps a method name ("CreateTaskList", "CreateEvent", ...) to the
	// error it should return.
	Fail map[string]error
	// FailAfter lets a method succeed n times before Fail applies.
	FailAfter map[string]int
	// BusyIntervals is returned by Busy.
	BusyIntervals []backend.Interval
	Account       backend.Profile

	Lists  []backend.TaskList
	Events []backend.Event
	Tasks  []backend.Task
	Drafts []backend.Draft
	calls  map[string]int
	nextID int
}

var _ backend.Backend = (*Fake)(nil)

// New returns an empty fake.
func New() *Fake {
	return &Fake{
		Fail:      map[string]error{},
		FailAfter: map[string]int{},
		calls:     map[string]int{},
	}
}

// Calls returns how many times method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of backend calls of any kind.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// SetFail makes method fail with err from now on.
func (f *Fake) SetFail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.Fail, method)
		return
	}
	f.Fail[method] = err
}

// enter records a call and reports the configured failure. Callers hold f.mu.
func (f *Fake) enter(method string) error {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[method]++
	err, ok := f.Fail[method]
	if !ok {
		return nil
	}
	if f.calls[method] <= f.FailAfter[method] {
		return nil
	}
	return err
}

func (f *Fake) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *Fake) ListTaskLists(ctx context.Context) ([]backend.TaskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListTaskLists"); err != nil {
		return nil, err
	}
	return append([]backend.TaskList(nil), f.Lists...), nil
}

func (f *Fake) CreateTaskList(ctx context.Context, title string) (backend.TaskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateTaskList"); err != nil {
		return backend.TaskList{}, err
	}
	list := backend.TaskList{ID: f.id("list"), Title: title}
	f.Lists = append(f.Lists, list)
	return list, nil
}

func (f *Fake) CreateEvent(ctx context.Context, e backend.Event) (backend.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateEvent"); err != nil {
		return backend.Event{}, err
	}
	e.ID = f.id("event")
	f.Events = append(f.Events, e)
	return e, nil
}

func (f *Fake) CreateTask(ctx context.Context, listID string, t backend.Task) (backend.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateTask"); err != nil {
		return backend.Task{}, err
	}
	t.ID = f.id("task")
	t.ListID = listID
	f.Tasks = append(f.Tasks, t)
	return t, nil
}

func (f *Fake) CreateDraft(ctx context.Context, d backend.Draft) (backend.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateDraft"); err != nil {
		return backend.Draft{}, err
	}
	d.ID = f.id("draft")
	f.Drafts = append(f.Drafts, d)
	return d, nil
}

func (f *Fake) Busy(ctx context.Context, from, to time.Time) ([]backend.Interval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Busy"); err != nil {
		return nil, err
	}
	return append([]backend.Interval(nil), f.BusyIntervals...), nil
}

func (f *Fake) Profile(ctx context.Context) (backend.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Profile"); err != nil {
		return backend.Profile{}, err
	}
	return f.Account, nil
}
