// Package backend talks to the calendar, task-list and mail-draft service
// that momentum's actions land in.
package backend

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// TaskList is a backend task list.
type TaskList struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Event is a calendar event.
type Event struct {
	ID          string    `json:"id" yaml:"id"`
	Summary     string    `json:"summary" yaml:"summary"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Start       time.Time `json:"start" yaml:"start"`
	End         time.Time `json:"end" yaml:"end"`
	HTMLLink    string    `json:"htmlLink,omitempty" yaml:"htmlLink,omitempty"`
}

// Task is an item in a task list.
type Task struct {
	ID     string    `json:"id" yaml:"id"`
	ListID string    `json:"listId" yaml:"listId"`
	Title  string    `json:"title" yaml:"title"`
	Notes  string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Due    time.Time `json:"due" yaml:"due"`
}

// Draft is an unsent email. ThreadID threads it as a reply when set.
type Draft struct {
	ID       string `json:"id" yaml:"id"`
	ThreadID string `json:"threadId,omitempty" yaml:"threadId,omitempty"`
	To       string `json:"to,omitempty" yaml:"to,omitempty"`
	Subject  string `json:"subject" yaml:"subject"`
	Body     string `json:"body" yaml:"body"`
}

// Interval is a closed-open time range. It doubles as a proposed slot.
type Interval struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Profile identifies the connected account.
type Profile struct {
	Email         string `json:"email" yaml:"email"`
	MessagesTotal int64  `json:"messagesTotal" yaml:"messagesTotal"`
	ThreadsTotal  int64  `json:"threadsTotal" yaml:"threadsTotal"`
}

// Backend is the set of calls the orchestrator makes. Implementations return
// failure-classified errors.
type Backend interface {
	ListTaskLists(ctx context.Context) ([]TaskList, error)
	CreateTaskList(ctx context.Context, title string) (TaskList, error)
	CreateEvent(ctx context.Context, e Event) (Event, error)
	CreateTask(ctx context.Context, listID string, t Task) (Task, error)
	CreateDraft(ctx context.Context, d Draft) (Draft, error)
	Busy(ctx context.Context, from, to time.Time) ([]Interval, error)
	Profile(ctx context.Context) (Profile, error)
}

// TokenSource supplies the bearer credential for each call.
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}
