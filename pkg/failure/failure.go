// Package failure defines the error kinds surfaced by orchestration and the
// message router.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure for callers on the other side of the router.
type Kind string

const (
	// KindAuth means credential acquisition failed or was cancelled.
	KindAuth Kind = "AuthFailure"
	// KindBackend means the backend answered with a non-2xx status.
	KindBackend Kind = "BackendCallFailure"
	// KindMissing means a prerequisite (list mapping, commitment) is absent.
	KindMissing Kind = "MissingPrerequisite"
	// KindUnhandled means the request tag is unknown.
	KindUnhandled Kind = "UnhandledRequest"
	// KindTimeout means an external call exceeded its bound.
	KindTimeout Kind = "Timeout"
	// KindInvalid means the request payload could not be used.
	KindInvalid Kind = "InvalidRequest"
)

// Error is a classified failure. Status and Body are only set for
// BackendCallFailure.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Body != "" && e.Err == nil {
		b.WriteString(": ")
		b.WriteString(truncate(e.Body, 200))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Auth wraps a credential failure.
func Auth(op string, err error) error {
	return &Error{Kind: KindAuth, Op: op, Err: err}
}

// Backend reports a non-2xx backend response.
func Backend(op string, status int, body string) error {
	return &Error{Kind: KindBackend, Op: op, Status: status, Body: body}
}

// Unreachable reports a backend call that never produced a response.
func Unreachable(op string, err error) error {
	return &Error{Kind: KindBackend, Op: op, Err: err}
}

// Missing reports an absent prerequisite.
func Missing(op string, err error) error {
	return &Error{Kind: KindMissing, Op: op, Err: err}
}

// Unhandled reports an unknown request tag.
func Unhandled(tag string) error {
	return &Error{Kind: KindUnhandled, Op: tag, Err: errors.New("no handler registered")}
}

// Timeout reports an external call that ran past its deadline.
func Timeout(op string, err error) error {
	return &Error{Kind: KindTimeout, Op: op, Err: err}
}

// Invalid reports an unusable request payload.
func Invalid(op string, err error) error {
	return &Error{Kind: KindInvalid, Op: op, Err: err}
}

// KindOf returns the kind of the first classified error in err's tree, or ""
// when none is classified.
func KindOf(err error) Kind {
	if e := find(err); e != nil {
		return e.Kind
	}
	return ""
}

// Is reports whether any error in err's tree has the given kind.
func Is(err error, kind Kind) bool {
	found := false
	walk(err, func(e *Error) bool {
		if e.Kind == kind {
			found = true
			return false
		}
		return true
	})
	return found
}

// Body is the wire description of a failure.
type Body struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Status  int    `json:"status,omitempty" yaml:"status,omitempty"`
	Body    string `json:"body,omitempty" yaml:"body,omitempty"`
}

// Describe converts err to its wire description. Unclassified errors are
// reported as BackendCallFailure without a status.
func Describe(err error) *Body {
	if err == nil {
		return nil
	}
	out := &Body{Kind: KindBackend, Message: err.Error()}
	if e := find(err); e != nil {
		out.Kind = e.Kind
		out.Status = e.Status
		out.Body = e.Body
	}
	return out
}

func find(err error) *Error {
	var out *Error
	walk(err, func(e *Error) bool {
		out = e
		return false
	})
	return out
}

// walk visits classified errors depth first, descending into joined errors.
func walk(err error, visit func(*Error) bool) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(*Error); ok {
		if !visit(e) {
			return false
		}
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if !walk(inner, visit) {
				return false
			}
		}
	case interface{ Unwrap() error }:
		return walk(u.Unwrap(), visit)
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
