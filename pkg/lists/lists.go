// Package lists makes sure the two backend task lists momentum files items
// into exist, and remembers their identifiers.
package lists

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"tableflip.dev/momentum/pkg/backend"
	"tableflip.dev/momentum/pkg/failure"
	"tableflip.dev/momentum/pkg/logging"
	"tableflip.dev/momentum/pkg/store"
)

// Key is the store key holding the Mapping.
const Key = "task-lists"

// Mapping ties the logical lists to backend list identifiers.
type Mapping struct {
	IOwe      string `json:"iOwe" yaml:"iOwe"`
	WaitingOn string `json:"waitingOn" yaml:"waitingOn"`
}

// Complete reports whether both identifiers are present.
func (m Mapping) Complete() bool {
	return m.IOwe != "" && m.WaitingOn != ""
}

// Names are the backend titles of the two lists.
type Names struct {
	IOwe      string
	WaitingOn string
}

// DefaultTimeout bounds a bootstrap when Bootstrapper.Timeout is unset.
const DefaultTimeout = 2 * time.Minute

// DefaultNames are used when Bootstrapper.Names is empty.
var DefaultNames = Names{IOwe: "Momentum: I owe", WaitingOn: "Momentum: Waiting on"}

// Bootstrapper creates the lists at most once per store.
type Bootstrapper struct {
	Store   store.KV
	Backend backend.Backend
	Names   Names
	Logger  logging.Logger
	// Timeout bounds one bootstrap. It runs detached from the caller that
	// started it, since other callers may be waiting on the same result.
	Timeout time.Duration

	flight singleflight.Group
}

// Lookup reads the persisted mapping. ok is false when none exists yet.
func (b *Bootstrapper) Lookup() (Mapping, bool, error) {
	if b.Store == nil {
		return Mapping{}, false, errors.New("lists: store is not configured")
	}
	raw, err := b.Store.Get(Key)
	if errors.Is(err, store.ErrNotFound) {
		return Mapping{}, false, nil
	}
	if err != nil {
		return Mapping{}, false, fmt.Errorf("lists: read mapping: %w", err)
	}
	var m Mapping
	if err := json.Unmarshal(raw, &m); err != nil {
		return Mapping{}, false, fmt.Errorf("lists: decode mapping: %w", err)
	}
	if !m.Complete() {
		return Mapping{}, false, nil
	}
	return m, true, nil
}

// Ensure returns the persisted mapping, creating both lists first when there
// is none. Concurrent first callers share a single bootstrap. When the second
// list fails nothing is persisted and the error is returned.
func (b *Bootstrapper) Ensure(ctx context.Context) (Mapping, error) {
	if m, ok, err := b.Lookup(); err != nil || ok {
		return m, err
	}

	v, err, _ := b.flight.Do(Key, func() (interface{}, error) {
		if m, ok, err := b.Lookup(); err != nil || ok {
			return m, err
		}
		timeout := b.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return b.bootstrap(bctx)
	})
	if err != nil {
		return Mapping{}, err
	}
	return v.(Mapping), nil
}

func (b *Bootstrapper) bootstrap(ctx context.Context) (Mapping, error) {
	if b.Backend == nil {
		return Mapping{}, failure.Missing("ensure lists", errors.New("backend is not configured"))
	}
	names := b.names()
	log := logging.OrNop(b.Logger)

	existing, err := b.Backend.ListTaskLists(ctx)
	if err != nil {
		return Mapping{}, err
	}
	byTitle := make(map[string]string, len(existing))
	for _, l := range existing {
		if _, seen := byTitle[l.Title]; !seen {
			byTitle[l.Title] = l.ID
		}
	}

	var m Mapping
	for _, want := range []struct {
		title string
		dst   *string
	}{
		{names.IOwe, &m.IOwe},
		{names.WaitingOn, &m.WaitingOn},
	} {
		if id, ok := byTitle[want.title]; ok {
			log.Printf("lists: reusing %q (%s)", want.title, id)
			*want.dst = id
			continue
		}
		list, err := b.Backend.CreateTaskList(ctx, want.title)
		if err != nil {
			return Mapping{}, err
		}
		log.Printf("lists: created %q (%s)", want.title, list.ID)
		*want.dst = list.ID
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return Mapping{}, err
	}
	if err := b.Store.Set(Key, raw); err != nil {
		return Mapping{}, fmt.Errorf("lists: persist mapping: %w", err)
	}
	return m, nil
}

func (b *Bootstrapper) names() Names {
	n := b.Names
	if n.IOwe == "" {
		n.IOwe = DefaultNames.IOwe
	}
	if n.WaitingOn == "" {
		n.WaitingOn = DefaultNames.WaitingOn
	}
	return n
}
