// Package auth holds the process-wide credential cache and the providers
// that perform the interactive acquisition behind it.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"tableflip.dev/momentum/pkg/failure"
)

// Provider performs one credential acquisition, possibly prompting a user.
type Provider interface {
	Acquire(ctx context.Context) (*oauth2.Token, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (*oauth2.Token, error)

func (f ProviderFunc) Acquire(ctx context.Context) (*oauth2.Token, error) {
	return f(ctx)
}

// DefaultAcquireTimeout bounds an acquisition when the cache has no timeout.
const DefaultAcquireTimeout = 5 * time.Minute

// Cache holds a single credential for the life of the process. It never
// refreshes or expires the token; a revoked token shows up as a backend
// failure.
type Cache struct {
	Provider Provider
	// Timeout bounds a single acquisition.
	Timeout time.Duration

	mu     sync.RWMutex
	token  *oauth2.Token
	flight singleflight.Group
}

// NewCache wraps provider.
func NewCache(provider Provider, timeout time.Duration) *Cache {
	return &Cache{Provider: provider, Timeout: timeout}
}

// Token returns the cached credential or acquires one. Concurrent callers
// that arrive before the first acquisition finishes share it, and a failure
// is reported to all of them. After a failure the cache stays empty.
func (c *Cache) Token(ctx context.Context) (*oauth2.Token, error) {
	if tok := c.cached(); tok != nil {
		return tok, nil
	}

	ch := c.flight.DoChan("token", func() (interface{}, error) {
		if tok := c.cached(); tok != nil {
			return tok, nil
		}
		return c.acquire(ctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*oauth2.Token), nil
	case <-ctx.Done():
		return nil, failure.Auth("token", ctx.Err())
	}
}

// Cached reports whether a credential is held.
func (c *Cache) Cached() bool {
	return c.cached() != nil
}

func (c *Cache) cached() *oauth2.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Cache) acquire(ctx context.Context) (*oauth2.Token, error) {
	if c.Provider == nil {
		return nil, failure.Auth("token", errors.New("no credential provider configured"))
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}
	// The acquisition is shared, so one caller giving up must not cancel it
	// for the rest.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	tok, err := c.Provider.Acquire(actx)
	if err == nil && (tok == nil || tok.AccessToken == "") {
		err = errors.New("provider returned an empty token")
	}
	if err != nil {
		return nil, failure.Auth("token", err)
	}

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	return tok, nil
}
