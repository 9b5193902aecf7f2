// Package app wires settings into the services the CLI and servers share.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"

	"tableflip.dev/momentum/pkg/action"
	"tableflip.dev/momentum/pkg/auth"
	"tableflip.dev/momentum/pkg/backend"
	"tableflip.dev/momentum/pkg/lists"
	"tableflip.dev/momentum/pkg/logging"
	"tableflip.dev/momentum/pkg/router"
	"tableflip.dev/momentum/pkg/store"
	"tableflip.dev/momentum/pkg/timeutil"
)

// ErrNoCredentials is returned by the token cache when neither a static
// token nor a device-flow client is configured.
var ErrNoCredentials = errors.New("app: no credentials configured, set auth.token or auth.client_id")

// Options override parts of the wiring, mostly for tests.
type Options struct {
	Logger logging.Logger
	// Prompt receives device-flow instructions. Defaults to stderr.
	Prompt   io.Writer
	Now      func() time.Time
	Store    store.KV
	Provider auth.Provider
	Backend  backend.Backend
}

// Service holds one process worth of momentum state: the credential cache
// and the list mapping are shared by every request it serves.
type Service struct {
	Settings *store.Settings
	Store    store.KV
	Tokens   *auth.Cache
	Backend  backend.Backend
	Lists    *lists.Bootstrapper
	Actions  *action.Orchestrator
	Router   *router.Router
}

// New builds a Service from settings.
func New(cfg *store.Settings, opts Options) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("app: settings are required")
	}
	log := logging.OrNop(opts.Logger)

	kv := opts.Store
	if kv == nil {
		var err error
		if kv, err = store.Load(cfg); err != nil {
			return nil, err
		}
	}

	provider := opts.Provider
	if provider == nil {
		provider = Provider(cfg, opts.Prompt)
	}
	tokens := auth.NewCache(provider, cfg.AuthTimeout)

	be := opts.Backend
	if be == nil {
		be = &backend.HTTP{
			BaseURL:    cfg.BackendURL,
			CalendarID: cfg.CalendarID,
			TimeZone:   cfg.TimeZone,
			Timeout:    cfg.BackendTimeout,
			Tokens:     tokens,
			Client:     &http.Client{},
		}
	}

	loc, err := location(cfg.TimeZone)
	if err != nil {
		return nil, err
	}

	bootstrapper := &lists.Bootstrapper{
		Store:   kv,
		Backend: be,
		Names:   lists.Names{IOwe: cfg.IOweList, WaitingOn: cfg.WaitingOnList},
		Logger:  log,
	}
	orchestrator := &action.Orchestrator{
		Tokens:  tokens,
		Backend: be,
		Lists:   bootstrapper,
		Now:     opts.Now,
		Logger:  log,
		Options: action.Options{
			PrepTime:      cfg.PrepTime,
			BumpAfterDays: timeutil.Days(cfg.BumpAfter),
			SlotDuration:  cfg.SlotDuration,
			DayStart:      cfg.DayStart,
			DayEnd:        cfg.DayEnd,
			SlotLimit:     cfg.SlotLimit,
			Location:      loc,
		},
	}
	r := router.New(orchestrator, log)
	r.Now = opts.Now
	if cfg.PrepTime > 0 {
		r.Defaults.PrepTime = cfg.PrepTime
	}
	if cfg.BumpAfter > 0 {
		r.Defaults.BumpAfterDays = timeutil.Days(cfg.BumpAfter)
	}

	return &Service{
		Settings: cfg,
		Store:    kv,
		Tokens:   tokens,
		Backend:  be,
		Lists:    bootstrapper,
		Actions:  orchestrator,
		Router:   r,
	}, nil
}

// Provider picks the credential source: a static token wins over the
// device flow.
func Provider(cfg *store.Settings, prompt io.Writer) auth.Provider {
	switch {
	case cfg.AuthToken != "":
		return auth.StaticProvider{AccessToken: cfg.AuthToken}
	case cfg.ClientID != "":
		if prompt == nil {
			prompt = os.Stderr
		}
		return auth.NewDeviceProvider(cfg.ClientID, cfg.ClientSecret, cfg.DeviceURL, cfg.TokenURL, cfg.Scopes, prompt)
	default:
		return auth.ProviderFunc(func(context.Context) (*oauth2.Token, error) {
			return nil, ErrNoCredentials
		})
	}
}

func location(name string) (*time.Location, error) {
	if name == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("app: time zone %q: %w", name, err)
	}
	return loc, nil
}
