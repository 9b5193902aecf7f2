package auth

import (
	"context"
	"io"

	"tableflip.dev/momentum/pkg/action"
	"tableflip.dev/momentum/pkg/printers"
	"tableflip.dev/momentum/pkg/router"
	"tableflip.dev/momentum/pkg/runner"
)

// Auth acquires credentials and makes sure the task lists exist.
type Auth struct {
	Router *router.Router

	Output string
	Out    io.Writer
}

func (a *Auth) Do(ctx context.Context) error {
	return runner.Run(ctx, a.Router, router.InitializeAuth, nil, a.Out, a.Output,
		func(pp *printers.PrettyPrint, res action.InitResult) {
			pp.Lists(res.Lists)
		})
}
