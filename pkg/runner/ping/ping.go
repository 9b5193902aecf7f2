package ping

import (
	"context"
	"io"

	"tableflip.dev/momentum/pkg/action"
	"tableflip.dev/momentum/pkg/printers"
	"tableflip.dev/momentum/pkg/router"
	"tableflip.dev/momentum/pkg/runner"
)

// Ping runs test-connection.
type Ping struct {
	Router *router.Router

	Output string
	Out    io.Writer
}

func (p *Ping) Do(ctx context.Context) error {
	return runner.Run(ctx, p.Router, router.TestConnection, nil, p.Out, p.Output,
		func(pp *printers.PrettyPrint, res action.ConnectionResult) {
			pp.Connection(res)
		})
}
