package slots

import (
	"context"
	"io"

	"tableflip.dev/momentum/pkg/action"
	"tableflip.dev/momentum/pkg/printers"
	"tableflip.dev/momentum/pkg/router"
	"tableflip.dev/momentum/pkg/runner"
)

// Slots lists free meeting slots over the next three days.
type Slots struct {
	Router   *router.Router
	ThreadID string

	Output string
	Out    io.Writer
}

func (s *Slots) Do(ctx context.Context) error {
	return runner.Run(ctx, s.Router, router.ProposeSlots, router.SlotsPayload{ThreadID: s.ThreadID}, s.Out, s.Output,
		func(pp *printers.PrettyPrint, res action.SlotsResult) {
			pp.Slots(res)
		})
}
