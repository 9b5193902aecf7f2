package waiting

import (
	"context"
	"io"
	"time"

	"tableflip.dev/momentum/pkg/action"
	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/printers"
	"tableflip.dev/momentum/pkg/router"
	"tableflip.dev/momentum/pkg/runner"
	"tableflip.dev/momentum/pkg/timeutil"
)

// Waiting parses Text, lets Amend adjust the result, then files a
// follow-up with create-waiting-on.
type Waiting struct {
	Router   *router.Router
	Text     string
	ThreadID string
	To       string

	// BumpAfter overrides the configured follow-up delay when positive.
	// It is rounded to whole days.
	BumpAfter time.Duration

	Amend func(commitment.Commitment) (commitment.Commitment, error)

	Output string
	Out    io.Writer
}

func (w *Waiting) Do(ctx context.Context) error {
	c, err := runner.ParseText(ctx, w.Router, w.Text, w.ThreadID)
	if err != nil {
		return err
	}
	if w.Amend != nil {
		if c, err = w.Amend(c); err != nil {
			return err
		}
	}

	payload := router.WaitingPayload{Commitment: c, ThreadID: w.ThreadID, To: w.To}
	if w.BumpAfter > 0 {
		days := timeutil.Days(w.BumpAfter)
		payload.BumpAfterDays = &days
	}
	return runner.Run(ctx, w.Router, router.CreateWaitingOn, payload, w.Out, w.Output,
		func(pp *printers.PrettyPrint, res action.WaitingResult) {
			pp.Commitment(c)
			pp.Waiting(res)
		})
}
