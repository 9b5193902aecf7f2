package plan

import (
	"context"
	"io"
	"math"
	"time"

	"tableflip.dev/momentum/pkg/action"
	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/printers"
	"tableflip.dev/momentum/pkg/router"
	"tableflip.dev/momentum/pkg/runner"
)

// Plan parses Text, lets Amend adjust the result, then runs plan-this.
type Plan struct {
	Router   *router.Router
	Text     string
	ThreadID string
	To       string

	// Prep overrides the configured prep time when positive.
	Prep    time.Duration
	NoTask  bool
	NoDraft bool

	Amend func(commitment.Commitment) (commitment.Commitment, error)

	Output string
	Out    io.Writer
}

func (p *Plan) Do(ctx context.Context) error {
	c, err := runner.ParseText(ctx, p.Router, p.Text, p.ThreadID)
	if err != nil {
		return err
	}
	if p.Amend != nil {
		if c, err = p.Amend(c); err != nil {
			return err
		}
	}

	payload := router.PlanPayload{
		Commitment:  c,
		CreateTask:  boolPtr(!p.NoTask),
		CreateDraft: boolPtr(!p.NoDraft),
		ThreadID:    p.ThreadID,
		To:          p.To,
	}
	if p.Prep > 0 {
		minutes := int(math.Ceil(p.Prep.Minutes()))
		payload.PrepTime = &minutes
	}
	return runner.Run(ctx, p.Router, router.PlanThis, payload, p.Out, p.Output,
		func(pp *printers.PrettyPrint, res action.PlanResult) {
			pp.Commitment(c)
			pp.Plan(res)
		})
}

func boolPtr(b bool) *bool {
	return &b
}
