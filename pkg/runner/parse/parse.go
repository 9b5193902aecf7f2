package parse

import (
	"context"
	"io"

	"tableflip.dev/momentum/pkg/printers"
	"tableflip.dev/momentum/pkg/router"
	"tableflip.dev/momentum/pkg/runner"
)

// Parse prints the commitment inferred from Text.
type Parse struct {
	Router   *router.Router
	Text     string
	ThreadID string

	Output string
	Out    io.Writer
}

func (p *Parse) Do(ctx context.Context) error {
	payload := router.ParsePayload{EmailText: p.Text}
	if p.ThreadID != "" {
		payload.ThreadID = &p.ThreadID
	}
	return runner.Run(ctx, p.Router, router.ParseCommitment, payload, p.Out, p.Output,
		func(pp *printers.PrettyPrint, res router.ParseResult) {
			pp.Commitment(res.Commitment)
		})
}
