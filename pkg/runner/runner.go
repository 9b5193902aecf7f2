// Package runner holds what the verb runners share: calling the router,
// decoding its typed payloads and printing the outcome.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/failure"
	"tableflip.dev/momentum/pkg/printers"
	"tableflip.dev/momentum/pkg/router"
)

// ErrReported marks an error whose details were already printed.
var ErrReported = errors.New("request failed")

// Result is a router.Response with its payload decoded.
type Result[T any] struct {
	ID      string        `json:"id" yaml:"id"`
	Kind    router.Kind   `json:"kind" yaml:"kind"`
	Status  router.Status `json:"status" yaml:"status"`
	Payload *T            `json:"payload,omitempty" yaml:"payload,omitempty"`
	Error   *failure.Body `json:"error,omitempty" yaml:"error,omitempty"`
}

// Call marshals payload and runs one request to completion.
func Call(ctx context.Context, r *router.Router, kind router.Kind, payload any) (router.Response, error) {
	if r == nil {
		return router.Response{}, errors.New("runner: router is not configured")
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return router.Response{}, fmt.Errorf("runner: encode %s: %w", kind, err)
		}
		raw = b
	}
	return r.Do(ctx, router.Request{Kind: kind, Payload: raw}), nil
}

// Decode converts resp, keeping any partial payload of a failed request.
func Decode[T any](resp router.Response) (Result[T], error) {
	res := Result[T]{ID: resp.ID, Kind: resp.Kind, Status: resp.Status, Error: resp.Error}
	if len(resp.Payload) == 0 {
		return res, nil
	}
	var v T
	if err := json.Unmarshal(resp.Payload, &v); err != nil {
		return res, fmt.Errorf("runner: decode %s: %w", resp.Kind, err)
	}
	res.Payload = &v
	return res, nil
}

// Emit prints res as JSON, YAML or through pretty, and returns ErrReported
// when the request did not succeed.
func Emit[T any](out io.Writer, format string, res Result[T], pretty func(*printers.PrettyPrint, T)) error {
	if out == nil {
		out = color.Output
	}
	printed, err := printers.Structured(out, format, res)
	if err != nil {
		return err
	}
	if !printed {
		pp := &printers.PrettyPrint{Out: out}
		if res.Payload != nil && pretty != nil {
			pretty(pp, *res.Payload)
		}
		pp.Failure(res.Error)
	}
	if res.Status != router.StatusOK {
		return fmt.Errorf("%s: %w", res.Kind, ErrReported)
	}
	return nil
}

// Run calls, decodes and emits in one go.
func Run[T any](ctx context.Context, r *router.Router, kind router.Kind, payload any, out io.Writer, format string, pretty func(*printers.PrettyPrint, T)) error {
	resp, err := Call(ctx, r, kind, payload)
	if err != nil {
		return err
	}
	res, err := Decode[T](resp)
	if err != nil {
		return err
	}
	return Emit(out, format, res, pretty)
}

// ParseText asks the router for the commitment in text. A failed parse is
// returned as a classified error without printing.
func ParseText(ctx context.Context, r *router.Router, text, threadID string) (commitment.Commitment, error) {
	payload := router.ParsePayload{EmailText: text}
	if threadID != "" {
		payload.ThreadID = &threadID
	}
	resp, err := Call(ctx, r, router.ParseCommitment, payload)
	if err != nil {
		return commitment.Commitment{}, err
	}
	res, err := Decode[router.ParseResult](resp)
	if err != nil {
		return commitment.Commitment{}, err
	}
	if res.Status != router.StatusOK || res.Payload == nil {
		msg := "no commitment returned"
		if res.Error != nil {
			msg = res.Error.Message
		}
		return commitment.Commitment{}, fmt.Errorf("runner: parse: %s", msg)
	}
	return res.Payload.Commitment, nil
}
