// Package mcp exposes the momentum router over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/router"
)

// toolset turns tool calls into router requests.
type toolset struct {
	router *router.Router
}

func registerTools(srv *server.MCPServer, ts *toolset) {
	srv.AddTool(mcp.NewTool(
		"parse_commitment",
		mcp.WithDescription("Infer a commitment (type, title, deadline, confidence) from email text."),
		mcp.WithString("email_text",
			mcp.Required(),
			mcp.Description("Body of the email to analyse."),
		),
		mcp.WithString("thread_id",
			mcp.Description("Optional mail thread identifier to echo back."),
		),
	), ts.parseCommitment)

	srv.AddTool(withCommitmentArgs("plan_this",
		"Block prep time before the deadline and optionally create a task and a reply draft.",
		mcp.WithNumber("prep_time",
			mcp.Description("Minutes of prep time to block before the deadline (default 45)."),
			mcp.Min(1),
		),
		mcp.WithBoolean("create_task",
			mcp.Description("Create a task in the owed list (default true)."),
		),
		mcp.WithBoolean("create_draft",
			mcp.Description("Create a reply draft (default true)."),
		),
	), ts.planThis)

	srv.AddTool(withCommitmentArgs("create_waiting_on",
		"Create a follow-up task and a bump draft for something owed to you.",
		mcp.WithNumber("bump_after_days",
			mcp.Description("Days until the follow-up is due (default 3)."),
			mcp.Min(1),
		),
	), ts.createWaitingOn)

	srv.AddTool(mcp.NewTool(
		"propose_slots",
		mcp.WithDescription("Suggest free working-hour slots over the next three days."),
		mcp.WithString("thread_id",
			mcp.Description("Optional mail thread the slots are for."),
		),
	), ts.proposeSlots)

	srv.AddTool(mcp.NewTool(
		"initialize_auth",
		mcp.WithDescription("Acquire credentials and create the momentum task lists."),
	), ts.simple(router.InitializeAuth))

	srv.AddTool(mcp.NewTool(
		"test_connection",
		mcp.WithDescription("Check the credential against the mail profile."),
	), ts.simple(router.TestConnection))
}

func withCommitmentArgs(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short title of the commitment."),
		),
		mcp.WithString("deadline",
			mcp.Required(),
			mcp.Description("RFC3339 deadline, e.g. 2026-10-16T17:00:00Z."),
		),
		mcp.WithString("type",
			mcp.Description("Commitment type."),
			mcp.Enum(string(commitment.TypeIOwe), string(commitment.TypeWaitingOn)),
		),
		mcp.WithNumber("confidence",
			mcp.Description("Confidence between 0.1 and 1 (default 0.5)."),
		),
		mcp.WithString("source_text",
			mcp.Description("Phrase the deadline was taken from."),
		),
		mcp.WithString("thread_id",
			mcp.Description("Mail thread to attach the draft to."),
		),
		mcp.WithString("to",
			mcp.Description("Draft recipient."),
		),
	}
	return mcp.NewTool(name, append(opts, extra...)...)
}

type commitmentArgs struct {
	Title      string   `json:"title"`
	Deadline   string   `json:"deadline"`
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence"`
	SourceText string   `json:"source_text"`
	ThreadID   string   `json:"thread_id"`
	To         string   `json:"to"`
}

func (a commitmentArgs) commitment(fallback commitment.Type) (commitment.Commitment, error) {
	deadline, err := commitment.ParseTime(strings.TrimSpace(a.Deadline))
	if err != nil {
		return commitment.Commitment{}, fmt.Errorf("invalid deadline: %w", err)
	}
	c := commitment.Commitment{
		Type:       fallback,
		Title:      strings.TrimSpace(a.Title),
		Deadline:   commitment.At(deadline),
		Confidence: commitment.ConfidenceDefault,
		SourceText: a.SourceText,
	}
	if a.Type != "" {
		c.Type = commitment.Type(a.Type)
	}
	if a.Confidence != nil {
		c.Confidence = *a.Confidence
	}
	return c, nil
}

func (ts *toolset) parseCommitment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		EmailText string `json:"email_text"`
		ThreadID  string `json:"thread_id"`
	}
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	payload := router.ParsePayload{EmailText: args.EmailText}
	if args.ThreadID != "" {
		payload.ThreadID = &args.ThreadID
	}
	return ts.call(ctx, router.ParseCommitment, payload)
}

func (ts *toolset) planThis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		commitmentArgs
		PrepTime    *int  `json:"prep_time"`
		CreateTask  *bool `json:"create_task"`
		CreateDraft *bool `json:"create_draft"`
	}
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	c, err := args.commitment(commitment.TypeIOwe)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return ts.call(ctx, router.PlanThis, router.PlanPayload{
		Commitment:  c,
		PrepTime:    args.PrepTime,
		CreateTask:  args.CreateTask,
		CreateDraft: args.CreateDraft,
		ThreadID:    args.ThreadID,
		To:          args.To,
	})
}

func (ts *toolset) createWaitingOn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		commitmentArgs
		BumpAfterDays *int `json:"bump_after_days"`
	}
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	c, err := args.commitment(commitment.TypeWaitingOn)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return ts.call(ctx, router.CreateWaitingOn, router.WaitingPayload{
		Commitment:    c,
		BumpAfterDays: args.BumpAfterDays,
		ThreadID:      args.ThreadID,
		To:            args.To,
	})
}

func (ts *toolset) proposeSlots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return ts.call(ctx, router.ProposeSlots, router.SlotsPayload{ThreadID: request.GetString("thread_id", "")})
}

func (ts *toolset) simple(kind router.Kind) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return ts.call(ctx, kind, nil)
	}
}

// call routes one request and maps a non-ok response to a tool error that
// still carries the full response, partial payload included.
func (ts *toolset) call(ctx context.Context, kind router.Kind, payload any) (*mcp.CallToolResult, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
		}
		raw = b
	}
	resp := ts.router.Do(ctx, router.Request{Kind: kind, Payload: raw})
	if resp.Status != router.StatusOK {
		b, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
		}
		return mcp.NewToolResultError(string(b)), nil
	}
	return toJSONResult(resp.Payload)
}

func toJSONResult(data json.RawMessage) (*mcp.CallToolResult, error) {
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	return mcp.NewToolResultText(string(data)), nil
}
