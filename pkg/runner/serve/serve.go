package serve

import (
	"context"
	"fmt"
	"io"
	"os"

	"tableflip.dev/momentum/pkg/router"
	"tableflip.dev/momentum/pkg/runner/mcp"
)

const (
	// TransportStdio speaks newline-delimited router requests on stdin/stdout.
	TransportStdio = "stdio"
	// TransportMCP serves MCP tools over stdio.
	TransportMCP = "mcp"
	// TransportMCPHTTP serves MCP tools over streamable HTTP.
	TransportMCPHTTP = "mcp-http"
)

// Transports lists the accepted --transport values.
func Transports() []string {
	return []string{TransportStdio, TransportMCP, TransportMCPHTTP}
}

// Serve keeps the router running behind one transport.
type Serve struct {
	Router    *router.Router
	Transport string
	In        io.Reader
	Out       io.Writer

	// MCP carries the HTTP settings for the MCP transports.
	MCP mcp.Runner
}

func (s *Serve) Do(ctx context.Context) error {
	switch s.Transport {
	case "", TransportStdio:
		in, out := s.In, s.Out
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		return s.Router.ServeJSON(ctx, in, out)
	case TransportMCP:
		r := s.MCP
		r.Router = s.Router
		r.Transport = mcp.TransportStdio
		return r.Do(ctx)
	case TransportMCPHTTP:
		r := s.MCP
		r.Router = s.Router
		r.Transport = mcp.TransportHTTP
		return r.Do(ctx)
	default:
		return fmt.Errorf("unknown transport %q, want one of %v", s.Transport, Transports())
	}
}
