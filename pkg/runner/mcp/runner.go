package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/momentum/pkg/router"
)

// Transport selects how the MCP server is exposed.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"

	defaultListenAddr = "127.0.0.1:8080"
	defaultPath       = "/mcp"
)

// Runner exposes the router's request kinds as MCP tools.
type Runner struct {
	Router  *router.Router
	Name    string
	Version string

	Transport        Transport
	HTTPListenAddr   string
	HTTPEndpointPath string
	OnHTTPListening  func(net.Addr)
	HTTPServerCert   string
	HTTPServerKey    string
}

// NewServer builds the MCP server with one tool per request kind.
func NewServer(r *router.Router, name, version string) *server.MCPServer {
	if name == "" {
		name = "momentum"
	}
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithToolCapabilities(false),
		server.WithInstructions("Turn email text into commitments, then plan them as calendar blocks, tasks and reply drafts."),
		server.WithRecovery(),
	)
	registerTools(srv, &toolset{router: r})
	return srv
}

// Do serves until ctx is done (HTTP) or stdin closes (stdio).
func (r Runner) Do(ctx context.Context) error {
	if r.Router == nil {
		return errors.New("mcp runner requires a router")
	}
	srv := NewServer(r.Router, r.Name, r.Version)
	defer r.Router.Wait()

	switch t := r.Transport; t {
	case "", TransportStdio:
		return server.ServeStdio(srv)
	case TransportHTTP:
		return r.serveHTTP(ctx, srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

// EndpointPath normalises p to a rooted path, defaulting to /mcp.
func EndpointPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return defaultPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	if (r.HTTPServerCert == "") != (r.HTTPServerKey == "") {
		return errors.New("both http tls cert and key must be provided")
	}

	addr := r.HTTPListenAddr
	if addr == "" {
		addr = defaultListenAddr
	}
	mux := http.NewServeMux()
	mux.Handle(EndpointPath(r.HTTPEndpointPath), server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if r.HTTPServerCert != "" {
		err = httpSrv.ServeTLS(ln, r.HTTPServerCert, r.HTTPServerKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
