package commands

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/momentum/pkg/runner/mcp"
	"tableflip.dev/momentum/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	var (
		transport   string
		httpHost    string
		httpPort    int
		httpPath    string
		httpTLSCert string
		httpTLSKey  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve momentum requests to an add-on or an MCP client",
		Long: `Keep momentum running behind one transport.

stdio     newline-delimited JSON requests on stdin, responses on stdout
mcp       Model Context Protocol tools over stdio
mcp-http  Model Context Protocol tools over streamable HTTP`,
		Example: `
momentum serve
momentum serve --transport mcp-http --http-port 0
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return err
			}

			path := mcp.EndpointPath(httpPath)
			s := serve.Serve{
				Router:    svc.Router,
				Transport: strings.ToLower(strings.TrimSpace(transport)),
				In:        cmd.InOrStdin(),
				Out:       cmd.OutOrStdout(),
				MCP: mcp.Runner{
					Name:             "momentum",
					Version:          version,
					HTTPEndpointPath: path,
					HTTPServerCert:   strings.TrimSpace(httpTLSCert),
					HTTPServerKey:    strings.TrimSpace(httpTLSKey),
				},
			}

			if s.Transport == serve.TransportMCPHTTP {
				host := strings.TrimSpace(httpHost)
				if host == "" {
					host = "127.0.0.1"
				}
				if httpPort < 0 || httpPort > 65535 {
					return fmt.Errorf("invalid http-port %d", httpPort)
				}
				addr := net.JoinHostPort(host, strconv.Itoa(httpPort))
				s.MCP.HTTPListenAddr = addr
				s.MCP.OnHTTPListening = func(a net.Addr) {
					scheme := "http"
					if s.MCP.HTTPServerCert != "" && s.MCP.HTTPServerKey != "" {
						scheme = "https"
					}
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "MCP HTTP server listening on %s://%s%s\n",
						scheme, displayAddr(host, a), path)
				}
			}

			return s.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", serve.TransportStdio,
		"transport to use: "+strings.Join(serve.Transports(), ", "))
	cmd.Flags().StringVar(&httpHost, "http-host", "127.0.0.1", "host/interface for the mcp-http transport")
	cmd.Flags().IntVar(&httpPort, "http-port", 8080, "port for the mcp-http transport (use 0 for random)")
	cmd.Flags().StringVar(&httpPath, "http-path", "/mcp", "HTTP endpoint path")
	cmd.Flags().StringVar(&httpTLSCert, "http-tls-cert", "", "TLS certificate file for HTTPS")
	cmd.Flags().StringVar(&httpTLSKey, "http-tls-key", "", "TLS private key file for HTTPS")
	_ = cmd.RegisterFlagCompletionFunc("transport", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return serve.Transports(), cobra.ShellCompDirectiveNoFileComp
	})

	topLevel.AddCommand(cmd)
}

// displayAddr prefers the configured host, falling back to the bound IP
// when listening on every interface.
func displayAddr(host string, a net.Addr) string {
	tcpAddr, ok := a.(*net.TCPAddr)
	if !ok {
		return a.String()
	}
	displayHost := host
	if displayHost == "" || displayHost == "0.0.0.0" || displayHost == "::" {
		if tcpAddr.IP != nil && !tcpAddr.IP.IsUnspecified() {
			displayHost = tcpAddr.IP.String()
		} else {
			displayHost = "127.0.0.1"
		}
	}
	return net.JoinHostPort(displayHost, strconv.Itoa(tcpAddr.Port))
}
