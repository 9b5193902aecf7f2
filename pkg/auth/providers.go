package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
)

// StaticProvider hands out a pre-issued access token.
type StaticProvider struct {
	AccessToken string
}

func (s StaticProvider) Acquire(context.Context) (*oauth2.Token, error) {
	if strings.TrimSpace(s.AccessToken) == "" {
		return nil, errors.New("auth: no access token configured")
	}
	return &oauth2.Token{AccessToken: s.AccessToken, TokenType: "Bearer"}, nil
}

// DeviceProvider runs the OAuth 2.0 device authorization grant: it prints a
// verification URL and user code to Out and polls until the user approves.
type DeviceProvider struct {
	Config *oauth2.Config
	Out    io.Writer
}

// NewDeviceProvider builds a device-flow provider for the given endpoints.
func NewDeviceProvider(clientID, clientSecret, deviceURL, tokenURL string, scopes []string, out io.Writer) *DeviceProvider {
	return &DeviceProvider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				DeviceAuthURL: deviceURL,
				TokenURL:      tokenURL,
				AuthStyle:     oauth2.AuthStyleInParams,
			},
		},
		Out: out,
	}
}

func (d *DeviceProvider) Acquire(ctx context.Context) (*oauth2.Token, error) {
	if d.Config == nil || d.Config.ClientID == "" {
		return nil, errors.New("auth: device flow needs a client id")
	}
	resp, err := d.Config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: device authorization: %w", err)
	}
	if d.Out != nil {
		uri := resp.VerificationURIComplete
		if uri == "" {
			uri = resp.VerificationURI
		}
		_, _ = fmt.Fprintf(d.Out, "To authorize momentum, visit %s and enter code %s\n", uri, resp.UserCode)
	}
	tok, err := d.Config.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("auth: device token: %w", err)
	}
	return tok, nil
}
