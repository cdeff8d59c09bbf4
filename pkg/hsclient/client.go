// Package hsclient provides the main entry point for creating HydroShare API clients
package hsclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/hsclient/internal/client"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
)

// Static errors for err113 compliance.
var (
	ErrEndpointRequired   = errors.New("endpoint is required")
	ErrUnsupportedScheme  = errors.New("endpoint scheme must be http or https")
	ErrSkipTLSOnlyInDev   = errors.New("skipping TLS verification is only allowed in development mode")
	ErrEndpointHasAPIRoot = errors.New("endpoint must not include a path")
)

// New creates a HydroShare client from config.
func New(ctx context.Context, config *hs.Config) (hs.Client, error) {
	c, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewAnonymous creates a client without credentials.
func NewAnonymous(ctx context.Context, endpoint string) (hs.Client, error) {
	config, err := ConfigForEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	return New(ctx, config)
}

// NewWithBasicAuth creates a client sending basic credentials.
func NewWithBasicAuth(ctx context.Context, endpoint, username, password string) (hs.Client, error) {
	config, err := ConfigForEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	config.Auth = hs.BasicAuth{Username: username, Password: password}

	return New(ctx, config)
}

// NewWithOAuth2Password creates a client that obtains its token with the
// password grant. The token is requested before New returns.
func NewWithOAuth2Password(ctx context.Context, endpoint, clientID, clientSecret, username, password string) (hs.Client, error) {
	config, err := ConfigForEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	config.Auth = hs.OAuth2Auth{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     username,
		Password:     password,
	}

	return New(ctx, config)
}

// NewWithOAuth2Token creates a client using a token issued earlier.
func NewWithOAuth2Token(ctx context.Context, endpoint string, token *hs.OAuth2Token) (hs.Client, error) {
	config, err := ConfigForEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	config.Auth = hs.OAuth2Auth{Token: token}

	return New(ctx, config)
}

// ConfigForEndpoint builds a configuration from an endpoint such as
// "www.hydroshare.org", "https://www.hydroshare.org" or
// "http://localhost:8000". A bare host name means https.
func ConfigForEndpoint(endpoint string) (*hs.Config, error) {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, parsed.Scheme)
	}

	if parsed.Path != "" && parsed.Path != "/" {
		return nil, fmt.Errorf("%w: %s", ErrEndpointHasAPIRoot, parsed.Path)
	}

	config := &hs.Config{
		Hostname: parsed.Hostname(),
		UseHTTPS: parsed.Scheme == "https",
	}

	if port := parsed.Port(); port != "" {
		config.Port, err = strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("parsing endpoint port %q: %w", port, err)
		}
	}

	return config, nil
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("HS_DEV_MODE")

	return devMode == "true" || devMode == "1"
}

// InsecureHTTPClient returns an http.Client that skips certificate checks,
// for local servers with self-signed certificates. It requires HS_DEV_MODE.
func InsecureHTTPClient() (*http.Client, error) {
	if !isDevelopmentEnvironment() {
		return nil, fmt.Errorf("%w (set HS_DEV_MODE=true)", ErrSkipTLSOnlyInDev)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- Protected by development environment check above

	return &http.Client{Transport: transport}, nil
}
