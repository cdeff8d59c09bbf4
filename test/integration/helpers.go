//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/fivetwenty-io/hsclient/pkg/hsclient"
	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	Host         string
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
	PublicPID    string
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Host:         os.Getenv("HS_INTEGRATION_HOST"),
		Username:     os.Getenv("HS_INTEGRATION_USERNAME"),
		Password:     os.Getenv("HS_INTEGRATION_PASSWORD"),
		ClientID:     os.Getenv("HS_INTEGRATION_CLIENT_ID"),
		ClientSecret: os.Getenv("HS_INTEGRATION_CLIENT_SECRET"),
		PublicPID:    os.Getenv("HS_INTEGRATION_PUBLIC_PID"),
	}
}

// SkipIfMissingConfig skips the test when no server is configured.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Host == "" {
		t.Skip("HS_INTEGRATION_HOST not set, skipping integration test")
	}
}

// SkipIfAnonymous skips the test when no credentials are configured.
func (config *TestConfig) SkipIfAnonymous(t *testing.T) {
	t.Helper()

	if config.Username == "" || config.Password == "" {
		t.Skip("HS_INTEGRATION_USERNAME or HS_INTEGRATION_PASSWORD not set, skipping authenticated test")
	}
}

// AnonymousClient creates a client without credentials.
func (config *TestConfig) AnonymousClient(t *testing.T) hs.Client {
	t.Helper()

	client, err := hsclient.NewAnonymous(context.Background(), config.Host)
	require.NoError(t, err)

	return client
}

// AuthenticatedClient creates a client with OAuth2 when a client id is
// configured and basic auth otherwise.
func (config *TestConfig) AuthenticatedClient(t *testing.T) hs.Client {
	t.Helper()

	var (
		client hs.Client
		err    error
	)

	if config.ClientID != "" {
		client, err = hsclient.NewWithOAuth2Password(context.Background(), config.Host,
			config.ClientID, config.ClientSecret, config.Username, config.Password)
	} else {
		client, err = hsclient.NewWithBasicAuth(context.Background(), config.Host, config.Username, config.Password)
	}

	require.NoError(t, err)

	return client
}

// GenerateTestName generates a unique name for test resources.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// TestContext returns a context bounded by timeout.
func TestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)

	return ctx
}
