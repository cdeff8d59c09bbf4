package hsclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/fivetwenty-io/hsclient/pkg/hsclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		client, err := hsclient.New(context.Background(), &hs.Config{UseHTTPS: true})
		require.NoError(t, err)
		assert.Equal(t, "https://www.hydroshare.org/hsapi", client.BaseURL())
	})

	t.Run("rejects missing config", func(t *testing.T) {
		t.Parallel()

		_, err := hsclient.New(context.Background(), nil)
		require.ErrorIs(t, err, hs.ErrConfigRequired)
	})
}

func TestConfigForEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		hostname string
		port     int
		https    bool
		wantErr  error
	}{
		{name: "bare host", endpoint: "www.hydroshare.org", hostname: "www.hydroshare.org", https: true},
		{name: "https with slash", endpoint: "https://beta.hydroshare.org/", hostname: "beta.hydroshare.org", https: true},
		{name: "http with port", endpoint: "http://localhost:8000", hostname: "localhost", port: 8000},
		{name: "empty", endpoint: " ", wantErr: hsclient.ErrEndpointRequired},
		{name: "ftp", endpoint: "ftp://example.org", wantErr: hsclient.ErrUnsupportedScheme},
		{name: "path", endpoint: "https://example.org/hsapi", wantErr: hsclient.ErrEndpointHasAPIRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config, err := hsclient.ConfigForEndpoint(tt.endpoint)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.hostname, config.Hostname)
			assert.Equal(t, tt.port, config.Port)
			assert.Equal(t, tt.https, config.UseHTTPS)
		})
	}
}

func TestNewWithBasicAuth(t *testing.T) {
	t.Parallel()

	_, err := hsclient.NewWithBasicAuth(context.Background(), "http://localhost:8000", "user", "pass")
	require.Error(t, err)
	assert.True(t, hs.IsAuthentication(err))

	client, err := hsclient.NewWithBasicAuth(context.Background(), "www.hydroshare.org", "user", "pass")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithOAuth2Token(t *testing.T) {
	t.Parallel()

	client, err := hsclient.NewWithOAuth2Token(context.Background(), "www.hydroshare.org", &hs.OAuth2Token{AccessToken: "token"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithOAuth2Password(t *testing.T) {
	t.Parallel()
	t.Skip("Skipping test that requires network access")

	client, err := hsclient.NewWithOAuth2Password(context.Background(), "www.hydroshare.org", "client-id", "", "username", "password")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestInsecureHTTPClient(t *testing.T) {
	t.Setenv("HS_DEV_MODE", "")

	_, err := hsclient.InsecureHTTPClient()
	require.ErrorIs(t, err, hsclient.ErrSkipTLSOnlyInDev)

	t.Setenv("HS_DEV_MODE", "true")

	httpClient, err := hsclient.InsecureHTTPClient()
	require.NoError(t, err)
	assert.NotNil(t, httpClient.Transport)
}

func TestClientIntegration(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/hsapi/userInfo/":
			writer.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(writer).Encode(hs.UserInfo{Username: "anonymous"})
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := hsclient.NewAnonymous(context.Background(), server.URL)
	require.NoError(t, err)

	info, err := client.Users().GetUserInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "anonymous", info.Username)

	_, err = client.Resources().GetSystemMetadata(context.Background(), "missing")
	assert.True(t, hs.IsNotFound(err))
}
