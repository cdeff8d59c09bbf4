package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil)
		require.ErrorIs(t, err, hs.ErrConfigRequired)
	})

	t.Run("defaults to the public server", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &hs.Config{UseHTTPS: true})
		require.NoError(t, err)
		assert.Equal(t, "https://www.hydroshare.org/hsapi", client.BaseURL())
		assert.Equal(t, "https://www.hydroshare.org", client.ServerURL())
	})

	t.Run("includes the port", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &hs.Config{Hostname: "localhost", Port: 8000})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/hsapi", client.BaseURL())
	})

	t.Run("rejects an invalid port", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &hs.Config{Hostname: "localhost", Port: 70000})
		require.Error(t, err)
		assert.True(t, hs.IsArgument(err))
	})

	t.Run("refuses basic auth over http", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &hs.Config{
			Hostname: "localhost",
			Auth:     hs.BasicAuth{Username: "user", Password: "pass"},
		})
		require.Error(t, err)
		assert.True(t, hs.IsAuthentication(err))
		require.ErrorIs(t, err, hs.ErrInsecureAuth)
	})

	t.Run("refuses OAuth2 over http", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &hs.Config{
			Hostname: "localhost",
			Auth:     &hs.OAuth2Auth{Token: &hs.OAuth2Token{AccessToken: "token"}},
		})
		require.ErrorIs(t, err, hs.ErrInsecureAuth)
	})

	t.Run("refuses OAuth2 without credentials", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &hs.Config{
			UseHTTPS: true,
			Auth:     hs.OAuth2Auth{ClientID: "client"},
		})
		require.Error(t, err)
		assert.True(t, hs.IsAuthentication(err))
		require.ErrorIs(t, err, hs.ErrOAuth2Credentials)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew_Authentication(t *testing.T) {
	t.Parallel()

	t.Run("basic credentials are sent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "user", user)
			assert.Equal(t, "pass", pass)

			writeJSON(t, w, http.StatusOK, hs.UserInfo{Username: user})
		}))
		defer server.Close()

		config := newTestConfig(t, server.URL)
		config.Auth = hs.BasicAuth{Username: "user", Password: "pass"}

		client, err := New(context.Background(), config)
		require.NoError(t, err)

		info, err := client.Users().GetUserInfo(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "user", info.Username)
	})

	t.Run("static access token is sent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer static-token", r.Header.Get("Authorization"))
			writeJSON(t, w, http.StatusOK, hs.UserInfo{Username: "token-user"})
		}))
		defer server.Close()

		config := newTestConfig(t, server.URL)
		config.Auth = hs.OAuth2Auth{Token: &hs.OAuth2Token{AccessToken: "static-token"}}

		client, err := New(context.Background(), config)
		require.NoError(t, err)

		info, err := client.Users().GetUserInfo(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token-user", info.Username)
	})

	t.Run("password grant token is requested up front", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.add(r)

			if r.URL.Path == "/o/token/" {
				assert.NoError(t, r.ParseForm())
				assert.Equal(t, "password", r.Form.Get("grant_type"))
				assert.Equal(t, "alice", r.Form.Get("username"))

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"access_token": "granted-token",
					"expires_in":   3600,
					"token_type":   "Bearer",
				})

				return
			}

			assert.Equal(t, "Bearer granted-token", r.Header.Get("Authorization"))
			writeJSON(t, w, http.StatusOK, hs.UserInfo{Username: "alice"})
		}))
		defer server.Close()

		config := newTestConfig(t, server.URL)
		config.Auth = &hs.OAuth2Auth{ClientID: "client", Username: "alice", Password: "secret"}

		client, err := New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, 1, log.count("POST /o/token/"))

		_, err = client.Users().GetUserInfo(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, log.count("POST /o/token/"))
	})

	t.Run("rejected password grant fails construction", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer server.Close()

		config := newTestConfig(t, server.URL)
		config.Auth = hs.OAuth2Auth{Username: "alice", Password: "wrong"}

		_, err := New(context.Background(), config)
		require.Error(t, err)
		assert.True(t, hs.IsAuthentication(err))
	})

	t.Run("token manager requires https", func(t *testing.T) {
		t.Parallel()

		_, err := NewWithTokenManager(&hs.Config{Hostname: "localhost"}, &staticTokenManager{token: "t"})
		require.ErrorIs(t, err, hs.ErrInsecureAuth)
	})
}

func TestClient_UserAgentAndRequestID(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hsapi/userInfo/", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "hs-test"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		writeJSON(t, w, http.StatusOK, hs.UserInfo{ID: 7, Username: "bob"})
	}))
	defer server.Close()

	config := newTestConfig(t, server.URL)
	config.UserAgent = "hs-test/1.0"

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	info, err := client.Users().GetUserInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, info.ID)
}

func TestClient_Accessors(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &hs.Config{UseHTTPS: true})
	require.NoError(t, err)

	var _ hs.Client = client

	assert.NotNil(t, client.Resources())
	assert.NotNil(t, client.Bags())
	assert.NotNil(t, client.Files())
	assert.NotNil(t, client.Folders())
	assert.NotNil(t, client.Functions())
	assert.NotNil(t, client.Users())
	assert.NotNil(t, client.Tasks())
	assert.Nil(t, client.GetTokenManager())
}
