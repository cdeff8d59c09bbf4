package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	hshttp "github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTokenUnavailable = errors.New("token unavailable")

// MockTokenManager for testing.
type MockTokenManager struct {
	mu        sync.Mutex
	token     string
	refreshed string
	err       error
	refreshes int
}

func (m *MockTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token, m.err
}

func (m *MockTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshes++
	if m.refreshed != "" {
		m.token = m.refreshed
	}

	return nil
}

func (m *MockTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
}

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		msgs = append(msgs, entry["msg"].(string))
	}

	return msgs
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/hsapi/userInfo/", request.URL.Path)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "hsclient-go/1.0", request.Header.Get("User-Agent"))
			assert.NotEmpty(t, request.Header.Get("X-Request-Id"))

			_ = json.NewEncoder(writer).Encode(map[string]string{"username": "admin"})
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL+"/hsapi", &MockTokenManager{token: "test-token"})

		resp, err := client.Get(context.Background(), "/userInfo/", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, server.URL+"/hsapi/userInfo/", resp.URL)

		var result map[string]string

		require.NoError(t, json.Unmarshal(resp.Body, &result))
		assert.Equal(t, "admin", result["username"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, []string{"GenericResource", "RasterResource"}, request.URL.Query()["type"])
			assert.Equal(t, "admin", request.URL.Query().Get("creator"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL, nil)

		query := url.Values{"type": {"GenericResource", "RasterResource"}, "creator": {"admin"}}
		resp, err := client.Get(context.Background(), "/resource/", query)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("request with JSON body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPut, request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "New title", body["title"])

			writer.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL, nil)

		resp, err := client.Put(context.Background(), "/resource/abc/scimeta/elements/", map[string]string{"title": "New title"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})

	t.Run("request with form body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "application/x-www-form-urlencoded", request.Header.Get("Content-Type"))
			require.NoError(t, request.ParseForm())
			assert.Equal(t, "make_public", request.PostForm.Get("t"))
			writer.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL, nil)

		resp, err := client.PostForm(context.Background(), "/resource/abc/flag/", url.Values{"t": {"make_public"}})
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})

	t.Run("error status is returned as a response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"detail":"Not found."}`))
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/resource/missing/", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"detail":"Not found."}`, string(resp.Body))
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "application/xml", request.Header.Get("Accept"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL, nil)

		resp, err := client.Do(context.Background(), &hshttp.Request{
			Method: http.MethodGet,
			Path:   "/resource/abc/scimeta/",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
				"Accept":          "application/xml",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("basic auth", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			username, password, ok := request.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "user", username)
			assert.Equal(t, "secret", password)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL, nil, hshttp.WithBasicAuth("user", "secret"))

		_, err := client.Get(context.Background(), "/userInfo/", nil)
		require.NoError(t, err)
	})

	t.Run("token failure is an authentication error", func(t *testing.T) {
		t.Parallel()

		client := hshttp.NewClient("http://127.0.0.1:1", &MockTokenManager{err: errTokenUnavailable})

		_, err := client.Get(context.Background(), "/userInfo/", nil)
		require.Error(t, err)
		assert.True(t, hs.IsAuthentication(err))
		assert.ErrorIs(t, err, errTokenUnavailable)
	})
}

func TestClient_Retries(t *testing.T) {
	t.Parallel()

	t.Run("retries server errors when configured", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				writer.WriteHeader(http.StatusServiceUnavailable)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL, nil, hshttp.WithRetryConfig(3, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Get(context.Background(), "/resource/", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("returns last response when retries are exhausted", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL, nil, hshttp.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Get(context.Background(), "/resource/", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("does not retry by default", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/resource/", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := hshttp.NewClient(server.URL, nil, hshttp.WithRetryConfig(3, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Get(context.Background(), "/resource/", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})
}

func TestClient_SessionReset(t *testing.T) {
	t.Parallel()

	t.Run("reconnects once after a dropped connection", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				hijacker, ok := writer.(http.Hijacker)
				require.True(t, ok)

				conn, _, err := hijacker.Hijack()
				require.NoError(t, err)
				_ = conn.Close()

				return
			}

			_, _ = writer.Write([]byte(`{"status":"true"}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := hshttp.NewClient(server.URL, nil, hshttp.WithLogger(logger))

		resp, err := client.Get(context.Background(), "/taskstatus/t1/", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.GreaterOrEqual(t, atomic.LoadInt32(&attempts), int32(2))
		assert.Contains(t, logger.messages(), "Connection failed, resetting session")
	})

	t.Run("second connection failure propagates", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		baseURL := server.URL
		server.Close()

		client := hshttp.NewClient(baseURL, nil)

		_, err := client.Get(context.Background(), "/resource/", nil)
		require.Error(t, err)
	})
}

func TestClient_RefreshesTokenOnUnauthorized(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("Authorization") != "Bearer fresh" {
			writer.WriteHeader(http.StatusUnauthorized)

			return
		}

		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tokens := &MockTokenManager{token: "stale", refreshed: "fresh"}
	client := hshttp.NewClient(server.URL, tokens)

	resp, err := client.Get(context.Background(), "/userInfo/", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, tokens.refreshes)
}

func TestClient_PostRawProgress(t *testing.T) {
	t.Parallel()

	payload := []byte(strings.Repeat("multipart body ", 5000))

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, int64(len(payload)), request.ContentLength)

		body, err := io.ReadAll(request.Body)
		assert.NoError(t, err)
		assert.Equal(t, payload, body)

		writer.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	client := hshttp.NewClient(server.URL, nil)

	t.Run("without progress", func(t *testing.T) {
		t.Parallel()

		resp, err := client.PostRaw(context.Background(), "/resource/", payload, "multipart/form-data; boundary=x", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("reports every byte", func(t *testing.T) {
		t.Parallel()

		var (
			mu     sync.Mutex
			counts []int64
			totals []int64
		)

		resp, err := client.PostRaw(context.Background(), "/resource/", payload, "multipart/form-data; boundary=x",
			func(sent, total int64) {
				mu.Lock()
				defer mu.Unlock()

				counts = append(counts, sent)
				totals = append(totals, total)
			})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		mu.Lock()
		defer mu.Unlock()

		require.NotEmpty(t, counts)
		assert.Equal(t, int64(len(payload)), counts[len(counts)-1])
		assert.IsNonDecreasing(t, counts)

		for _, total := range totals {
			assert.Equal(t, int64(len(payload)), total)
		}
	})
}

func TestClient_Stream(t *testing.T) {
	t.Parallel()

	payload := []byte("PK\x03\x04 bag bytes")

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/zip")
		_, _ = writer.Write(payload)
	}))
	defer server.Close()

	client := hshttp.NewClient(server.URL, nil)

	resp, err := client.Stream(context.Background(), &hshttp.Request{Method: http.MethodGet, Path: "/resource/abc/"})
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, body)
}

func TestClient_DebugLogging(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := &MockLogger{}
	client := hshttp.NewClient(server.URL, nil, hshttp.WithLogger(logger), hshttp.WithDebug(true))

	_, err := client.Get(context.Background(), "/resource/types", nil)
	require.NoError(t, err)

	msgs := logger.messages()
	assert.Contains(t, msgs, "HTTP Request")
	assert.Contains(t, msgs, "HTTP Response")
}

func TestClient_ResolveURL(t *testing.T) {
	t.Parallel()

	client := hshttp.NewClient("https://www.hydroshare.org/hsapi/", nil)

	tests := []struct {
		name     string
		path     string
		query    url.Values
		expected string
	}{
		{
			name:     "relative path",
			path:     "/resource/",
			expected: "https://www.hydroshare.org/hsapi/resource/",
		},
		{
			name:     "relative path with query",
			path:     "/resource/",
			query:    url.Values{"creator": {"admin"}},
			expected: "https://www.hydroshare.org/hsapi/resource/?creator=admin",
		},
		{
			name:     "absolute next link keeps its own keys",
			path:     "https://www.hydroshare.org/hsapi/resource/?creator=admin&page=2",
			query:    url.Values{"creator": {"admin"}, "owner": {"bob"}},
			expected: "https://www.hydroshare.org/hsapi/resource/?creator=admin&owner=bob&page=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resolved, err := client.ResolveURL(tt.path, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resolved)
		})
	}

	assert.Equal(t, "https://www.hydroshare.org/hsapi", client.BaseURL())
}
