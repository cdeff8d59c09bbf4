package client

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a configuration pointing at serverURL with an in
// memory filesystem and a short poll interval.
func newTestConfig(t *testing.T, serverURL string) *hs.Config {
	t.Helper()

	parsed, err := url.Parse(serverURL)
	require.NoError(t, err)

	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)

	return &hs.Config{
		Hostname:          parsed.Hostname(),
		Port:              port,
		UseHTTPS:          parsed.Scheme == "https",
		AllowInsecureAuth: true,
		BagPollInterval:   constants.QuickPollInterval,
		Fs:                afero.NewMemMapFs(),
	}
}

// NewTestClient creates a client for an httptest server.
func NewTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	config := newTestConfig(t, server.URL)
	if config.UseHTTPS {
		config.HTTPClient = server.Client()
	}

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	return client
}

// writeJSON answers with status and body encoded as JSON.
func writeJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()

	w.Header().Set("Content-Type", constants.ContentTypeJSON)
	w.WriteHeader(status)

	if body != nil {
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}
}

// buildZip returns a zip archive holding files.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	writer := zip.NewWriter(&buf)

	for name, content := range files {
		entry, err := writer.Create(name)
		require.NoError(t, err)

		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return buf.Bytes()
}

// requestLog records the requests a test server received.
type requestLog struct {
	mu       sync.Mutex
	requests []string
}

func (l *requestLog) add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.requests = append(l.requests, r.Method+" "+r.URL.Path)
}

func (l *requestLog) count(entry string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0

	for _, r := range l.requests {
		if r == entry {
			n++
		}
	}

	return n
}

// recordingLogger keeps warning messages.
type recordingLogger struct {
	mu   sync.Mutex
	warn []string
}

func (l *recordingLogger) Debug(string, map[string]interface{}) {}
func (l *recordingLogger) Info(string, map[string]interface{})  {}
func (l *recordingLogger) Error(string, map[string]interface{}) {}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.warn = append(l.warn, msg)
}

func (l *recordingLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.warn...)
}
