package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	http_internal "github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
)

// maxErrorBody bounds how much of a failed streaming response is kept.
const maxErrorBody = 64 * 1024

// target names what a request was about, for NotFoundError and HTTPError.
type target struct {
	pid      string
	filename string
	params   url.Values
}

// checkResponse returns nil when resp carries one of the accepted statuses
// and the matching typed error otherwise.
func checkResponse(resp *http_internal.Response, t target, accepted ...int) error {
	if slices.Contains(accepted, resp.StatusCode) {
		return nil
	}

	return statusError(resp.StatusCode, resp.Method, resp.URL, resp.Body, t)
}

// checkStreamResponse is checkResponse for unread responses. On failure it
// drains and closes the body.
func checkStreamResponse(resp *http_internal.StreamResponse, t target, accepted ...int) error {
	if slices.Contains(accepted, resp.StatusCode) {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()

	return statusError(resp.StatusCode, resp.Method, resp.URL, body, t)
}

func statusError(status int, method, rawURL string, body []byte, t target) error {
	switch status {
	case http.StatusForbidden:
		return &hs.NotAuthorizedError{Method: method, URL: rawURL}
	case http.StatusNotFound:
		return &hs.NotFoundError{PID: t.pid, Filename: t.filename, Method: method, URL: rawURL}
	default:
		return &hs.HTTPError{
			URL:        rawURL,
			Method:     method,
			StatusCode: status,
			Params:     t.params,
			Body:       body,
		}
	}
}

// resourceIDResponse is the answer of endpoints that echo the resource id.
type resourceIDResponse struct {
	ResourceID string `json:"resource_id"`
}

// decodeResourceID extracts resource_id from body. When pid is not empty
// the id must match it.
func decodeResourceID(body []byte, pid string) (string, error) {
	var result resourceIDResponse

	err := json.Unmarshal(body, &result)
	if err != nil {
		return "", &hs.GenericClientError{Message: "parsing resource id response", Err: err}
	}

	if pid != "" && result.ResourceID != pid {
		return "", &hs.GenericClientError{
			Message: fmt.Sprintf("expected resource %s, server answered %q", pid, result.ResourceID),
			Err:     hs.ErrIDMismatch,
		}
	}

	return result.ResourceID, nil
}

func requirePID(pid string) error {
	if strings.TrimSpace(pid) == "" {
		return &hs.ArgumentError{Message: "pid", Err: hs.ErrPIDRequired}
	}

	return nil
}

// resourcePath returns /resource/{pid}/ followed by the given sub path.
func resourcePath(pid, sub string) string {
	return "/resource/" + url.PathEscape(pid) + "/" + sub
}

// escapePath escapes every segment of a slash separated path inside a
// resource. Leading and trailing slashes are dropped.
func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return strings.Join(segments, "/")
}
