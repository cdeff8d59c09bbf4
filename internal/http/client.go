// Package http is the transport shared by every resource client: URL
// resolution, authentication headers, retries, session resets and debug
// logging.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fivetwenty-io/hsclient/internal/auth"
	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultUserAgent = "hsclient-go/1.0"

// Logger is the logging interface of the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug logs every request and response at debug level.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig retries 429 and 5xx answers up to retryMax times.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithHTTPClient uses base as the template of every session.
func WithHTTPClient(base *http.Client) Option {
	return func(c *Client) {
		c.baseHTTPClient = base
	}
}

// WithTimeout sets a whole-request timeout on every session.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithBasicAuth sends HTTP basic credentials with every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.basicUsername = username
		c.basicPassword = password
		c.basicAuth = true
	}
}

// Request describes one API call. Path is either relative to the client's
// base URL or an absolute URL. At most one of Body (sent as JSON), Form and
// RawBody is used. Progress, when set, follows the body as it is sent.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	Form        url.Values
	RawBody     []byte
	ContentType string
	Headers     map[string]string
	Progress    ProgressFunc
}

// Response is a fully read response. Non-2xx statuses are not errors at
// this level.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Method     string
	URL        string
}

// StreamResponse is a response whose body has not been read. The caller
// must close Body.
type StreamResponse struct {
	StatusCode    int
	Header        http.Header
	Body          io.ReadCloser
	ContentLength int64
	Method        string
	URL           string
}

// Client sends requests to the HydroShare API.
type Client struct {
	baseURL        string
	tokenManager   auth.TokenManager
	basicAuth      bool
	basicUsername  string
	basicPassword  string
	logger         Logger
	debug          bool
	userAgent      string
	retryMax       int
	retryWaitMin   time.Duration
	retryWaitMax   time.Duration
	timeout        time.Duration
	baseHTTPClient *http.Client

	mutex   sync.RWMutex
	session *retryablehttp.Client
}

// NewClient creates a client for the API rooted at baseURL. tokenManager
// may be nil for unauthenticated or basic-auth clients.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenManager: tokenManager,
		logger:       noopLogger{},
		userAgent:    defaultUserAgent,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.ExtendedRetryWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.session = client.newSession()

	return client
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResetSession drops pooled connections and starts a new session.
func (c *Client) ResetSession() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.session != nil {
		c.session.HTTPClient.CloseIdleConnections()
	}

	c.session = c.newSession()

	sessionResetsTotal.Inc()
}

func (c *Client) currentSession() *retryablehttp.Client {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.session
}

func (c *Client) newSession() *retryablehttp.Client {
	session := retryablehttp.NewClient()
	session.Logger = nil
	session.RetryMax = c.retryMax
	session.RetryWaitMin = c.retryWaitMin
	session.RetryWaitMax = c.retryWaitMax
	session.CheckRetry = checkRetry
	session.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if c.baseHTTPClient != nil {
		base := *c.baseHTTPClient
		session.HTTPClient = &base
	}

	if c.timeout > 0 {
		session.HTTPClient.Timeout = c.timeout
	}

	return session
}

// checkRetry retries throttling and server errors. Connection failures are
// left to the session reset in send.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil || resp == nil {
		return false, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return true, nil
	}

	if resp.StatusCode >= http.StatusInternalServerError && resp.StatusCode != http.StatusNotImplemented {
		return true, nil
	}

	return false, nil
}

// ResolveURL joins path to the base URL and merges query into it. Keys
// already present in an absolute path's query are kept as they are.
func (c *Client) ResolveURL(path string, query url.Values) (string, error) {
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		raw = c.baseURL + path
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing request URL %q: %w", raw, err)
	}

	if len(query) > 0 {
		existing := parsed.Query()
		for key, values := range query {
			if _, ok := existing[key]; ok {
				continue
			}

			for _, v := range values {
				existing.Add(key, v)
			}
		}

		parsed.RawQuery = existing.Encode()
	}

	return parsed.String(), nil
}

// Do sends the request and reads the whole response body.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, target, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug {
		c.logger.Debug("HTTP Response Body", map[string]interface{}{
			"url":  target,
			"size": len(body),
		})
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Method:     req.Method,
		URL:        target,
	}, nil
}

// Stream sends the request and hands back the unread body.
func (c *Client) Stream(ctx context.Context, req *Request) (*StreamResponse, error) {
	resp, target, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	return &StreamResponse{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
		Method:        req.Method,
		URL:           target,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// PostForm performs a POST request with a urlencoded body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Form: form})
}

// PutForm performs a PUT request with a urlencoded body.
func (c *Client) PutForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Form: form})
}

// PostRaw performs a POST request with a pre-encoded body. progress may be
// nil.
func (c *Client) PostRaw(ctx context.Context, path string, body []byte, contentType string, progress ProgressFunc) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, RawBody: body, ContentType: contentType, Progress: progress})
}

func encodeBody(req *Request) ([]byte, string, error) {
	switch {
	case req.RawBody != nil:
		return req.RawBody, req.ContentType, nil
	case req.Form != nil:
		return []byte(req.Form.Encode()), constants.ContentTypeForm, nil
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}

		return data, constants.ContentTypeJSON, nil
	default:
		return nil, "", nil
	}
}

// send performs the request. A connection failure resets the session and
// is retried once; a 401 with a token manager refreshes the token and is
// retried once.
func (c *Client) send(ctx context.Context, req *Request) (*http.Response, string, error) {
	target, err := c.ResolveURL(req.Path, req.Query)
	if err != nil {
		return nil, "", err
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, target, err
	}

	resp, err := c.attemptWithReset(ctx, req, target, body, contentType)
	if err != nil {
		return nil, target, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokenManager != nil {
		refreshErr := c.tokenManager.RefreshToken(ctx)
		if refreshErr != nil {
			c.logger.Warn("Token refresh after 401 failed", map[string]interface{}{
				"url":   target,
				"error": refreshErr.Error(),
			})

			return resp, target, nil
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		resp, err = c.attemptWithReset(ctx, req, target, body, contentType)
		if err != nil {
			return nil, target, err
		}
	}

	return resp, target, nil
}

func (c *Client) attemptWithReset(ctx context.Context, req *Request, target string, body []byte, contentType string) (*http.Response, error) {
	resp, err := c.attempt(ctx, req, target, body, contentType)
	if err == nil {
		return resp, nil
	}

	if !isConnectionError(ctx, err) {
		return nil, err
	}

	c.logger.Warn("Connection failed, resetting session", map[string]interface{}{
		"method": req.Method,
		"url":    target,
		"error":  err.Error(),
	})
	c.ResetSession()

	return c.attempt(ctx, req, target, body, contentType)
}

func (c *Client) attempt(ctx context.Context, req *Request, target string, body []byte, contentType string) (*http.Response, error) {
	var rawBody interface{}

	switch {
	case body != nil && req.Progress != nil:
		rawBody = progressBody(body, req.Progress)
	case body != nil:
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()

	httpReq.Header.Set("Accept", "*/*")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-Id", requestID)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	err = c.authorize(ctx, httpReq.Request)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        target,
			"request_id": requestID,
			"body_size":  len(body),
		})
	}

	start := time.Now()
	resp, err := c.currentSession().Do(httpReq)
	elapsed := time.Since(start)

	requestDuration.WithLabelValues(req.Method).Observe(elapsed.Seconds())

	if err != nil {
		transportErrorsTotal.WithLabelValues(req.Method).Inc()

		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		return nil, fmt.Errorf("%s %s: %w", req.Method, target, err)
	}

	requestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":       req.Method,
			"url":          target,
			"request_id":   requestID,
			"status":       resp.StatusCode,
			"content_type": resp.Header.Get("Content-Type"),
			"duration":     elapsed.String(),
		})
	}

	return resp, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.basicAuth {
		req.SetBasicAuth(c.basicUsername, c.basicPassword)

		return nil
	}

	if c.tokenManager == nil {
		return nil
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return &hs.AuthenticationError{Message: "obtaining access token", Err: err}
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return nil
}

func isConnectionError(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED)
}
