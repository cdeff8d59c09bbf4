package hs

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrNoMoreItems        = errors.New("no more items")
	ErrBagWaitExceeded    = errors.New("gave up waiting for bag creation")
	ErrPIDRequired        = errors.New("resource id is required")
	ErrFilenameRequired   = errors.New("filename is required")
	ErrNotADirectory      = errors.New("not a directory")
	ErrDirectoryNotWrite  = errors.New("directory is not writable")
	ErrUnknownFlag        = errors.New("unknown resource flag")
	ErrUnknownFileType    = errors.New("unknown aggregation file type")
	ErrUnknownResource    = errors.New("resource type is not among known resource types")
	ErrIDMismatch         = errors.New("server returned a different resource id")
	ErrMalformedEnvelope  = errors.New("malformed paged response")
	ErrServerMessage      = errors.New("server returned an error message")
	ErrInsecureAuth       = errors.New("authentication requires HTTPS")
	ErrOAuth2Credentials  = errors.New("OAuth2 requires an access token or a username and password")
	ErrUnsupportedAuth    = errors.New("unsupported authentication type")
	ErrZipEntryOutsideDir = errors.New("zip entry escapes destination directory")
)

// ArgumentError reports an invalid argument supplied by the caller.
type ArgumentError struct {
	Message string
	Err     error
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid argument: %s: %v", e.Message, e.Err)
	}

	return "invalid argument: " + e.Message
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports a misconfigured or failed authentication.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication error: %s: %v", e.Message, e.Err)
	}

	return "authentication error: " + e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NotAuthorizedError is returned when the server answers 403.
type NotAuthorizedError struct {
	Method string
	URL    string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("not authorized to %s %s", e.Method, e.URL)
}

// NotFoundError is returned when the server answers 404. PID and Filename
// are empty when the request did not target a resource or a file, as for
// listings.
type NotFoundError struct {
	PID      string
	Filename string
	Method   string
	URL      string
}

func (e *NotFoundError) Error() string {
	switch {
	case e.PID != "" && e.Filename != "":
		return fmt.Sprintf("file %s was not found in resource %s", e.Filename, e.PID)
	case e.PID != "":
		return fmt.Sprintf("resource %s was not found", e.PID)
	default:
		return fmt.Sprintf("%s %s was not found", e.Method, e.URL)
	}
}

// HTTPError is returned for any other unexpected status code.
type HTTPError struct {
	URL        string
	Method     string
	StatusCode int
	Params     url.Values
	Body       []byte
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("received status %d %s when accessing %s with method %s",
		e.StatusCode, http.StatusText(e.StatusCode), e.URL, e.Method)
	if len(e.Params) > 0 {
		msg += " and params " + e.Params.Encode()
	}

	return msg
}

// BagNotReadyError is returned when a bag is still being generated and the
// caller asked not to wait for it.
type BagNotReadyError struct {
	PID    string
	TaskID string
	Err    error
}

func (e *BagNotReadyError) Error() string {
	msg := fmt.Sprintf("bag for resource %s is not ready (task %s)", e.PID, e.TaskID)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *BagNotReadyError) Unwrap() error {
	return e.Err
}

// GenericClientError covers server messages and broken invariants that fit
// no other kind.
type GenericClientError struct {
	Message string
	Err     error
}

func (e *GenericClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GenericClientError) Unwrap() error {
	return e.Err
}

// IsArgument checks if the error is an argument error.
func IsArgument(err error) bool {
	var target *ArgumentError

	return errors.As(err, &target)
}

// IsAuthentication checks if the error is an authentication error.
func IsAuthentication(err error) bool {
	var target *AuthenticationError

	return errors.As(err, &target)
}

// IsNotAuthorized checks if the error is a 403 error.
func IsNotAuthorized(err error) bool {
	var target *NotAuthorizedError

	return errors.As(err, &target)
}

// IsNotFound checks if the error is a 404 error.
func IsNotFound(err error) bool {
	var target *NotFoundError

	return errors.As(err, &target)
}

// IsBagNotReady checks if the error signals an unfinished bag.
func IsBagNotReady(err error) bool {
	var target *BagNotReadyError

	return errors.As(err, &target)
}

// IsGeneric checks if the error is a generic client error.
func IsGeneric(err error) bool {
	var target *GenericClientError

	return errors.As(err, &target)
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	if IsNotAuthorized(err) {
		return http.StatusForbidden
	}

	if IsNotFound(err) {
		return http.StatusNotFound
	}

	return 0
}
