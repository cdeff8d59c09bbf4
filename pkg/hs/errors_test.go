package hs_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		check  func(error) bool
		status int
	}{
		{"argument", &hs.ArgumentError{Message: "bad"}, hs.IsArgument, 0},
		{"authentication", &hs.AuthenticationError{Message: "no token"}, hs.IsAuthentication, 0},
		{"not authorized", &hs.NotAuthorizedError{Method: http.MethodGet, URL: "https://h/x"}, hs.IsNotAuthorized, http.StatusForbidden},
		{"not found", &hs.NotFoundError{PID: "abc"}, hs.IsNotFound, http.StatusNotFound},
		{"bag not ready", &hs.BagNotReadyError{PID: "abc", TaskID: "t"}, hs.IsBagNotReady, 0},
		{"generic", &hs.GenericClientError{Message: "oops"}, hs.IsGeneric, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("failed to do thing: %w", tt.err)

			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(wrapped))
			assert.False(t, tt.check(errors.New("plain")))
			assert.Equal(t, tt.status, hs.StatusCode(wrapped))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	httpErr := &hs.HTTPError{
		URL:        "https://h/hsapi/resource/",
		Method:     http.MethodGet,
		StatusCode: http.StatusInternalServerError,
		Params:     url.Values{"creator": {"alice"}},
	}
	assert.Equal(t,
		"received status 500 Internal Server Error when accessing https://h/hsapi/resource/ with method GET and params creator=alice",
		httpErr.Error())
	assert.Equal(t, http.StatusInternalServerError, hs.StatusCode(fmt.Errorf("listing: %w", httpErr)))

	assert.Equal(t, "resource abc was not found", (&hs.NotFoundError{PID: "abc"}).Error())
	assert.Equal(t, "file a.csv was not found in resource abc", (&hs.NotFoundError{PID: "abc", Filename: "a.csv"}).Error())
	assert.Equal(t, "GET https://h/hsapi/resource/ was not found",
		(&hs.NotFoundError{Method: http.MethodGet, URL: "https://h/hsapi/resource/"}).Error())

	notReady := &hs.BagNotReadyError{PID: "abc", TaskID: "t-1", Err: hs.ErrBagWaitExceeded}
	assert.ErrorIs(t, notReady, hs.ErrBagWaitExceeded)
	assert.Contains(t, notReady.Error(), "t-1")

	argument := &hs.ArgumentError{Message: "resource type", Err: hs.ErrUnknownResource}
	assert.ErrorIs(t, argument, hs.ErrUnknownResource)
	assert.Equal(t, "invalid argument: resource type: "+hs.ErrUnknownResource.Error(), argument.Error())

	assert.Equal(t, 0, hs.StatusCode(nil))
}
