package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	http_internal "github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
)

// UsersClient implements the hs.UsersClient interface.
type UsersClient struct {
	httpClient *http_internal.Client
}

// NewUsersClient creates a new UsersClient.
func NewUsersClient(httpClient *http_internal.Client) *UsersClient {
	return &UsersClient{
		httpClient: httpClient,
	}
}

// GetUserInfo implements hs.UsersClient.GetUserInfo.
func (c *UsersClient) GetUserInfo(ctx context.Context) (*hs.UserInfo, error) {
	resp, err := c.httpClient.Get(ctx, constants.APIPathUserInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("getting user info: %w", err)
	}

	err = checkResponse(resp, target{}, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var info hs.UserInfo

	err = json.Unmarshal(resp.Body, &info)
	if err != nil {
		return nil, fmt.Errorf("parsing user info response: %w", err)
	}

	return &info, nil
}
