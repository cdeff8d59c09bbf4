package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fivetwenty-io/hsclient/internal/constants"
	http_internal "github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
)

// Static errors for err113 compliance.
var (
	ErrTaskIDRequired = errors.New("task id is required")
	errTaskPending    = errors.New("task is still running")
)

// TasksClient implements the hs.TasksClient interface.
type TasksClient struct {
	httpClient   *http_internal.Client
	pollInterval time.Duration
}

// NewTasksClient creates a new tasks client.
func NewTasksClient(httpClient *http_internal.Client, pollInterval time.Duration) *TasksClient {
	if pollInterval <= 0 {
		pollInterval = constants.DefaultBagPollInterval
	}

	return &TasksClient{
		httpClient:   httpClient,
		pollInterval: pollInterval,
	}
}

// GetStatus implements hs.TasksClient.GetStatus.
func (c *TasksClient) GetStatus(ctx context.Context, taskID string) (*hs.TaskStatus, error) {
	if taskID == "" {
		return nil, &hs.ArgumentError{Message: "task id", Err: ErrTaskIDRequired}
	}

	resp, err := c.httpClient.Get(ctx, "/taskstatus/"+url.PathEscape(taskID)+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("getting task status: %w", err)
	}

	err = checkResponse(resp, target{}, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var status hs.TaskStatus

	err = json.Unmarshal(resp.Body, &status)
	if err != nil {
		return nil, fmt.Errorf("parsing task status: %w", err)
	}

	return &status, nil
}

// WaitUntilDone implements hs.TasksClient.WaitUntilDone. The first check is
// immediate; later ones follow the poll interval until the task reports
// done or ctx ends.
func (c *TasksClient) WaitUntilDone(ctx context.Context, taskID string) error {
	return c.waitUntilDone(ctx, taskID, 0)
}

func (c *TasksClient) waitUntilDone(ctx context.Context, taskID string, initialDelay time.Duration) error {
	if initialDelay > 0 {
		err := sleep(ctx, initialDelay)
		if err != nil {
			return fmt.Errorf("waiting for task %s: %w", taskID, err)
		}
	}

	check := func() error {
		status, err := c.GetStatus(ctx, taskID)
		if err != nil {
			return backoff.Permanent(err)
		}

		if !status.Done() {
			return errTaskPending
		}

		return nil
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(c.pollInterval), ctx)

	err := backoff.Retry(check, policy)
	if err != nil {
		return fmt.Errorf("waiting for task %s: %w", taskID, err)
	}

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
