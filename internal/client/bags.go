package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	http_internal "github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/afero"
)

// BagsClient implements the hs.BagsClient interface.
type BagsClient struct {
	httpClient *http_internal.Client
	tasks      *TasksClient
	fs         afero.Fs
	logger     hs.Logger
	maxWait    time.Duration
}

// NewBagsClient creates a new BagsClient. maxWait bounds the time spent
// waiting for a bag, zero leaves that to the caller's context.
func NewBagsClient(httpClient *http_internal.Client, tasks *TasksClient, fs afero.Fs, logger hs.Logger, maxWait time.Duration) *BagsClient {
	return &BagsClient{
		httpClient: httpClient,
		tasks:      tasks,
		fs:         fs,
		logger:     logger,
		maxWait:    maxWait,
	}
}

// Stream implements hs.BagsClient.Stream.
func (c *BagsClient) Stream(ctx context.Context, pid string, wait bool) (*hs.ChunkStream, error) {
	err := requirePID(pid)
	if err != nil {
		return nil, err
	}

	var deadline time.Time
	if c.maxWait > 0 {
		deadline = time.Now().Add(c.maxWait)
	}

	for round := 0; ; round++ {
		stream, status, err := c.fetch(ctx, pid)
		if err != nil {
			return nil, err
		}

		if status == nil {
			return stream, nil
		}

		if !wait {
			return nil, &hs.BagNotReadyError{PID: pid, TaskID: status.TaskID}
		}

		c.logger.Debug("Bag not ready, waiting", map[string]interface{}{
			"pid":     pid,
			"task_id": status.TaskID,
			"round":   round,
		})

		err = c.waitForBag(ctx, deadline, status.TaskID, round)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && !deadline.IsZero() && ctx.Err() == nil {
				return nil, &hs.BagNotReadyError{PID: pid, TaskID: status.TaskID, Err: hs.ErrBagWaitExceeded}
			}

			return nil, err
		}
	}
}

// waitForBag blocks until the generating task is done. Rounds after the
// first start with a pause so a server that keeps answering "not ready" is
// not hammered.
func (c *BagsClient) waitForBag(ctx context.Context, deadline time.Time, taskID string, round int) error {
	if !deadline.IsZero() {
		var cancel context.CancelFunc

		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	var initialDelay time.Duration
	if round > 0 {
		initialDelay = c.tasks.pollInterval
	}

	if taskID == "" {
		return sleep(ctx, c.tasks.pollInterval)
	}

	return c.tasks.waitUntilDone(ctx, taskID, initialDelay)
}

// fetch requests the bag once. It returns either the archive stream or the
// status the server answered with while the bag is being generated.
func (c *BagsClient) fetch(ctx context.Context, pid string) (*hs.ChunkStream, *hs.BagStatus, error) {
	resp, err := c.httpClient.Stream(ctx, &http_internal.Request{
		Method: http.MethodGet,
		Path:   resourcePath(pid, ""),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("getting bag for %s: %w", pid, err)
	}

	err = checkStreamResponse(resp, target{pid: pid}, http.StatusOK)
	if err != nil {
		return nil, nil, err
	}

	contentType := resp.Header.Get("Content-Type")

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}

	switch mediaType {
	case constants.ContentTypeJSON:
		body, err := readAndClose(resp.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("reading bag status: %w", err)
		}

		var status hs.BagStatus

		err = json.Unmarshal(body, &status)
		if err != nil {
			return nil, nil, &hs.GenericClientError{Message: "parsing bag status response", Err: err}
		}

		return nil, &status, nil
	case constants.ContentTypeText:
		body, err := readAndClose(resp.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("reading server message: %w", err)
		}

		return nil, nil, &hs.GenericClientError{Message: strings.TrimSpace(string(body)), Err: hs.ErrServerMessage}
	default:
		return hs.NewChunkStream(resp.Body, contentType, resp.ContentLength), nil, nil
	}
}

// Download implements hs.BagsClient.Download.
func (c *BagsClient) Download(ctx context.Context, pid string, opts *hs.BagDownloadOptions) (string, error) {
	err := requirePID(pid)
	if err != nil {
		return "", err
	}

	if opts == nil || opts.Destination == "" {
		return "", &hs.ArgumentError{Message: "destination directory is required", Err: hs.ErrNotADirectory}
	}

	err = checkDestination(c.fs, opts.Destination)
	if err != nil {
		return "", err
	}

	stream, err := c.Stream(ctx, pid, opts.Wait)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	return storeBag(c.fs, c.logger, stream, pid, opts.Destination, opts.Unzip)
}

func readAndClose(body io.ReadCloser) ([]byte, error) {
	defer body.Close()

	return io.ReadAll(io.LimitReader(body, maxErrorBody))
}
