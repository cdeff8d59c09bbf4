package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	http_internal "github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
)

// FoldersClient implements the hs.FoldersClient interface.
type FoldersClient struct {
	httpClient *http_internal.Client
}

// NewFoldersClient creates a new FoldersClient.
func NewFoldersClient(httpClient *http_internal.Client) *FoldersClient {
	return &FoldersClient{
		httpClient: httpClient,
	}
}

// Create implements hs.FoldersClient.Create.
func (c *FoldersClient) Create(ctx context.Context, pid, path string) error {
	err := requireFolder(pid, path)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(ctx, &http_internal.Request{Method: http.MethodPut, Path: folderPath(pid, path)})
	if err != nil {
		return fmt.Errorf("creating folder %s: %w", path, err)
	}

	return checkResponse(resp, target{pid: pid, filename: path}, http.StatusOK, http.StatusCreated)
}

// Delete implements hs.FoldersClient.Delete.
func (c *FoldersClient) Delete(ctx context.Context, pid, path string) error {
	err := requireFolder(pid, path)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Delete(ctx, folderPath(pid, path))
	if err != nil {
		return fmt.Errorf("deleting folder %s: %w", path, err)
	}

	return checkResponse(resp, target{pid: pid, filename: path}, http.StatusOK, http.StatusNoContent)
}

// Contents implements hs.FoldersClient.Contents.
func (c *FoldersClient) Contents(ctx context.Context, pid, path string) (*hs.FolderContents, error) {
	err := requireFolder(pid, path)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, folderPath(pid, path), nil)
	if err != nil {
		return nil, fmt.Errorf("listing folder %s: %w", path, err)
	}

	err = checkResponse(resp, target{pid: pid, filename: path}, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var contents hs.FolderContents

	err = json.Unmarshal(resp.Body, &contents)
	if err != nil {
		return nil, fmt.Errorf("parsing folder contents response: %w", err)
	}

	return &contents, nil
}

func folderPath(pid, path string) string {
	return resourcePath(pid, "folders/"+escapePath(path)+"/")
}

func requireFolder(pid, path string) error {
	err := requirePID(pid)
	if err != nil {
		return err
	}

	if path == "" {
		return &hs.ArgumentError{Message: "folder path is required"}
	}

	return nil
}
