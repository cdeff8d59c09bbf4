package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strconv"

	http_internal "github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/afero"
)

// FilesClient implements the hs.FilesClient interface.
type FilesClient struct {
	httpClient *http_internal.Client
	fs         afero.Fs
	useHTTPS   bool
}

// NewFilesClient creates a new FilesClient.
func NewFilesClient(httpClient *http_internal.Client, fs afero.Fs, useHTTPS bool) *FilesClient {
	return &FilesClient{
		httpClient: httpClient,
		fs:         fs,
		useHTTPS:   useHTTPS,
	}
}

// List implements hs.FilesClient.List.
func (c *FilesClient) List(ctx context.Context, pid string) *hs.ResultsIterator[hs.ResourceFile] {
	err := requirePID(pid)
	if err != nil {
		return failedIterator[hs.ResourceFile](ctx, err)
	}

	return newIterator[hs.ResourceFile](ctx, c.httpClient, resourcePath(pid, "files/"), pid, nil, c.useHTTPS)
}

// Add implements hs.FilesClient.Add.
func (c *FilesClient) Add(ctx context.Context, pid string, upload *hs.FileUpload) (*hs.FileAddResult, error) {
	err := requirePID(pid)
	if err != nil {
		return nil, err
	}

	if upload == nil {
		return nil, &hs.ArgumentError{Message: "file upload is required"}
	}

	form := newMultipartForm()

	err = form.addFile(c.fs, "file", upload)
	if err != nil {
		return nil, err
	}

	if upload.Folder != "" {
		form.addField("folder", upload.Folder)
	}

	body, contentType, err := form.finish()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.PostRaw(ctx, resourcePath(pid, "files/"), body, contentType, upload.Progress)
	if err != nil {
		return nil, fmt.Errorf("adding file: %w", err)
	}

	err = checkResponse(resp, target{pid: pid}, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var result hs.FileAddResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing add file response: %w", err)
	}

	if result.ResourceID != pid {
		return nil, &hs.GenericClientError{
			Message: fmt.Sprintf("expected resource %s, server answered %q", pid, result.ResourceID),
			Err:     hs.ErrIDMismatch,
		}
	}

	return &result, nil
}

// Get implements hs.FilesClient.Get.
func (c *FilesClient) Get(ctx context.Context, pid, filename string) (*hs.ChunkStream, error) {
	err := requireFile(pid, filename)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Stream(ctx, &http_internal.Request{
		Method: http.MethodGet,
		Path:   resourcePath(pid, "files/"+escapePath(filename)),
	})
	if err != nil {
		return nil, fmt.Errorf("getting file %s: %w", filename, err)
	}

	err = checkStreamResponse(resp, target{pid: pid, filename: filename}, http.StatusOK)
	if err != nil {
		return nil, err
	}

	return hs.NewChunkStream(resp.Body, resp.Header.Get("Content-Type"), resp.ContentLength), nil
}

// Download implements hs.FilesClient.Download. The file is stored as
// destination/{base name of filename}.
func (c *FilesClient) Download(ctx context.Context, pid, filename, destination string) (string, error) {
	err := requireFile(pid, filename)
	if err != nil {
		return "", err
	}

	err = checkDestination(c.fs, destination)
	if err != nil {
		return "", err
	}

	stream, err := c.Get(ctx, pid, filename)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	filePath := filepath.Join(destination, path.Base(filename))

	err = writeStream(c.fs, filePath, stream)
	if err != nil {
		return "", err
	}

	return filePath, nil
}

// Delete implements hs.FilesClient.Delete.
func (c *FilesClient) Delete(ctx context.Context, pid, filename string) (string, error) {
	err := requireFile(pid, filename)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Delete(ctx, resourcePath(pid, "files/"+escapePath(filename)))
	if err != nil {
		return "", fmt.Errorf("deleting file %s: %w", filename, err)
	}

	err = checkResponse(resp, target{pid: pid, filename: filename}, http.StatusOK)
	if err != nil {
		return "", err
	}

	return decodeResourceID(resp.Body, pid)
}

// GetMetadata implements hs.FilesClient.GetMetadata.
func (c *FilesClient) GetMetadata(ctx context.Context, pid string, fileID int) (map[string]any, error) {
	err := requirePID(pid)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, fileMetadataPath(pid, fileID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting file metadata: %w", err)
	}

	err = checkResponse(resp, target{pid: pid, filename: strconv.Itoa(fileID)}, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var metadata map[string]any

	err = json.Unmarshal(resp.Body, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing file metadata response: %w", err)
	}

	return metadata, nil
}

// UpdateMetadata implements hs.FilesClient.UpdateMetadata.
func (c *FilesClient) UpdateMetadata(ctx context.Context, pid string, fileID int, metadata map[string]any) error {
	err := requirePID(pid)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Put(ctx, fileMetadataPath(pid, fileID), metadata)
	if err != nil {
		return fmt.Errorf("updating file metadata: %w", err)
	}

	return checkResponse(resp, target{pid: pid, filename: strconv.Itoa(fileID)}, http.StatusOK, http.StatusAccepted)
}

func fileMetadataPath(pid string, fileID int) string {
	return resourcePath(pid, "files/"+strconv.Itoa(fileID)+"/metadata/")
}

func requireFile(pid, filename string) error {
	err := requirePID(pid)
	if err != nil {
		return err
	}

	if filename == "" {
		return &hs.ArgumentError{Message: "filename", Err: hs.ErrFilenameRequired}
	}

	return nil
}
