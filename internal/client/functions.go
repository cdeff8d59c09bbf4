package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	http_internal "github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
)

// FunctionsClient implements the hs.FunctionsClient interface.
type FunctionsClient struct {
	httpClient *http_internal.Client
}

// NewFunctionsClient creates a new FunctionsClient.
func NewFunctionsClient(httpClient *http_internal.Client) *FunctionsClient {
	return &FunctionsClient{
		httpClient: httpClient,
	}
}

// MoveOrRename implements hs.FunctionsClient.MoveOrRename.
func (c *FunctionsClient) MoveOrRename(ctx context.Context, pid, sourcePath, targetPath string) error {
	err := requirePID(pid)
	if err != nil {
		return err
	}

	if sourcePath == "" || targetPath == "" {
		return &hs.ArgumentError{Message: "source and target paths are required"}
	}

	form := url.Values{
		"source_path": {sourcePath},
		"target_path": {targetPath},
	}

	return c.call(ctx, pid, "move-or-rename/", form, "moving "+sourcePath)
}

// Zip implements hs.FunctionsClient.Zip.
func (c *FunctionsClient) Zip(ctx context.Context, pid string, request *hs.ZipRequest) error {
	err := requirePID(pid)
	if err != nil {
		return err
	}

	if request == nil {
		return &hs.ArgumentError{Message: "zip request is required"}
	}

	err = request.Validate()
	if err != nil {
		return &hs.ArgumentError{Message: "zip request", Err: err}
	}

	form := url.Values{
		"input_coll_path":           {request.InputPath},
		"output_zip_file_name":      {request.OutputFileName},
		"remove_original_after_zip": {strconv.FormatBool(request.RemoveOriginal)},
	}

	return c.call(ctx, pid, "zip/", form, "zipping "+request.InputPath)
}

// Unzip implements hs.FunctionsClient.Unzip.
func (c *FunctionsClient) Unzip(ctx context.Context, pid, zipPath string, removeOriginal bool) error {
	err := requirePID(pid)
	if err != nil {
		return err
	}

	if zipPath == "" {
		return &hs.ArgumentError{Message: "zip path is required"}
	}

	form := url.Values{"remove_original_zip": {strconv.FormatBool(removeOriginal)}}

	return c.call(ctx, pid, "unzip/"+escapePath(zipPath)+"/", form, "unzipping "+zipPath)
}

// SetFileType implements hs.FunctionsClient.SetFileType.
func (c *FunctionsClient) SetFileType(ctx context.Context, pid, filePath string, fileType hs.AggregationType) error {
	err := requirePID(pid)
	if err != nil {
		return err
	}

	if filePath == "" {
		return &hs.ArgumentError{Message: "file path is required"}
	}

	if !fileType.Valid() {
		return &hs.ArgumentError{Message: "file type " + string(fileType), Err: hs.ErrUnknownFileType}
	}

	sub := "set-file-type/" + escapePath(filePath) + "/" + url.PathEscape(string(fileType)) + "/"

	return c.call(ctx, pid, sub, url.Values{}, "setting file type of "+filePath)
}

func (c *FunctionsClient) call(ctx context.Context, pid, function string, form url.Values, action string) error {
	resp, err := c.httpClient.PostForm(ctx, resourcePath(pid, "functions/"+function), form)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	return checkResponse(resp, target{pid: pid, params: form}, http.StatusOK, http.StatusCreated, http.StatusAccepted)
}
