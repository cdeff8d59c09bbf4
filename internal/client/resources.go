package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	http_internal "github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/afero"
)

// ResourcesClient implements the hs.ResourcesClient interface.
type ResourcesClient struct {
	httpClient *http_internal.Client
	fs         afero.Fs
	useHTTPS   bool

	typesMutex sync.Mutex
	types      []string
}

// NewResourcesClient creates a new ResourcesClient.
func NewResourcesClient(httpClient *http_internal.Client, fs afero.Fs, useHTTPS bool) *ResourcesClient {
	return &ResourcesClient{
		httpClient: httpClient,
		fs:         fs,
		useHTTPS:   useHTTPS,
	}
}

// List implements hs.ResourcesClient.List.
func (c *ResourcesClient) List(ctx context.Context, params *hs.ResourceListParams) *hs.ResultsIterator[hs.Resource] {
	var queryParams url.Values
	if params != nil {
		queryParams = params.ToValues()
	}

	return newIterator[hs.Resource](ctx, c.httpClient, constants.APIPathResource, "", queryParams, c.useHTTPS)
}

// GetSystemMetadata implements hs.ResourcesClient.GetSystemMetadata.
func (c *ResourcesClient) GetSystemMetadata(ctx context.Context, pid string) (*hs.Resource, error) {
	body, err := c.getBody(ctx, pid, "sysmeta/")
	if err != nil {
		return nil, fmt.Errorf("getting system metadata: %w", err)
	}

	var resource hs.Resource

	err = json.Unmarshal(body, &resource)
	if err != nil {
		return nil, fmt.Errorf("parsing system metadata response: %w", err)
	}

	return &resource, nil
}

// GetScienceMetadataRDF implements hs.ResourcesClient.GetScienceMetadataRDF.
func (c *ResourcesClient) GetScienceMetadataRDF(ctx context.Context, pid string) ([]byte, error) {
	body, err := c.getBody(ctx, pid, "scimeta/")
	if err != nil {
		return nil, fmt.Errorf("getting science metadata: %w", err)
	}

	return body, nil
}

// GetScienceMetadata implements hs.ResourcesClient.GetScienceMetadata.
func (c *ResourcesClient) GetScienceMetadata(ctx context.Context, pid string) (*hs.ScienceMetadata, error) {
	body, err := c.getBody(ctx, pid, "scimeta/elements/")
	if err != nil {
		return nil, fmt.Errorf("getting science metadata: %w", err)
	}

	var metadata hs.ScienceMetadata

	err = json.Unmarshal(body, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing science metadata response: %w", err)
	}

	return &metadata, nil
}

// UpdateScienceMetadata implements hs.ResourcesClient.UpdateScienceMetadata.
// The server answers with the stored metadata; an empty answer yields nil.
func (c *ResourcesClient) UpdateScienceMetadata(ctx context.Context, pid string, metadata map[string]any) (*hs.ScienceMetadata, error) {
	err := requirePID(pid)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Put(ctx, resourcePath(pid, "scimeta/elements/"), metadata)
	if err != nil {
		return nil, fmt.Errorf("updating science metadata: %w", err)
	}

	err = checkResponse(resp, target{pid: pid}, http.StatusOK, http.StatusAccepted)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, nil
	}

	var updated hs.ScienceMetadata

	err = json.Unmarshal(resp.Body, &updated)
	if err != nil {
		return nil, fmt.Errorf("parsing science metadata response: %w", err)
	}

	return &updated, nil
}

// SetCustomMetadata implements hs.ResourcesClient.SetCustomMetadata.
func (c *ResourcesClient) SetCustomMetadata(ctx context.Context, pid string, metadata map[string]string) error {
	err := requirePID(pid)
	if err != nil {
		return err
	}

	form := url.Values{}
	for key, value := range metadata {
		form.Set(key, value)
	}

	resp, err := c.httpClient.PostForm(ctx, resourcePath(pid, "scimeta/custom/"), form)
	if err != nil {
		return fmt.Errorf("setting custom metadata: %w", err)
	}

	return checkResponse(resp, target{pid: pid, params: form}, http.StatusOK, http.StatusAccepted)
}

// GetResourceMap implements hs.ResourcesClient.GetResourceMap.
func (c *ResourcesClient) GetResourceMap(ctx context.Context, pid string) ([]byte, error) {
	body, err := c.getBody(ctx, pid, "map/")
	if err != nil {
		return nil, fmt.Errorf("getting resource map: %w", err)
	}

	return body, nil
}

// GetTypes implements hs.ResourcesClient.GetTypes. The list is fetched
// once per client.
func (c *ResourcesClient) GetTypes(ctx context.Context) ([]string, error) {
	c.typesMutex.Lock()
	defer c.typesMutex.Unlock()

	if c.types != nil {
		return slices.Clone(c.types), nil
	}

	resp, err := c.httpClient.Get(ctx, constants.APIPathResourceTypes, nil)
	if err != nil {
		return nil, fmt.Errorf("getting resource types: %w", err)
	}

	err = checkResponse(resp, target{}, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var entries []hs.ResourceType

	err = json.Unmarshal(resp.Body, &entries)
	if err != nil {
		return nil, fmt.Errorf("parsing resource types response: %w", err)
	}

	types := make([]string, 0, len(entries))
	for _, entry := range entries {
		types = append(types, entry.ResourceType)
	}

	c.types = types

	return slices.Clone(types), nil
}

// GetContentTypes implements hs.ResourcesClient.GetContentTypes.
func (c *ResourcesClient) GetContentTypes(ctx context.Context) ([]string, error) {
	resp, err := c.httpClient.Get(ctx, constants.APIPathContentTypes, nil)
	if err != nil {
		return nil, fmt.Errorf("getting content types: %w", err)
	}

	err = checkResponse(resp, target{}, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var entries []hs.ContentType

	err = json.Unmarshal(resp.Body, &entries)
	if err != nil {
		return nil, fmt.Errorf("parsing content types response: %w", err)
	}

	contentTypes := make([]string, 0, len(entries))
	for _, entry := range entries {
		contentTypes = append(contentTypes, entry.ContentType)
	}

	return contentTypes, nil
}

// Create implements hs.ResourcesClient.Create. The resource type is checked
// against the server's type list before anything is uploaded.
func (c *ResourcesClient) Create(ctx context.Context, request *hs.ResourceCreateRequest) (string, error) {
	if request == nil {
		return "", &hs.ArgumentError{Message: "resource create request is required"}
	}

	err := request.Validate()
	if err != nil {
		return "", err
	}

	types, err := c.GetTypes(ctx)
	if err != nil {
		return "", err
	}

	if !slices.Contains(types, request.ResourceType) {
		return "", &hs.ArgumentError{
			Message: fmt.Sprintf("resource type %s is not among known resources: %s",
				request.ResourceType, strings.Join(types, ", ")),
			Err: hs.ErrUnknownResource,
		}
	}

	form, err := createResourceForm(c.fs, request)
	if err != nil {
		return "", err
	}

	body, contentType, err := form.finish()
	if err != nil {
		return "", err
	}

	var progress http_internal.ProgressFunc
	if request.File != nil {
		progress = request.File.Progress
	}

	resp, err := c.httpClient.PostRaw(ctx, constants.APIPathResource, body, contentType, progress)
	if err != nil {
		return "", fmt.Errorf("creating resource: %w", err)
	}

	err = checkResponse(resp, target{params: form.fields}, http.StatusCreated)
	if err != nil {
		return "", err
	}

	return decodeResourceID(resp.Body, "")
}

func createResourceForm(fs afero.Fs, request *hs.ResourceCreateRequest) (*multipartForm, error) {
	form := newMultipartForm()

	form.addField("resource_type", request.ResourceType)
	form.addField("title", request.Title)

	if request.Abstract != "" {
		form.addField("abstract", request.Abstract)
	}

	// Indexed keys are what the server's serializer reads as a list.
	for i, keyword := range request.Keywords {
		form.addField("keywords["+strconv.Itoa(i)+"]", keyword)
	}

	form.addFields("edit_users", request.EditUsers)
	form.addFields("view_users", request.ViewUsers)
	form.addFields("edit_groups", request.EditGroups)
	form.addFields("view_groups", request.ViewGroups)

	if len(request.Metadata) > 0 {
		err := form.addJSONField("metadata", request.Metadata)
		if err != nil {
			return nil, err
		}
	}

	if len(request.ExtraMetadata) > 0 {
		err := form.addJSONField("extra_metadata", request.ExtraMetadata)
		if err != nil {
			return nil, err
		}
	}

	if request.File != nil {
		err := form.addFile(fs, "file", request.File)
		if err != nil {
			return nil, err
		}
	}

	return form, nil
}

// Delete implements hs.ResourcesClient.Delete.
func (c *ResourcesClient) Delete(ctx context.Context, pid string) (string, error) {
	err := requirePID(pid)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Delete(ctx, resourcePath(pid, ""))
	if err != nil {
		return "", fmt.Errorf("deleting resource: %w", err)
	}

	err = checkResponse(resp, target{pid: pid}, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusNoContent {
		return pid, nil
	}

	return decodeResourceID(resp.Body, pid)
}

// SetAccessRules implements hs.ResourcesClient.SetAccessRules.
func (c *ResourcesClient) SetAccessRules(ctx context.Context, pid string, public bool) (string, error) {
	err := requirePID(pid)
	if err != nil {
		return "", err
	}

	form := url.Values{"public": {strconv.FormatBool(public)}}

	resp, err := c.httpClient.PutForm(ctx, "/resource/accessRules/"+url.PathEscape(pid)+"/", form)
	if err != nil {
		return "", fmt.Errorf("setting access rules: %w", err)
	}

	err = checkResponse(resp, target{pid: pid, params: form}, http.StatusOK)
	if err != nil {
		return "", err
	}

	return decodeResourceID(resp.Body, pid)
}

// SetFlag implements hs.ResourcesClient.SetFlag.
func (c *ResourcesClient) SetFlag(ctx context.Context, pid string, flag hs.ResourceFlag) error {
	err := requirePID(pid)
	if err != nil {
		return err
	}

	if !flag.Valid() {
		return &hs.ArgumentError{Message: "flag " + string(flag), Err: hs.ErrUnknownFlag}
	}

	form := url.Values{"t": {string(flag)}}

	resp, err := c.httpClient.PostForm(ctx, resourcePath(pid, "flag/"), form)
	if err != nil {
		return fmt.Errorf("setting flag %s: %w", flag, err)
	}

	return checkResponse(resp, target{pid: pid, params: form}, http.StatusOK, http.StatusAccepted)
}

// SetPublic sets make_public or make_private.
func (c *ResourcesClient) SetPublic(ctx context.Context, pid string, public bool) error {
	if public {
		return c.SetFlag(ctx, pid, hs.FlagMakePublic)
	}

	return c.SetFlag(ctx, pid, hs.FlagMakePrivate)
}

// SetDiscoverable sets make_discoverable or make_not_discoverable.
func (c *ResourcesClient) SetDiscoverable(ctx context.Context, pid string, discoverable bool) error {
	if discoverable {
		return c.SetFlag(ctx, pid, hs.FlagMakeDiscoverable)
	}

	return c.SetFlag(ctx, pid, hs.FlagMakeNotDiscoverable)
}

// SetShareable sets make_shareable or make_not_shareable.
func (c *ResourcesClient) SetShareable(ctx context.Context, pid string, shareable bool) error {
	if shareable {
		return c.SetFlag(ctx, pid, hs.FlagMakeShareable)
	}

	return c.SetFlag(ctx, pid, hs.FlagMakeNotShareable)
}

// Copy implements hs.ResourcesClient.Copy.
func (c *ResourcesClient) Copy(ctx context.Context, pid string) (string, error) {
	return c.derive(ctx, pid, "copy/", "copying resource")
}

// Version implements hs.ResourcesClient.Version.
func (c *ResourcesClient) Version(ctx context.Context, pid string) (string, error) {
	return c.derive(ctx, pid, "version/", "versioning resource")
}

// derive posts to an endpoint that creates a new resource from pid and
// returns the new id.
func (c *ResourcesClient) derive(ctx context.Context, pid, sub, action string) (string, error) {
	err := requirePID(pid)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Post(ctx, resourcePath(pid, sub), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", action, err)
	}

	err = checkResponse(resp, target{pid: pid}, http.StatusOK, http.StatusCreated, http.StatusAccepted)
	if err != nil {
		return "", err
	}

	return decodeNewResourceID(resp.Body)
}

// decodeNewResourceID accepts a JSON string, an object with resource_id or
// a bare id.
func decodeNewResourceID(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)

	var id string

	if json.Unmarshal(trimmed, &id) == nil && id != "" {
		return id, nil
	}

	var result resourceIDResponse

	if json.Unmarshal(trimmed, &result) == nil && result.ResourceID != "" {
		return result.ResourceID, nil
	}

	if len(trimmed) > 0 && !bytes.ContainsAny(trimmed, "{}[]\" \n") {
		return string(trimmed), nil
	}

	return "", &hs.GenericClientError{Message: "server did not return a resource id", Err: hs.ErrMalformedEnvelope}
}

func (c *ResourcesClient) getBody(ctx context.Context, pid, sub string) ([]byte, error) {
	err := requirePID(pid)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, resourcePath(pid, sub), nil)
	if err != nil {
		return nil, err
	}

	err = checkResponse(resp, target{pid: pid}, http.StatusOK)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}
