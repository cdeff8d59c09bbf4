package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	http_internal "github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
)

// pageFetcher fetches pages of a list endpoint. pid is reported in
// NotFoundError when the listing belongs to a resource.
type pageFetcher[T any] struct {
	httpClient *http_internal.Client
	pid        string
}

// FetchPage implements hs.PageFetcher.
func (f *pageFetcher[T]) FetchPage(ctx context.Context, pageURL string, params url.Values) (*hs.PagedResponse[T], error) {
	resp, err := f.httpClient.Get(ctx, pageURL, params)
	if err != nil {
		return nil, fmt.Errorf("fetching page %s: %w", pageURL, err)
	}

	err = checkResponse(resp, target{pid: f.pid, params: params}, http.StatusOK)
	if err != nil {
		return nil, err
	}

	return hs.DecodePagedResponse[T](resp.Body)
}

// newIterator starts a lazy listing of path.
func newIterator[T any](ctx context.Context, httpClient *http_internal.Client, path, pid string, params url.Values, useHTTPS bool) *hs.ResultsIterator[T] {
	fetcher := &pageFetcher[T]{httpClient: httpClient, pid: pid}

	return hs.NewResultsIterator[T](ctx, fetcher, path, params, useHTTPS)
}

// failedIterator yields err once.
func failedIterator[T any](ctx context.Context, err error) *hs.ResultsIterator[T] {
	fetcher := hs.PageFetcherFunc[T](func(context.Context, string, url.Values) (*hs.PagedResponse[T], error) {
		return nil, err
	})

	return hs.NewResultsIterator[T](ctx, fetcher, "invalid", nil, false)
}
