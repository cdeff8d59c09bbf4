package hs

import (
	"context"
	"iter"
	"net/url"
	"strings"
)

// PageFetcher fetches one page of a list endpoint. pageURL is either the
// first page's URL or a next link taken from the previous page.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, pageURL string, params url.Values) (*PagedResponse[T], error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc[T any] func(ctx context.Context, pageURL string, params url.Values) (*PagedResponse[T], error)

// FetchPage implements PageFetcher.
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, pageURL string, params url.Values) (*PagedResponse[T], error) {
	return f(ctx, pageURL, params)
}

// ResultsIterator walks every item of a paginated listing in server order.
// Pages are fetched lazily, each with the same query parameters. An
// iterator is single-pass and not safe for concurrent use.
type ResultsIterator[T any] struct {
	ctx      context.Context
	fetcher  PageFetcher[T]
	params   url.Values
	useHTTPS bool

	nextURL string
	started bool
	done    bool
	items   []T
	index   int
	err     error
}

// NewResultsIterator creates an iterator starting at firstURL. When useHTTPS
// is set, next links announced over http:// are upgraded to https://.
func NewResultsIterator[T any](ctx context.Context, fetcher PageFetcher[T], firstURL string, params url.Values, useHTTPS bool) *ResultsIterator[T] {
	return &ResultsIterator[T]{
		ctx:      ctx,
		fetcher:  fetcher,
		params:   params,
		useHTTPS: useHTTPS,
		nextURL:  firstURL,
	}
}

// HasNext reports whether Next will yield an item or an error. It may fetch
// the following page.
func (it *ResultsIterator[T]) HasNext() bool {
	if it.index < len(it.items) || it.err != nil {
		return true
	}

	if it.done {
		return false
	}

	it.fill()

	return it.index < len(it.items) || it.err != nil
}

// Next returns the next item. After the last item it returns ErrNoMoreItems.
// A failed page fetch is returned once and ends the iteration.
func (it *ResultsIterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		return zero, ErrNoMoreItems
	}

	if it.index >= len(it.items) {
		err := it.err
		it.err = nil

		return zero, err
	}

	item := it.items[it.index]
	it.index++

	return item, nil
}

// All drains the iterator into a slice.
func (it *ResultsIterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return all, err
		}

		all = append(all, item)
	}

	return all, nil
}

// ForEach calls fn for every remaining item and stops at the first error.
func (it *ResultsIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// Seq exposes the iterator as a range-over-func sequence. A fetch error is
// yielded once with a zero item and ends the sequence.
func (it *ResultsIterator[T]) Seq() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.HasNext() {
			item, err := it.Next()
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

// fill fetches pages until one has items or the listing ends.
func (it *ResultsIterator[T]) fill() {
	for it.index >= len(it.items) && !it.done {
		if it.nextURL == "" {
			it.done = true

			return
		}

		pageURL := it.nextURL
		if it.started && it.useHTTPS {
			pageURL = strings.Replace(pageURL, "http://", "https://", 1)
		}

		page, err := it.fetcher.FetchPage(it.ctx, pageURL, it.params)
		if err != nil {
			it.err = err
			it.done = true

			return
		}

		it.started = true
		it.items = page.Results
		it.index = 0
		it.nextURL = page.NextURL()
	}
}

// FetchAll collects every item of a listing. MaxPages in opts bounds the
// number of pages requested; zero means no limit.
func FetchAll[T any](ctx context.Context, fetcher PageFetcher[T], firstURL string, params url.Values, useHTTPS bool, opts *PaginationOptions) ([]T, error) {
	maxPages := 0
	if opts != nil {
		maxPages = opts.MaxPages
	}

	counting := &countingFetcher[T]{fetcher: fetcher, limit: maxPages}
	it := NewResultsIterator[T](ctx, counting, firstURL, params, useHTTPS)

	return it.All()
}

// PaginationOptions tunes FetchAll.
type PaginationOptions struct {
	MaxPages int
}

type countingFetcher[T any] struct {
	fetcher PageFetcher[T]
	limit   int
	pages   int
}

func (f *countingFetcher[T]) FetchPage(ctx context.Context, pageURL string, params url.Values) (*PagedResponse[T], error) {
	page, err := f.fetcher.FetchPage(ctx, pageURL, params)
	if err != nil {
		return nil, err
	}

	f.pages++
	if f.limit > 0 && f.pages >= f.limit {
		page.Next = nil
	}

	return page, nil
}
