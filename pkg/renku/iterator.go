package renku

import (
	"context"
	"fmt"
	"iter"
	"strconv"
)

// DefaultMaxIterations is the default iteration ceiling of IterableFetch.
const DefaultMaxIterations = 10

// IterateOptions configures a pagination sequence.
type IterateOptions struct {
	// MaxIterations is the maximum number of page fetches. 0 means unlimited.
	MaxIterations int
	// FetchOptions are passed to every page fetch.
	FetchOptions []FetchOption
}

// IterateOption configures IterateOptions.
type IterateOption func(*IterateOptions)

// WithMaxIterations sets the iteration ceiling; 0 disables it.
func WithMaxIterations(limit int) IterateOption {
	return func(o *IterateOptions) {
		o.MaxIterations = limit
	}
}

// WithFetchOptions sets the options used for every page fetch.
func WithFetchOptions(opts ...FetchOption) IterateOption {
	return func(o *IterateOptions) {
		o.FetchOptions = append(o.FetchOptions, opts...)
	}
}

// PageIterator lazily fetches the pages of one listing request, one page in
// flight at a time and in increasing page order. A finished iterator cannot
// be restarted; call IterableFetch again instead.
type PageIterator[T any] struct {
	ctx           context.Context //nolint:containedctx // the iterator is bound to one call
	fetcher       Fetcher
	request       *Request
	fetchOptions  []FetchOption
	maxIterations int

	page       int
	iterations int
	done       bool
	err        error
}

// IterableFetch creates an iterator over the pages of req. The "page" query
// parameter is set on every fetch; the sequence ends when a page reports no
// next page.
func IterableFetch[T any](ctx context.Context, fetcher Fetcher, req *Request, opts ...IterateOption) *PageIterator[T] {
	options := IterateOptions{MaxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&options)
	}

	return &PageIterator[T]{
		ctx:           ctx,
		fetcher:       fetcher,
		request:       req,
		fetchOptions:  options.FetchOptions,
		maxIterations: options.MaxIterations,
		page:          1,
		iterations:    1,
	}
}

// HasNext reports whether Next may return another page.
func (it *PageIterator[T]) HasNext() bool {
	return !it.done && it.err == nil
}

// Err returns the error that ended the sequence, if any.
func (it *PageIterator[T]) Err() error {
	return it.err
}

// Next fetches the next page. Its pagination carries the progress computed
// at fetch time. Any error is final.
func (it *PageIterator[T]) Next() (*Envelope[T], error) {
	if it.err != nil {
		return nil, it.err
	}

	if it.done {
		return nil, ErrNoMorePages
	}

	if it.maxIterations > 0 && it.iterations > it.maxIterations {
		it.err = NewIterationLimitError(it.maxIterations)

		return nil, it.err
	}

	req := it.request.WithQuery("page", strconv.Itoa(it.page))

	envelope, err := FetchInto[T](it.ctx, it.fetcher, req, it.fetchOptions...)
	if err != nil {
		it.err = err

		return nil, err
	}

	it.iterations++

	if envelope.RenewalInFlight {
		it.done = true

		return envelope, nil
	}

	if envelope.Pagination == nil {
		it.err = fmt.Errorf("fetching page %d: %w", it.page, ErrPaginationUnsupported)

		return nil, it.err
	}

	pagination := *envelope.Pagination
	pagination.Progress = pagination.ComputeProgress()
	envelope.Pagination = &pagination

	it.page = pagination.NextPage
	if it.page <= 0 {
		it.done = true
	}

	return envelope, nil
}

// Pages returns the remaining pages as a range-over-func sequence. The
// sequence stops after the first error.
func (it *PageIterator[T]) Pages() iter.Seq2[*Envelope[T], error] {
	return func(yield func(*Envelope[T], error) bool) {
		for it.HasNext() {
			page, err := it.Next()
			if !yield(page, err) || err != nil {
				return
			}
		}
	}
}

// Listing is the accumulated result of a paginated request.
//
// Pagination is the state of the last fetched page; Done is true only when
// the sequence finished without error.
type Listing[E any] struct {
	Data            []E        `json:"data"       yaml:"data"`
	Pagination      Pagination `json:"pagination" yaml:"pagination"`
	RenewalInFlight bool       `json:"-"          yaml:"-"`
}

// Collect fetches every page of req and concatenates their items. The
// returned listing is never nil: on error it holds the pages fetched so far.
func Collect[E any](ctx context.Context, fetcher Fetcher, req *Request, opts ...IterateOption) (*Listing[E], error) {
	listing := &Listing[E]{Data: []E{}}

	for page, err := range IterableFetch[[]E](ctx, fetcher, req, opts...).Pages() {
		if err != nil {
			return listing, err
		}

		if page.RenewalInFlight {
			listing.RenewalInFlight = true

			return listing, nil
		}

		listing.Data = append(listing.Data, page.Data...)
		listing.Pagination = *page.Pagination
		listing.Pagination.Done = false
	}

	listing.Pagination.Done = true

	return listing, nil
}
