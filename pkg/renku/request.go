package renku

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strconv"
)

// Query is a plain key to value map of query parameters. Arrays and objects
// must be serialized by the caller.
type Query map[string]string

// With returns a copy of q with key set to value.
func (q Query) With(key, value string) Query {
	next := maps.Clone(q)
	if next == nil {
		next = make(Query, 1)
	}

	next[key] = value

	return next
}

// WithInt is With for integer values.
func (q Query) WithInt(key string, value int) Query {
	return q.With(key, strconv.Itoa(value))
}

// WithBool is With for boolean values.
func (q Query) WithBool(key string, value bool) Query {
	return q.With(key, strconv.FormatBool(value))
}

// Values converts q to url.Values.
func (q Query) Values() url.Values {
	values := make(url.Values, len(q))
	for key, value := range q {
		values.Set(key, value)
	}

	return values
}

// Request describes one transport call. A Request is treated as immutable:
// the With* helpers return modified copies and the transport never writes to
// the caller's URL, headers or query.
type Request struct {
	Method  string
	URL     string
	Headers Headers
	Body    []byte
	Query   Query
}

// NewRequest creates a request with the basic headers.
func NewRequest(method, rawURL string) *Request {
	return &Request{
		Method:  method,
		URL:     rawURL,
		Headers: BasicHeaders(),
	}
}

// Get creates a GET request.
func Get(rawURL string) *Request {
	return NewRequest(http.MethodGet, rawURL)
}

// WithQuery returns a copy with one query parameter set.
func (r *Request) WithQuery(key, value string) *Request {
	next := r.clone()
	next.Query = r.Query.With(key, value)

	return next
}

// WithQueryParams returns a copy with every entry of params merged in.
func (r *Request) WithQueryParams(params Query) *Request {
	next := r.clone()

	merged := maps.Clone(r.Query)
	if merged == nil {
		merged = make(Query, len(params))
	}

	maps.Copy(merged, params)
	next.Query = merged

	return next
}

// WithHeader returns a copy with a header set.
func (r *Request) WithHeader(key, value string) *Request {
	next := r.clone()
	next.Headers = r.Headers.With(key, value)

	return next
}

// WithHeaders returns a copy using headers.
func (r *Request) WithHeaders(headers Headers) *Request {
	next := r.clone()
	next.Headers = headers

	return next
}

// WithBody returns a copy carrying body.
func (r *Request) WithBody(body []byte) *Request {
	next := r.clone()
	next.Body = append([]byte(nil), body...)

	return next
}

// ResolveURL returns a new URL with every query parameter appended. Keys and
// values are percent-encoded; existing parameters of the same name are
// replaced.
func (r *Request) ResolveURL() (*url.URL, error) {
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing request URL: %w", err)
	}

	if len(r.Query) == 0 {
		return parsed, nil
	}

	values := parsed.Query()
	for key, value := range r.Query {
		values.Set(key, value)
	}

	parsed.RawQuery = values.Encode()

	return parsed, nil
}

func (r *Request) clone() *Request {
	next := *r

	return &next
}
