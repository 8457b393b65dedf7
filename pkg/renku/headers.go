package renku

import "net/http"

// Headers is an immutable header collection. Every With* call returns a new
// collection and leaves the receiver untouched, so a shared default can be
// extended per call without leaking headers between callers.
type Headers struct {
	header http.Header
}

// NewHeaders creates an empty header collection.
func NewHeaders() Headers {
	return Headers{}
}

// BasicHeaders is the default collection sent by resource methods.
func BasicHeaders() Headers {
	return NewHeaders().With("Accept", "application/json")
}

// JSONHeaders is BasicHeaders plus a JSON content type, for mutating calls.
func JSONHeaders() Headers {
	return BasicHeaders().With("Content-Type", "application/json")
}

// With returns a copy with key set to value, replacing any previous values.
func (h Headers) With(key, value string) Headers {
	next := h.header.Clone()
	if next == nil {
		next = make(http.Header)
	}

	next.Set(key, value)

	return Headers{header: next}
}

// WithAdded returns a copy with value appended to key.
func (h Headers) WithAdded(key, value string) Headers {
	next := h.header.Clone()
	if next == nil {
		next = make(http.Header)
	}

	next.Add(key, value)

	return Headers{header: next}
}

// Without returns a copy with key removed.
func (h Headers) Without(key string) Headers {
	next := h.header.Clone()
	if next == nil {
		return h
	}

	next.Del(key)

	return Headers{header: next}
}

// Get returns the first value for key.
func (h Headers) Get(key string) string {
	return h.header.Get(key)
}

// Values returns all values for key.
func (h Headers) Values(key string) []string {
	return append([]string(nil), h.header.Values(key)...)
}

// Len returns the number of distinct keys.
func (h Headers) Len() int {
	return len(h.header)
}

// Header returns a mutable copy suitable for an outgoing request.
func (h Headers) Header() http.Header {
	if h.header == nil {
		return make(http.Header)
	}

	return h.header.Clone()
}
