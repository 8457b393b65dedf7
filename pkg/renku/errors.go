package renku

import (
	"errors"
	"fmt"
	"maps"
)

// ErrorKind is the machine-readable case tag of an Error.
type ErrorKind string

// Error kinds. The set is closed: the classifier never produces anything else.
const (
	// KindNetworkError is a transport failure before any response was received.
	KindNetworkError ErrorKind = "networkError"
	// KindAuthExpired is a response carrying the expired session marker header.
	KindAuthExpired ErrorKind = "authExpiredError"
	// KindUnauthorized is a 401 or 403 without the expiry marker.
	KindUnauthorized ErrorKind = "unauthorizedError"
	// KindNotFound is a 404.
	KindNotFound ErrorKind = "notFoundError"
	// KindValidation is any other 4xx.
	KindValidation ErrorKind = "validationError"
	// KindInternalServerError is any 5xx (and any unexpected non-2xx status).
	KindInternalServerError ErrorKind = "internalServerError"
	// KindIterationLimitExceeded is raised only by the pagination iterator.
	KindIterationLimitExceeded ErrorKind = "iterationLimitExceeded"
)

// Kinds returns every error kind in a stable order.
func Kinds() []ErrorKind {
	return []ErrorKind{
		KindNetworkError,
		KindAuthExpired,
		KindUnauthorized,
		KindNotFound,
		KindValidation,
		KindInternalServerError,
		KindIterationLimitExceeded,
	}
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	return string(k)
}

// Error is the error record rejected to callers of the access layer.
//
// An Error is immutable once constructed: its fields are unexported and the
// accessors return copies of anything mutable.
type Error struct {
	kind       ErrorKind
	message    string
	statusCode int
	errorData  map[string]interface{}
	cause      error
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.statusCode > 0 {
		return fmt.Sprintf("%s: %s (status: %d)", e.kind, e.message, e.statusCode)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}

	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the case tag.
func (e *Error) Kind() ErrorKind {
	return e.kind
}

// Message returns the human readable message.
func (e *Error) Message() string {
	return e.message
}

// StatusCode returns the HTTP status, or 0 when no response was received.
func (e *Error) StatusCode() int {
	return e.statusCode
}

// ErrorData returns a copy of the parsed JSON error body, or nil.
func (e *Error) ErrorData() map[string]interface{} {
	if e.errorData == nil {
		return nil
	}

	return maps.Clone(e.errorData)
}

// DetailMessage digs the backend message out of errorData. Backends wrap it
// either as {"error": {"message": ...}} or as {"message": ...}.
func (e *Error) DetailMessage() string {
	if e.errorData == nil {
		return ""
	}

	if nested, ok := e.errorData["error"].(map[string]interface{}); ok {
		if msg, ok := nested["message"].(string); ok {
			return msg
		}
	}

	if msg, ok := e.errorData["message"].(string); ok {
		return msg
	}

	return ""
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, renku.NewError(renku.KindNotFound, "")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.kind == e.kind
}

// withStatus, withData and withCause are used while constructing a record,
// before it escapes to a caller.
func (e *Error) withStatus(code int) *Error {
	e.statusCode = code

	return e
}

func (e *Error) withData(data map[string]interface{}) *Error {
	e.errorData = data

	return e
}

func (e *Error) withCause(err error) *Error {
	e.cause = err

	return e
}

// Static errors for err113 compliance.
var (
	ErrPaginationUnsupported = errors.New("invoked API doesn't return structured data, making pagination unusable")
	ErrNilRequest            = errors.New("request is required")
	ErrBaseURLRequired       = errors.New("API URL is required")
	ErrUIServerURLRequired   = errors.New("UI server URL is required")
	ErrInvalidReturnMode     = errors.New("invalid return mode")
	ErrNoNavigator           = errors.New("no navigator configured")
	ErrNoMorePages           = errors.New("no more pages")
	ErrInvalidJSON           = errors.New("response body is not valid JSON")
	ErrRenewalInFlight       = errors.New("session expired, renewal in flight")
)

// NewIterationLimitError is returned by the pagination iterator once the
// iteration ceiling is hit.
func NewIterationLimitError(maxIterations int) *Error {
	return NewError(KindIterationLimitExceeded, fmt.Sprintf("cannot iterate more than %d times", maxIterations))
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.kind
	}

	return ""
}

// IsNetworkError checks if the error is a network error.
func IsNetworkError(err error) bool {
	return KindOf(err) == KindNetworkError
}

// IsAuthExpired checks if the error is an expired session error.
func IsAuthExpired(err error) bool {
	return KindOf(err) == KindAuthExpired
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsInternalServerError checks if the error is a server side error.
func IsInternalServerError(err error) bool {
	return KindOf(err) == KindInternalServerError
}

// IsIterationLimitExceeded checks if the error is the iterator's ceiling error.
func IsIterationLimitExceeded(err error) bool {
	return KindOf(err) == KindIterationLimitExceeded
}
