package renku

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HeaderAuthExpired is set by the UI server on any response to a request
// whose session has expired, whatever the status code.
const HeaderAuthExpired = "UI-Server-Auth"

// ClassifyResponse maps a received response to an Error. It returns nil for
// 2xx responses, which are never errors. Classification is a pure function of
// its inputs and never fails.
func ClassifyResponse(statusCode int, header http.Header, body []byte) *Error {
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	if sessionExpired(header) {
		return NewError(KindAuthExpired, "session expired").withStatus(statusCode)
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return NewError(KindUnauthorized, statusMessage(statusCode)).withStatus(statusCode)
	case statusCode == http.StatusNotFound:
		return NewError(KindNotFound, statusMessage(statusCode)).withStatus(statusCode)
	case statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError:
		apiErr := NewError(KindValidation, statusMessage(statusCode)).withStatus(statusCode)

		data, err := ParseErrorData(body)
		if err == nil {
			apiErr.withData(data)
		}

		return apiErr
	default:
		return NewError(KindInternalServerError, statusMessage(statusCode)).withStatus(statusCode)
	}
}

// ClassifyTransportError wraps a failure that happened before any response
// was received (DNS, connection refused, aborted request).
func ClassifyTransportError(err error) *Error {
	return NewError(KindNetworkError, "network request failed").withCause(err)
}

// ParseErrorData parses a JSON object error body.
func ParseErrorData(body []byte) (map[string]interface{}, error) {
	var data map[string]interface{}

	err := json.Unmarshal(body, &data)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func sessionExpired(header http.Header) bool {
	if header == nil {
		return false
	}

	return strings.TrimSpace(header.Get(HeaderAuthExpired)) != ""
}

func statusMessage(statusCode int) string {
	text := http.StatusText(statusCode)
	if text == "" {
		return "unexpected response status"
	}

	return strings.ToLower(text)
}
