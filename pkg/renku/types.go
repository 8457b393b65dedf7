package renku

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ReturnMode selects how a successful response is coerced.
type ReturnMode string

const (
	// ReturnJSON parses the body and pairs it with pagination metadata.
	ReturnJSON ReturnMode = "json"
	// ReturnText returns the decoded body.
	ReturnText ReturnMode = "text"
	// ReturnFull returns the untouched response.
	ReturnFull ReturnMode = "full"
)

// ParseReturnMode validates a return mode name. The empty name is json.
func ParseReturnMode(value string) (ReturnMode, error) {
	switch mode := ReturnMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return ReturnJSON, nil
	case ReturnJSON, ReturnText, ReturnFull:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidReturnMode, value)
	}
}

// Envelope is the result of a json mode call. It always marshals to exactly
// the keys "data" and "pagination".
//
// RenewalInFlight is set when the call was short-circuited because the
// session expired and a renewal navigation was started: Data is then the
// zero value and must not be mistaken for a real (empty) result.
type Envelope[T any] struct {
	Data            T           `json:"data"`
	Pagination      *Pagination `json:"pagination"`
	RenewalInFlight bool        `json:"-"`
}

// Response is a full mode result: the response as received, body included.
type Response struct {
	StatusCode      int
	Header          http.Header
	Body            []byte
	RenewalInFlight bool
}

// JSON decodes the body into v.
func (r *Response) JSON(v interface{}) error {
	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("parsing response body: %w", err)
	}

	return nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// FetchConfig holds the per-call behavior of the authenticated client.
type FetchConfig struct {
	// AlertOnError sends a notification for every error not handled by
	// re-login. The error is still returned.
	AlertOnError bool
	// ReLoginOnAuth turns an expired session into a renewal navigation and an
	// empty result instead of an error.
	ReLoginOnAuth bool
	// AnonymousLogin selects the anonymous session renewal target.
	AnonymousLogin bool
}

// FetchOption configures a single call.
type FetchOption func(*FetchConfig)

// DefaultFetchConfig returns the defaults: no alert, re-login on, regular login.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{ReLoginOnAuth: true}
}

// NewFetchConfig applies opts over the defaults.
func NewFetchConfig(opts ...FetchOption) FetchConfig {
	cfg := DefaultFetchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// WithAlertOnError enables the notification side channel.
func WithAlertOnError() FetchOption {
	return func(c *FetchConfig) {
		c.AlertOnError = true
	}
}

// WithAlert sets AlertOnError explicitly.
func WithAlert(enabled bool) FetchOption {
	return func(c *FetchConfig) {
		c.AlertOnError = enabled
	}
}

// WithoutReLogin makes an expired session surface as an error.
func WithoutReLogin() FetchOption {
	return func(c *FetchConfig) {
		c.ReLoginOnAuth = false
	}
}

// WithAnonymousLogin renews expired sessions through the anonymous login.
func WithAnonymousLogin() FetchOption {
	return func(c *FetchConfig) {
		c.AnonymousLogin = true
	}
}

// Fetcher is the authenticated client entry point. Each method is one
// return mode.
type Fetcher interface {
	FetchJSON(ctx context.Context, req *Request, opts ...FetchOption) (*Envelope[json.RawMessage], error)
	FetchText(ctx context.Context, req *Request, opts ...FetchOption) (string, error)
	FetchFull(ctx context.Context, req *Request, opts ...FetchOption) (*Response, error)
}

// FetchInto performs a json mode call and decodes the data into T.
func FetchInto[T any](ctx context.Context, fetcher Fetcher, req *Request, opts ...FetchOption) (*Envelope[T], error) {
	raw, err := fetcher.FetchJSON(ctx, req, opts...)
	if err != nil {
		return nil, err
	}

	envelope := &Envelope[T]{
		Pagination:      raw.Pagination,
		RenewalInFlight: raw.RenewalInFlight,
	}

	if raw.RenewalInFlight || len(raw.Data) == 0 {
		return envelope, nil
	}

	err = json.Unmarshal(raw.Data, &envelope.Data)
	if err != nil {
		return nil, fmt.Errorf("parsing response data: %w", err)
	}

	return envelope, nil
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Notifier is the user-visible alert side channel.
type Notifier interface {
	Notify(ctx context.Context, err *Error) error
}

// Navigator performs the renewal navigation. In a browser this replaces the
// current page; in a CLI it tells the user where to log in.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(ctx context.Context, target string) error {
	return f(ctx, target)
}

// TokenProvider supplies the credential sent on same-origin requests.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider for a fixed token.
type StaticToken string

// GetToken implements TokenProvider.
func (t StaticToken) GetToken(ctx context.Context) (string, error) {
	return string(t), nil
}

// Config represents client configuration for building a renku.Client.
type Config struct {
	// APIURL is the base URL of the API gateway, e.g. "https://renku.example.com/api".
	// Credentials are only ever sent to this origin.
	APIURL string
	// UIServerURL hosts the login and logout endpoints. Defaults to APIURL's origin + "/ui-server".
	UIServerURL string

	// Token is sent as a bearer token on same-origin requests.
	Token string
	// TokenProvider overrides Token when set.
	TokenProvider TokenProvider
	// Cookies are sent on same-origin requests, e.g. the UI server session cookie.
	Cookies []*http.Cookie

	// HTTPTimeout bounds a single transport call. Zero leaves the underlying
	// client's default in place.
	HTTPTimeout time.Duration
	// RequestsPerSecond enables a client-side rate limit when > 0.
	RequestsPerSecond float64
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Debug enables per-request logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger

	// Notifier receives alerts for calls made WithAlertOnError.
	Notifier Notifier
	// Navigator performs renewal navigations.
	Navigator Navigator
	// Location returns the location the user should come back to after a renewal.
	Location func() string
}
