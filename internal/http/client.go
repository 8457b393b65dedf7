package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Client is the transport wrapper: it performs one HTTP exchange per call
// and turns every failure into a *renku.Error.
type Client struct {
	baseURL       *url.URL
	httpClient    *retryablehttp.Client
	tokenProvider renku.TokenProvider
	cookies       []*http.Cookie
	userAgent     string
	logger        renku.Logger
	debug         bool
	timeout       time.Duration
	limiter       *rate.Limiter
}

// Option configures the HTTP client.
type Option func(*Client)

// WithLogger sets the logger for the client.
func WithLogger(logger renku.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables per-request debug logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout bounds each call. It applies to a client set with
// WithHTTPClient too, whatever the option order.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithRateLimit limits the client to requestsPerSecond calls, with bursts of one.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
		}
	}
}

// WithCookies sets cookies sent on same-origin requests.
func WithCookies(cookies ...*http.Cookie) Option {
	return func(c *Client) {
		c.cookies = append(c.cookies, cookies...)
	}
}

// NewClient creates a new HTTP client. Credentials from tokenProvider and
// cookies are only sent to baseURL's origin; an unparsable baseURL disables
// them altogether.
func NewClient(baseURL string, tokenProvider renku.TokenProvider, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		httpClient:    retryClient,
		tokenProvider: tokenProvider,
		userAgent:     constants.DefaultUserAgent,
	}

	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err == nil && parsed.Scheme != "" && parsed.Host != "" {
		client.baseURL = parsed
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.timeout > 0 {
		client.httpClient.HTTPClient.Timeout = client.timeout
	}

	if client.logger != nil && client.debug {
		retryClient.Logger = leveledLogger{logger: client.logger}
	}

	return client
}

// checkRetry never retries: every call is exactly one exchange.
func checkRetry(ctx context.Context, _ *http.Response, _ error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	return false, nil
}

// Timeout returns the per-call timeout of the underlying HTTP client.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.HTTPClient.Timeout
}

// BaseURL returns the API base URL, or nil.
func (c *Client) BaseURL() *url.URL {
	if c.baseURL == nil {
		return nil
	}

	u := *c.baseURL

	return &u
}

// Do performs req. On a non-2xx status it returns the response together
// with the classified error; on a transport failure the response is nil.
func (c *Client) Do(ctx context.Context, req *renku.Request) (*renku.Response, error) {
	if req == nil {
		return nil, renku.ErrNilRequest
	}

	start := time.Now()

	target, err := c.resolve(req)
	if err != nil {
		return nil, c.fail(req.Method, start, fmt.Errorf("building request URL: %w", err))
	}

	if c.limiter != nil {
		err = c.limiter.Wait(ctx)
		if err != nil {
			return nil, c.fail(req.Method, start, fmt.Errorf("waiting for rate limiter: %w", err))
		}
	}

	var body interface{}
	if req.Body != nil {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, c.fail(req.Method, start, fmt.Errorf("creating request: %w", err))
	}

	httpReq.Header = req.Headers.Header()
	httpReq.Header.Set(constants.HeaderRequestedWith, constants.RequestedWithXHR)
	httpReq.Header.Set(constants.HeaderRequestID, uuid.NewString())

	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	if c.SameOrigin(target) {
		err = c.attachCredentials(ctx, httpReq)
		if err != nil {
			return nil, c.fail(req.Method, start, err)
		}
	}

	c.logRequest(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}

		return nil, c.fail(req.Method, start, err)
	}

	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(req.Method, start, fmt.Errorf("reading response body: %w", err))
	}

	response := &renku.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       respBody,
	}

	c.logResponse(resp, time.Since(start))

	apiErr := renku.ClassifyResponse(resp.StatusCode, resp.Header, respBody)
	if apiErr != nil {
		c.observe(req.Method, apiErr.Kind().String(), start)

		return response, apiErr
	}

	c.observe(req.Method, outcomeOK, start)

	return response, nil
}

// SameOrigin reports whether target has the scheme and host of the API base URL.
func (c *Client) SameOrigin(target *url.URL) bool {
	if c.baseURL == nil || target == nil {
		return false
	}

	return strings.EqualFold(target.Scheme, c.baseURL.Scheme) && strings.EqualFold(target.Host, c.baseURL.Host)
}

func (c *Client) resolve(req *renku.Request) (*url.URL, error) {
	target, err := req.ResolveURL()
	if err != nil {
		return nil, err
	}

	if target.IsAbs() {
		return target, nil
	}

	if c.baseURL == nil {
		return nil, fmt.Errorf("relative URL %q: %w", req.URL, renku.ErrBaseURLRequired)
	}

	resolved := *c.baseURL
	resolved.RawQuery = target.RawQuery

	relative := strings.TrimPrefix(target.EscapedPath(), "/")
	if relative == "" {
		return &resolved, nil
	}

	// Joined on the escaped form so "group%2Fproject" stays one segment.
	escaped := strings.TrimSuffix(resolved.EscapedPath(), "/") + "/" + relative

	path, err := url.PathUnescape(escaped)
	if err != nil {
		return nil, fmt.Errorf("joining %q: %w", req.URL, err)
	}

	resolved.Path = path
	resolved.RawPath = escaped

	return &resolved, nil
}

func (c *Client) attachCredentials(ctx context.Context, httpReq *retryablehttp.Request) error {
	if c.tokenProvider != nil {
		token, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("getting token: %w", err)
		}

		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for _, cookie := range c.cookies {
		httpReq.AddCookie(cookie)
	}

	return nil
}

func (c *Client) fail(method string, start time.Time, err error) *renku.Error {
	apiErr := renku.ClassifyTransportError(err)
	c.observe(method, apiErr.Kind().String(), start)

	if c.logger != nil && c.debug {
		c.logger.Debug("HTTP Error", map[string]interface{}{
			"method": method,
			"error":  err.Error(),
		})
	}

	return apiErr
}

func (c *Client) observe(method, outcome string, start time.Time) {
	requestsTotal.WithLabelValues(method, outcome).Inc()
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func (c *Client) logRequest(req *retryablehttp.Request) {
	if c.logger == nil || !c.debug {
		return
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method":     req.Method,
		"url":        req.URL.String(),
		"request_id": req.Header.Get(constants.HeaderRequestID),
	})
}

func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	if c.logger == nil || !c.debug {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"status":   resp.StatusCode,
		"duration": duration.String(),
	})
}
