package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/internal/http"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
)

var _ renku.Client = (*Client)(nil)

// Doer performs one transport call.
type Doer interface {
	Do(ctx context.Context, req *renku.Request) (*renku.Response, error)
}

// Client implements the renku.Client interface.
type Client struct {
	transport   Doer
	apiURL      string
	uiServerURL string
	session     *renku.Session
	logger      renku.Logger
	notifier    renku.Notifier
	navigator   renku.Navigator
	location    func() string

	// Resource clients
	projects   *ProjectsClient
	repository *RepositoryClient
	sessions   *SessionsClient
}

// New creates a new Renku API client.
func New(config *renku.Config) (*Client, error) {
	if config == nil || config.APIURL == "" {
		return nil, renku.ErrBaseURLRequired
	}

	apiURL := strings.TrimSuffix(config.APIURL, "/")

	uiServerURL, err := resolveUIServerURL(apiURL, config.UIServerURL)
	if err != nil {
		return nil, err
	}

	transport := http.NewClient(apiURL, tokenProvider(config), createHTTPClientOptions(config)...)

	return NewWithTransport(config, transport, uiServerURL), nil
}

// NewWithTransport creates a client on top of an existing transport.
func NewWithTransport(config *renku.Config, transport Doer, uiServerURL string) *Client {
	client := &Client{
		transport:   transport,
		apiURL:      strings.TrimSuffix(config.APIURL, "/"),
		uiServerURL: strings.TrimSuffix(uiServerURL, "/"),
		session:     renku.NewSession(),
		logger:      config.Logger,
		notifier:    config.Notifier,
		navigator:   config.Navigator,
		location:    config.Location,
	}

	if client.logger == nil {
		client.logger = noopLogger{}
	}

	client.initializeResourceClients()

	return client
}

func (c *Client) initializeResourceClients() {
	c.projects = NewProjectsClient(c)
	c.repository = NewRepositoryClient(c)
	c.sessions = NewSessionsClient(c)
}

// resolveUIServerURL defaults the UI server to the API origin + "/ui-server".
func resolveUIServerURL(apiURL, uiServerURL string) (string, error) {
	if uiServerURL != "" {
		return strings.TrimSuffix(uiServerURL, "/"), nil
	}

	parsed, err := url.Parse(apiURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("deriving UI server URL from %q: %w", apiURL, renku.ErrUIServerURLRequired)
	}

	return parsed.Scheme + "://" + parsed.Host + constants.UIServerPath, nil
}

func tokenProvider(config *renku.Config) renku.TokenProvider {
	if config.TokenProvider != nil {
		return config.TokenProvider
	}

	if config.Token != "" {
		return renku.StaticToken(config.Token)
	}

	return nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *renku.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RequestsPerSecond > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RequestsPerSecond))
	}

	if len(config.Cookies) > 0 {
		httpOpts = append(httpOpts, http.WithCookies(config.Cookies...))
	}

	return httpOpts
}

// APIURL implements renku.Client.APIURL.
func (c *Client) APIURL() string {
	return c.apiURL
}

// UIServerURL implements renku.Client.UIServerURL.
func (c *Client) UIServerURL() string {
	return c.uiServerURL
}

// Session implements renku.Client.Session.
func (c *Client) Session() *renku.Session {
	return c.session
}

// FetchJSON implements renku.Fetcher.FetchJSON.
func (c *Client) FetchJSON(ctx context.Context, req *renku.Request, opts ...renku.FetchOption) (*renku.Envelope[json.RawMessage], error) {
	resp, err := c.fetch(ctx, req, renku.NewFetchConfig(opts...))
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return &renku.Envelope[json.RawMessage]{
			Data:            json.RawMessage("{}"),
			Pagination:      &renku.Pagination{},
			RenewalInFlight: true,
		}, nil
	}

	envelope := &renku.Envelope[json.RawMessage]{
		Pagination: renku.ParsePaginationHeaders(resp.Header),
	}

	if len(resp.Body) == 0 {
		return envelope, nil
	}

	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("parsing response from %s: %w", req.URL, renku.ErrInvalidJSON)
	}

	envelope.Data = json.RawMessage(resp.Body)

	return envelope, nil
}

// FetchText implements renku.Fetcher.FetchText.
func (c *Client) FetchText(ctx context.Context, req *renku.Request, opts ...renku.FetchOption) (string, error) {
	resp, err := c.fetch(ctx, req, renku.NewFetchConfig(opts...))
	if err != nil {
		return "", err
	}

	if resp == nil {
		return "", nil
	}

	return resp.Text(), nil
}

// FetchFull implements renku.Fetcher.FetchFull.
func (c *Client) FetchFull(ctx context.Context, req *renku.Request, opts ...renku.FetchOption) (*renku.Response, error) {
	resp, err := c.fetch(ctx, req, renku.NewFetchConfig(opts...))
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return &renku.Response{RenewalInFlight: true}, nil
	}

	return resp, nil
}

// fetch performs req and applies the per-call policy. A nil response with a
// nil error means the call was short-circuited by a session renewal.
func (c *Client) fetch(ctx context.Context, req *renku.Request, cfg renku.FetchConfig) (*renku.Response, error) {
	resp, err := c.transport.Do(ctx, req)
	if err == nil {
		return resp, nil
	}

	var apiErr *renku.Error
	if !errors.As(err, &apiErr) {
		return nil, err
	}

	if apiErr.Kind() == renku.KindAuthExpired && cfg.ReLoginOnAuth {
		c.renew(ctx, cfg.AnonymousLogin)

		return nil, nil
	}

	if cfg.AlertOnError {
		c.Alert(ctx, apiErr)
	}

	return nil, apiErr
}

// renew starts the renewal navigation unless one is already in flight.
func (c *Client) renew(ctx context.Context, anonymous bool) {
	if !c.session.BeginRenewal() {
		c.logger.Debug("Session renewal already in flight", nil)

		return
	}

	target := c.LoginURL(anonymous)

	c.logger.Warn("Session expired, starting renewal", map[string]interface{}{
		"target":    target,
		"anonymous": anonymous,
	})

	if c.navigator == nil {
		c.logger.Error("Cannot start renewal", map[string]interface{}{
			"error": renku.ErrNoNavigator.Error(),
		})

		return
	}

	err := c.navigator.Navigate(ctx, target)
	if err != nil {
		c.logger.Error("Renewal navigation failed", map[string]interface{}{
			"target": target,
			"error":  err.Error(),
		})
	}
}

// Alert sends err to the notifier. Failures to notify are logged only.
func (c *Client) Alert(ctx context.Context, err error) {
	var apiErr *renku.Error
	if !errors.As(err, &apiErr) {
		apiErr = renku.ClassifyTransportError(err)
	}

	fields := map[string]interface{}{
		"kind":    apiErr.Kind().String(),
		"message": apiErr.Message(),
	}

	if apiErr.StatusCode() > 0 {
		fields["status"] = apiErr.StatusCode()
	}

	if detail := apiErr.DetailMessage(); detail != "" {
		fields["detail"] = detail
	}

	if c.notifier == nil {
		c.logger.Warn("API error", fields)

		return
	}

	notifyErr := c.notifier.Notify(ctx, apiErr)
	if notifyErr != nil {
		fields["notify_error"] = notifyErr.Error()
		c.logger.Error("Failed to send alert", fields)
	}
}

// LoginURL returns the renewal target for the current location.
func (c *Client) LoginURL(anonymous bool) string {
	query := url.Values{}
	if anonymous {
		query.Set(constants.AnonymousParam, "true")
	}

	query.Set(constants.RedirectURLParam, c.currentLocation())

	return c.uiServerURL + constants.LoginPath + "?" + query.Encode()
}

// LogoutURL returns the logout target for the current location.
func (c *Client) LogoutURL() string {
	query := url.Values{}
	query.Set(constants.RedirectURLParam, c.currentLocation())

	return c.uiServerURL + constants.LogoutPath + "?" + query.Encode()
}

func (c *Client) currentLocation() string {
	if c.location != nil {
		if location := c.location(); location != "" {
			return location
		}
	}

	parsed, err := url.Parse(c.apiURL)
	if err != nil {
		return c.apiURL
	}

	return parsed.Scheme + "://" + parsed.Host + "/"
}

// Login implements renku.Client.Login. Once the navigation succeeds the
// session is reset, so a later expiry renews again.
func (c *Client) Login(ctx context.Context, anonymous bool) error {
	err := c.navigate(ctx, c.LoginURL(anonymous))
	if err != nil {
		return err
	}

	c.session.Reset()

	return nil
}

// Logout implements renku.Client.Logout.
func (c *Client) Logout(ctx context.Context) error {
	return c.navigate(ctx, c.LogoutURL())
}

func (c *Client) navigate(ctx context.Context, target string) error {
	if c.navigator == nil {
		return renku.ErrNoNavigator
	}

	err := c.navigator.Navigate(ctx, target)
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", target, err)
	}

	return nil
}

// endpoint joins the API URL and path segments. Segments are path-escaped,
// so "group/project" becomes "group%2Fproject".
func (c *Client) endpoint(segments ...string) string {
	var builder strings.Builder

	builder.WriteString(c.apiURL)

	for _, segment := range segments {
		builder.WriteByte('/')
		builder.WriteString(url.PathEscape(segment))
	}

	return builder.String()
}

// Resource client accessors

// Projects implements renku.Client.Projects.
func (c *Client) Projects() renku.ProjectsClient {
	return c.projects
}

// Repository implements renku.Client.Repository.
func (c *Client) Repository() renku.RepositoryClient {
	return c.repository
}

// Sessions implements renku.Client.Sessions.
func (c *Client) Sessions() renku.SessionsClient {
	return c.sessions
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}
