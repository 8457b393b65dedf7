package renkuclient

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/renku-client/internal/client"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
)

// New creates a Renku API client. The config is copied; the caller's value
// is left untouched.
func New(config *renku.Config) (renku.Client, error) {
	if config == nil || strings.TrimSpace(config.APIURL) == "" {
		return nil, renku.ErrBaseURLRequired
	}

	normalized := *config
	normalized.APIURL = NormalizeURL(config.APIURL)

	if normalized.UIServerURL != "" {
		normalized.UIServerURL = NormalizeURL(normalized.UIServerURL)
	}

	c, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeURL trims whitespace and trailing slashes and defaults the scheme
// to https.
func NormalizeURL(raw string) string {
	normalized := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	return normalized
}

// NewWithToken creates a client that sends token as a bearer token.
func NewWithToken(apiURL, token string) (renku.Client, error) {
	return New(&renku.Config{
		APIURL: apiURL,
		Token:  token,
	})
}

// NewWithNavigator creates a client without credentials of its own, relying
// on the UI server session and renewing it through navigator.
func NewWithNavigator(apiURL string, navigator renku.Navigator) (renku.Client, error) {
	return New(&renku.Config{
		APIURL:    apiURL,
		Navigator: navigator,
	})
}
