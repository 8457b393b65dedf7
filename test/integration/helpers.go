//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/fivetwenty-io/renku-client/internal/logging"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/fivetwenty-io/renku-client/pkg/renkuclient"
	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIURL  string
	Token   string
	Project string
	Verbose bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIURL:  os.Getenv("RENKU_API_URL"),
		Token:   os.Getenv("RENKU_TOKEN"),
		Project: os.Getenv("RENKU_TEST_PROJECT"),
		Verbose: os.Getenv("RENKU_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips the test when no deployment is configured.
func (c *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if c.APIURL == "" {
		t.Skip("RENKU_API_URL not set, skipping integration test")
	}
}

// SkipIfNoProject skips tests that need a known project.
func (c *TestConfig) SkipIfNoProject(t *testing.T) {
	t.Helper()

	if c.Project == "" {
		t.Skip("RENKU_TEST_PROJECT not set, skipping integration test")
	}
}

// NewClient creates a client for the configured deployment. Renewal
// navigations fail the test: the token must be valid for the whole run.
func (c *TestConfig) NewClient(t *testing.T) renku.Client {
	t.Helper()

	level := "warn"
	if c.Verbose {
		level = "debug"
	}

	client, err := renkuclient.New(&renku.Config{
		APIURL: c.APIURL,
		Token:  c.Token,
		Debug:  c.Verbose,
		Logger: logging.New(os.Stderr, level),
		Navigator: renku.NavigatorFunc(func(_ context.Context, target string) error {
			t.Errorf("unexpected session renewal to %s", target)

			return nil
		}),
	})
	require.NoError(t, err)

	return client
}
