package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
)

// SessionsClient implements renku.SessionsClient.
type SessionsClient struct {
	client *Client
}

// NewSessionsClient creates a new sessions client.
func NewSessionsClient(client *Client) *SessionsClient {
	return &SessionsClient{
		client: client,
	}
}

type serversResponse struct {
	Servers map[string]renku.NotebookServer `json:"servers"`
}

// List implements renku.SessionsClient.List. Servers are sorted by name.
func (c *SessionsClient) List(ctx context.Context, filter *renku.SessionFilter) ([]renku.NotebookServer, error) {
	if filter == nil {
		filter = &renku.SessionFilter{}
	}

	query := renku.Query{}

	if filter.Namespace != "" {
		query = query.With("namespace", filter.Namespace)
	}

	if filter.Project != "" {
		query = query.With("project", filter.Project)
	}

	if filter.Branch != "" {
		query = query.With("branch", filter.Branch)
	}

	if filter.CommitSHA != "" {
		query = query.With("commit_sha", filter.CommitSHA)
	}

	var opts []renku.FetchOption
	if filter.Anonymous {
		opts = append(opts, renku.WithAnonymousLogin())
	}

	req := renku.Get(c.client.endpoint("notebooks", "servers")).WithQueryParams(query)

	envelope, err := renku.FetchInto[serversResponse](ctx, c.client, req, opts...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	if envelope.RenewalInFlight {
		return nil, renku.ErrRenewalInFlight
	}

	servers := make([]renku.NotebookServer, 0, len(envelope.Data.Servers))

	for name, server := range envelope.Data.Servers {
		if server.Name == "" {
			server.Name = name
		}

		servers = append(servers, server)
	}

	sort.Slice(servers, func(i, j int) bool {
		return servers[i].Name < servers[j].Name
	})

	return servers, nil
}

// Get implements renku.SessionsClient.Get. It returns nil without error
// when the session does not exist.
func (c *SessionsClient) Get(ctx context.Context, name string) (*renku.NotebookServer, error) {
	envelope, err := renku.FetchInto[renku.NotebookServer](ctx, c.client, renku.Get(c.client.endpoint("notebooks", "servers", name)))
	if err != nil {
		if renku.IsNotFound(err) {
			return nil, nil //nolint:nilnil // a missing session is not an error
		}

		return nil, fmt.Errorf("getting session %s: %w", name, err)
	}

	if envelope.RenewalInFlight {
		return nil, renku.ErrRenewalInFlight
	}

	if envelope.Data.Name == "" {
		envelope.Data.Name = name
	}

	return &envelope.Data, nil
}

// Stop implements renku.SessionsClient.Stop.
func (c *SessionsClient) Stop(ctx context.Context, name string, force bool) error {
	req := renku.NewRequest(http.MethodDelete, c.client.endpoint("notebooks", "servers", name))
	if force {
		req = req.WithQuery("force", "true")
	}

	_, err := c.client.FetchText(ctx, req)
	if err != nil {
		return fmt.Errorf("stopping session %s: %w", name, err)
	}

	return nil
}

// Logs implements renku.SessionsClient.Logs. The backend returns either a
// list of lines or a single text blob.
func (c *SessionsClient) Logs(ctx context.Context, name string, lines int) ([]string, error) {
	if lines <= 0 {
		lines = constants.DefaultLogLines
	}

	req := renku.Get(c.client.endpoint("notebooks", "logs", name)).
		WithHeaders(renku.BasicHeaders().WithAdded("Accept", "text/plain")).
		WithQueryParams(renku.Query{}.WithInt("max_lines", lines))

	envelope, err := c.client.FetchJSON(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting logs for session %s: %w", name, err)
	}

	if envelope.RenewalInFlight {
		return nil, renku.ErrRenewalInFlight
	}

	if len(envelope.Data) == 0 {
		return []string{}, nil
	}

	var logLines []string

	err = json.Unmarshal(envelope.Data, &logLines)
	if err == nil {
		return logLines, nil
	}

	var text string

	err = json.Unmarshal(envelope.Data, &text)
	if err != nil {
		return nil, fmt.Errorf("parsing logs for session %s: %w", name, err)
	}

	return strings.Split(strings.TrimRight(text, "\n"), "\n"), nil
}
