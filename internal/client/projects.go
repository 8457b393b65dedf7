package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
)

// ProjectsClient implements renku.ProjectsClient.
type ProjectsClient struct {
	client *Client
}

// NewProjectsClient creates a new projects client.
func NewProjectsClient(client *Client) *ProjectsClient {
	return &ProjectsClient{
		client: client,
	}
}

// Get implements renku.ProjectsClient.Get. pathOrID is either the numeric
// project ID or the full "namespace/project" path.
func (c *ProjectsClient) Get(ctx context.Context, pathOrID string, statistics bool) (*renku.Project, error) {
	req := renku.Get(c.client.endpoint("projects", pathOrID)).
		WithQueryParams(renku.Query{}.WithBool("statistics", statistics))

	envelope, err := renku.FetchInto[renku.Project](ctx, c.client, req)
	if err != nil {
		return nil, fmt.Errorf("getting project %s: %w", pathOrID, err)
	}

	if envelope.RenewalInFlight {
		return nil, renku.ErrRenewalInFlight
	}

	return &envelope.Data, nil
}

// List implements renku.ProjectsClient.List.
func (c *ProjectsClient) List(ctx context.Context, opts *renku.ProjectListOptions) (*renku.Listing[renku.Project], error) {
	if opts == nil {
		opts = &renku.ProjectListOptions{}
	}

	query := renku.Query{}.WithInt("per_page", perPage(opts.PerPage, constants.DefaultPerPage))

	if opts.Search != "" {
		query = query.With("search", opts.Search)
	}

	if opts.Membership {
		query = query.WithBool("membership", true)
	}

	if opts.Starred {
		query = query.WithBool("starred", true)
	}

	if opts.OrderBy != "" {
		query = query.With("order_by", opts.OrderBy)
	}

	req := renku.Get(c.client.endpoint("projects")).WithQueryParams(query)

	listing, err := renku.Collect[renku.Project](ctx, c.client, req, renku.WithMaxIterations(maxIterations(opts.MaxIterations)))
	if err != nil {
		return listing, fmt.Errorf("listing projects: %w", err)
	}

	return listing, nil
}

// maxIterations maps the option convention (0 default, negative unlimited)
// to the iterator convention (0 unlimited).
func maxIterations(limit int) int {
	switch {
	case limit == 0:
		return constants.DefaultMaxIterations
	case limit < 0:
		return 0
	default:
		return limit
	}
}

func perPage(value, fallback int) int {
	if value <= 0 {
		return fallback
	}

	return value
}
