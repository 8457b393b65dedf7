package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
)

// Headers set by the repository backend on file requests.
const (
	headerBlobID        = "X-Gitlab-Blob-Id"
	headerCommitID      = "X-Gitlab-Commit-Id"
	headerContentSHA256 = "X-Gitlab-Content-Sha256"
	headerEncoding      = "X-Gitlab-Encoding"
	headerFileName      = "X-Gitlab-File-Name"
	headerFilePath      = "X-Gitlab-File-Path"
	headerLastCommitID  = "X-Gitlab-Last-Commit-Id"
	headerRef           = "X-Gitlab-Ref"
	headerSize          = "X-Gitlab-Size"
)

// RepositoryClient implements renku.RepositoryClient.
type RepositoryClient struct {
	client *Client
}

// NewRepositoryClient creates a new repository client.
func NewRepositoryClient(client *Client) *RepositoryClient {
	return &RepositoryClient{
		client: client,
	}
}

// Commits implements renku.RepositoryClient.Commits.
func (c *RepositoryClient) Commits(ctx context.Context, projectID string, opts *renku.RefListOptions) (*renku.Listing[renku.Commit], error) {
	if opts == nil {
		opts = &renku.RefListOptions{}
	}

	query := renku.Query{}.
		With("ref_name", ref(opts.Ref)).
		WithInt("per_page", perPage(opts.PerPage, constants.DefaultPerPage))

	req := renku.Get(c.client.endpoint("projects", projectID, "repository", "commits")).
		WithHeaders(renku.JSONHeaders()).
		WithQueryParams(query)

	listing, err := renku.Collect[renku.Commit](ctx, c.client, req, renku.WithMaxIterations(maxIterations(opts.MaxIterations)))
	if err != nil {
		return listing, fmt.Errorf("listing commits: %w", err)
	}

	return listing, nil
}

// Branches implements renku.RepositoryClient.Branches. The backend cannot
// filter out merged branches; callers do that on Branch.Merged.
func (c *RepositoryClient) Branches(ctx context.Context, projectID string, opts *renku.RefListOptions) (*renku.Listing[renku.Branch], error) {
	if opts == nil {
		opts = &renku.RefListOptions{}
	}

	req := renku.Get(c.client.endpoint("projects", projectID, "repository", "branches")).
		WithHeaders(renku.JSONHeaders()).
		WithQueryParams(renku.Query{}.WithInt("per_page", perPage(opts.PerPage, constants.DefaultPerPage)))

	listing, err := renku.Collect[renku.Branch](ctx, c.client, req, renku.WithMaxIterations(maxIterations(opts.MaxIterations)))
	if err != nil {
		return listing, fmt.Errorf("listing branches: %w", err)
	}

	return listing, nil
}

// FileMeta implements renku.RepositoryClient.FileMeta.
func (c *RepositoryClient) FileMeta(ctx context.Context, projectID, path, gitRef string) (*renku.FileMeta, error) {
	req := renku.NewRequest(http.MethodHead, c.client.endpoint("projects", projectID, "repository", "files", path)).
		WithQuery("ref", ref(gitRef))

	resp, err := c.client.FetchFull(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting file metadata for %s: %w", path, err)
	}

	if resp.RenewalInFlight {
		return nil, renku.ErrRenewalInFlight
	}

	size, _ := strconv.ParseInt(resp.Header.Get(headerSize), 10, 64)

	return &renku.FileMeta{
		BlobID:        resp.Header.Get(headerBlobID),
		CommitID:      resp.Header.Get(headerCommitID),
		ContentSHA256: resp.Header.Get(headerContentSHA256),
		Encoding:      resp.Header.Get(headerEncoding),
		FileName:      resp.Header.Get(headerFileName),
		FilePath:      resp.Header.Get(headerFilePath),
		LastCommitID:  resp.Header.Get(headerLastCommitID),
		Ref:           resp.Header.Get(headerRef),
		Size:          size,
	}, nil
}

// RawFile implements renku.RepositoryClient.RawFile. Errors are also sent
// to the alert channel.
func (c *RepositoryClient) RawFile(ctx context.Context, projectID, path, gitRef string) (string, error) {
	text, err := c.client.FetchText(ctx, c.rawFileRequest(projectID, path, gitRef), renku.WithAlertOnError())
	if err != nil {
		return "", fmt.Errorf("getting file %s: %w", path, err)
	}

	return text, nil
}

// Tree implements renku.RepositoryClient.Tree. Pages are followed up to
// DefaultMaxIterations; past that the entries fetched so far are returned
// with an iterationLimitExceeded error. A missing repository or path yields
// an empty tree.
func (c *RepositoryClient) Tree(ctx context.Context, projectID string, opts *renku.TreeOptions) ([]renku.TreeEntry, error) {
	if opts == nil {
		opts = &renku.TreeOptions{}
	}

	query := renku.Query{}.
		With("path", opts.Path).
		WithBool("recursive", opts.Recursive).
		WithInt("per_page", perPage(opts.PerPage, constants.DefaultTreePerPage))

	if opts.Ref != "" {
		query = query.With("ref", opts.Ref)
	}

	req := renku.Get(c.client.endpoint("projects", projectID, "repository", "tree")).WithQueryParams(query)

	entries := []renku.TreeEntry{}
	page := 1

	for iteration := 1; ; iteration++ {
		if iteration > constants.DefaultMaxIterations {
			return entries, renku.NewIterationLimitError(constants.DefaultMaxIterations)
		}

		resp, err := c.client.FetchFull(ctx, req.WithQuery("page", strconv.Itoa(page)))
		if err != nil {
			if renku.IsNotFound(err) {
				return []renku.TreeEntry{}, nil
			}

			c.client.Alert(ctx, err)

			return nil, fmt.Errorf("listing repository tree: %w", err)
		}

		if resp.RenewalInFlight {
			return nil, renku.ErrRenewalInFlight
		}

		var pageEntries []renku.TreeEntry

		err = resp.JSON(&pageEntries)
		if err != nil {
			return nil, fmt.Errorf("parsing repository tree: %w", err)
		}

		entries = append(entries, pageEntries...)

		pagination := renku.ParsePaginationHeaders(resp.Header)
		if !pagination.HasNext() || pagination.NextPage <= page {
			return entries, nil
		}

		page = pagination.NextPage
	}
}

// Readme implements renku.RepositoryClient.Readme. A missing or empty
// README yields a placeholder text with Found unset.
func (c *RepositoryClient) Readme(ctx context.Context, projectID, gitRef string) (*renku.Readme, error) {
	resp, err := c.client.FetchFull(ctx, c.rawFileRequest(projectID, constants.ReadmePath, gitRef))
	if err != nil {
		if renku.IsNotFound(err) {
			return &renku.Readme{Text: constants.MissingReadmeText}, nil
		}

		return nil, fmt.Errorf("getting README: %w", err)
	}

	if resp.RenewalInFlight {
		return nil, renku.ErrRenewalInFlight
	}

	if len(resp.Body) == 0 {
		return &renku.Readme{Text: constants.MissingReadmeText}, nil
	}

	return &renku.Readme{Text: resp.Text(), Found: true}, nil
}

func (c *RepositoryClient) rawFileRequest(projectID, path, gitRef string) *renku.Request {
	return renku.Get(c.client.endpoint("projects", projectID, "repository", "files", path, "raw")).
		WithQuery("ref", ref(gitRef))
}

func ref(value string) string {
	if value == "" {
		return constants.DefaultRef
	}

	return value
}
