package renku

import (
	"context"
	"time"
)

// Namespace is the owner of a project.
type Namespace struct {
	ID       int    `json:"id"        yaml:"id"`
	Name     string `json:"name"      yaml:"name"`
	Path     string `json:"path"      yaml:"path"`
	Kind     string `json:"kind"      yaml:"kind"`
	FullPath string `json:"full_path" yaml:"full_path"`
}

// ProjectStatistics is only returned when requested.
type ProjectStatistics struct {
	CommitCount      int   `json:"commit_count"      yaml:"commit_count"`
	StorageSize      int64 `json:"storage_size"      yaml:"storage_size"`
	RepositorySize   int64 `json:"repository_size"   yaml:"repository_size"`
	LFSObjectsSize   int64 `json:"lfs_objects_size"  yaml:"lfs_objects_size"`
	JobArtifactsSize int64 `json:"job_artifacts_size" yaml:"job_artifacts_size"`
}

// Project represents a Renku project.
type Project struct {
	ID                int                `json:"id"                   yaml:"id"`
	Name              string             `json:"name"                 yaml:"name"`
	Path              string             `json:"path"                 yaml:"path"`
	PathWithNamespace string             `json:"path_with_namespace"  yaml:"path_with_namespace"`
	Description       string             `json:"description"          yaml:"description"`
	DefaultBranch     string             `json:"default_branch"       yaml:"default_branch"`
	Visibility        string             `json:"visibility"           yaml:"visibility"`
	WebURL            string             `json:"web_url"              yaml:"web_url"`
	HTTPURLToRepo     string             `json:"http_url_to_repo"     yaml:"http_url_to_repo"`
	StarCount         int                `json:"star_count"           yaml:"star_count"`
	ForksCount        int                `json:"forks_count"          yaml:"forks_count"`
	CreatedAt         *time.Time         `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	LastActivityAt    *time.Time         `json:"last_activity_at,omitempty" yaml:"last_activity_at,omitempty"`
	Namespace         *Namespace         `json:"namespace,omitempty"  yaml:"namespace,omitempty"`
	Statistics        *ProjectStatistics `json:"statistics,omitempty" yaml:"statistics,omitempty"`
}

// Commit represents a repository commit.
type Commit struct {
	ID            string     `json:"id"                       yaml:"id"`
	ShortID       string     `json:"short_id"                 yaml:"short_id"`
	Title         string     `json:"title"                    yaml:"title"`
	Message       string     `json:"message"                  yaml:"message"`
	AuthorName    string     `json:"author_name"              yaml:"author_name"`
	AuthorEmail   string     `json:"author_email"             yaml:"author_email"`
	AuthoredDate  *time.Time `json:"authored_date,omitempty"  yaml:"authored_date,omitempty"`
	CommittedDate *time.Time `json:"committed_date,omitempty" yaml:"committed_date,omitempty"`
	WebURL        string     `json:"web_url"                  yaml:"web_url"`
	ParentIDs     []string   `json:"parent_ids"               yaml:"parent_ids"`
}

// Branch represents a repository branch.
type Branch struct {
	Name      string  `json:"name"      yaml:"name"`
	Merged    bool    `json:"merged"    yaml:"merged"`
	Protected bool    `json:"protected" yaml:"protected"`
	Default   bool    `json:"default"   yaml:"default"`
	Commit    *Commit `json:"commit,omitempty" yaml:"commit,omitempty"`
}

// TreeEntry is one entry of a repository tree listing.
type TreeEntry struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Path string `json:"path" yaml:"path"`
	Mode string `json:"mode" yaml:"mode"`
}

// FileMeta is the file metadata returned in the response headers of a HEAD
// request on a repository file.
type FileMeta struct {
	BlobID        string `json:"blobId"        yaml:"blob_id"`
	CommitID      string `json:"commitId"      yaml:"commit_id"`
	ContentSHA256 string `json:"contentSha256" yaml:"content_sha256"`
	Encoding      string `json:"encoding"      yaml:"encoding"`
	FileName      string `json:"fileName"      yaml:"file_name"`
	FilePath      string `json:"filePath"      yaml:"file_path"`
	LastCommitID  string `json:"lastCommitId"  yaml:"last_commit_id"`
	Ref           string `json:"ref"           yaml:"ref"`
	Size          int64  `json:"size"          yaml:"size"`
}

// Readme is the project README text.
type Readme struct {
	Text  string `json:"text"  yaml:"text"`
	Found bool   `json:"found" yaml:"found"`
}

// ServerStatus is the state of a notebook server.
type ServerStatus struct {
	State   string `json:"state"   yaml:"state"`
	Message string `json:"message" yaml:"message"`
	Ready   bool   `json:"ready"   yaml:"ready"`
}

// NotebookServer is an interactive session.
type NotebookServer struct {
	Name        string            `json:"name"        yaml:"name"`
	URL         string            `json:"url"         yaml:"url"`
	Image       string            `json:"image"       yaml:"image"`
	Started     *time.Time        `json:"started,omitempty" yaml:"started,omitempty"`
	Status      ServerStatus      `json:"status"      yaml:"status"`
	Annotations map[string]string `json:"annotations" yaml:"annotations"`
}

// Namespace returns the project namespace annotation.
func (s *NotebookServer) Namespace() string {
	return s.annotation("namespace")
}

// ProjectName returns the project annotation.
func (s *NotebookServer) ProjectName() string {
	return s.annotation("projectName")
}

// Branch returns the branch annotation.
func (s *NotebookServer) Branch() string {
	return s.annotation("branch")
}

func (s *NotebookServer) annotation(key string) string {
	if s.Annotations == nil {
		return ""
	}

	return s.Annotations["renku.io/"+key]
}

// ProjectListOptions filters project listings.
type ProjectListOptions struct {
	Search     string
	Membership bool
	Starred    bool
	OrderBy    string
	PerPage    int
	// MaxIterations bounds the number of pages fetched. 0 uses
	// DefaultMaxIterations, a negative value removes the ceiling.
	MaxIterations int
}

// RefListOptions selects a ref and page size for commit listings.
type RefListOptions struct {
	Ref string
	// PerPage and MaxIterations behave as in ProjectListOptions.
	PerPage       int
	MaxIterations int
}

// TreeOptions selects the tree listing.
type TreeOptions struct {
	Path      string
	Ref       string
	Recursive bool
	PerPage   int
}

// SessionFilter selects notebook servers. Empty fields are not sent.
type SessionFilter struct {
	Namespace string
	Project   string
	Branch    string
	CommitSHA string
	// Anonymous renews an expired session through the anonymous login.
	Anonymous bool
}

// ProjectsClient defines operations for projects.
type ProjectsClient interface {
	Get(ctx context.Context, pathOrID string, statistics bool) (*Project, error)
	List(ctx context.Context, opts *ProjectListOptions) (*Listing[Project], error)
}

// RepositoryClient defines operations on a project repository.
type RepositoryClient interface {
	Commits(ctx context.Context, projectID string, opts *RefListOptions) (*Listing[Commit], error)
	Branches(ctx context.Context, projectID string, opts *RefListOptions) (*Listing[Branch], error)
	FileMeta(ctx context.Context, projectID, path, ref string) (*FileMeta, error)
	RawFile(ctx context.Context, projectID, path, ref string) (string, error)
	Tree(ctx context.Context, projectID string, opts *TreeOptions) ([]TreeEntry, error)
	Readme(ctx context.Context, projectID, ref string) (*Readme, error)
}

// SessionsClient defines operations for notebook servers.
type SessionsClient interface {
	List(ctx context.Context, filter *SessionFilter) ([]NotebookServer, error)
	Get(ctx context.Context, name string) (*NotebookServer, error)
	Stop(ctx context.Context, name string, force bool) error
	Logs(ctx context.Context, name string, lines int) ([]string, error)
}

// Client is the main interface for the Renku API client.
type Client interface {
	Fetcher

	Projects() ProjectsClient
	Repository() RepositoryClient
	Sessions() SessionsClient

	// APIURL returns the API gateway base URL.
	APIURL() string
	// UIServerURL returns the base URL of the login and logout endpoints.
	UIServerURL() string

	// Session returns the authentication state shared by every call.
	Session() *Session
	// Login starts a renewal navigation explicitly.
	Login(ctx context.Context, anonymous bool) error
	// Logout navigates to the UI server logout endpoint.
	Logout(ctx context.Context) error
}
