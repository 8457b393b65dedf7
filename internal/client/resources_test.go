package client

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectsClient_Get(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/group%2Fflights", r.URL.EscapedPath())
		assert.Equal(t, "true", r.URL.Query().Get("statistics"))

		writeJSON(w, http.StatusOK, `{
			"id": 42,
			"name": "flights",
			"path_with_namespace": "group/flights",
			"default_branch": "main",
			"namespace": {"id": 3, "full_path": "group"},
			"statistics": {"commit_count": 17}
		}`)
	})

	project, err := env.client.Projects().Get(context.Background(), "group/flights", true)
	require.NoError(t, err)
	assert.Equal(t, 42, project.ID)
	assert.Equal(t, "main", project.DefaultBranch)
	require.NotNil(t, project.Namespace)
	assert.Equal(t, "group", project.Namespace.FullPath)
	require.NotNil(t, project.Statistics)
	assert.Equal(t, 17, project.Statistics.CommitCount)
}

func TestProjectsClient_Get_Errors(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := env.client.Projects().Get(context.Background(), "42", false)
		require.Error(t, err)
		assert.True(t, renku.IsNotFound(err))
	})

	t.Run("renewal", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(renku.HeaderAuthExpired, "1")
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := env.client.Projects().Get(context.Background(), "42", false)
		require.ErrorIs(t, err, renku.ErrRenewalInFlight)
	})
}

func TestProjectsClient_List(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "/api/projects", r.URL.Path)
		assert.Equal(t, "flights", query.Get("search"))
		assert.Equal(t, "true", query.Get("membership"))
		assert.Equal(t, "last_activity_at", query.Get("order_by"))
		assert.Equal(t, "100", query.Get("per_page"))
		assert.Empty(t, query.Get("starred"))

		if query.Get("page") == "1" {
			writePage(w, 1, 2, 2, `[{"id":1}]`)

			return
		}

		writePage(w, 2, 2, 0, `[{"id":2}]`)
	})

	listing, err := env.client.Projects().List(context.Background(), &renku.ProjectListOptions{
		Search:     "flights",
		Membership: true,
		OrderBy:    "last_activity_at",
	})
	require.NoError(t, err)
	require.Len(t, listing.Data, 2)
	assert.Equal(t, 2, listing.Data[1].ID)
	assert.True(t, listing.Pagination.Done)
}

func TestRepositoryClient_Commits(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/42/repository/commits", r.URL.Path)
		assert.Equal(t, "master", r.URL.Query().Get("ref_name"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		writePage(w, 1, 1, 0, `[{"id":"abc123","title":"Initial commit"}]`)
	})

	listing, err := env.client.Repository().Commits(context.Background(), "42", nil)
	require.NoError(t, err)
	require.Len(t, listing.Data, 1)
	assert.Equal(t, "Initial commit", listing.Data[0].Title)
	assert.True(t, listing.Pagination.Done)
}

func TestRepositoryClient_Branches_Ceiling(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writePage(w, 1, 9, 2, `[{"name":"main"}]`)
	})

	listing, err := env.client.Repository().Branches(context.Background(), "42", &renku.RefListOptions{MaxIterations: 1})
	require.Error(t, err)
	assert.True(t, renku.IsIterationLimitExceeded(err))
	assert.Len(t, listing.Data, 1)
	assert.False(t, listing.Pagination.Done)
}

func TestRepositoryClient_FileMeta(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "/api/projects/42/repository/files/data%2Fflights.csv", r.URL.EscapedPath())
		assert.Equal(t, "main", r.URL.Query().Get("ref"))

		w.Header().Set("X-Gitlab-Blob-Id", "blob")
		w.Header().Set("X-Gitlab-File-Name", "flights.csv")
		w.Header().Set("X-Gitlab-File-Path", "data/flights.csv")
		w.Header().Set("X-Gitlab-Ref", "main")
		w.Header().Set("X-Gitlab-Size", "2048")
	})

	meta, err := env.client.Repository().FileMeta(context.Background(), "42", "data/flights.csv", "main")
	require.NoError(t, err)
	assert.Equal(t, "blob", meta.BlobID)
	assert.Equal(t, "flights.csv", meta.FileName)
	assert.Equal(t, "data/flights.csv", meta.FilePath)
	assert.Equal(t, int64(2048), meta.Size)
	assert.Empty(t, env.notifier.Alerts())
}

func TestRepositoryClient_RawFile(t *testing.T) {
	t.Parallel()

	t.Run("content", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/projects/42/repository/files/notebooks%2Fa.ipynb/raw", r.URL.EscapedPath())
			_, _ = w.Write([]byte("{}"))
		})

		text, err := env.client.Repository().RawFile(context.Background(), "42", "notebooks/a.ipynb", "")
		require.NoError(t, err)
		assert.Equal(t, "{}", text)
	})

	t.Run("errors are alerted", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := env.client.Repository().RawFile(context.Background(), "42", "missing.txt", "")
		require.Error(t, err)
		assert.True(t, renku.IsNotFound(err))
		assert.Len(t, env.notifier.Alerts(), 1)
	})
}

func TestRepositoryClient_Tree(t *testing.T) {
	t.Parallel()

	t.Run("follows next pages", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "500", r.URL.Query().Get("per_page"))
			assert.Equal(t, "true", r.URL.Query().Get("recursive"))

			if r.URL.Query().Get("page") == "1" {
				writePage(w, 1, 2, 2, `[{"name":"a","type":"blob"}]`)

				return
			}

			writePage(w, 2, 2, 0, `[{"name":"b","type":"tree"}]`)
		})

		entries, err := env.client.Repository().Tree(context.Background(), "42", &renku.TreeOptions{Recursive: true})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "b", entries[1].Name)
	})

	t.Run("stops at the iteration ceiling with the partial tree", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			page, err := strconv.Atoi(r.URL.Query().Get("page"))
			assert.NoError(t, err)

			requests.Add(1)
			writePage(w, page, 0, page+1, `[{"name":"entry","type":"blob"}]`)
		})

		entries, err := env.client.Repository().Tree(context.Background(), "42", nil)
		require.Error(t, err)
		assert.True(t, renku.IsIterationLimitExceeded(err))
		assert.Len(t, entries, constants.DefaultMaxIterations)
		assert.Equal(t, int32(constants.DefaultMaxIterations), requests.Load())
	})

	t.Run("not found is empty", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		entries, err := env.client.Repository().Tree(context.Background(), "42", nil)
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
		assert.Empty(t, env.notifier.Alerts())
	})

	t.Run("other errors are alerted", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := env.client.Repository().Tree(context.Background(), "42", nil)
		require.Error(t, err)
		assert.Len(t, env.notifier.Alerts(), 1)
	})
}

func TestRepositoryClient_Readme(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/projects/42/repository/files/README.md/raw", r.URL.EscapedPath())
			_, _ = w.Write([]byte("# Flights"))
		})

		readme, err := env.client.Repository().Readme(context.Background(), "42", "")
		require.NoError(t, err)
		assert.True(t, readme.Found)
		assert.Equal(t, "# Flights", readme.Text)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		readme, err := env.client.Repository().Readme(context.Background(), "42", "")
		require.NoError(t, err)
		assert.False(t, readme.Found)
		assert.Equal(t, constants.MissingReadmeText, readme.Text)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSessionsClient(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/notebooks/servers", r.URL.Path)
			assert.Equal(t, "group", r.URL.Query().Get("namespace"))
			assert.Equal(t, "abc", r.URL.Query().Get("commit_sha"))
			assert.False(t, r.URL.Query().Has("branch"))

			writeJSON(w, http.StatusOK, `{"servers":{
				"zeta":{"url":"https://renku.example.com/sessions/zeta","status":{"state":"running","ready":true}},
				"alpha":{"name":"alpha","annotations":{"renku.io/branch":"main"}}
			}}`)
		})

		servers, err := env.client.Sessions().List(context.Background(), &renku.SessionFilter{Namespace: "group", CommitSHA: "abc"})
		require.NoError(t, err)
		require.Len(t, servers, 2)
		assert.Equal(t, "alpha", servers[0].Name)
		assert.Equal(t, "main", servers[0].Branch())
		assert.Equal(t, "zeta", servers[1].Name)
		assert.True(t, servers[1].Status.Ready)
	})

	t.Run("list with anonymous renewal", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(renku.HeaderAuthExpired, "1")
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := env.client.Sessions().List(context.Background(), &renku.SessionFilter{Anonymous: true})
		require.ErrorIs(t, err, renku.ErrRenewalInFlight)

		targets := env.navigator.Targets()
		require.Len(t, targets, 1)
		assert.Contains(t, targets[0], "anonymous=true")
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/notebooks/servers/gone", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		})

		server, err := env.client.Sessions().Get(context.Background(), "gone")
		require.NoError(t, err)
		assert.Nil(t, server)
	})

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"status":{"state":"starting"}}`)
		})

		server, err := env.client.Sessions().Get(context.Background(), "mine")
		require.NoError(t, err)
		require.NotNil(t, server)
		assert.Equal(t, "mine", server.Name)
		assert.Equal(t, "starting", server.Status.State)
	})

	t.Run("stop", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "true", r.URL.Query().Get("force"))
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, env.client.Sessions().Stop(context.Background(), "mine", true))
	})

	t.Run("logs as list", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/notebooks/logs/mine", r.URL.Path)
			assert.Equal(t, "250", r.URL.Query().Get("max_lines"))
			assert.Equal(t, []string{"application/json", "text/plain"}, r.Header.Values("Accept"))
			writeJSON(w, http.StatusOK, `["line 1","line 2"]`)
		})

		lines, err := env.client.Sessions().Logs(context.Background(), "mine", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"line 1", "line 2"}, lines)
	})

	t.Run("logs as text", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `"line 1\nline 2\n"`)
		})

		lines, err := env.client.Sessions().Logs(context.Background(), "mine", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"line 1", "line 2"}, lines)
	})
}
