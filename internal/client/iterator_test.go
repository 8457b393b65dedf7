package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID int `json:"id"`
}

// pagedHandler serves totalPages pages of two items each.
func pagedHandler(t *testing.T, totalPages int, requests *atomic.Int32) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if !assert.NoError(t, err) {
			return
		}

		next := page + 1
		if next > totalPages {
			next = 0
		}

		writePage(w, page, totalPages, next, fmt.Sprintf(`[{"id":%d},{"id":%d}]`, page*2-1, page*2))
	}
}

func TestIterableFetch_Pages(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	env := newTestEnv(t, pagedHandler(t, 3, &requests))
	req := renku.Get(env.url("/api/projects")).WithQuery("per_page", "2")

	var progress []float64

	pages := 0

	for page, err := range renku.IterableFetch[[]item](context.Background(), env.client, req).Pages() {
		require.NoError(t, err)

		pages++

		assert.Len(t, page.Data, 2)
		assert.Equal(t, pages, page.Pagination.CurrentPage)
		progress = append(progress, page.Pagination.Progress)
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, int32(3), requests.Load())
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3, 1}, progress, 0.0001)
	assert.Equal(t, renku.Query{"per_page": "2"}, req.Query)
}

func TestCollect(t *testing.T) {
	t.Parallel()

	t.Run("accumulates every page", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32

		env := newTestEnv(t, pagedHandler(t, 3, &requests))
		req := renku.Get(env.url("/api/projects")).WithQuery("per_page", "2")

		listing, err := renku.Collect[item](context.Background(), env.client, req)
		require.NoError(t, err)
		assert.Equal(t, []item{{1}, {2}, {3}, {4}, {5}, {6}}, listing.Data)
		assert.True(t, listing.Pagination.Done)
		assert.Equal(t, 3, listing.Pagination.CurrentPage)
		assert.Equal(t, 0, listing.Pagination.NextPage)
	})

	t.Run("iteration ceiling", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32

		env := newTestEnv(t, pagedHandler(t, 100, &requests))
		req := renku.Get(env.url("/api/projects")).WithQuery("per_page", "2")

		listing, err := renku.Collect[item](context.Background(), env.client, req, renku.WithMaxIterations(4))
		require.Error(t, err)
		assert.True(t, renku.IsIterationLimitExceeded(err))
		assert.Equal(t, "iterationLimitExceeded: cannot iterate more than 4 times", err.Error())
		assert.Len(t, listing.Data, 8)
		assert.False(t, listing.Pagination.Done)
		assert.Equal(t, int32(4), requests.Load())
	})

	t.Run("ceiling disabled", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32

		env := newTestEnv(t, pagedHandler(t, 12, &requests))
		req := renku.Get(env.url("/api/projects")).WithQuery("per_page", "2")

		listing, err := renku.Collect[item](context.Background(), env.client, req, renku.WithMaxIterations(0))
		require.NoError(t, err)
		assert.Len(t, listing.Data, 24)
		assert.True(t, listing.Pagination.Done)
	})

	t.Run("missing pagination", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `[{"id":1}]`)
		})

		listing, err := renku.Collect[item](context.Background(), env.client, renku.Get(env.url("/api/projects")))
		require.ErrorIs(t, err, renku.ErrPaginationUnsupported)
		assert.Empty(t, listing.Data)
		assert.False(t, listing.Pagination.Done)
	})

	t.Run("error keeps fetched pages", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				writeJSON(w, http.StatusInternalServerError, `{}`)

				return
			}

			writePage(w, 1, 3, 2, `[{"id":1},{"id":2}]`)
		})

		listing, err := renku.Collect[item](context.Background(), env.client, renku.Get(env.url("/api/projects")))
		require.Error(t, err)
		assert.True(t, renku.IsInternalServerError(err))
		assert.Equal(t, []item{{1}, {2}}, listing.Data)
		assert.Equal(t, 1, listing.Pagination.CurrentPage)
		assert.False(t, listing.Pagination.Done)
	})

	t.Run("renewal ends the sequence", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				w.Header().Set(renku.HeaderAuthExpired, "1")
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			writePage(w, 1, 3, 2, `[{"id":1},{"id":2}]`)
		})

		listing, err := renku.Collect[item](context.Background(), env.client, renku.Get(env.url("/api/projects")))
		require.NoError(t, err)
		assert.True(t, listing.RenewalInFlight)
		assert.Len(t, listing.Data, 2)
		assert.False(t, listing.Pagination.Done)
		assert.Len(t, env.navigator.Targets(), 1)
	})
}
