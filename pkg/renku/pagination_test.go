package renku_test

import (
	"net/http"
	"testing"

	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaginationHeaders(t *testing.T) {
	t.Parallel()

	t.Run("all headers", func(t *testing.T) {
		t.Parallel()

		header := http.Header{}
		header.Set("X-Page", "2")
		header.Set("X-Total-Pages", "5")
		header.Set("X-Total", "48")
		header.Set("X-Per-Page", "10")
		header.Set("X-Next-Page", "3")
		header.Set("X-Prev-Page", "1")
		header.Set("Link", `<https://renku.example.com/api/projects?page=3>; rel="next", <https://renku.example.com/api/projects?page=1>; rel="prev"`)

		pagination := renku.ParsePaginationHeaders(header)
		require.NotNil(t, pagination)
		assert.Equal(t, renku.Pagination{
			CurrentPage:  2,
			TotalPages:   5,
			TotalItems:   48,
			PerPage:      10,
			NextPage:     3,
			PreviousPage: 1,
			NextPageLink: true,
		}, *pagination)
		assert.True(t, pagination.HasNext())
	})

	t.Run("no pagination headers", func(t *testing.T) {
		t.Parallel()

		header := http.Header{}
		header.Set("Content-Type", "application/json")

		assert.Nil(t, renku.ParsePaginationHeaders(header))
		assert.Nil(t, renku.ParsePaginationHeaders(nil))
	})

	t.Run("last page", func(t *testing.T) {
		t.Parallel()

		header := http.Header{}
		header.Set("X-Page", "3")
		header.Set("X-Total-Pages", "3")
		header.Set("X-Next-Page", "")

		pagination := renku.ParsePaginationHeaders(header)
		require.NotNil(t, pagination)
		assert.Equal(t, 0, pagination.NextPage)
		assert.False(t, pagination.HasNext())
		assert.False(t, pagination.NextPageLink)
	})

	t.Run("garbled values default to zero", func(t *testing.T) {
		t.Parallel()

		header := http.Header{}
		header.Set("X-Page", "two")
		header.Set("X-Next-Page", "-4")

		pagination := renku.ParsePaginationHeaders(header)
		require.NotNil(t, pagination)
		assert.Equal(t, 0, pagination.CurrentPage)
		assert.Equal(t, 0, pagination.NextPage)
	})

	t.Run("link header only", func(t *testing.T) {
		t.Parallel()

		header := http.Header{}
		header.Set("Link", `<https://renku.example.com/api/projects?page=2>; rel="next last"`)

		pagination := renku.ParsePaginationHeaders(header)
		require.NotNil(t, pagination)
		assert.True(t, pagination.NextPageLink)
	})
}

func TestPagination_ComputeProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pagination *renku.Pagination
		want       float64
	}{
		{name: "nil", pagination: nil, want: 0},
		{name: "unknown total", pagination: &renku.Pagination{CurrentPage: 3}, want: 0},
		{name: "first of four", pagination: &renku.Pagination{CurrentPage: 1, TotalPages: 4}, want: 0.25},
		{name: "last", pagination: &renku.Pagination{CurrentPage: 4, TotalPages: 4}, want: 1},
		{name: "past the end", pagination: &renku.Pagination{CurrentPage: 9, TotalPages: 4}, want: 1},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			progress := testCase.pagination.ComputeProgress()
			assert.InDelta(t, testCase.want, progress, 0.0001)
			assert.GreaterOrEqual(t, progress, 0.0)
			assert.LessOrEqual(t, progress, 1.0)
		})
	}
}
