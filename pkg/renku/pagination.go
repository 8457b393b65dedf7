package renku

import (
	"net/http"
	"strconv"
	"strings"
)

// Pagination response headers.
const (
	HeaderPage       = "X-Page"
	HeaderTotalPages = "X-Total-Pages"
	HeaderTotal      = "X-Total"
	HeaderNextPage   = "X-Next-Page"
	HeaderPrevPage   = "X-Prev-Page"
	HeaderPerPage    = "X-Per-Page"
	HeaderLink       = "Link"
)

// Pagination is the pagination state of one page.
//
// NextPage is 0 when there is no next page; consumers set Done exactly then.
type Pagination struct {
	CurrentPage  int     `json:"currentPage"       yaml:"current_page"`
	TotalPages   int     `json:"totalPages"        yaml:"total_pages"`
	TotalItems   int     `json:"totalItems"        yaml:"total_items"`
	PerPage      int     `json:"perPage,omitempty" yaml:"per_page,omitempty"`
	NextPage     int     `json:"nextPage"          yaml:"next_page"`
	PreviousPage int     `json:"prevPage,omitempty" yaml:"prev_page,omitempty"`
	NextPageLink bool    `json:"nextPageLink"      yaml:"next_page_link"`
	Progress     float64 `json:"progress,omitempty" yaml:"progress,omitempty"`
	Done         bool    `json:"done,omitempty"    yaml:"done,omitempty"`
}

// HasNext reports whether another page can be requested.
func (p *Pagination) HasNext() bool {
	return p != nil && p.NextPage > 0
}

// ComputeProgress returns CurrentPage/TotalPages clamped to [0, 1], or 0
// when the total is unknown.
func (p *Pagination) ComputeProgress() float64 {
	if p == nil || p.TotalPages <= 0 || p.CurrentPage <= 0 {
		return 0
	}

	progress := float64(p.CurrentPage) / float64(p.TotalPages)
	if progress > 1 {
		return 1
	}

	return progress
}

var paginationHeaders = []string{
	HeaderPage,
	HeaderTotalPages,
	HeaderTotal,
	HeaderNextPage,
	HeaderPrevPage,
	HeaderPerPage,
}

// ParsePaginationHeaders reads pagination metadata from response headers.
//
// It returns nil when the response carries no pagination header at all.
// Otherwise every missing or unparsable field defaults to 0 (no next page).
// It never fails.
func ParsePaginationHeaders(header http.Header) *Pagination {
	if header == nil {
		return nil
	}

	nextLink := hasNextLink(header.Values(HeaderLink))

	present := nextLink
	for _, key := range paginationHeaders {
		if len(header.Values(key)) > 0 {
			present = true

			break
		}
	}

	if !present {
		return nil
	}

	return &Pagination{
		CurrentPage:  headerInt(header, HeaderPage),
		TotalPages:   headerInt(header, HeaderTotalPages),
		TotalItems:   headerInt(header, HeaderTotal),
		PerPage:      headerInt(header, HeaderPerPage),
		NextPage:     headerInt(header, HeaderNextPage),
		PreviousPage: headerInt(header, HeaderPrevPage),
		NextPageLink: nextLink,
	}
}

func headerInt(header http.Header, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(header.Get(key)))
	if err != nil || value < 0 {
		return 0
	}

	return value
}

// hasNextLink looks for rel="next" in RFC 8288 Link headers.
func hasNextLink(links []string) bool {
	for _, link := range links {
		for _, part := range strings.Split(link, ",") {
			for _, param := range strings.Split(part, ";")[1:] {
				param = strings.TrimSpace(param)

				name, value, ok := strings.Cut(param, "=")
				if !ok || !strings.EqualFold(strings.TrimSpace(name), "rel") {
					continue
				}

				for _, rel := range strings.Fields(strings.Trim(value, `"`)) {
					if strings.EqualFold(rel, "next") {
						return true
					}
				}
			}
		}
	}

	return false
}
