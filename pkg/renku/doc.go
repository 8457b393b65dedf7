// Package renku provides the types, interfaces and helpers of the Renku API
// access layer used by the web UI.
//
// # Overview
//
// Every call goes through a Fetcher, which performs exactly one transport
// call and shapes the result in one of three return modes: FetchJSON pairs
// the parsed body with the pagination state read from the response headers,
// FetchText returns the body as text and FetchFull returns the response
// untouched. A concrete client is built by the renkuclient package.
//
//	envelope, err := renku.FetchInto[[]renku.Project](ctx, cli, renku.Get("/projects"))
//	if err != nil { /* handle error */ }
//	_ = envelope.Data
//
// # Errors
//
// Failures are returned as *Error values with a closed set of kinds:
// networkError, authExpiredError, unauthorizedError, notFoundError,
// validationError, internalServerError and iterationLimitExceeded. Helpers
// such as IsNotFound and IsAuthExpired branch on them.
//
// # Session renewal
//
// A response carrying the UI-Server-Auth header means the session expired.
// The first such response starts a single renewal navigation and moves the
// Session to the renewing state; the call, and every later call that hits
// an expired session, resolves to an empty result with RenewalInFlight set.
// WithoutReLogin turns the expiry into an error instead.
//
// # Pagination
//
// IterableFetch walks the pages of a listing by following the next page
// header, up to DefaultMaxIterations pages unless WithMaxIterations says
// otherwise. Collect accumulates all pages and keeps the partial data when
// a page fails:
//
//	listing, err := renku.Collect[renku.Commit](ctx, cli, req, renku.WithMaxIterations(0))
//	if err != nil { /* listing.Data holds the pages fetched so far */ }
package renku
