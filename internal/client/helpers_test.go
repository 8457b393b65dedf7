package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/stretchr/testify/require"
)

const testLocation = "https://renku.example.com/projects/group/project?tab=files"

// recordingNavigator records renewal targets.
type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
	err     error
}

func (n *recordingNavigator) Navigate(ctx context.Context, target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.targets = append(n.targets, target)

	return n.err
}

func (n *recordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.targets...)
}

// recordingNotifier records alerts.
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []*renku.Error
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, err *renku.Error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.alerts = append(n.alerts, err)

	return n.err
}

func (n *recordingNotifier) Alerts() []*renku.Error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]*renku.Error(nil), n.alerts...)
}

type testEnv struct {
	server    *httptest.Server
	client    *Client
	navigator *recordingNavigator
	notifier  *recordingNotifier
}

// newTestEnv starts a server for handler and a client whose API URL is
// <server>/api.
func newTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	navigator := &recordingNavigator{}
	notifier := &recordingNotifier{}

	client, err := New(&renku.Config{
		APIURL:    server.URL + "/api",
		Token:     "test-token",
		Navigator: navigator,
		Notifier:  notifier,
		Location:  func() string { return testLocation },
	})
	require.NoError(t, err)

	return &testEnv{
		server:    server,
		client:    client,
		navigator: navigator,
		notifier:  notifier,
	}
}

func (e *testEnv) url(path string) string {
	return e.server.URL + path
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writePage(w http.ResponseWriter, page, totalPages, nextPage int, body string) {
	w.Header().Set(renku.HeaderPage, strconv.Itoa(page))
	w.Header().Set(renku.HeaderTotalPages, strconv.Itoa(totalPages))

	if nextPage > 0 {
		w.Header().Set(renku.HeaderNextPage, strconv.Itoa(nextPage))
	} else {
		w.Header().Set(renku.HeaderNextPage, "")
	}

	writeJSON(w, http.StatusOK, body)
}
