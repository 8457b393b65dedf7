package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/internal/notify"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPublish = errors.New("connection closed")

type message struct {
	subject string
	data    []byte
}

type MockPublisher struct {
	mu       sync.Mutex
	messages []message
	err      error
}

func (m *MockPublisher) Publish(subject string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.messages = append(m.messages, message{subject: subject, data: data})

	return nil
}

type logEntry struct {
	msg    string
	fields map[string]interface{}
}

type MockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *MockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *MockLogger) Warn(msg string, fields map[string]interface{})  {}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, logEntry{msg: msg, fields: fields})
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, *renku.Error) error {
	return errPublish
}

func validationError() *renku.Error {
	return renku.ClassifyResponse(http.StatusUnprocessableEntity, http.Header{}, []byte(`{"error":{"message":"name is taken"}}`))
}

func TestNATSNotifier_Notify(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	publisher := &MockPublisher{}
	notifier := notify.NewNATSNotifier(publisher, notify.WithClock(func() time.Time { return now }))

	assert.Equal(t, constants.DefaultAlertSubject, notifier.Subject())
	require.NoError(t, notifier.Notify(context.Background(), validationError()))
	require.Len(t, publisher.messages, 1)
	assert.Equal(t, constants.DefaultAlertSubject, publisher.messages[0].subject)

	var alert notify.Alert

	require.NoError(t, json.Unmarshal(publisher.messages[0].data, &alert))
	assert.Equal(t, "validationError", alert.Kind)
	assert.Equal(t, "name is taken", alert.Detail)
	assert.Equal(t, http.StatusUnprocessableEntity, alert.StatusCode)
	assert.True(t, now.Equal(alert.Time))
	assert.Contains(t, alert.ErrorData, "error")
}

func TestNATSNotifier_Subject(t *testing.T) {
	t.Parallel()

	publisher := &MockPublisher{}
	notifier := notify.NewNATSNotifier(publisher, notify.WithSubject("ui.alerts"))

	require.NoError(t, notifier.Notify(context.Background(), renku.NewError(renku.KindNetworkError, "network request failed")))
	require.Len(t, publisher.messages, 1)
	assert.Equal(t, "ui.alerts", publisher.messages[0].subject)
}

func TestNATSNotifier_Errors(t *testing.T) {
	t.Parallel()

	t.Run("publish failure", func(t *testing.T) {
		t.Parallel()

		notifier := notify.NewNATSNotifier(&MockPublisher{err: errPublish})

		err := notifier.Notify(context.Background(), validationError())
		require.ErrorIs(t, err, errPublish)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		publisher := &MockPublisher{}
		notifier := notify.NewNATSNotifier(publisher)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := notifier.Notify(ctx, validationError())
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, publisher.messages)
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		publisher := &MockPublisher{}
		notifier := notify.NewNATSNotifier(publisher)

		require.NoError(t, notifier.Notify(context.Background(), nil))
		assert.Empty(t, publisher.messages)
	})

	t.Run("close without connection", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, notify.NewNATSNotifier(&MockPublisher{}).Close())
	})
}

func TestConnectNATS_RequiresURL(t *testing.T) {
	t.Parallel()

	_, err := notify.ConnectNATS("")
	require.ErrorIs(t, err, constants.ErrNATSURLRequired)
}

func TestLogNotifier_Notify(t *testing.T) {
	t.Parallel()

	logger := &MockLogger{}
	notifier := notify.NewLogNotifier(logger)

	require.NoError(t, notifier.Notify(context.Background(), validationError()))
	require.Len(t, logger.entries, 1)
	assert.Equal(t, "validationError", logger.entries[0].fields["kind"])
	assert.Equal(t, http.StatusUnprocessableEntity, logger.entries[0].fields["status"])
	assert.Equal(t, "name is taken", logger.entries[0].fields["detail"])
}

func TestMulti_Notify(t *testing.T) {
	t.Parallel()

	logger := &MockLogger{}
	publisher := &MockPublisher{}
	multi := notify.Multi{failingNotifier{}, nil, notify.NewLogNotifier(logger), notify.NewNATSNotifier(publisher)}

	err := multi.Notify(context.Background(), validationError())
	require.ErrorIs(t, err, errPublish)
	assert.Len(t, logger.entries, 1)
	assert.Len(t, publisher.messages, 1)
}
