package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/nats-io/nats.go"
)

// Publisher is the part of *nats.Conn the notifier uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes alerts as JSON on a NATS subject.
type NATSNotifier struct {
	publisher Publisher
	subject   string
	conn      *nats.Conn
	now       func() time.Time
}

// NATSOption configures a NATSNotifier.
type NATSOption func(*NATSNotifier)

// WithSubject overrides the alert subject.
func WithSubject(subject string) NATSOption {
	return func(n *NATSNotifier) {
		if subject != "" {
			n.subject = subject
		}
	}
}

// WithClock sets the time source for alert timestamps.
func WithClock(now func() time.Time) NATSOption {
	return func(n *NATSNotifier) {
		if now != nil {
			n.now = now
		}
	}
}

// ConnectNATS dials url and returns a notifier that owns the connection.
func ConnectNATS(url string, opts ...NATSOption) (*NATSNotifier, error) {
	if url == "" {
		return nil, constants.ErrNATSURLRequired
	}

	conn, err := nats.Connect(url,
		nats.Name(constants.DefaultUserAgent),
		nats.Timeout(constants.DefaultNATSTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	notifier := NewNATSNotifier(conn, opts...)
	notifier.conn = conn

	return notifier, nil
}

// NewNATSNotifier creates a notifier on top of an existing publisher.
func NewNATSNotifier(publisher Publisher, opts ...NATSOption) *NATSNotifier {
	notifier := &NATSNotifier{
		publisher: publisher,
		subject:   constants.DefaultAlertSubject,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(notifier)
	}

	return notifier
}

// Subject returns the subject alerts are published on.
func (n *NATSNotifier) Subject() string {
	return n.subject
}

// Notify implements renku.Notifier.
func (n *NATSNotifier) Notify(ctx context.Context, err *renku.Error) error {
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return fmt.Errorf("publishing alert: %w", ctx.Err())
	}

	payload, marshalErr := json.Marshal(NewAlert(err, n.now()))
	if marshalErr != nil {
		return fmt.Errorf("encoding alert: %w", marshalErr)
	}

	pubErr := n.publisher.Publish(n.subject, payload)
	if pubErr != nil {
		return fmt.Errorf("publishing alert on %s: %w", n.subject, pubErr)
	}

	return nil
}

// Close flushes and closes the connection if the notifier owns one.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}

	err := n.conn.Drain()
	if err != nil {
		n.conn.Close()

		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}
