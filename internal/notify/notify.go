// Package notify provides renku.Notifier implementations for the alert side channel.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/fivetwenty-io/renku-client/pkg/renku"
)

// Alert is the published form of an error.
type Alert struct {
	Kind       string                 `json:"kind"`
	Message    string                 `json:"message"`
	Detail     string                 `json:"detail,omitempty"`
	StatusCode int                    `json:"statusCode,omitempty"`
	ErrorData  map[string]interface{} `json:"errorData,omitempty"`
	Time       time.Time              `json:"time"`
}

// NewAlert builds the alert for err.
func NewAlert(err *renku.Error, now time.Time) Alert {
	return Alert{
		Kind:       err.Kind().String(),
		Message:    err.Message(),
		Detail:     err.DetailMessage(),
		StatusCode: err.StatusCode(),
		ErrorData:  err.ErrorData(),
		Time:       now.UTC(),
	}
}

// LogNotifier writes alerts to a logger.
type LogNotifier struct {
	logger renku.Logger
}

// NewLogNotifier creates a notifier that logs every alert at error level.
func NewLogNotifier(logger renku.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements renku.Notifier.
func (n *LogNotifier) Notify(_ context.Context, err *renku.Error) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{
		"kind": err.Kind().String(),
	}

	if err.StatusCode() > 0 {
		fields["status"] = err.StatusCode()
	}

	if detail := err.DetailMessage(); detail != "" {
		fields["detail"] = detail
	}

	n.logger.Error(err.Message(), fields)

	return nil
}

// Multi fans an alert out to several notifiers. Every notifier is tried;
// the failures are joined.
type Multi []renku.Notifier

// Notify implements renku.Notifier.
func (m Multi) Notify(ctx context.Context, err *renku.Error) error {
	var errs []error

	for _, notifier := range m {
		if notifier == nil {
			continue
		}

		notifyErr := notifier.Notify(ctx, err)
		if notifyErr != nil {
			errs = append(errs, notifyErr)
		}
	}

	return errors.Join(errs...)
}
