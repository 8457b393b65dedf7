package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/internal/logging"
	"github.com/fivetwenty-io/renku-client/internal/notify"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/fivetwenty-io/renku-client/pkg/renkuclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CreateClient builds a client from the CLI configuration. The returned
// close function releases the alert connection, if any.
func CreateClient(cmd *cobra.Command) (renku.Client, func(), error) {
	config := loadConfig()
	if config.API == "" {
		return nil, nil, constants.ErrNoAPIConfigured
	}

	logger := newLogger()
	notifier, closeNotifier := createNotifier(config, logger)

	client, err := renkuclient.New(&renku.Config{
		APIURL:            config.API,
		UIServerURL:       config.UIServer,
		Token:             config.Token,
		RequestsPerSecond: config.RequestsPerSecond,
		Debug:             viper.GetBool("verbose"),
		Logger:            logger,
		Notifier:          notifier,
		Navigator:         newPrintNavigator(cmd.ErrOrStderr()),
		Location:          func() string { return config.Location },
	})
	if err != nil {
		closeNotifier()

		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, closeNotifier, nil
}

func newLogger() *logging.Logger {
	if viper.GetBool("verbose") {
		return logging.NewConsole("debug")
	}

	return logging.NewConsole("warn")
}

// createNotifier always logs alerts and also publishes them on NATS when a
// NATS URL is configured. A broker that cannot be reached only disables the
// NATS side.
func createNotifier(config *Config, logger renku.Logger) (renku.Notifier, func()) {
	notifiers := notify.Multi{notify.NewLogNotifier(logger)}

	if config.NATSURL == "" {
		return notifiers, func() {}
	}

	natsNotifier, err := notify.ConnectNATS(config.NATSURL, notify.WithSubject(config.AlertSubject))
	if err != nil {
		logger.Warn("Alerts will only be logged", map[string]interface{}{
			"error": err.Error(),
		})

		return notifiers, func() {}
	}

	notifiers = append(notifiers, natsNotifier)

	return notifiers, func() { _ = natsNotifier.Close() }
}

// newPrintNavigator tells the user where to log in again. A terminal cannot
// replace a page, so the navigation is a message.
func newPrintNavigator(w io.Writer) renku.Navigator {
	return renku.NavigatorFunc(func(_ context.Context, target string) error {
		_, err := fmt.Fprintf(w, "Open the following URL in your browser to continue:\n  %s\n", target)

		return err
	})
}

// withClient runs fn with a client and releases it afterwards.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client renku.Client) error) error {
	client, closeClient, err := CreateClient(cmd)
	if err != nil {
		return err
	}

	defer closeClient()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return fn(ctx, client)
}
