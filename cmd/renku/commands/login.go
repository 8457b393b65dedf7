package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		anonymous bool
		withToken bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Renku",
		Long: `Print the UI server login URL for the configured API.

With --with-token the API token is read from standard input (without echo on
a terminal) and stored in the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if withToken {
				return storeToken(cmd)
			}

			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				err := client.Login(ctx, anonymous)
				if err != nil {
					return fmt.Errorf("failed to start login: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "After logging in, run 'renku login --with-token' to store your API token.")

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "use the anonymous login")
	cmd.Flags().BoolVar(&withToken, "with-token", false, "read the API token from standard input")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of Renku",
		Long:  "Remove the stored API token and print the UI server logout URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withClient(cmd, func(ctx context.Context, client renku.Client) error {
				return client.Logout(ctx)
			})
			if err != nil && !errors.Is(err, constants.ErrNoAPIConfigured) {
				return fmt.Errorf("failed to log out: %w", err)
			}

			config := loadConfig()
			config.Token = ""

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}

func storeToken(cmd *cobra.Command) error {
	token, err := readToken(cmd)
	if err != nil {
		return err
	}

	config := loadConfig()
	config.Token = token

	err = saveConfig(config)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	claims, err := renku.ParseTokenClaims(token)
	if err != nil {
		// Opaque tokens are accepted as is.
		_, _ = fmt.Fprintln(out, "Token stored")

		return nil //nolint:nilerr
	}

	_, _ = fmt.Fprintf(out, "Token stored for %s\n", valueOrNA(claimsUser(claims)))

	if claims.Expired(time.Now()) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: the token expired at %s\n", formatTime(&claims.ExpiresAt))
	}

	return nil
}

func readToken(cmd *cobra.Command) (string, error) {
	var (
		raw string
		err error
	)

	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "API token: ")

		var tokenBytes []byte

		tokenBytes, err = term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		raw = string(tokenBytes)
	} else {
		raw, err = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
	}

	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(raw)
	if token == "" {
		return "", constants.ErrEmptyToken
	}

	return token, nil
}

func claimsUser(claims *renku.TokenClaims) string {
	if claims.PreferredUsername != "" {
		return claims.PreferredUsername
	}

	if claims.Email != "" {
		return claims.Email
	}

	return claims.Subject
}
