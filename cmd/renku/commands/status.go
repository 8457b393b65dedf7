package commands

import (
	"context"
	"io"
	"time"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// Status describes the configured API and the stored credentials.
type Status struct {
	API          string             `json:"api"                    yaml:"api"`
	UIServer     string             `json:"ui_server"              yaml:"ui_server"`
	Session      string             `json:"session"                yaml:"session"`
	LoggedIn     bool               `json:"logged_in"              yaml:"logged_in"`
	TokenExpired bool               `json:"token_expired"          yaml:"token_expired"`
	Claims       *renku.TokenClaims `json:"claims,omitempty"       yaml:"claims,omitempty"`
	ClaimsError  string             `json:"claims_error,omitempty" yaml:"claims_error,omitempty"`
	Reachable    *bool              `json:"reachable,omitempty"    yaml:"reachable,omitempty"`
	CheckError   string             `json:"check_error,omitempty"  yaml:"check_error,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the login status",
		Long: `Show the configured API, the UI server and the identity of the stored token.

With --check the stored token is also sent to the API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := loadConfig().Token
			if check && token == "" {
				return constants.ErrNotAuthenticated
			}

			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				status := buildStatus(client, token, time.Now())

				if check {
					checkAPI(ctx, client, status)
				}

				return render(cmd, status, renderStatusTable)
			})
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "verify the token against the API")

	return cmd
}

// checkAPI lists at most one project of the user within ShortHTTPTimeout.
func checkAPI(ctx context.Context, client renku.Client, status *Status) {
	ctx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	req := renku.Get(client.APIURL()+"/projects").
		WithQuery("membership", "true").
		WithQuery("per_page", "1")

	_, err := client.FetchFull(ctx, req, renku.WithoutReLogin())

	reachable := err == nil
	status.Reachable = &reachable

	if err != nil {
		status.CheckError = err.Error()
	}
}

func buildStatus(client renku.Client, token string, now time.Time) *Status {
	status := &Status{
		API:      client.APIURL(),
		UIServer: client.UIServerURL(),
		Session:  client.Session().State().String(),
		LoggedIn: token != "",
	}

	if token == "" {
		return status
	}

	claims, err := renku.ParseTokenClaims(token)
	if err != nil {
		status.ClaimsError = err.Error()

		return status
	}

	status.Claims = claims
	status.TokenExpired = claims.Expired(now)

	return status
}

func renderStatusTable(w io.Writer, status *Status) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append("API", status.API)
	_ = table.Append("UI Server", status.UIServer)
	_ = table.Append("Session", status.Session)
	_ = table.Append("Logged In", checkMark(status.LoggedIn))

	if status.Claims != nil {
		_ = table.Append("User", valueOrNA(claimsUser(status.Claims)))
		_ = table.Append("Email", valueOrNA(status.Claims.Email))
		_ = table.Append("Expires", formatTime(&status.Claims.ExpiresAt))
		_ = table.Append("Expired", checkMark(status.TokenExpired))
	} else if status.LoggedIn {
		_ = table.Append("Token", constants.MaskedSecret)
	}

	if status.Reachable != nil {
		_ = table.Append("API Check", checkMark(*status.Reachable))
	}

	if status.CheckError != "" {
		_ = table.Append("Check Error", status.CheckError)
	}

	return table.Render()
}
