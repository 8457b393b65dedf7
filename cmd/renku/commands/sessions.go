package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewSessionsCommand creates the sessions command group.
func NewSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session", "s"},
		Short:   "Manage interactive sessions",
		Long:    "List, inspect and stop interactive sessions (notebook servers)",
	}

	cmd.AddCommand(newSessionsListCommand())
	cmd.AddCommand(newSessionsGetCommand())
	cmd.AddCommand(newSessionsStopCommand())
	cmd.AddCommand(newSessionsLogsCommand())

	return cmd
}

func newSessionsListCommand() *cobra.Command {
	filter := &renku.SessionFilter{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Long:  "List the running sessions of the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				servers, err := client.Sessions().List(ctx, filter)
				if err != nil {
					return fmt.Errorf("failed to list sessions: %w", err)
				}

				return render(cmd, servers, renderSessionsTable)
			})
		},
	}

	cmd.Flags().StringVar(&filter.Namespace, "namespace", "", "filter by project namespace")
	cmd.Flags().StringVar(&filter.Project, "project", "", "filter by project name")
	cmd.Flags().StringVar(&filter.Branch, "branch", "", "filter by branch")
	cmd.Flags().StringVar(&filter.CommitSHA, "commit", "", "filter by commit SHA")
	cmd.Flags().BoolVar(&filter.Anonymous, "anonymous", false, "renew expired sessions through the anonymous login")

	return cmd
}

func newSessionsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Get session details",
		Long:  "Display the details of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				server, err := client.Sessions().Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get session: %w", err)
				}

				if server == nil {
					return fmt.Errorf("%w: %s", constants.ErrSessionNotFound, args[0])
				}

				return render(cmd, server, renderSessionTable)
			})
		},
	}
}

func newSessionsStopCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "stop NAME",
		Short: "Stop a session",
		Long:  "Stop a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				err := client.Sessions().Stop(ctx, args[0], force)
				if err != nil {
					return fmt.Errorf("failed to stop session: %w", err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stopping session %s\n", args[0])

				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "stop the session even if it is still busy")

	return cmd
}

func newSessionsLogsCommand() *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs NAME",
		Short: "Show session logs",
		Long:  "Show the most recent log lines of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				logs, err := client.Sessions().Logs(ctx, args[0], lines)
				if err != nil {
					return fmt.Errorf("failed to get session logs: %w", err)
				}

				return render(cmd, logs, func(w io.Writer, logs []string) error {
					for _, line := range logs {
						_, err := fmt.Fprintln(w, line)
						if err != nil {
							return err
						}
					}

					return nil
				})
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", constants.DefaultLogLines, "number of log lines")

	return cmd
}

func renderSessionsTable(w io.Writer, servers []renku.NotebookServer) error {
	if len(servers) == 0 {
		_, _ = fmt.Fprintln(w, "No sessions found")

		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Name", "Project", "Branch", "State", "Ready", "Started")

	for i := range servers {
		server := &servers[i]

		_ = table.Append(
			server.Name,
			projectPath(server),
			valueOrNA(server.Branch()),
			valueOrNA(server.Status.State),
			checkMark(server.Status.Ready),
			formatTime(server.Started),
		)
	}

	return table.Render()
}

func renderSessionTable(w io.Writer, server *renku.NotebookServer) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append("Name", server.Name)
	_ = table.Append("Project", projectPath(server))
	_ = table.Append("Branch", valueOrNA(server.Branch()))
	_ = table.Append("URL", valueOrNA(server.URL))
	_ = table.Append("Image", valueOrNA(server.Image))
	_ = table.Append("State", valueOrNA(server.Status.State))
	_ = table.Append("Ready", checkMark(server.Status.Ready))
	_ = table.Append("Message", valueOrNA(server.Status.Message))
	_ = table.Append("Started", formatTime(server.Started))

	keys := make([]string, 0, len(server.Annotations))
	for key := range server.Annotations {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		_ = table.Append(key, server.Annotations[key])
	}

	return table.Render()
}

func projectPath(server *renku.NotebookServer) string {
	parts := make([]string, 0, 2) //nolint:mnd // namespace and project

	if namespace := server.Namespace(); namespace != "" {
		parts = append(parts, namespace)
	}

	if project := server.ProjectName(); project != "" {
		parts = append(parts, project)
	}

	if len(parts) == 0 {
		return constants.NotAvailable
	}

	return strings.Join(parts, "/")
}
