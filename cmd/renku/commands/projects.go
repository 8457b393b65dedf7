package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Manage projects",
		Long:    "List and inspect Renku projects",
	}

	cmd.AddCommand(newProjectsListCommand())
	cmd.AddCommand(newProjectsGetCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	opts := &renku.ProjectListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long:  "List projects visible to the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				listing, err := client.Projects().List(ctx, opts)
				if err != nil {
					return fmt.Errorf("failed to list projects: %w", err)
				}

				if listing.RenewalInFlight {
					return renku.ErrRenewalInFlight
				}

				return render(cmd, listing.Data, renderProjectsTable)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "search projects by name")
	cmd.Flags().BoolVar(&opts.Membership, "membership", false, "only projects the user is a member of")
	cmd.Flags().BoolVar(&opts.Starred, "starred", false, "only starred projects")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "", "order by field (e.g. last_activity_at)")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", constants.DefaultPerPage, "results per page")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-pages", 0, "maximum number of pages to fetch (negative for unlimited)")

	return cmd
}

func newProjectsGetCommand() *cobra.Command {
	var statistics bool

	cmd := &cobra.Command{
		Use:   "get PROJECT",
		Short: "Get project details",
		Long:  "Display a project by numeric ID or namespace/name path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				project, err := client.Projects().Get(ctx, args[0], statistics)
				if err != nil {
					return fmt.Errorf("failed to get project: %w", err)
				}

				return render(cmd, project, renderProjectTable)
			})
		},
	}

	cmd.Flags().BoolVar(&statistics, "statistics", false, "include repository statistics")

	return cmd
}

func renderProjectsTable(w io.Writer, projects []renku.Project) error {
	if len(projects) == 0 {
		_, _ = fmt.Fprintln(w, "No projects found")

		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Path", "Visibility", "Stars", "Last Activity", "Description")

	for _, project := range projects {
		_ = table.Append(
			strconv.Itoa(project.ID),
			project.PathWithNamespace,
			project.Visibility,
			strconv.Itoa(project.StarCount),
			formatTime(project.LastActivityAt),
			truncate(project.Description, constants.DescriptionDisplayLength),
		)
	}

	return table.Render()
}

func renderProjectTable(w io.Writer, project *renku.Project) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append("ID", strconv.Itoa(project.ID))
	_ = table.Append("Name", project.Name)
	_ = table.Append("Path", project.PathWithNamespace)
	_ = table.Append("Description", valueOrNA(project.Description))
	_ = table.Append("Default Branch", valueOrNA(project.DefaultBranch))
	_ = table.Append("Visibility", valueOrNA(project.Visibility))
	_ = table.Append("Web URL", valueOrNA(project.WebURL))
	_ = table.Append("Repository", valueOrNA(project.HTTPURLToRepo))
	_ = table.Append("Stars", strconv.Itoa(project.StarCount))
	_ = table.Append("Forks", strconv.Itoa(project.ForksCount))
	_ = table.Append("Created", formatTime(project.CreatedAt))
	_ = table.Append("Last Activity", formatTime(project.LastActivityAt))

	if project.Statistics != nil {
		_ = table.Append("Commits", strconv.Itoa(project.Statistics.CommitCount))
		_ = table.Append("Repository Size", strconv.FormatInt(project.Statistics.RepositorySize, 10))
		_ = table.Append("Storage Size", strconv.FormatInt(project.Statistics.StorageSize, 10))
	}

	return table.Render()
}
