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

// NewCommitsCommand creates the commits command.
func NewCommitsCommand() *cobra.Command {
	opts := &renku.RefListOptions{}

	cmd := &cobra.Command{
		Use:   "commits PROJECT",
		Short: "List commits",
		Long:  "List the commits of a project ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				listing, err := client.Repository().Commits(ctx, args[0], opts)
				if err != nil {
					return fmt.Errorf("failed to list commits: %w", err)
				}

				if listing.RenewalInFlight {
					return renku.ErrRenewalInFlight
				}

				return render(cmd, listing.Data, renderCommitsTable)
			})
		},
	}

	addRefListFlags(cmd, opts)

	return cmd
}

// NewBranchesCommand creates the branches command.
func NewBranchesCommand() *cobra.Command {
	opts := &renku.RefListOptions{}

	cmd := &cobra.Command{
		Use:     "branches PROJECT",
		Aliases: []string{"branch"},
		Short:   "List branches",
		Long:    "List the branches of a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				listing, err := client.Repository().Branches(ctx, args[0], opts)
				if err != nil {
					return fmt.Errorf("failed to list branches: %w", err)
				}

				if listing.RenewalInFlight {
					return renku.ErrRenewalInFlight
				}

				return render(cmd, listing.Data, renderBranchesTable)
			})
		},
	}

	cmd.Flags().IntVar(&opts.PerPage, "per-page", constants.DefaultPerPage, "results per page")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-pages", 0, "maximum number of pages to fetch (negative for unlimited)")

	return cmd
}

func addRefListFlags(cmd *cobra.Command, opts *renku.RefListOptions) {
	cmd.Flags().StringVar(&opts.Ref, "ref", constants.DefaultRef, "branch, tag or commit")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", constants.DefaultPerPage, "results per page")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-pages", 0, "maximum number of pages to fetch (negative for unlimited)")
}

// NewFilesCommand creates the files command group.
func NewFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file", "f"},
		Short:   "Browse repository files",
		Long:    "List, read and inspect files of a project repository",
	}

	cmd.AddCommand(newFilesTreeCommand())
	cmd.AddCommand(newFilesCatCommand())
	cmd.AddCommand(newFilesMetaCommand())
	cmd.AddCommand(newFilesReadmeCommand())

	return cmd
}

func newFilesTreeCommand() *cobra.Command {
	opts := &renku.TreeOptions{}

	cmd := &cobra.Command{
		Use:   "tree PROJECT",
		Short: "List the repository tree",
		Long:  "List files and directories of a project repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				entries, err := client.Repository().Tree(ctx, args[0], opts)
				if err != nil {
					return fmt.Errorf("failed to list tree: %w", err)
				}

				return render(cmd, entries, renderTreeTable)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "directory to list")
	cmd.Flags().StringVar(&opts.Ref, "ref", constants.DefaultRef, "branch, tag or commit")
	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "list subdirectories")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", constants.DefaultTreePerPage, "results per page")

	return cmd
}

func newFilesCatCommand() *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   "cat PROJECT PATH",
		Short: "Print a file",
		Long:  "Print the raw content of a repository file",
		Args:  cobra.ExactArgs(2), //nolint:mnd // project and path
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				content, err := client.Repository().RawFile(ctx, args[0], args[1], ref)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}

				_, err = io.WriteString(cmd.OutOrStdout(), content)

				return err
			})
		},
	}

	cmd.Flags().StringVar(&ref, "ref", constants.DefaultRef, "branch, tag or commit")

	return cmd
}

func newFilesMetaCommand() *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   "meta PROJECT PATH",
		Short: "Show file metadata",
		Long:  "Show the metadata of a repository file without downloading it",
		Args:  cobra.ExactArgs(2), //nolint:mnd // project and path
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				meta, err := client.Repository().FileMeta(ctx, args[0], args[1], ref)
				if err != nil {
					return fmt.Errorf("failed to get file metadata: %w", err)
				}

				return render(cmd, meta, renderFileMetaTable)
			})
		},
	}

	cmd.Flags().StringVar(&ref, "ref", constants.DefaultRef, "branch, tag or commit")

	return cmd
}

func newFilesReadmeCommand() *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   "readme PROJECT",
		Short: "Print the project README",
		Long:  "Print README.md of a project, or a hint when there is none",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				readme, err := client.Repository().Readme(ctx, args[0], ref)
				if err != nil {
					return fmt.Errorf("failed to read README: %w", err)
				}

				return render(cmd, readme, func(w io.Writer, readme *renku.Readme) error {
					_, err := fmt.Fprintln(w, readme.Text)

					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&ref, "ref", constants.DefaultRef, "branch, tag or commit")

	return cmd
}

func renderCommitsTable(w io.Writer, commits []renku.Commit) error {
	if len(commits) == 0 {
		_, _ = fmt.Fprintln(w, "No commits found")

		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("SHA", "Author", "Date", "Title")

	for _, commit := range commits {
		_ = table.Append(
			shortSHA(commit.ID),
			commit.AuthorName,
			formatTime(commit.CommittedDate),
			truncate(commit.Title, constants.DescriptionDisplayLength),
		)
	}

	return table.Render()
}

func renderBranchesTable(w io.Writer, branches []renku.Branch) error {
	if len(branches) == 0 {
		_, _ = fmt.Fprintln(w, "No branches found")

		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Name", "Default", "Protected", "Merged", "Commit")

	for _, branch := range branches {
		sha := constants.NotAvailable
		if branch.Commit != nil {
			sha = shortSHA(branch.Commit.ID)
		}

		_ = table.Append(branch.Name, checkMark(branch.Default), checkMark(branch.Protected), checkMark(branch.Merged), sha)
	}

	return table.Render()
}

func renderTreeTable(w io.Writer, entries []renku.TreeEntry) error {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No files found")

		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Type", "Mode", "Path")

	for _, entry := range entries {
		_ = table.Append(entry.Type, entry.Mode, entry.Path)
	}

	return table.Render()
}

func renderFileMetaTable(w io.Writer, meta *renku.FileMeta) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append("File", valueOrNA(meta.FilePath))
	_ = table.Append("Ref", valueOrNA(meta.Ref))
	_ = table.Append("Size", strconv.FormatInt(meta.Size, 10))
	_ = table.Append("Encoding", valueOrNA(meta.Encoding))
	_ = table.Append("Blob", valueOrNA(meta.BlobID))
	_ = table.Append("Commit", valueOrNA(meta.CommitID))
	_ = table.Append("Last Commit", valueOrNA(meta.LastCommitID))
	_ = table.Append("SHA-256", valueOrNA(meta.ContentSHA256))

	return table.Render()
}
