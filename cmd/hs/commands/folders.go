package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewFoldersCommand creates the folders command group.
func NewFoldersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folders",
		Aliases: []string{"folder"},
		Short:   "Manage resource folders",
		Long:    "Create, list and delete folders inside a resource",
	}

	cmd.AddCommand(newFoldersCreateCommand())
	cmd.AddCommand(newFoldersDeleteCommand())
	cmd.AddCommand(newFoldersListCommand())

	return cmd
}

func newFoldersCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create PID PATH",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(2), //nolint:mnd // pid and path
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.Folders().Create(commandContext(cmd), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to create folder: %w", err)
			}

			return printMessage(cmd, map[string]string{"resource_id": args[0], "path": args[1]},
				"Created folder %s in %s", args[1], args[0])
		},
	}
}

func newFoldersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PID PATH",
		Short: "Delete a folder",
		Args:  cobra.ExactArgs(2), //nolint:mnd // pid and path
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.Folders().Delete(commandContext(cmd), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to delete folder: %w", err)
			}

			return printMessage(cmd, map[string]string{"resource_id": args[0], "path": args[1]},
				"Deleted folder %s from %s", args[1], args[0])
		},
	}
}

func newFoldersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls PID PATH",
		Aliases: []string{"list"},
		Short:   "List a folder",
		Args:    cobra.ExactArgs(2), //nolint:mnd // pid and path
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			contents, err := client.Folders().Contents(commandContext(cmd), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to list folder: %w", err)
			}

			return render(cmd, contents, func(out io.Writer) error {
				rows := make([][]string, 0, len(contents.Folders)+len(contents.Files))
				for _, f := range contents.Folders {
					rows = append(rows, []string{f + "/", "folder"})
				}

				for _, f := range contents.Files {
					rows = append(rows, []string{f, "file"})
				}

				return renderList(out, []string{"Name", "Kind"}, rows)
			})
		},
	}
}
