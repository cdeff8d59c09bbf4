package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/cobra"
)

// NewFilesCommand creates the files command group.
func NewFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file"},
		Short:   "Manage resource files",
		Long:    "List, upload, download and delete the files of a resource",
	}

	cmd.AddCommand(newFilesListCommand())
	cmd.AddCommand(newFilesAddCommand())
	cmd.AddCommand(newFilesGetCommand())
	cmd.AddCommand(newFilesDeleteCommand())

	return cmd
}

func newFilesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list PID",
		Short: "List files",
		Long:  "List every file of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			files, err := client.Files().List(commandContext(cmd), args[0]).All()
			if err != nil {
				return fmt.Errorf("failed to list files: %w", err)
			}

			return render(cmd, files, func(out io.Writer) error {
				if len(files) == 0 {
					_, err := fmt.Fprintln(out, "No files found")

					return err
				}

				rows := make([][]string, 0, len(files))
				for _, f := range files {
					rows = append(rows, []string{
						f.FileName,
						strconv.FormatInt(f.Size, 10),
						f.ContentType,
						orNotAvailable(f.LogicalType),
					})
				}

				return renderList(out, []string{"Name", "Size", "Content Type", "Logical Type"}, rows)
			})
		},
	}
}

func newFilesAddCommand() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "add PID PATH",
		Short: "Upload a file",
		Long:  "Upload a local file to a resource, optionally into a folder",
		Args:  cobra.ExactArgs(2), //nolint:mnd // pid and path
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.Files().Add(commandContext(cmd), args[0], &hs.FileUpload{
				Path:   args[1],
				Folder: folder,
			})
			if err != nil {
				return fmt.Errorf("failed to add file: %w", err)
			}

			return printMessage(cmd, result, "Added %s to %s", result.FileName, result.ResourceID)
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "folder inside the resource")

	return cmd
}

func newFilesGetCommand() *cobra.Command {
	var destination string

	cmd := &cobra.Command{
		Use:   "get PID FILENAME",
		Short: "Download a file",
		Long:  "Download one file of a resource into a directory",
		Args:  cobra.ExactArgs(2), //nolint:mnd // pid and filename
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			path, err := client.Files().Download(commandContext(cmd), args[0], args[1], destination)
			if err != nil {
				return fmt.Errorf("failed to download file: %w", err)
			}

			return printMessage(cmd, map[string]string{"path": path}, "Saved %s", path)
		},
	}

	cmd.Flags().StringVarP(&destination, "dest", "d", ".", "destination directory")

	return cmd
}

func newFilesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PID FILENAME",
		Short: "Delete a file",
		Long:  "Delete one file of a resource",
		Args:  cobra.ExactArgs(2), //nolint:mnd // pid and filename
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			pid, err := client.Files().Delete(commandContext(cmd), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to delete file: %w", err)
			}

			return printMessage(cmd, map[string]string{"resource_id": pid, "file_name": args[1]},
				"Deleted %s from %s", args[1], pid)
		},
	}
}
