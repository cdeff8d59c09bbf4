package commands

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/cobra"
)

// NewFunctionsCommand creates the functions command group.
func NewFunctionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "functions",
		Aliases: []string{"fn"},
		Short:   "Run server side file functions",
		Long:    "Move, zip, unzip and classify files inside a resource",
	}

	cmd.AddCommand(newFunctionsMoveCommand())
	cmd.AddCommand(newFunctionsZipCommand())
	cmd.AddCommand(newFunctionsUnzipCommand())
	cmd.AddCommand(newFunctionsSetFileTypeCommand())

	return cmd
}

func newFunctionsMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "move PID SOURCE TARGET",
		Aliases: []string{"mv", "rename"},
		Short:   "Move or rename a file or folder",
		Args:    cobra.ExactArgs(3), //nolint:mnd // pid, source and target
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.Functions().MoveOrRename(commandContext(cmd), args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("failed to move: %w", err)
			}

			return printMessage(cmd, map[string]string{"source_path": args[1], "target_path": args[2]},
				"Moved %s to %s", args[1], args[2])
		},
	}
}

func newFunctionsZipCommand() *cobra.Command {
	var removeOriginal bool

	cmd := &cobra.Command{
		Use:   "zip PID PATH OUTPUT",
		Short: "Zip a file or folder",
		Long:  "Zip PATH into the archive OUTPUT next to it",
		Args:  cobra.ExactArgs(3), //nolint:mnd // pid, path and output
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			request := &hs.ZipRequest{
				InputPath:      args[1],
				OutputFileName: args[2],
				RemoveOriginal: removeOriginal,
			}

			err = client.Functions().Zip(commandContext(cmd), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to zip: %w", err)
			}

			return printMessage(cmd, request, "Zipped %s into %s", args[1], args[2])
		},
	}

	cmd.Flags().BoolVar(&removeOriginal, "remove-original", false, "delete PATH after zipping")

	return cmd
}

func newFunctionsUnzipCommand() *cobra.Command {
	var removeOriginal bool

	cmd := &cobra.Command{
		Use:   "unzip PID ZIP",
		Short: "Unzip an archive",
		Args:  cobra.ExactArgs(2), //nolint:mnd // pid and zip path
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.Functions().Unzip(commandContext(cmd), args[0], args[1], removeOriginal)
			if err != nil {
				return fmt.Errorf("failed to unzip: %w", err)
			}

			return printMessage(cmd, map[string]string{"zip_path": args[1]}, "Unzipped %s", args[1])
		},
	}

	cmd.Flags().BoolVar(&removeOriginal, "remove-original", false, "delete the archive after unzipping")

	return cmd
}

func newFunctionsSetFileTypeCommand() *cobra.Command {
	types := make([]string, 0, len(hs.AggregationTypes))
	for _, t := range hs.AggregationTypes {
		types = append(types, string(t))
	}

	return &cobra.Command{
		Use:   "set-file-type PID PATH TYPE",
		Short: "Set the logical type of a file",
		Long:  "Turn a file into an aggregation. Types: " + strings.Join(types, ", "),
		Args:  cobra.ExactArgs(3), //nolint:mnd // pid, path and type
		RunE: func(cmd *cobra.Command, args []string) error {
			fileType := hs.AggregationType(args[2])
			if !fileType.Valid() {
				return fmt.Errorf("%w: unknown file type %q", constants.ErrInvalidFlag, args[2])
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.Functions().SetFileType(commandContext(cmd), args[0], args[1], fileType)
			if err != nil {
				return fmt.Errorf("failed to set file type: %w", err)
			}

			return printMessage(cmd, map[string]string{"file_path": args[1], "file_type": args[2]},
				"Set %s to %s", args[1], args[2])
		},
	}
}
