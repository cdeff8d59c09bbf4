package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/cobra"
)

// NewTaskCommand creates the task command group.
func NewTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Inspect server tasks",
		Long:    "Inspect asynchronous tasks such as bag generation",
	}

	cmd.AddCommand(newTaskStatusCommand())

	return cmd
}

func newTaskStatusCommand() *cobra.Command {
	var (
		wait     bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status TASK_ID",
		Short: "Show task status",
		Long:  "Show whether a task is done, or wait for it with --wait",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd, func(config *hs.Config) {
				if interval > 0 {
					config.BagPollInterval = interval
				}
			})
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			if wait {
				err = client.Tasks().WaitUntilDone(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to wait for task: %w", err)
				}
			}

			status, err := client.Tasks().GetStatus(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get task status: %w", err)
			}

			return render(cmd, status, func(out io.Writer) error {
				return renderProperties(out, [][]string{
					{"Task", args[0]},
					{"Done", strconv.FormatBool(status.Done())},
				})
			})
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until the task is done")
	cmd.Flags().DurationVar(&interval, "poll-interval", 0, "delay between status checks")

	return cmd
}
