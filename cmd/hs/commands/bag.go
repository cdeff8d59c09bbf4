package commands

import (
	"fmt"
	"time"

	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/cobra"
)

// NewBagCommand creates the bag command group.
func NewBagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bag",
		Aliases: []string{"bags"},
		Short:   "Download resource bags",
		Long:    "Download the BagIt archive of a resource",
	}

	cmd.AddCommand(newBagDownloadCommand())

	return cmd
}

type bagDownloadOptions struct {
	destination string
	unzip       bool
	wait        bool
	maxWait     time.Duration
	interval    time.Duration
}

func newBagDownloadCommand() *cobra.Command {
	opts := &bagDownloadOptions{}

	cmd := &cobra.Command{
		Use:   "download PID",
		Short: "Download a bag",
		Long: `Download the bag of a resource into a directory.

The server builds bags on demand. With --wait (the default) the command
polls until the bag is ready; --wait=false fails straight away instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd, func(config *hs.Config) {
				config.BagMaxWait = opts.maxWait
				if opts.interval > 0 {
					config.BagPollInterval = opts.interval
				}
			})
			if err != nil {
				return err
			}

			path, err := client.Bags().Download(commandContext(cmd), args[0], &hs.BagDownloadOptions{
				Destination: opts.destination,
				Unzip:       opts.unzip,
				Wait:        opts.wait,
			})
			if err != nil {
				if hs.IsBagNotReady(err) {
					return fmt.Errorf("bag for %s is not ready yet, retry later or use --wait: %w", args[0], err)
				}

				return fmt.Errorf("failed to download bag: %w", err)
			}

			return printMessage(cmd, map[string]string{"resource_id": args[0], "path": path},
				"Saved bag of %s to %s", args[0], path)
		},
	}

	cmd.Flags().StringVarP(&opts.destination, "dest", "d", ".", "destination directory")
	cmd.Flags().BoolVar(&opts.unzip, "unzip", false, "extract the bag into DEST/PID")
	cmd.Flags().BoolVar(&opts.wait, "wait", true, "wait until the bag is ready")
	cmd.Flags().DurationVar(&opts.maxWait, "max-wait", 0, "give up waiting after this long (0 for no limit)")
	cmd.Flags().DurationVar(&opts.interval, "poll-interval", 0, "delay between readiness checks")

	return cmd
}
