package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewUserCommand creates the user command.
func NewUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "user",
		Aliases: []string{"whoami"},
		Short:   "Show the current user",
		Long:    "Display the account the CLI is authenticated as",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			info, err := client.Users().GetUserInfo(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to get user info: %w", err)
			}

			return render(cmd, info, func(out io.Writer) error {
				return renderProperties(out, [][]string{
					{"ID", strconv.Itoa(info.ID)},
					{"Username", info.Username},
					{"Name", strings.TrimSpace(info.FirstName + " " + info.LastName)},
					{"Email", info.Email},
					{"Organization", orNotAvailable(info.Organization)},
				})
			})
		},
	}
}
