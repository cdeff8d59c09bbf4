package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/hsclient/internal/auth"
	"github.com/fivetwenty-io/hsclient/internal/client"
	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type loginOptions struct {
	username     string
	password     string
	clientID     string
	clientSecret string
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to HydroShare",
		Long: `Obtain an OAuth2 token with the password grant and save it in the
config file. The token is renewed with its refresh token when it expires.

The password is read from --password, HS_PASSWORD or a terminal prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "user name")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "password")
	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "OAuth2 client id")
	cmd.Flags().StringVar(&opts.clientSecret, "client-secret", "", "OAuth2 client secret")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *loginOptions) error {
	config := loadConfig()

	if opts.clientID != "" {
		config.ClientID = opts.clientID
	}

	if opts.clientSecret != "" {
		config.ClientSecret = opts.clientSecret
	}

	username := opts.username
	if username == "" {
		username = config.Username
	}

	if username == "" {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Username: ")

		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		username = strings.TrimSpace(line)
	}

	password := opts.password
	if password == "" {
		password = viper.GetString("password")
	}

	if password == "" {
		var err error

		password, err = readPassword(cmd, "Password: ")
		if err != nil {
			return err
		}
	}

	if password == "" {
		return constants.ErrPasswordRequired
	}

	clientConfig, err := baseClientConfig(cmd, config)
	if err != nil {
		return err
	}

	clientConfig.Auth = hs.OAuth2Auth{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     username,
		Password:     password,
	}

	c, err := client.New(commandContext(cmd), clientConfig)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	manager, ok := c.GetTokenManager().(*auth.OAuth2TokenManager)
	if !ok || manager.CurrentToken() == nil {
		return fmt.Errorf("login failed: %w", constants.ErrNotLoggedIn)
	}

	config.Username = username
	applyToken(config, manager.CurrentToken())

	err = saveConfig(config)
	if err != nil {
		return err
	}

	info, err := c.Users().GetUserInfo(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to get user info: %w", err)
	}

	return printMessage(cmd, info, "Logged in to %s as %s", config.ServerURL(), info.Username)
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out from HydroShare",
		Long:  "Remove the saved tokens from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.AccessToken = ""
			config.RefreshToken = ""
			config.TokenExpiresAt = nil

			err := saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}
