package commands

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fivetwenty-io/hsclient/internal/auth"
	"github.com/fivetwenty-io/hsclient/internal/client"
	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/fivetwenty-io/hsclient/pkg/hsclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file.
type Config struct {
	Hostname          string     `json:"hostname,omitempty"            yaml:"hostname,omitempty"`
	Port              int        `json:"port,omitempty"                yaml:"port,omitempty"`
	HTTPS             bool       `json:"https"                         yaml:"https"`
	AllowInsecureAuth bool       `json:"allow_insecure_auth,omitempty" yaml:"allow_insecure_auth,omitempty"`
	Username          string     `json:"username,omitempty"            yaml:"username,omitempty"`
	ClientID          string     `json:"client_id,omitempty"           yaml:"client_id,omitempty"`
	ClientSecret      string     `json:"client_secret,omitempty"       yaml:"client_secret,omitempty"`
	AccessToken       string     `json:"access_token,omitempty"        yaml:"access_token,omitempty"`
	RefreshToken      string     `json:"refresh_token,omitempty"       yaml:"refresh_token,omitempty"`
	TokenExpiresAt    *time.Time `json:"token_expires_at,omitempty"    yaml:"token_expires_at,omitempty"`
	Output            string     `json:"output,omitempty"              yaml:"output,omitempty"`
}

// ServerURL returns {scheme}://{hostname}[:port] for the configured server.
func (c *Config) ServerURL() string {
	scheme := "http"
	if c.HTTPS {
		scheme = "https"
	}

	host := c.Hostname
	if host == "" {
		host = hs.DefaultHostname
	}

	if c.Port != 0 {
		host += ":" + strconv.Itoa(c.Port)
	}

	return (&url.URL{Scheme: scheme, Host: host}).String()
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "View and modify the hs CLI configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			masked := *config
			masked.ClientSecret = maskSecret(masked.ClientSecret)
			masked.AccessToken = maskSecret(masked.AccessToken)
			masked.RefreshToken = maskSecret(masked.RefreshToken)

			return render(cmd, &masked, func(out io.Writer) error {
				return displayConfigTable(out, &masked)
			})
		},
	}
}

func displayConfigTable(out io.Writer, config *Config) error {
	expires := ""
	if config.TokenExpiresAt != nil {
		expires = config.TokenExpiresAt.Format(time.RFC3339)
	}

	port := ""
	if config.Port != 0 {
		port = strconv.Itoa(config.Port)
	}

	return renderProperties(out, [][]string{
		{"Server", config.ServerURL()},
		{"Port", port},
		{"HTTPS", strconv.FormatBool(config.HTTPS)},
		{"Allow Insecure Auth", strconv.FormatBool(config.AllowInsecureAuth)},
		{"Username", config.Username},
		{"Client ID", config.ClientID},
		{"Client Secret", config.ClientSecret},
		{"Access Token", config.AccessToken},
		{"Refresh Token", config.RefreshToken},
		{"Token Expires", expires},
		{"Output", config.Output},
	})
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Keys: hostname, port, https, allow_insecure_auth, username, client_id,
client_secret, output`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := unsetConfigValue(config, args[0])
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "hostname":
		config.Hostname = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: port %q", constants.ErrInvalidFlag, value)
		}

		config.Port = port
	case "https", "allow_insecure_auth":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s %q", constants.ErrInvalidFlag, key, value)
		}

		if key == "https" {
			config.HTTPS = enabled
		} else {
			config.AllowInsecureAuth = enabled
		}
	case "username":
		config.Username = value
	case "client_id":
		config.ClientID = value
	case "client_secret":
		config.ClientSecret = value
	case "output":
		switch value {
		case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
			config.Output = value
		default:
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutput, value)
		}
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "hostname":
		config.Hostname = ""
	case "port":
		config.Port = 0
	case "https":
		config.HTTPS = true
	case "allow_insecure_auth":
		config.AllowInsecureAuth = false
	case "username":
		config.Username = ""
	case "client_id":
		config.ClientID = ""
	case "client_secret":
		config.ClientSecret = ""
	case "output":
		config.Output = ""
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// loadConfig reads the configuration from viper, so flags and HS_*
// environment variables take precedence over the file.
func loadConfig() *Config {
	config := &Config{
		Hostname:          viper.GetString("hostname"),
		Port:              viper.GetInt("port"),
		HTTPS:             true,
		AllowInsecureAuth: viper.GetBool("allow_insecure_auth"),
		Username:          viper.GetString("username"),
		ClientID:          viper.GetString("client_id"),
		ClientSecret:      viper.GetString("client_secret"),
		AccessToken:       viper.GetString("access_token"),
		RefreshToken:      viper.GetString("refresh_token"),
		Output:            viper.GetString("output"),
	}

	if viper.IsSet("https") {
		config.HTTPS = viper.GetBool("https")
	}

	if expires := viper.GetTime("token_expires_at"); !expires.IsZero() {
		config.TokenExpiresAt = &expires
	}

	return config
}

// configFilePath returns the file in use, or ~/.hs/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(home, ConfigDirName)

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, ConfigFileName), nil
}

// saveConfig writes config as YAML and makes viper see the new values.
func saveConfig(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.SetConfigFile(configFile)

	err = viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to reload config file: %w", err)
	}

	return nil
}

// clientOption adjusts the client configuration built by createClient.
type clientOption func(*hs.Config)

// baseClientConfig maps the CLI configuration onto a client configuration
// without credentials.
func baseClientConfig(cmd *cobra.Command, config *Config) (*hs.Config, error) {
	verbose := viper.GetBool("verbose")

	clientConfig := &hs.Config{
		Hostname:          config.Hostname,
		Port:              config.Port,
		UseHTTPS:          config.HTTPS,
		AllowInsecureAuth: config.AllowInsecureAuth,
		Debug:             verbose,
		Logger:            newLogger(cmd.ErrOrStderr(), verbose),
		UserAgent:         userAgent,
		RetryMax:          constants.DefaultRetryMax,
	}

	if viper.GetBool("skip_ssl_validation") {
		httpClient, err := hsclient.InsecureHTTPClient()
		if err != nil {
			return nil, err
		}

		clientConfig.HTTPClient = httpClient
	}

	return clientConfig, nil
}

// createClient builds a client from the saved configuration. A saved token
// is used and renewed through the config file; otherwise HS_PASSWORD
// enables basic auth for the configured user; otherwise requests are
// anonymous.
func createClient(cmd *cobra.Command, opts ...clientOption) (hs.Client, error) {
	config := loadConfig()

	clientConfig, err := baseClientConfig(cmd, config)
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(clientConfig)
	}

	if config.AccessToken != "" {
		return createClientWithTokenManager(config, clientConfig)
	}

	if password := viper.GetString("password"); password != "" && config.Username != "" {
		clientConfig.Auth = hs.BasicAuth{Username: config.Username, Password: password}
	}

	return newClient(cmd.Context(), clientConfig)
}

func createClientWithTokenManager(config *Config, clientConfig *hs.Config) (hs.Client, error) {
	initial := &auth.Token{
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
	}
	if config.TokenExpiresAt != nil {
		initial.ExpiresAt = *config.TokenExpiresAt
	}

	tokenManager := auth.NewConfigTokenManager(&auth.OAuth2Config{
		TokenURL:     auth.TokenURL(config.ServerURL()),
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RefreshToken: config.RefreshToken,
		HTTPClient:   clientConfig.HTTPClient,
	}, NewConfigPersister(), config.ServerURL(), initial)

	c, err := client.NewWithTokenManager(clientConfig, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return c, nil
}

func newClient(ctx context.Context, clientConfig *hs.Config) (hs.Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := hsclient.New(ctx, clientConfig)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// commandContext returns the command's context, or a background context
// when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
