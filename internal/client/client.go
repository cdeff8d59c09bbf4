package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fivetwenty-io/hsclient/internal/auth"
	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/fivetwenty-io/hsclient/internal/http"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/afero"
)

// Static errors for err113 compliance.
var (
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
)

// Client implements the hs.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	serverURL    string
	useHTTPS     bool
	logger       hs.Logger
	fs           afero.Fs

	bagPollInterval time.Duration
	bagMaxWait      time.Duration

	// Resource clients
	resources *ResourcesClient
	bags      *BagsClient
	files     *FilesClient
	folders   *FoldersClient
	functions *FunctionsClient
	users     *UsersClient
	tasks     *TasksClient
}

// New creates a HydroShare client. A password grant OAuth2 configuration
// requests its first token right away, so bad credentials fail here.
func New(ctx context.Context, config *hs.Config) (*Client, error) {
	normalized, err := normalizeConfig(config)
	if err != nil {
		return nil, err
	}

	serverURL := buildServerURL(normalized)

	err = checkAuth(normalized)
	if err != nil {
		return nil, err
	}

	tokenManager := createTokenManager(normalized, serverURL)

	client := newClient(normalized, serverURL, tokenManager)

	if oauth, ok := oauth2Auth(normalized.Auth); ok && !hasAccessToken(oauth) {
		_, err = tokenManager.GetToken(ctx)
		if err != nil {
			return nil, &hs.AuthenticationError{Message: "requesting OAuth2 token", Err: err}
		}
	}

	return client, nil
}

// NewWithTokenManager creates a client that authenticates with bearer
// tokens from tokenManager, whatever config.Auth says.
func NewWithTokenManager(config *hs.Config, tokenManager auth.TokenManager) (*Client, error) {
	normalized, err := normalizeConfig(config)
	if err != nil {
		return nil, err
	}

	if tokenManager != nil && !normalized.UseHTTPS && !normalized.AllowInsecureAuth {
		return nil, &hs.AuthenticationError{Message: "bearer tokens over http", Err: hs.ErrInsecureAuth}
	}

	normalized.Auth = hs.NoAuth{}

	return newClient(normalized, buildServerURL(normalized), tokenManager), nil
}

func newClient(config *hs.Config, serverURL string, tokenManager auth.TokenManager) *Client {
	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(serverURL+constants.APIRoot, tokenManager, httpOpts...)

	logger := config.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	client := &Client{
		httpClient:      httpClient,
		tokenManager:    tokenManager,
		serverURL:       serverURL,
		useHTTPS:        config.UseHTTPS,
		logger:          logger,
		fs:              config.Fs,
		bagPollInterval: config.BagPollInterval,
		bagMaxWait:      config.BagMaxWait,
	}

	client.initializeResourceClients()

	return client
}

// normalizeConfig copies config and fills in defaults.
func normalizeConfig(config *hs.Config) (*hs.Config, error) {
	if config == nil {
		return nil, hs.ErrConfigRequired
	}

	normalized := *config

	if normalized.Hostname == "" {
		normalized.Hostname = hs.DefaultHostname
	}

	if normalized.Auth == nil {
		normalized.Auth = hs.NoAuth{}
	}

	if normalized.BagPollInterval == 0 {
		normalized.BagPollInterval = constants.DefaultBagPollInterval
	}

	if normalized.Fs == nil {
		normalized.Fs = afero.NewOsFs()
	}

	err := normalized.Validate()
	if err != nil {
		return nil, err
	}

	return &normalized, nil
}

// buildServerURL returns {scheme}://{hostname}[:port].
func buildServerURL(config *hs.Config) string {
	scheme := "http"
	if config.UseHTTPS {
		scheme = "https"
	}

	if config.Port > 0 {
		return scheme + "://" + config.Hostname + ":" + strconv.Itoa(config.Port)
	}

	return scheme + "://" + config.Hostname
}

// checkAuth validates the authentication variant against the connection.
func checkAuth(config *hs.Config) error {
	switch a := config.Auth.(type) {
	case hs.NoAuth, *hs.NoAuth:
		return nil
	case hs.BasicAuth, *hs.BasicAuth:
		return requireHTTPS(config, "basic")
	case hs.OAuth2Auth, *hs.OAuth2Auth:
		err := requireHTTPS(config, "OAuth2")
		if err != nil {
			return err
		}

		oauth, _ := oauth2Auth(a)
		if !hasAccessToken(oauth) && (oauth.Username == "" || oauth.Password == "") {
			return &hs.AuthenticationError{Message: "OAuth2 configuration", Err: hs.ErrOAuth2Credentials}
		}

		return nil
	default:
		return &hs.AuthenticationError{
			Message: fmt.Sprintf("authentication type %T", config.Auth),
			Err:     hs.ErrUnsupportedAuth,
		}
	}
}

func requireHTTPS(config *hs.Config, kind string) error {
	if config.UseHTTPS || config.AllowInsecureAuth {
		return nil
	}

	return &hs.AuthenticationError{Message: kind + " authentication over http", Err: hs.ErrInsecureAuth}
}

func basicAuth(a hs.Auth) (hs.BasicAuth, bool) {
	switch v := a.(type) {
	case hs.BasicAuth:
		return v, true
	case *hs.BasicAuth:
		if v != nil {
			return *v, true
		}
	}

	return hs.BasicAuth{}, false
}

func oauth2Auth(a hs.Auth) (hs.OAuth2Auth, bool) {
	switch v := a.(type) {
	case hs.OAuth2Auth:
		return v, true
	case *hs.OAuth2Auth:
		if v != nil {
			return *v, true
		}
	}

	return hs.OAuth2Auth{}, false
}

func hasAccessToken(a hs.OAuth2Auth) bool {
	return a.Token != nil && a.Token.AccessToken != ""
}

// createTokenManager creates appropriate token manager based on config.
func createTokenManager(config *hs.Config, serverURL string) auth.TokenManager {
	oauth, ok := oauth2Auth(config.Auth)
	if !ok {
		return nil
	}

	canRenew := (oauth.Username != "" && oauth.Password != "") ||
		(oauth.Token != nil && oauth.Token.RefreshToken != "")

	if hasAccessToken(oauth) && !canRenew {
		return &staticTokenManager{token: oauth.Token.AccessToken}
	}

	oauthConfig := &auth.OAuth2Config{
		TokenURL:     auth.TokenURL(serverURL),
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		Username:     oauth.Username,
		Password:     oauth.Password,
		HTTPClient:   config.HTTPClient,
	}

	if oauth.Token != nil {
		oauthConfig.AccessToken = oauth.Token.AccessToken
		oauthConfig.RefreshToken = oauth.Token.RefreshToken
	}

	manager := auth.NewOAuth2TokenManager(oauthConfig)

	if hasAccessToken(oauth) && !oauth.Token.Expiry.IsZero() {
		manager.SetToken(oauth.Token.AccessToken, oauth.Token.Expiry)
	}

	return manager
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *hs.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if basic, ok := basicAuth(config.Auth); ok {
		httpOpts = append(httpOpts, http.WithBasicAuth(basic.Username, basic.Password))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.resources = NewResourcesClient(c.httpClient, c.fs, c.useHTTPS)
	c.tasks = NewTasksClient(c.httpClient, c.bagPollInterval)
	c.bags = NewBagsClient(c.httpClient, c.tasks, c.fs, c.logger, c.bagMaxWait)
	c.files = NewFilesClient(c.httpClient, c.fs, c.useHTTPS)
	c.folders = NewFoldersClient(c.httpClient)
	c.functions = NewFunctionsClient(c.httpClient)
	c.users = NewUsersClient(c.httpClient)
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// BaseURL implements hs.Client.BaseURL.
func (c *Client) BaseURL() string {
	return c.httpClient.BaseURL()
}

// ServerURL returns {scheme}://{hostname}[:port] without the API root.
func (c *Client) ServerURL() string {
	return c.serverURL
}

// Resource client accessors

// Resources implements hs.Client.Resources.
func (c *Client) Resources() hs.ResourcesClient {
	return c.resources
}

// Bags implements hs.Client.Bags.
func (c *Client) Bags() hs.BagsClient {
	return c.bags
}

// Files implements hs.Client.Files.
func (c *Client) Files() hs.FilesClient {
	return c.files
}

// Folders implements hs.Client.Folders.
func (c *Client) Folders() hs.FoldersClient {
	return c.folders
}

// Functions implements hs.Client.Functions.
func (c *Client) Functions() hs.FunctionsClient {
	return c.functions
}

// Users implements hs.Client.Users.
func (c *Client) Users() hs.UsersClient {
	return c.users
}

// Tasks implements hs.Client.Tasks.
func (c *Client) Tasks() hs.TasksClient {
	return c.tasks
}

// staticTokenManager provides a static token.
type staticTokenManager struct {
	token string
}

func (m *staticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

func (m *staticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrStaticTokenCannotRefresh
}

func (m *staticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}

// loggerAdapter adapts hs.Logger to http.Logger.
type loggerAdapter struct {
	logger hs.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
