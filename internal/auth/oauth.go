package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	"golang.org/x/oauth2"
)

// Static errors for err113 compliance.
var (
	ErrNoValidCredentials = errors.New("no valid credentials available")
	ErrEmptyAccessToken   = errors.New("token endpoint returned an empty access token")
)

// TokenManager hands out bearer tokens to the HTTP layer.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// OAuth2Config configures an OAuth2TokenManager.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	AccessToken  string
	Scopes       []string
	// HTTPClient is used for token requests when set.
	HTTPClient *http.Client
}

// OAuth2TokenManager obtains tokens with the password grant and renews them
// with the refresh token grant.
type OAuth2TokenManager struct {
	config *OAuth2Config
	oauth  *oauth2.Config
	store  *TokenStore
	mutex  sync.Mutex
}

// NewOAuth2TokenManager creates a token manager. A configured AccessToken is
// stored as the initial token.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	manager := &OAuth2TokenManager{
		config: config,
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: config.TokenURL,
			},
			Scopes: config.Scopes,
		},
		store: NewTokenStore(),
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	return manager
}

// NewHydroShareTokenManager creates a password grant token manager for the
// server at serverURL ({scheme}://{hostname}[:port]).
func NewHydroShareTokenManager(serverURL, clientID, clientSecret, username, password string) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     TokenURL(serverURL),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     username,
		Password:     password,
	})
}

// TokenURL returns the token endpoint of the server at serverURL.
func TokenURL(serverURL string) string {
	return strings.TrimSuffix(serverURL, "/") + constants.TokenPath
}

// GetToken returns a valid access token, refreshing or requesting one if
// necessary.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Another caller may have renewed it meanwhile.
	token = m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	token, err := m.fetchToken(ctx, token)
	if err != nil {
		return "", err
	}

	m.store.Set(token)

	return token.AccessToken, nil
}

// RefreshToken forces a new token.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	current := m.store.Get()
	if current != nil {
		expired := *current
		expired.ExpiresAt = time.Now().Add(-time.Minute)
		current = &expired
	}

	token, err := m.fetchToken(ctx, current)
	if err != nil {
		return err
	}

	m.store.Set(token)

	return nil
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	refresh := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refresh = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	})
}

// CurrentToken returns the stored token, nil before the first request.
func (m *OAuth2TokenManager) CurrentToken() *Token {
	return m.store.Get()
}

func (m *OAuth2TokenManager) fetchToken(ctx context.Context, current *Token) (*Token, error) {
	if m.config.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.config.HTTPClient)
	}

	refresh := m.config.RefreshToken
	if current != nil && current.RefreshToken != "" {
		refresh = current.RefreshToken
	}

	var (
		issued *oauth2.Token
		err    error
	)

	switch {
	case refresh != "":
		stale := &oauth2.Token{RefreshToken: refresh, Expiry: time.Now().Add(-time.Minute)}
		issued, err = m.oauth.TokenSource(ctx, stale).Token()
		if err != nil && m.config.Username != "" && m.config.Password != "" {
			issued, err = m.oauth.PasswordCredentialsToken(ctx, m.config.Username, m.config.Password)
		}
	case m.config.Username != "" && m.config.Password != "":
		issued, err = m.oauth.PasswordCredentialsToken(ctx, m.config.Username, m.config.Password)
	default:
		return nil, ErrNoValidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("requesting token from %s: %w", m.config.TokenURL, err)
	}

	if issued.AccessToken == "" {
		return nil, ErrEmptyAccessToken
	}

	return tokenFromOAuth2(issued), nil
}
