package auth

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fivetwenty-io/hsclient/internal/constants"
)

// TokenPersister saves renewed tokens, typically into the CLI config file.
type TokenPersister interface {
	SaveToken(host string, token *Token) error
}

// ConfigTokenManager wraps an OAuth2TokenManager and persists every token
// it obtains.
type ConfigTokenManager struct {
	oauth2Manager *OAuth2TokenManager
	persister     TokenPersister
	host          string
	mutex         sync.Mutex
	lastSaved     string
}

// NewConfigTokenManager creates a persisting token manager. initial, when
// not nil, seeds the manager with a token saved earlier.
func NewConfigTokenManager(config *OAuth2Config, persister TokenPersister, host string, initial *Token) *ConfigTokenManager {
	oauth2Manager := NewOAuth2TokenManager(config)

	lastSaved := ""
	if initial != nil && initial.AccessToken != "" {
		oauth2Manager.store.Set(initial)
		lastSaved = initial.AccessToken
	}

	return &ConfigTokenManager{
		oauth2Manager: oauth2Manager,
		persister:     persister,
		host:          host,
		lastSaved:     lastSaved,
	}
}

// GetToken returns a valid access token and saves it if it changed.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.oauth2Manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a refresh and saves the new token.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	err := m.oauth2Manager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken manually sets the access token.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.oauth2Manager.SetToken(token, expiresAt)
}

// IsTokenExpiringSoon returns true if the token expires within the given duration.
func (m *ConfigTokenManager) IsTokenExpiringSoon(within time.Duration) bool {
	token := m.oauth2Manager.store.Get()
	if token == nil {
		return true
	}

	if token.ExpiresAt.IsZero() {
		return false
	}

	return time.Now().Add(within).After(token.ExpiresAt)
}

func (m *ConfigTokenManager) persistIfChanged() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	current := m.oauth2Manager.store.Get()
	if current == nil || current.AccessToken == m.lastSaved {
		return
	}

	err := m.persist(current)
	if err != nil {
		// Log error but don't fail the request
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)

		return
	}

	m.lastSaved = current.AccessToken
}

func (m *ConfigTokenManager) persist(token *Token) error {
	if m.persister == nil {
		return constants.ErrNoConfigPersister
	}

	err := m.persister.SaveToken(m.host, token)
	if err != nil {
		return fmt.Errorf("saving token for %s: %w", m.host, err)
	}

	return nil
}
