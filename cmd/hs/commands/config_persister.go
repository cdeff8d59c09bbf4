package commands

import (
	"sync"

	"github.com/fivetwenty-io/hsclient/internal/auth"
)

// ConfigPersister implements auth.TokenPersister on top of the CLI config
// file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// SaveToken stores a renewed token. The config file tracks a single
// server, so host is informational.
func (p *ConfigPersister) SaveToken(_ string, token *auth.Token) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()
	applyToken(config, token)

	return saveConfig(config)
}

// applyToken copies token into config, keeping the refresh token when the
// server did not rotate it.
func applyToken(config *Config, token *auth.Token) {
	config.AccessToken = token.AccessToken

	if token.RefreshToken != "" {
		config.RefreshToken = token.RefreshToken
	}

	config.TokenExpiresAt = nil

	if !token.ExpiresAt.IsZero() {
		expiresAt := token.ExpiresAt
		config.TokenExpiresAt = &expiresAt
	}
}
