package hs

import "time"

// Auth selects how the client authenticates. The set of variants is closed:
// NoAuth, BasicAuth and OAuth2Auth.
type Auth interface {
	authKind() string
}

// NoAuth sends anonymous requests.
type NoAuth struct{}

func (NoAuth) authKind() string { return "none" }

// BasicAuth sends HTTP basic credentials with every request. It requires
// HTTPS.
type BasicAuth struct {
	Username string
	Password string
}

func (BasicAuth) authKind() string { return "basic" }

// OAuth2Auth authenticates with a bearer token. The token is either given
// directly in Token or obtained with the password grant from Username and
// Password. It requires HTTPS.
type OAuth2Auth struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Token        *OAuth2Token
}

func (OAuth2Auth) authKind() string { return "oauth2" }

// OAuth2Token is a token previously issued by the server's token endpoint.
type OAuth2Token struct {
	AccessToken  string    `json:"access_token"            yaml:"access_token"`
	TokenType    string    `json:"token_type,omitempty"    yaml:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"    yaml:"expires_in,omitempty"`
	Scope        string    `json:"scope,omitempty"         yaml:"scope,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"        yaml:"expiry,omitempty"`
}

// AuthKind names the variant of a, "none" for nil.
func AuthKind(a Auth) string {
	if a == nil {
		return NoAuth{}.authKind()
	}

	return a.authKind()
}
