package constants

import "errors"

// Configuration errors.
var (
	ErrNotLoggedIn       = errors.New("not logged in, use 'hs login' first")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrInvalidOutput     = errors.New("invalid output format, use table, json or yaml")
	ErrPasswordRequired  = errors.New("password is required")
	ErrNoTerminal        = errors.New("cannot prompt for password without a terminal")
	ErrNoRefreshToken    = errors.New("no refresh token available, please run 'hs login' again")
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// Argument errors.
var (
	ErrDestinationRequired = errors.New("--dest flag is required")
	ErrInvalidFlag         = errors.New("invalid flag value")
	ErrInvalidDate         = errors.New("invalid date, use YYYY-MM-DD")
	ErrInvalidCoordinates  = errors.New("coverage needs north,east or north,south,east,west")
	ErrInvalidKeyValue     = errors.New("expected key=value")
)
