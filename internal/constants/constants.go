package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// DownloadDirPerm is the permission for directories created by downloads.
	DownloadDirPerm = 0755

	// DownloadFilePerm is the permission for downloaded files.
	DownloadFilePerm = 0644
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for short HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the retry count used by the CLI.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// ExtendedRetryWaitMax is the maximum wait time between retries.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Bag retrieval.
const (
	// DefaultBagPollInterval is the delay between task status polls.
	DefaultBagPollInterval = 3 * time.Second

	// QuickPollInterval is used for fast polling in tests.
	QuickPollInterval = 10 * time.Millisecond

	// ZipSniffLength is the number of header bytes examined by content sniffing.
	ZipSniffLength = 261
)

// Content types.
const (
	// ContentTypeJSON marks a JSON response body.
	ContentTypeJSON = "application/json"

	// ContentTypeText marks a plain text response body.
	ContentTypeText = "text/plain"

	// ContentTypeOctetStream is the fallback upload content type.
	ContentTypeOctetStream = "application/octet-stream"

	// ContentTypeForm is the urlencoded form content type.
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Token handling.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second

	// TokenPath is the OAuth2 token endpoint path on the server.
	TokenPath = "/o/token/"
)

// API paths, relative to the /hsapi root.
const (
	// APIRoot is appended to the server URL.
	APIRoot = "/hsapi"

	// APIPathResource is the resource collection.
	APIPathResource = "/resource/"

	// APIPathResourceTypes lists resource types.
	APIPathResourceTypes = "/resource/types"

	// APIPathContentTypes lists content types.
	APIPathContentTypes = "/resource/content_types"

	// APIPathUserInfo describes the authenticated user.
	APIPathUserInfo = "/userInfo/"
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// CheckMarkSymbol is used to mark enabled flags.
	CheckMarkSymbol = "✓"
)
