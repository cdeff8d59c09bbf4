package hs

import (
	"context"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/afero"
)

// DefaultHostname is the public HydroShare server.
const DefaultHostname = "www.hydroshare.org"

// ResourcesClient covers resource level operations.
type ResourcesClient interface {
	List(ctx context.Context, params *ResourceListParams) *ResultsIterator[Resource]
	GetSystemMetadata(ctx context.Context, pid string) (*Resource, error)
	GetScienceMetadataRDF(ctx context.Context, pid string) ([]byte, error)
	GetScienceMetadata(ctx context.Context, pid string) (*ScienceMetadata, error)
	UpdateScienceMetadata(ctx context.Context, pid string, metadata map[string]any) (*ScienceMetadata, error)
	SetCustomMetadata(ctx context.Context, pid string, metadata map[string]string) error
	GetResourceMap(ctx context.Context, pid string) ([]byte, error)
	GetTypes(ctx context.Context) ([]string, error)
	GetContentTypes(ctx context.Context) ([]string, error)
	Create(ctx context.Context, request *ResourceCreateRequest) (string, error)
	Delete(ctx context.Context, pid string) (string, error)
	SetAccessRules(ctx context.Context, pid string, public bool) (string, error)
	SetFlag(ctx context.Context, pid string, flag ResourceFlag) error
	SetPublic(ctx context.Context, pid string, public bool) error
	SetDiscoverable(ctx context.Context, pid string, discoverable bool) error
	SetShareable(ctx context.Context, pid string, shareable bool) error
	Copy(ctx context.Context, pid string) (string, error)
	Version(ctx context.Context, pid string) (string, error)
}

// BagsClient retrieves resources as zipped BagIt archives.
type BagsClient interface {
	// Stream returns the bag's bytes. If the server is still generating the
	// bag, Stream either waits for it (wait true) or fails with
	// BagNotReadyError.
	Stream(ctx context.Context, pid string, wait bool) (*ChunkStream, error)
	// Download stores the bag under opts.Destination and returns the path of
	// the zip file, or of the extracted directory when opts.Unzip is set.
	Download(ctx context.Context, pid string, opts *BagDownloadOptions) (string, error)
}

// FilesClient covers files inside a resource.
type FilesClient interface {
	List(ctx context.Context, pid string) *ResultsIterator[ResourceFile]
	Add(ctx context.Context, pid string, upload *FileUpload) (*FileAddResult, error)
	Get(ctx context.Context, pid, filename string) (*ChunkStream, error)
	Download(ctx context.Context, pid, filename, destination string) (string, error)
	Delete(ctx context.Context, pid, filename string) (string, error)
	GetMetadata(ctx context.Context, pid string, fileID int) (map[string]any, error)
	UpdateMetadata(ctx context.Context, pid string, fileID int, metadata map[string]any) error
}

// FoldersClient covers folders inside a resource.
type FoldersClient interface {
	Create(ctx context.Context, pid, path string) error
	Delete(ctx context.Context, pid, path string) error
	Contents(ctx context.Context, pid, path string) (*FolderContents, error)
}

// FunctionsClient covers server side file functions.
type FunctionsClient interface {
	MoveOrRename(ctx context.Context, pid, sourcePath, targetPath string) error
	Zip(ctx context.Context, pid string, request *ZipRequest) error
	Unzip(ctx context.Context, pid, zipPath string, removeOriginal bool) error
	SetFileType(ctx context.Context, pid, filePath string, fileType AggregationType) error
}

// UsersClient covers the authenticated user.
type UsersClient interface {
	GetUserInfo(ctx context.Context) (*UserInfo, error)
}

// TasksClient covers asynchronous server tasks.
type TasksClient interface {
	GetStatus(ctx context.Context, taskID string) (*TaskStatus, error)
	WaitUntilDone(ctx context.Context, taskID string) error
}

// Client is a HydroShare REST API client.
type Client interface {
	Resources() ResourcesClient
	Bags() BagsClient
	Files() FilesClient
	Folders() FoldersClient
	Functions() FunctionsClient
	Users() UsersClient
	Tasks() TasksClient

	// BaseURL returns the API root, {scheme}://{hostname}[:port]/hsapi.
	BaseURL() string
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a hs.Client.
//
// # Endpoint
//
// Requests go to {scheme}://{Hostname}[:{Port}]/hsapi where scheme is https
// when UseHTTPS is set. Port 0 leaves the port out of the URL.
//
// # Authentication
//
// Auth selects one of NoAuth, BasicAuth or OAuth2Auth. Basic and OAuth2
// credentials are refused over plain HTTP unless AllowInsecureAuth is set,
// which exists for local test servers only. OAuth2 tokens are requested from
// {scheme}://{Hostname}[:{Port}]/o/token/ with the password grant.
//
// # Bags
//
// Bag generation is asynchronous on the server. While waiting, the client
// polls the task status endpoint every BagPollInterval. BagMaxWait bounds the
// total wait; zero waits until the context is done.
//
// # Timeouts, retries, and sessions
//
// Per-request timeouts should be controlled via the context passed to client
// methods. RetryMax enables retries of 429 and 5xx answers with backoff
// between RetryWaitMin and RetryWaitMax. Independently of RetryMax, a
// request that fails to connect is retried once on a fresh session.
type Config struct {
	// Hostname of the server, without scheme. Defaults to DefaultHostname.
	Hostname string
	// Port: optional, 1-65535.
	Port int
	// UseHTTPS: talk https instead of http.
	UseHTTPS bool
	// Auth: authentication variant, nil means NoAuth.
	Auth Auth
	// AllowInsecureAuth: accept credentials over plain HTTP.
	AllowInsecureAuth bool

	// HTTPTimeout: optional whole-request timeout of the underlying
	// http.Client. Bags stream for a long time, so prefer contexts.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for 429 and 5xx answers.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// HTTPClient: optional base client, e.g. one trusting a test CA.
	HTTPClient *http.Client

	// BagPollInterval: delay between task status polls, defaults to 3s.
	BagPollInterval time.Duration
	// BagMaxWait: upper bound on waiting for a bag, zero for none.
	BagMaxWait time.Duration

	// Fs: filesystem used for downloads, defaults to the OS filesystem.
	Fs afero.Fs

	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	err := validation.ValidateStruct(c,
		validation.Field(&c.Hostname, validation.Required),
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.RetryMax, validation.Min(0)),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.BagPollInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.BagMaxWait, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return &ArgumentError{Message: "client configuration", Err: err}
	}

	return nil
}
