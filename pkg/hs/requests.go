package hs

import (
	"io"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ResourceCreateRequest describes a new resource.
type ResourceCreateRequest struct {
	ResourceType  string            `json:"resource_type"            yaml:"resource_type"`
	Title         string            `json:"title"                    yaml:"title"`
	Abstract      string            `json:"abstract,omitempty"       yaml:"abstract,omitempty"`
	Keywords      []string          `json:"keywords,omitempty"       yaml:"keywords,omitempty"`
	EditUsers     []string          `json:"edit_users,omitempty"     yaml:"edit_users,omitempty"`
	ViewUsers     []string          `json:"view_users,omitempty"     yaml:"view_users,omitempty"`
	EditGroups    []string          `json:"edit_groups,omitempty"    yaml:"edit_groups,omitempty"`
	ViewGroups    []string          `json:"view_groups,omitempty"    yaml:"view_groups,omitempty"`
	Metadata      []map[string]any  `json:"metadata,omitempty"       yaml:"metadata,omitempty"`
	ExtraMetadata map[string]string `json:"extra_metadata,omitempty" yaml:"extra_metadata,omitempty"`
	File          *FileUpload       `json:"-"                        yaml:"-"`
}

// Validate checks the fields that must be present before calling the server.
func (r *ResourceCreateRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.ResourceType, validation.Required),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.File),
	)
	if err != nil {
		return &ArgumentError{Message: "resource create request", Err: err}
	}

	return nil
}

// FileUpload is a file to send to the server, either from a local path or
// from a reader. Filename is mandatory for readers and defaults to the base
// name of Path otherwise. Folder places the file in a folder of the resource.
type FileUpload struct {
	Path     string
	Reader   io.Reader
	Filename string
	Folder   string
	// Progress, if set, is called as the request body is sent with the
	// bytes sent so far and the size of the whole multipart body.
	Progress func(sent, total int64)
}

// Validate implements validation.Validatable.
func (u *FileUpload) Validate() error {
	if u == nil {
		return nil
	}

	return validation.ValidateStruct(u,
		validation.Field(&u.Path, validation.When(u.Reader == nil, validation.Required.Error("path or reader is required"))),
		validation.Field(&u.Filename, validation.When(u.Path == "" && u.Reader != nil, validation.Required.Error("filename must be specified when uploading from a reader"))),
	)
}

// ResourceFlag is a sharing flag understood by the flag endpoint.
type ResourceFlag string

// Flags accepted by SetFlag.
const (
	FlagMakePublic          ResourceFlag = "make_public"
	FlagMakePrivate         ResourceFlag = "make_private"
	FlagMakeDiscoverable    ResourceFlag = "make_discoverable"
	FlagMakeNotDiscoverable ResourceFlag = "make_not_discoverable"
	FlagMakeShareable       ResourceFlag = "make_shareable"
	FlagMakeNotShareable    ResourceFlag = "make_not_shareable"
)

// ResourceFlags lists every known flag.
var ResourceFlags = []ResourceFlag{
	FlagMakePublic,
	FlagMakePrivate,
	FlagMakeDiscoverable,
	FlagMakeNotDiscoverable,
	FlagMakeShareable,
	FlagMakeNotShareable,
}

// Valid reports whether f is a known flag.
func (f ResourceFlag) Valid() bool {
	return slices.Contains(ResourceFlags, f)
}

// AggregationType is a logical file type that set-file-type can apply.
type AggregationType string

// Aggregation types understood by the server.
const (
	AggregationNetCDF        AggregationType = "NetCDF"
	AggregationGeoRaster     AggregationType = "GeoRaster"
	AggregationGeoFeature    AggregationType = "GeoFeature"
	AggregationRefTimeseries AggregationType = "RefTimeseries"
	AggregationTimeSeries    AggregationType = "TimeSeries"
	AggregationSingleFile    AggregationType = "SingleFile"
	AggregationFileSet       AggregationType = "FileSet"
)

// AggregationTypes lists every known aggregation type.
var AggregationTypes = []AggregationType{
	AggregationNetCDF,
	AggregationGeoRaster,
	AggregationGeoFeature,
	AggregationRefTimeseries,
	AggregationTimeSeries,
	AggregationSingleFile,
	AggregationFileSet,
}

// Valid reports whether t is a known aggregation type.
func (t AggregationType) Valid() bool {
	return slices.Contains(AggregationTypes, t)
}

// ZipRequest asks the server to zip a path inside a resource.
type ZipRequest struct {
	InputPath      string `json:"input_coll_path"           yaml:"input_coll_path"`
	OutputFileName string `json:"output_zip_file_name"      yaml:"output_zip_file_name"`
	RemoveOriginal bool   `json:"remove_original_after_zip" yaml:"remove_original_after_zip"`
}

// Validate implements validation.Validatable.
func (r *ZipRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.InputPath, validation.Required),
		validation.Field(&r.OutputFileName, validation.Required),
	)
}

// BagDownloadOptions controls where and how a bag is stored locally.
type BagDownloadOptions struct {
	// Destination is an existing writable directory.
	Destination string

	// Unzip extracts the bag to Destination/{pid} instead of keeping
	// Destination/{pid}.zip.
	Unzip bool

	// Wait polls until the server finishes generating the bag. Without it a
	// bag that is not ready yields BagNotReadyError.
	Wait bool
}
