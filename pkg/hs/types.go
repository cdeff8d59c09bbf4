package hs

import (
	"encoding/json"
	"fmt"
)

// PagedResponse is the envelope every list endpoint answers with.
type PagedResponse[T any] struct {
	Count    int     `json:"count"    yaml:"count"`
	Next     *string `json:"next"     yaml:"next"`
	Previous *string `json:"previous" yaml:"previous"`
	Results  []T     `json:"results"  yaml:"results"`
}

// NextURL returns the link to the following page, or "" on the last page.
func (p *PagedResponse[T]) NextURL() string {
	if p == nil || p.Next == nil {
		return ""
	}

	return *p.Next
}

// DecodePagedResponse decodes a list envelope. The results and next keys
// must both be present; a null next marks the last page.
func DecodePagedResponse[T any](body []byte) (*PagedResponse[T], error) {
	var raw struct {
		Count    int             `json:"count"`
		Next     json.RawMessage `json:"next"`
		Previous json.RawMessage `json:"previous"`
		Results  json.RawMessage `json:"results"`
	}

	err := json.Unmarshal(body, &raw)
	if err != nil {
		return nil, &GenericClientError{Message: "parsing paged response", Err: err}
	}

	if raw.Results == nil {
		return nil, &GenericClientError{Message: "paged response has no results key", Err: ErrMalformedEnvelope}
	}

	if raw.Next == nil {
		return nil, &GenericClientError{Message: "paged response has no next key", Err: ErrMalformedEnvelope}
	}

	page := &PagedResponse[T]{Count: raw.Count}

	err = json.Unmarshal(raw.Results, &page.Results)
	if err != nil {
		return nil, &GenericClientError{Message: "parsing paged results", Err: err}
	}

	page.Next, err = decodeOptionalString(raw.Next)
	if err != nil {
		return nil, &GenericClientError{Message: "parsing next link", Err: err}
	}

	if raw.Previous != nil {
		page.Previous, err = decodeOptionalString(raw.Previous)
		if err != nil {
			return nil, &GenericClientError{Message: "parsing previous link", Err: err}
		}
	}

	return page, nil
}

func decodeOptionalString(raw json.RawMessage) (*string, error) {
	var s *string

	err := json.Unmarshal(raw, &s)
	if err != nil {
		return nil, fmt.Errorf("decoding link: %w", err)
	}

	if s != nil && *s == "" {
		return nil, nil
	}

	return s, nil
}

// Resource is the system metadata record of a resource.
type Resource struct {
	ResourceID         string     `json:"resource_id"                    yaml:"resource_id"`
	ResourceTitle      string     `json:"resource_title"                 yaml:"resource_title"`
	ResourceType       string     `json:"resource_type"                  yaml:"resource_type"`
	Abstract           string     `json:"abstract,omitempty"             yaml:"abstract,omitempty"`
	Authors            []string   `json:"authors,omitempty"              yaml:"authors,omitempty"`
	Creator            string     `json:"creator"                        yaml:"creator"`
	DOI                string     `json:"doi,omitempty"                  yaml:"doi,omitempty"`
	DateCreated        string     `json:"date_created"                   yaml:"date_created"`
	DateLastUpdated    string     `json:"date_last_updated"              yaml:"date_last_updated"`
	Public             bool       `json:"public"                         yaml:"public"`
	Discoverable       bool       `json:"discoverable"                   yaml:"discoverable"`
	Shareable          bool       `json:"shareable"                      yaml:"shareable"`
	Immutable          bool       `json:"immutable"                      yaml:"immutable"`
	Published          bool       `json:"published"                      yaml:"published"`
	BagURL             string     `json:"bag_url"                        yaml:"bag_url"`
	ScienceMetadataURL string     `json:"science_metadata_url"           yaml:"science_metadata_url"`
	ResourceMapURL     string     `json:"resource_map_url"               yaml:"resource_map_url"`
	ResourceURL        string     `json:"resource_url"                   yaml:"resource_url"`
	ContentTypes       []string   `json:"content_types,omitempty"        yaml:"content_types,omitempty"`
	Coverages          []Coverage `json:"coverages,omitempty"            yaml:"coverages,omitempty"`
}

// Coverage is a spatial or temporal coverage element.
type Coverage struct {
	Type  string         `json:"type"  yaml:"type"`
	Value map[string]any `json:"value" yaml:"value"`
}

// ResourceFile describes one file inside a resource.
type ResourceFile struct {
	ID           int    `json:"id,omitempty"            yaml:"id,omitempty"`
	URL          string `json:"url"                     yaml:"url"`
	FileName     string `json:"file_name"               yaml:"file_name"`
	Size         int64  `json:"size"                    yaml:"size"`
	ContentType  string `json:"content_type"            yaml:"content_type"`
	LogicalType  string `json:"logical_type,omitempty"  yaml:"logical_type,omitempty"`
	Checksum     string `json:"checksum,omitempty"      yaml:"checksum,omitempty"`
	ModifiedTime string `json:"modified_time,omitempty" yaml:"modified_time,omitempty"`
}

// FileAddResult is returned by the add-file endpoint.
type FileAddResult struct {
	ResourceID string `json:"resource_id"         yaml:"resource_id"`
	FileName   string `json:"file_name"           yaml:"file_name"`
	FilePath   string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
}

// FolderContents lists the entries of a folder inside a resource.
type FolderContents struct {
	ResourceID string   `json:"resource_id" yaml:"resource_id"`
	Path       string   `json:"path"        yaml:"path"`
	Files      []string `json:"files"       yaml:"files"`
	Folders    []string `json:"folders"     yaml:"folders"`
}

// UserInfo describes the authenticated user.
type UserInfo struct {
	ID           int    `json:"id"                     yaml:"id"`
	Username     string `json:"username"               yaml:"username"`
	Email        string `json:"email"                  yaml:"email"`
	FirstName    string `json:"first_name"             yaml:"first_name"`
	LastName     string `json:"last_name"              yaml:"last_name"`
	Title        string `json:"title,omitempty"        yaml:"title,omitempty"`
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty"`
}

// ResourceType is one entry of the resource types listing.
type ResourceType struct {
	ResourceType string `json:"resource_type" yaml:"resource_type"`
}

// ContentType is one entry of the content types listing.
type ContentType struct {
	ContentType string `json:"content_type" yaml:"content_type"`
}

// Bag readiness states reported by the bag endpoint.
const (
	BagStatusReady    = "Ready"
	BagStatusNotReady = "Not ready"
)

// BagStatus is the JSON answer of the bag endpoint while the archive is
// still being generated.
type BagStatus struct {
	BagStatus string `json:"bag_status" yaml:"bag_status"`
	TaskID    string `json:"task_id"    yaml:"task_id"`
}

// TaskStatus is the answer of the task status endpoint.
type TaskStatus struct {
	Status string `json:"status" yaml:"status"`
}

// Done reports whether the server finished the task.
func (s *TaskStatus) Done() bool {
	return s != nil && s.Status == "true"
}

// ScienceMetadata is the JSON rendition of a resource's science metadata.
type ScienceMetadata struct {
	Title           string          `json:"title"                      yaml:"title"`
	Description     string          `json:"description,omitempty"      yaml:"description,omitempty"`
	Language        string          `json:"language,omitempty"         yaml:"language,omitempty"`
	Type            string          `json:"type,omitempty"             yaml:"type,omitempty"`
	Publisher       string          `json:"publisher,omitempty"        yaml:"publisher,omitempty"`
	Rights          any             `json:"rights,omitempty"           yaml:"rights,omitempty"`
	Creators        []Party         `json:"creators,omitempty"         yaml:"creators,omitempty"`
	Contributors    []Party         `json:"contributors,omitempty"     yaml:"contributors,omitempty"`
	Coverages       []Coverage      `json:"coverages,omitempty"        yaml:"coverages,omitempty"`
	Dates           []MetadataDate  `json:"dates,omitempty"            yaml:"dates,omitempty"`
	Formats         []ValueElement  `json:"formats,omitempty"          yaml:"formats,omitempty"`
	Subjects        []ValueElement  `json:"subjects,omitempty"         yaml:"subjects,omitempty"`
	FundingAgencies []FundingAgency `json:"funding_agencies,omitempty" yaml:"funding_agencies,omitempty"`
	Identifiers     []Identifier    `json:"identifiers,omitempty"      yaml:"identifiers,omitempty"`
	Relations       []Relation      `json:"relations,omitempty"        yaml:"relations,omitempty"`
	Sources         []Source        `json:"sources,omitempty"          yaml:"sources,omitempty"`
}

// Keywords returns the subject values in order.
func (m *ScienceMetadata) Keywords() []string {
	keywords := make([]string, 0, len(m.Subjects))
	for _, s := range m.Subjects {
		keywords = append(keywords, s.Value)
	}

	return keywords
}

// Party is a creator or contributor.
type Party struct {
	Name         string `json:"name,omitempty"         yaml:"name,omitempty"`
	Description  string `json:"description,omitempty"  yaml:"description,omitempty"`
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty"`
	Email        string `json:"email,omitempty"        yaml:"email,omitempty"`
	Address      string `json:"address,omitempty"      yaml:"address,omitempty"`
	Phone        string `json:"phone,omitempty"        yaml:"phone,omitempty"`
	Homepage     string `json:"homepage,omitempty"     yaml:"homepage,omitempty"`
	Order        int    `json:"order,omitempty"        yaml:"order,omitempty"`
}

// MetadataDate is a typed date element.
type MetadataDate struct {
	Type      string `json:"type"                 yaml:"type"`
	StartDate string `json:"start_date"           yaml:"start_date"`
	EndDate   string `json:"end_date,omitempty"   yaml:"end_date,omitempty"`
}

// ValueElement is an element carrying a single value.
type ValueElement struct {
	Value string `json:"value" yaml:"value"`
}

// FundingAgency is a funding agency element.
type FundingAgency struct {
	AgencyName  string `json:"agency_name"            yaml:"agency_name"`
	AwardTitle  string `json:"award_title,omitempty"  yaml:"award_title,omitempty"`
	AwardNumber string `json:"award_number,omitempty" yaml:"award_number,omitempty"`
	AgencyURL   string `json:"agency_url,omitempty"   yaml:"agency_url,omitempty"`
}

// Identifier is a named identifier element.
type Identifier struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url"  yaml:"url"`
}

// Relation links the resource to another one.
type Relation struct {
	Type  string `json:"type"  yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

// Source names a resource this one derives from.
type Source struct {
	DerivedFrom string `json:"derived_from" yaml:"derived_from"`
}
