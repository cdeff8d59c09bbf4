package hs

import (
	"net/url"
	"strconv"
	"time"
)

// DateLayout is the day format the list filters expect.
const DateLayout = "2006-01-02"

// Spatial coverage kinds for resource list filtering.
const (
	CoverageTypePoint = "point"
	CoverageTypeBox   = "box"
)

// ResourceListParams holds the filters of the resource listing.
//
// Dates carry no time information: to include resources created on a given
// day, set ToDate to the following day.
type ResourceListParams struct {
	Creator        string
	Author         string
	Owner          string
	User           string
	Group          string
	FromDate       *time.Time
	ToDate         *time.Time
	Types          []string
	Subject        string
	FullTextSearch string
	EditPermission bool
	Published      bool
	// IncludeObsolete also lists resources replaced by a newer version.
	IncludeObsolete bool
	Coverage        *SpatialCoverage
	// Start and Count page through the server's result set directly; zero
	// leaves paging to the server.
	Start int
	Count int
}

// SpatialCoverage restricts results to a point or a bounding box. A point
// uses North as latitude and East as longitude.
type SpatialCoverage struct {
	Type  string
	North float64
	South float64
	East  float64
	West  float64
}

// NewResourceListParams creates empty list filters.
func NewResourceListParams() *ResourceListParams {
	return &ResourceListParams{}
}

// WithCreator filters by the creator's user name.
func (p *ResourceListParams) WithCreator(creator string) *ResourceListParams {
	p.Creator = creator

	return p
}

// WithOwner filters by the owner's user name.
func (p *ResourceListParams) WithOwner(owner string) *ResourceListParams {
	p.Owner = owner

	return p
}

// WithUser filters by a user with any access to the resource.
func (p *ResourceListParams) WithUser(user string) *ResourceListParams {
	p.User = user

	return p
}

// WithGroup filters by group name.
func (p *ResourceListParams) WithGroup(group string) *ResourceListParams {
	p.Group = group

	return p
}

// WithDateRange filters by creation date. Either bound may be zero.
func (p *ResourceListParams) WithDateRange(from, to time.Time) *ResourceListParams {
	if !from.IsZero() {
		p.FromDate = &from
	}

	if !to.IsZero() {
		p.ToDate = &to
	}

	return p
}

// WithTypes filters by resource type.
func (p *ResourceListParams) WithTypes(types ...string) *ResourceListParams {
	p.Types = append(p.Types, types...)

	return p
}

// WithSubject filters by keyword.
func (p *ResourceListParams) WithSubject(subject string) *ResourceListParams {
	p.Subject = subject

	return p
}

// WithFullTextSearch filters by a free text query.
func (p *ResourceListParams) WithFullTextSearch(query string) *ResourceListParams {
	p.FullTextSearch = query

	return p
}

// WithCoverage filters by spatial coverage.
func (p *ResourceListParams) WithCoverage(coverage SpatialCoverage) *ResourceListParams {
	p.Coverage = &coverage

	return p
}

// ToValues converts the filters to URL query values.
func (p *ResourceListParams) ToValues() url.Values {
	values := url.Values{}
	if p == nil {
		return values
	}

	setIfNotEmpty(values, "creator", p.Creator)
	setIfNotEmpty(values, "author", p.Author)
	setIfNotEmpty(values, "owner", p.Owner)
	setIfNotEmpty(values, "user", p.User)
	setIfNotEmpty(values, "group", p.Group)
	setIfNotEmpty(values, "subject", p.Subject)
	setIfNotEmpty(values, "full_text_search", p.FullTextSearch)

	if p.FromDate != nil {
		values.Set("from_date", p.FromDate.Format(DateLayout))
	}

	if p.ToDate != nil {
		values.Set("to_date", p.ToDate.Format(DateLayout))
	}

	for _, t := range p.Types {
		values.Add("type", t)
	}

	if p.EditPermission {
		values.Set("edit_permission", "true")
	}

	if p.Published {
		values.Set("published", "true")
	}

	if p.IncludeObsolete {
		values.Set("include_obsolete", "true")
	}

	if p.Start > 0 {
		values.Set("start", strconv.Itoa(p.Start))
	}

	if p.Count > 0 {
		values.Set("count", strconv.Itoa(p.Count))
	}

	if p.Coverage != nil {
		values.Set("coverage_type", p.Coverage.Type)
		values.Set("north", formatCoordinate(p.Coverage.North))
		values.Set("east", formatCoordinate(p.Coverage.East))

		if p.Coverage.Type == CoverageTypeBox {
			values.Set("south", formatCoordinate(p.Coverage.South))
			values.Set("west", formatCoordinate(p.Coverage.West))
		}
	}

	return values
}

func setIfNotEmpty(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
