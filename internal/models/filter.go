package models

import "strings"

// AggregateStat is a label and how many photos carry it
type AggregateStat struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Stats are the aggregate counts shown in the search sidebar
type Stats struct {
	TotalCount int             `json:"totalCount"`
	Tags       []AggregateStat `json:"tags"`
	Cameras    []AggregateStat `json:"cameras"`
	Locations  []AggregateStat `json:"locations"`
}

// FilterType is the category an active filter selects on
type FilterType string

const (
	FilterTag      FilterType = "tag"
	FilterCamera   FilterType = "camera"
	FilterLocation FilterType = "location"
)

// ParseFilterType validates a filter type string
func ParseFilterType(s string) (FilterType, error) {
	switch FilterType(strings.ToLower(strings.TrimSpace(s))) {
	case FilterTag:
		return FilterTag, nil
	case FilterCamera:
		return FilterCamera, nil
	case FilterLocation:
		return FilterLocation, nil
	default:
		return "", ErrInvalidFilterType
	}
}

// ActiveFilter is the category currently driving the search results
type ActiveFilter struct {
	Type  FilterType `json:"type"`
	Label string     `json:"label"`
}

// SearchResult is what the search modal renders
type SearchResult struct {
	Query     string        `json:"query"`
	Sidebar   Stats         `json:"sidebar"`
	Active    *ActiveFilter `json:"active,omitempty"`
	Photos    []*Photo      `json:"photos"`
	Count     int           `json:"count"`
	DateRange string        `json:"dateRange,omitempty"`
}
