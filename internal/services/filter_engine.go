package services

import (
	"sort"
	"strings"
	"time"

	"github.com/photofolio/server/internal/models"
)

// SearchState is the search modal's state: a query narrowing the
// sidebar and an optional active filter selecting photos.
type SearchState struct {
	Query  string
	Active *models.ActiveFilter
}

// SetQuery replaces the sidebar query
func (s *SearchState) SetQuery(q string) {
	s.Query = q
}

// Select makes a category the active filter. Hover previews and
// clicks both land here.
func (s *SearchState) Select(t models.FilterType, label string) {
	s.Active = &models.ActiveFilter{Type: t, Label: label}
}

// Clear drops the active filter
func (s *SearchState) Clear() {
	s.Active = nil
}

// Evaluate derives what the modal shows for the current state
func (s *SearchState) Evaluate(stats models.Stats, photos []*models.Photo) models.SearchResult {
	matched := MatchPhotos(s.Active, photos)

	var active *models.ActiveFilter
	if s.Active != nil {
		a := *s.Active
		active = &a
	}

	return models.SearchResult{
		Query:     s.Query,
		Sidebar:   FilterStats(stats, s.Query),
		Active:    active,
		Photos:    matched,
		Count:     len(matched),
		DateRange: DateRangeLabel(matched),
	}
}

// FilterStats keeps the categories whose label contains the query,
// ignoring case. The query is not trimmed. The total count is untouched.
func FilterStats(stats models.Stats, query string) models.Stats {
	q := strings.ToLower(query)
	return models.Stats{
		TotalCount: stats.TotalCount,
		Tags:       filterLabels(stats.Tags, q),
		Cameras:    filterLabels(stats.Cameras, q),
		Locations:  filterLabels(stats.Locations, q),
	}
}

func filterLabels(stats []models.AggregateStat, q string) []models.AggregateStat {
	out := make([]models.AggregateStat, 0, len(stats))
	for _, s := range stats {
		if q == "" || strings.Contains(strings.ToLower(s.Label), q) {
			out = append(out, s)
		}
	}
	return out
}

// MatchPhotos returns the photos selected by the filter, in feed order.
// With no filter nothing matches.
func MatchPhotos(filter *models.ActiveFilter, photos []*models.Photo) []*models.Photo {
	out := []*models.Photo{}
	if filter == nil {
		return out
	}

	for _, p := range photos {
		if matches(filter, p) {
			out = append(out, p)
		}
	}
	return out
}

func matches(filter *models.ActiveFilter, p *models.Photo) bool {
	switch filter.Type {
	case models.FilterTag:
		return p.HasTag(filter.Label)
	case models.FilterCamera:
		return models.SameLabel(p.Device, filter.Label)
	case models.FilterLocation:
		return models.SameLabel(p.Location, filter.Label)
	default:
		return false
	}
}

// DateRangeLabel summarizes the capture dates of photos: "" with none,
// the single date with one, else "<newest> - <oldest>".
func DateRangeLabel(photos []*models.Photo) string {
	dates := make([]time.Time, 0, len(photos))
	for _, p := range photos {
		if t, ok := ParseRawDate(p.RawDate); ok {
			dates = append(dates, t)
		}
	}

	switch len(dates) {
	case 0:
		return ""
	case 1:
		return FormatRangeDate(dates[0])
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return FormatRangeDate(dates[0]) + " - " + FormatRangeDate(dates[len(dates)-1])
}
