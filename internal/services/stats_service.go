package services

import (
	"sort"
	"strings"

	"github.com/photofolio/server/internal/models"
)

// StatsService computes the sidebar aggregate counts
type StatsService struct{}

// NewStatsService creates a new StatsService
func NewStatsService() *StatsService {
	return &StatsService{}
}

// counter tallies uppercase labels, remembering first-seen order for ties
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	label = strings.ToUpper(strings.TrimSpace(label))
	if label == "" {
		return
	}
	if _, seen := c.counts[label]; !seen {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// sorted returns count-descending stats; equal counts keep first-seen order
func (c *counter) sorted() []models.AggregateStat {
	stats := make([]models.AggregateStat, 0, len(c.order))
	for _, label := range c.order {
		stats = append(stats, models.AggregateStat{Label: label, Count: c.counts[label]})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})
	return stats
}

// Aggregate counts tags, cameras and locations across photos
func (s *StatsService) Aggregate(photos []*models.Photo) models.Stats {
	tags, cameras, locations := newCounter(), newCounter(), newCounter()

	for _, p := range photos {
		for _, t := range p.Tags {
			tags.add(t)
		}
		if p.HasKnownDevice() {
			cameras.add(p.Device)
		}
		locations.add(p.Location)
	}

	return models.Stats{
		TotalCount: len(photos),
		Tags:       tags.sorted(),
		Cameras:    cameras.sorted(),
		Locations:  locations.sorted(),
	}
}
