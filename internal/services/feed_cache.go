package services

import (
	"sync"
	"time"

	"github.com/photofolio/server/internal/models"
)

// FeedCache is a thread-safe holder for the last built feed.
// An expired feed stays readable through Stale until it is replaced.
type FeedCache struct {
	mu        sync.RWMutex
	feed      *models.Feed
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewFeedCache creates a feed cache with the specified TTL
func NewFeedCache(ttl time.Duration) *FeedCache {
	return &FeedCache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached feed if it exists and hasn't expired
func (c *FeedCache) Get() (*models.Feed, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.feed == nil || !c.now().Before(c.expiresAt) {
		return nil, false
	}
	return c.feed, true
}

// Stale returns the cached feed regardless of age
func (c *FeedCache) Stale() *models.Feed {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.feed
}

// Set stores a feed for one TTL
func (c *FeedCache) Set(feed *models.Feed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.feed = feed
	c.expiresAt = c.now().Add(c.ttl)
}
