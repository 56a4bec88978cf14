package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/photofolio/server/internal/observability"
)

const clockLayout = "3:04:05 PM"

// ClockService renders the header clock
type ClockService struct {
	loc *time.Location
	now func() time.Time
}

// NewClockService creates a clock for the named IANA zone
func NewClockService(timezone string) (*ClockService, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load clock timezone %q: %w", timezone, err)
	}
	return &ClockService{loc: loc, now: time.Now}, nil
}

// Timezone returns the zone name
func (c *ClockService) Timezone() string {
	return c.loc.String()
}

// Now returns the current time formatted like "4:05:09 PM"
func (c *ClockService) Now() string {
	return c.Format(c.now())
}

// Format renders t in the clock's zone
func (c *ClockService) Format(t time.Time) string {
	return strings.ToUpper(t.In(c.loc).Format(clockLayout))
}

// Run pushes the time to clock subscribers once a second until ctx is done
func (c *ClockService) Run(ctx context.Context, hub *WebSocketHub) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	observability.WithField("timezone", c.Timezone()).Debug("Clock broadcaster started")

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if hub.GetTopicSubscriberCount(TopicClock) == 0 {
				continue
			}
			hub.BroadcastToTopic(TopicClock, WSMessage{
				Type:    WSTypeClock,
				Payload: ClockPayload{Time: c.Format(t), Timezone: c.Timezone()},
			})
		}
	}
}
