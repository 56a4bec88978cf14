package models

import "time"

// PhotoListResponse is returned when listing the feed
type PhotoListResponse struct {
	Stats  Stats    `json:"stats"`
	Photos []*Photo `json:"photos"`
}

// ClockResponse is the header clock reading
type ClockResponse struct {
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

// HealthResponse is returned by health check
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
}

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}
