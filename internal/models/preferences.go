package models

import (
	"strings"
	"time"
)

// Theme is the page color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultTheme is used until a visitor picks one
const DefaultTheme = ThemeDark

// ParseTheme validates a theme string
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	default:
		return "", ErrInvalidTheme
	}
}

// Toggled returns the opposite theme
func (t Theme) Toggled() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Preferences is a visitor's persisted display preferences
type Preferences struct {
	VisitorID string    `json:"visitorId"`
	Theme     Theme     `json:"theme"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPreferences creates preferences with defaults
func NewPreferences(visitorID string) *Preferences {
	now := time.Now().UTC()
	return &Preferences{
		VisitorID: visitorID,
		Theme:     DefaultTheme,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ThemeRequest is the request body for setting a theme
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// ThemeResponse reports the visitor's current theme
type ThemeResponse struct {
	Theme Theme `json:"theme"`
}
