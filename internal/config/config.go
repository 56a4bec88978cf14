package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string       `mapstructure:"serverAddress"`
	DatabasePath  string       `mapstructure:"databasePath"`
	DatabaseURL   string       `mapstructure:"databaseUrl"`
	ContentStore  ContentStore `mapstructure:"contentStore"`
	Gallery       Gallery      `mapstructure:"gallery"`
	Clock         Clock        `mapstructure:"clock"`
	Maintenance   Maintenance  `mapstructure:"maintenance"`
}

// ContentStore configures the headless CMS the photos come from
type ContentStore struct {
	ProjectID      string `mapstructure:"projectId"`
	Dataset        string `mapstructure:"dataset"`
	APIVersion     string `mapstructure:"apiVersion"`
	Token          string `mapstructure:"token"`
	UseCDN         bool   `mapstructure:"useCdn"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

// Gallery configures feed building and page rendering
type Gallery struct {
	SiteTitle          string `mapstructure:"siteTitle"`
	SiteURL            string `mapstructure:"siteUrl"`
	RevalidateSeconds  int    `mapstructure:"revalidateSeconds"`
	ImageWidth         int    `mapstructure:"imageWidth"`
	ResolveConcurrency int    `mapstructure:"resolveConcurrency"`
	FetchTimeoutSecs   int    `mapstructure:"fetchTimeoutSeconds"`
	TemplatePath       string `mapstructure:"templatePath"`
}

// Clock configures the header clock
type Clock struct {
	Timezone string `mapstructure:"timezone"`
}

// Maintenance configures the background feed refresh and EXIF cache pruning
type Maintenance struct {
	IntervalSeconds   int `mapstructure:"intervalSeconds"`
	ExifRetentionDays int `mapstructure:"exifRetentionDays"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// MaintenanceInterval is the pause between maintenance passes; zero disables them
func (c *Config) MaintenanceInterval() time.Duration {
	return time.Duration(c.Maintenance.IntervalSeconds) * time.Second
}

// ExifRetention is how long recovered EXIF stays cached
func (c *Config) ExifRetention() time.Duration {
	return time.Duration(c.Maintenance.ExifRetentionDays) * 24 * time.Hour
}

// RevalidateInterval is how long a built feed is served from cache
func (c *Config) RevalidateInterval() time.Duration {
	return time.Duration(c.Gallery.RevalidateSeconds) * time.Second
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5000",
		DatabasePath:  "photofolio.db",
		ContentStore: ContentStore{
			Dataset:        "production",
			APIVersion:     "2024-01-01",
			UseCDN:         false,
			TimeoutSeconds: 15,
		},
		Gallery: Gallery{
			SiteTitle:          "Photos",
			RevalidateSeconds:  60,
			ImageWidth:         2000,
			ResolveConcurrency: 8,
			FetchTimeoutSecs:   20,
			TemplatePath:       "./templates",
		},
		Clock: Clock{
			Timezone: "America/Chicago",
		},
		Maintenance: Maintenance{
			IntervalSeconds:   3600,
			ExifRetentionDays: 90,
		},
	}
}

// env bindings keep the variable names used by existing deployments
var envBindings = map[string][]string{
	"serverAddress":                 {"SERVER_ADDRESS"},
	"databasePath":                  {"DATABASE_PATH"},
	"databaseUrl":                   {"DATABASE_URL"},
	"contentStore.projectId":        {"SANITY_PROJECT_ID", "NEXT_PUBLIC_SANITY_PROJECT_ID"},
	"contentStore.dataset":          {"SANITY_DATASET", "NEXT_PUBLIC_SANITY_DATASET"},
	"contentStore.apiVersion":       {"SANITY_API_VERSION"},
	"contentStore.token":            {"SANITY_API_TOKEN"},
	"contentStore.useCdn":           {"SANITY_USE_CDN"},
	"gallery.siteTitle":             {"SITE_TITLE"},
	"gallery.siteUrl":               {"SITE_URL"},
	"gallery.revalidateSeconds":     {"REVALIDATE_SECONDS"},
	"gallery.imageWidth":            {"IMAGE_WIDTH"},
	"gallery.resolveConcurrency":    {"RESOLVE_CONCURRENCY"},
	"gallery.templatePath":          {"TEMPLATE_PATH"},
	"clock.timezone":                {"CLOCK_TIMEZONE"},
	"maintenance.intervalSeconds":   {"MAINTENANCE_INTERVAL_SECONDS"},
	"maintenance.exifRetentionDays": {"EXIF_CACHE_RETENTION_DAYS"},
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, defaultConfig())

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	for key, names := range envBindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if cfg.Gallery.RevalidateSeconds < 0 {
		cfg.Gallery.RevalidateSeconds = 0
	}
	if cfg.Gallery.ResolveConcurrency <= 0 {
		cfg.Gallery.ResolveConcurrency = 1
	}
	if cfg.Gallery.ImageWidth <= 0 {
		cfg.Gallery.ImageWidth = defaultConfig().Gallery.ImageWidth
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("serverAddress", d.ServerAddress)
	v.SetDefault("databasePath", d.DatabasePath)
	v.SetDefault("databaseUrl", d.DatabaseURL)

	v.SetDefault("contentStore.projectId", d.ContentStore.ProjectID)
	v.SetDefault("contentStore.dataset", d.ContentStore.Dataset)
	v.SetDefault("contentStore.apiVersion", d.ContentStore.APIVersion)
	v.SetDefault("contentStore.token", d.ContentStore.Token)
	v.SetDefault("contentStore.useCdn", d.ContentStore.UseCDN)
	v.SetDefault("contentStore.timeoutSeconds", d.ContentStore.TimeoutSeconds)

	v.SetDefault("gallery.siteTitle", d.Gallery.SiteTitle)
	v.SetDefault("gallery.siteUrl", d.Gallery.SiteURL)
	v.SetDefault("gallery.revalidateSeconds", d.Gallery.RevalidateSeconds)
	v.SetDefault("gallery.imageWidth", d.Gallery.ImageWidth)
	v.SetDefault("gallery.resolveConcurrency", d.Gallery.ResolveConcurrency)
	v.SetDefault("gallery.fetchTimeoutSeconds", d.Gallery.FetchTimeoutSecs)
	v.SetDefault("gallery.templatePath", d.Gallery.TemplatePath)

	v.SetDefault("clock.timezone", d.Clock.Timezone)

	v.SetDefault("maintenance.intervalSeconds", d.Maintenance.IntervalSeconds)
	v.SetDefault("maintenance.exifRetentionDays", d.Maintenance.ExifRetentionDays)
}
