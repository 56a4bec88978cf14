package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "config.json"))
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("uses defaults without file or env", func(t *testing.T) {
		isolate(t)

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, ":5000", cfg.ServerAddress)
		assert.Equal(t, "photofolio.db", cfg.DatabasePath)
		assert.Equal(t, "2024-01-01", cfg.ContentStore.APIVersion)
		assert.Equal(t, 60*time.Second, cfg.RevalidateInterval())
		assert.Equal(t, 2000, cfg.Gallery.ImageWidth)
		assert.Equal(t, "America/Chicago", cfg.Clock.Timezone)
		assert.Equal(t, time.Hour, cfg.MaintenanceInterval())
		assert.Equal(t, 90*24*time.Hour, cfg.ExifRetention())
		assert.False(t, cfg.UsePostgres())
	})

	t.Run("reads json config file", func(t *testing.T) {
		dir := isolate(t)
		body := `{"serverAddress": ":8080", "contentStore": {"projectId": "abc123", "dataset": "staging"}, "gallery": {"revalidateSeconds": 5}}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0644))

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.ServerAddress)
		assert.Equal(t, "abc123", cfg.ContentStore.ProjectID)
		assert.Equal(t, "staging", cfg.ContentStore.Dataset)
		assert.Equal(t, 5*time.Second, cfg.RevalidateInterval())
	})

	t.Run("environment overrides file", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"serverAddress": ":8080"}`), 0644))
		t.Setenv("SERVER_ADDRESS", ":9090")
		t.Setenv("NEXT_PUBLIC_SANITY_PROJECT_ID", "fromnext")
		t.Setenv("SANITY_USE_CDN", "true")
		t.Setenv("DATABASE_URL", "postgres://localhost/photofolio")
		t.Setenv("CLOCK_TIMEZONE", "Europe/Lisbon")
		t.Setenv("MAINTENANCE_INTERVAL_SECONDS", "0")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.ServerAddress)
		assert.Equal(t, "fromnext", cfg.ContentStore.ProjectID)
		assert.True(t, cfg.ContentStore.UseCDN)
		assert.True(t, cfg.UsePostgres())
		assert.Equal(t, "Europe/Lisbon", cfg.Clock.Timezone)
		assert.Equal(t, time.Duration(0), cfg.MaintenanceInterval())
	})

	t.Run("loads dotenv file", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SANITY_DATASET=fromdotenv\n"), 0644))
		t.Cleanup(func() { os.Unsetenv("SANITY_DATASET") })

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "fromdotenv", cfg.ContentStore.Dataset)
	})

	t.Run("clamps nonsensical gallery values", func(t *testing.T) {
		isolate(t)
		t.Setenv("RESOLVE_CONCURRENCY", "0")
		t.Setenv("REVALIDATE_SECONDS", "-3")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Gallery.ResolveConcurrency)
		assert.Equal(t, time.Duration(0), cfg.RevalidateInterval())
	})

	t.Run("rejects malformed config file", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"serverAddress":`), 0644))

		_, err := Load()

		assert.Error(t, err)
	})
}
