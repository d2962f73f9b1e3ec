package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 15*time.Second, cfg.Browser.WaitTimeout)
	assert.Equal(t, "frontend", cfg.Wanted.Subcategory)
	assert.Equal(t, 8, cfg.Saramin.Pages)
	assert.Equal(t, "memory", cfg.Enrich.Cache)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
browser:
  wait_timeout: 3s
wanted:
  subcategory: backend
  pages: 0
  detail_workers: 4
  exclude_keywords: ["ios"]
  output: be.csv
enrich:
  workers: 2
  delay: {min: 0s, max: 500ms}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Browser.WaitTimeout)
	assert.Equal(t, 30*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, "backend", cfg.Wanted.Subcategory)
	assert.Equal(t, 0, cfg.Wanted.Pages)
	assert.Equal(t, 4, cfg.Wanted.DetailWorkers)
	assert.Equal(t, []string{"ios"}, cfg.Wanted.ExcludeKeywords)
	assert.Equal(t, "be.csv", cfg.Wanted.Output)
	assert.Equal(t, 500*time.Millisecond, cfg.Enrich.Delay.Max)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("CRAWLER_HEADLESS", "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, int64(42), cfg.TelegramChatID)
	assert.False(t, cfg.Browser.Headless)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"delay max below min", "pool:\n  delay: {min: 2s, max: 1s}\n"},
		{"unknown subcategory", "wanted:\n  subcategory: cobol\n"},
		{"zero workers", "enrich:\n  workers: 0\n"},
		{"years range inverted", "wanted:\n  min_years: 5\n  max_years: 2\n"},
		{"redis without addr", "enrich:\n  cache: redis\n"},
		{"zero wait timeout", "browser:\n  wait_timeout: 0s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoad_BadChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "abc")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID")
}
