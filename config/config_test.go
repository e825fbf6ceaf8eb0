package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.Nil(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseDefaultsWithoutFile(t *testing.T) {
	c, err := Parse(filepath.Join(t.TempDir(), "missing.json"))
	require.Nil(t, err)
	assert.Equal(t, "3000", c.AppPort)
	assert.Equal(t, filepath.Join("data", "posts.db"), c.DataPath)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.False(t, c.AllowRawHTML)
	assert.Equal(t, "", c.RedisAddr())
}

func TestParseGroupedFile(t *testing.T) {
	path := writeConfig(t, `{
		"app": {"AppPort": "9000", "SiteTitle": "Notes", "AllowRawHTML": true, "AllowedOrigins": ["https://a.example"]},
		"store": {"DataPath": "/var/lib/blog/posts.db"},
		"redis": {"RedisHost": "cache", "RedisPort": 6380, "CacheTTLSeconds": 60},
		"log": {"Level": "debug", "MaxBackups": 9}
	}`)
	c, err := Parse(path)
	require.Nil(t, err)
	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "Notes", c.SiteTitle)
	assert.True(t, c.AllowRawHTML)
	assert.Equal(t, []string{"https://a.example"}, c.AllowedOrigins)
	assert.Equal(t, "/var/lib/blog/posts.db", c.DataPath)
	assert.Equal(t, "cache:6380", c.RedisAddr())
	assert.Equal(t, 60, c.CacheTTLSeconds)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 9, c.LogMaxBackups)
	assert.Equal(t, 100, c.LogMaxSizeMB)
}

func TestParseFlatFile(t *testing.T) {
	c, err := Parse(writeConfig(t, `{"AppPort": "8081", "DataPath": "x.db"}`))
	require.Nil(t, err)
	assert.Equal(t, "8081", c.AppPort)
	assert.Equal(t, "x.db", c.DataPath)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("APP_PORT", "7000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_HOST", "localhost")
	c, err := Parse(writeConfig(t, `{"app": {"AppPort": "9000"}}`))
	require.Nil(t, err)
	assert.Equal(t, "7000", c.AppPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, "localhost:6379", c.RedisAddr())
}

func TestParseInvalidJSONStillDefaults(t *testing.T) {
	c, err := Parse(writeConfig(t, `{not json`))
	assert.NotNil(t, err)
	assert.Equal(t, "3000", c.AppPort)
}
