package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.Equal(t, "https://backend.blotato.com/v2/media", cfg.Blotato.MediaURL)
	assert.Equal(t, 10*time.Minute, cfg.Dispatch.Timeout)
	assert.Equal(t, 1, cfg.Dispatch.Concurrency)
	assert.Empty(t, cfg.Postiz.APIKey)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("POSTIZ_BASE_URL", "https://postiz.example.com")
	t.Setenv("POSTIZ_API_KEY", "pz-key")
	t.Setenv("DISPATCH_CONCURRENCY", "4")
	t.Setenv("DISPATCH_TIMEOUT", "90s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://postiz.example.com", cfg.Postiz.BaseURL)
	assert.Equal(t, "pz-key", cfg.Postiz.APIKey)
	assert.Equal(t, 4, cfg.Dispatch.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.Dispatch.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("DISPATCH_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
