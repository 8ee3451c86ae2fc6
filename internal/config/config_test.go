package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FAL_KEY", "")
	t.Setenv("FAL_API_KEY", "")
	t.Setenv("DB_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "fal-ai/flux-pro/kontext", cfg.Fal.Model)
	assert.Equal(t, time.Second, cfg.Fal.PollInterval)
	assert.Empty(t, cfg.Fal.ApiKey)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFalKeyFallback(t *testing.T) {
	t.Run("legacy name is used when FAL_KEY is absent", func(t *testing.T) {
		t.Setenv("FAL_KEY", "")
		t.Setenv("FAL_API_KEY", "legacy")
		assert.Equal(t, "legacy", Load().Fal.ApiKey)
	})

	t.Run("FAL_KEY wins", func(t *testing.T) {
		t.Setenv("FAL_KEY", "primary")
		t.Setenv("FAL_API_KEY", "legacy")
		assert.Equal(t, "primary", Load().Fal.ApiKey)
	})
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "750ms")
	assert.Equal(t, 750*time.Millisecond, getEnvAsDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "3")
	assert.Equal(t, 3*time.Second, getEnvAsDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_DURATION", time.Second))
}
