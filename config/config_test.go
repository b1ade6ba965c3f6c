package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_MODEL", "")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("AI_BASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ServiceTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.AI.BaseURL)
	assert.Equal(t, "openai/gpt-3.5-turbo", cfg.AI.Model)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.RoomCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLoad_Ollama(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("AI_PROVIDER", "Ollama")
	t.Setenv("AI_MODEL", "")
	t.Setenv("AI_BASE_URL", "")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434/")
	t.Setenv("OLLAMA_MODEL", "llama3")
	t.Setenv("AI_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.AI.Provider)
	assert.Equal(t, "http://ollama:11434/v1", cfg.AI.BaseURL)
	assert.Equal(t, "llama3", cfg.AI.Model)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE", "MEMORY")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("AI_MODEL", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("ROOM_CACHE_TTL", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "memory", cfg.Storage)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "g-key", cfg.AI.APIKey)
	assert.Equal(t, "gemini-1.5-flash", cfg.AI.Model)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, time.Minute, cfg.RoomCacheTTL)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("production", "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = NewLogger("development", "bogus")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(0))
}
