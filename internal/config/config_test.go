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

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, CandidatesMemory, cfg.CandidateBackend)
	assert.Equal(t, LLMNone, cfg.LLMProvider)
	assert.Equal(t, 10, cfg.MaxHistory)
	assert.Equal(t, time.Hour, cfg.SessionTimeout)
	assert.Equal(t, 10*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, 30*time.Minute, cfg.ReminderWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ASSISTANT_PORT", "9090")
	t.Setenv("ASSISTANT_STORAGE_BACKEND", "Redis")
	t.Setenv("ASSISTANT_REDIS_DB", "3")
	t.Setenv("ASSISTANT_MAX_HISTORY", "4")
	t.Setenv("ASSISTANT_SESSION_TIMEOUT", "15m")
	t.Setenv("ASSISTANT_LLM_PROVIDER", "openai")
	t.Setenv("ASSISTANT_OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageRedis, cfg.StorageBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 4, cfg.MaxHistory)
	assert.Equal(t, 15*time.Minute, cfg.SessionTimeout)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("ASSISTANT_MAX_HISTORY", "ten")
	t.Setenv("ASSISTANT_SESSION_TIMEOUT", "forever")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ASSISTANT_MAX_HISTORY")
	assert.Contains(t, err.Error(), "ASSISTANT_SESSION_TIMEOUT")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Mode:             ModeLocal,
			StorageBackend:   StorageMemory,
			CandidateBackend: CandidatesMemory,
			LLMProvider:      LLMNone,
			MaxHistory:       10,
			SessionTimeout:   time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "gcp without project", mutate: func(c *Config) { c.Mode = ModeGCP }, wantErr: "GCP_PROJECT"},
		{name: "firestore without project", mutate: func(c *Config) { c.StorageBackend = StorageFirestore }, wantErr: "firestore"},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageBackend = "mongo" }, wantErr: "mongo"},
		{name: "supabase without key", mutate: func(c *Config) { c.CandidateBackend = CandidatesSupabase }, wantErr: "SUPABASE_KEY"},
		{name: "openai without key", mutate: func(c *Config) { c.LLMProvider = LLMOpenAI }, wantErr: "OPENAI_API_KEY"},
		{name: "unknown llm", mutate: func(c *Config) { c.LLMProvider = "gpt5" }, wantErr: "gpt5"},
		{name: "zero timeout", mutate: func(c *Config) { c.SessionTimeout = 0 }, wantErr: "SESSION_TIMEOUT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
