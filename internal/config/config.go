package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

// Storage backends for sessions and transcripts.
const (
	StorageMemory    = "memory"
	StorageFirestore = "firestore"
	StorageRedis     = "redis"
)

// Candidate directory backends.
const (
	CandidatesMemory   = "memory"
	CandidatesSupabase = "supabase"
)

// LLM providers used as the free-text fallback.
const (
	LLMNone   = "none"
	LLMMock   = "mock"
	LLMVertex = "vertex"
	LLMOpenAI = "openai"
)

const envPrefix = "ASSISTANT_"

type Config struct {
	Mode Mode

	Port      string
	LogLevel  string
	LogPretty bool

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory", "firestore" or "redis"
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	CandidateBackend string // "memory" or "supabase"
	SupabaseURL      string
	SupabaseKey      string

	LLMProvider  string
	OpenAIAPIKey string

	RolesFile       string
	MaxHistory      int
	SessionTimeout  time.Duration
	CleanupInterval time.Duration
	ReminderWindow  time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return n, nil
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return d, nil
}

// Load reads an optional .env file, then all env vars, and builds the config.
func Load() (*Config, error) {
	// A missing .env is fine; real env vars always win.
	_ = godotenv.Load()

	var mode Mode
	switch getEnv("MODE", "local") {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	defaultLLM := LLMNone
	if mode == ModeGCP {
		defaultLLM = LLMVertex
	}

	cfg := &Config{
		Mode: mode,

		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getBoolEnv("LOG_PRETTY", mode == ModeLocal),

		GCPProjectID: getEnv("GCP_PROJECT", ""),
		GCPLocation:  getEnv("GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("MODEL_NAME", ""),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory)),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),

		CandidateBackend: strings.ToLower(getEnv("CANDIDATE_BACKEND", CandidatesMemory)),
		SupabaseURL:      getEnv("SUPABASE_URL", ""),
		SupabaseKey:      getEnv("SUPABASE_KEY", ""),

		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", defaultLLM)),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		RolesFile: getEnv("ROLES_FILE", ""),
	}

	var errs []error
	var err error
	if cfg.RedisDB, err = getIntEnv("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.MaxHistory, err = getIntEnv("MAX_HISTORY", 10); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionTimeout, err = getDurationEnv("SESSION_TIMEOUT", time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.CleanupInterval, err = getDurationEnv("CLEANUP_INTERVAL", 10*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.ReminderWindow, err = getDurationEnv("REMINDER_WINDOW", 30*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if cfg.ModelName == "" {
		switch cfg.LLMProvider {
		case LLMOpenAI:
			cfg.ModelName = "gpt-4o-mini"
		default:
			cfg.ModelName = "gemini-2.5-flash-lite"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	var errs []error

	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		errs = append(errs, errors.New(envPrefix+"GCP_PROJECT must be set in gcp mode"))
	}

	switch c.StorageBackend {
	case StorageMemory, StorageRedis:
	case StorageFirestore:
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New(envPrefix+"GCP_PROJECT is required for the firestore backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	switch c.CandidateBackend {
	case CandidatesMemory:
	case CandidatesSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			errs = append(errs, errors.New(envPrefix+"SUPABASE_URL and "+envPrefix+"SUPABASE_KEY are required for the supabase backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown candidate backend %q", c.CandidateBackend))
	}

	switch c.LLMProvider {
	case LLMNone, LLMMock:
	case LLMVertex:
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New(envPrefix+"GCP_PROJECT is required for the vertex provider"))
		}
	case LLMOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New(envPrefix+"OPENAI_API_KEY is required for the openai provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLMProvider))
	}

	if c.MaxHistory < 0 {
		errs = append(errs, errors.New(envPrefix+"MAX_HISTORY must not be negative"))
	}
	if c.SessionTimeout <= 0 {
		errs = append(errs, errors.New(envPrefix+"SESSION_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
