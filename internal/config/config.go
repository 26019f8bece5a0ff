package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Ai         AIConfig
	Governance GovernanceConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	Provider string // "ollama" or "openai"
	Model    string // e.g. "llama3", "gpt-4o-mini"
	BaseURL  string // provider endpoint
	APIKey   string // required for "openai"
	Timeout  time.Duration
}

// GovernanceConfig carries every knob the session governance engine uses.
type GovernanceConfig struct {
	// Admission control (token bucket)
	RateRequestsPerWindow int
	RateWindowSeconds     int

	// Daily problem quota
	DailyProblemLimit int

	// Per-session turn quota
	MaxTurnsPerSession int
	TurnWarnThresholds []int

	// Token budget
	TokenHardLimit      int
	TokenSoftLimit      int
	ReservedForResponse int
	MaxTurnPairs        int
	CompressThreshold   int

	// Lifecycle
	InactivityTimeout time.Duration
	MonitorTick       time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			Provider: getEnv("LLM_PROVIDER", "ollama"),
			Model:    getEnv("LLM_MODEL", "llama3"),
			BaseURL:  getEnv("LLM_BASE_URL", "http://localhost:11434"),
			APIKey:   getEnv("LLM_API_KEY", ""),
			Timeout:  getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		},
		Governance: GovernanceConfig{
			RateRequestsPerWindow: getEnvAsInt("RATE_REQUESTS_PER_WINDOW", 30),
			RateWindowSeconds:     getEnvAsInt("RATE_WINDOW_SECONDS", 60),
			DailyProblemLimit:     getEnvAsInt("DAILY_PROBLEM_LIMIT", 20),
			MaxTurnsPerSession:    getEnvAsInt("MAX_TURNS_PER_SESSION", 50),
			TurnWarnThresholds:    []int{40, 45},
			TokenHardLimit:        getEnvAsInt("TOKEN_HARD_LIMIT", 4000),
			TokenSoftLimit:        getEnvAsInt("TOKEN_SOFT_LIMIT", 3800),
			ReservedForResponse:   getEnvAsInt("TOKEN_RESPONSE_RESERVE", 1000),
			MaxTurnPairs:          getEnvAsInt("MAX_TURN_PAIRS", 10),
			CompressThreshold:     getEnvAsInt("COMPRESS_THRESHOLD", 15),
			InactivityTimeout:     getEnvAsDuration("SESSION_INACTIVITY_TIMEOUT", 30*time.Minute),
			MonitorTick:           getEnvAsDuration("SESSION_MONITOR_TICK", 1*time.Minute),
		},
	}
}

// Validate fails fast on configuration the engine cannot run without.
// A missing reasoning-service credential must surface here, before any
// request consumes quota.
func (c *Config) Validate() error {
	if c.App.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Ai.Provider == "openai" && c.Ai.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required for provider %q", c.Ai.Provider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
