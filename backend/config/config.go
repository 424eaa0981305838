package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string
	JWTSecret  string
	ServerPort string
	LogMode    string

	// Chat-completion upstream (OpenRouter compatible)
	LLMBaseURL      string
	LLMAPIKey       string
	LLMModel        string
	LLMTimeout      time.Duration
	LLMMaxRetries   int
	LLMRetryBackoff time.Duration

	ChatRequireSession bool

	// Course generation safeguards, both off by default
	GenerationDedupWindow time.Duration
	RedisURL              string
	GenerationRollback    bool
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "edulearn"),
		DBPath:     getEnv("DB_PATH", "edulearn.db"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogMode:    getEnv("LOG_MODE", "development"),

		LLMBaseURL:      strings.TrimRight(getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"), "/"),
		LLMAPIKey:       strings.TrimSpace(getEnv("OPENROUTER_API_KEY", "")),
		LLMModel:        getEnv("OPENROUTER_MODEL", "mistralai/mistral-7b-instruct"),
		LLMTimeout:      time.Duration(getEnvInt("OPENROUTER_TIMEOUT_SECONDS", 120)) * time.Second,
		LLMMaxRetries:   getEnvInt("OPENROUTER_MAX_RETRIES", 2),
		LLMRetryBackoff: time.Duration(getEnvInt("OPENROUTER_RETRY_BACKOFF_MS", 1000)) * time.Millisecond,

		ChatRequireSession: getEnvBool("CHAT_REQUIRE_SESSION", true),

		GenerationDedupWindow: time.Duration(getEnvInt("COURSE_DEDUP_WINDOW_SECONDS", 0)) * time.Second,
		RedisURL:              getEnv("REDIS_URL", ""),
		GenerationRollback:    getEnvBool("COURSE_GENERATION_ROLLBACK", false),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := strings.TrimSpace(getEnv(key, ""))
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return defaultValue
	}
	return i
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(getEnv(key, ""))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
