package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Document store
	StoreDriver string // postgres | memory
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiRequestsPerMin int
	GeminiConcurrentReqs int
	GenerationFormat     string // lines | json

	// Storage
	StoragePath   string
	PublicBaseURL string

	// Frontend
	FrontendURL string

	// Quizzes and glue
	AllowLateStart bool
	GlueDelay      time.Duration

	// Workers
	WorkerCount int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	port := getEnvOrDefault("PORT", "8080")
	cfg := &Config{
		Port:                 port,
		Env:                  getEnvOrDefault("ENV", "development"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		StoreDriver:          getEnvOrDefault("STORE_DRIVER", "postgres"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiRequestsPerMin: getEnvAsIntOrDefault("GEMINI_REQUESTS_PER_MINUTE", 60),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GenerationFormat:     getEnvOrDefault("GENERATION_FORMAT", "lines"),
		StoragePath:          getEnvOrDefault("STORAGE_PATH", "./uploads"),
		PublicBaseURL:        getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:"+port),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		AllowLateStart:       getEnvAsBoolOrDefault("ALLOW_LATE_START", false),
		GlueDelay:            getEnvAsDurationOrDefault("GLUE_DELAY", 1500*time.Millisecond),
		WorkerCount:          getEnvAsIntOrDefault("WORKER_COUNT", 2),
	}

	switch cfg.StoreDriver {
	case "postgres":
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	case "memory":
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	default:
		panic(fmt.Sprintf("unknown STORE_DRIVER %q (want postgres or memory)", cfg.StoreDriver))
	}

	return cfg
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

// getEnvAsDurationOrDefault accepts Go durations ("1500ms") or a bare number
// of milliseconds.
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}
