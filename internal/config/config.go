package config

import (
	"os"
	"strconv"

	"github.com/RyanGano/skull-king/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string // empty means the in-memory store
	RedisAddr   string // empty disables the fingerprint cache
	RedisPass   string
	RedisDB     int
	TokenSecret string
	CORSOrigin  string
	LogLevel    string
	LogFormat   string
}

// Load reads configuration from the environment, picking up a .env file
// first when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file, using environment variables")
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	return &Config{
		AppPort:     getEnv("APP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:     redisDB,
		TokenSecret: getEnv("TOKEN_SECRET", "dev-secret-do-not-use-in-prod"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   os.Getenv("LOG_FORMAT"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
