package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	GeoIPDBPath string

	VisitWorkers   int
	VisitQueueSize int

	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load() // missing .env is fine, e.g. in prod

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBUser:     getEnv("DB_USER", "linklytics"),
		DBPassword: getEnv("DB_PASSWORD", "linklytics"),
		DBName:     getEnv("DB_NAME", "linklytics"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", "dev-only-secret-change-me"),

		GeoIPDBPath: getEnv("GEOIP_DB_PATH", ""),

		VisitWorkers:   getEnvInt("VISIT_WORKERS", 4),
		VisitQueueSize: getEnvInt("VISIT_QUEUE_SIZE", 1024),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
