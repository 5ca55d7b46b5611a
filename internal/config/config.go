package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const defaultDatabaseURL = "sqlite://./unibot.db"

type Config struct {
	AppEnv         string
	LogLevel       string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL          string
	CloudinaryUploadFolder string

	// UploadDir is the only directory whose files may be re-hosted. Empty disables it.
	UploadDir string

	RateLimitRequest time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		DatabaseURL: getEnv("DATABASE_URL", defaultDatabaseURL),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "unibot_broadcasts"),
		UploadDir:              os.Getenv("UPLOAD_DIR"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}

	defaultLevel := "info"
	if cfg.IsDevelopment() {
		defaultLevel = "debug"
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", defaultLevel)

	var err error
	cfg.RateLimitRequest, err = parseDuration(getEnv("RATE_LIMIT_REQUEST", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUEST: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}
