package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	CORSOrigins  []string

	// Параметры сезонного рейтинга.
	SeasonWindowDays    int
	SeasonPointsCap     int
	SeasonPublishedOnly bool

	// Ограничение попыток логина.
	LoginRateWindow      time.Duration
	LoginRateMaxAttempts int

	// Cloudflare R2 (фото райдеров). Пустые значения отключают загрузку.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

const (
	defaultSeasonWindowDays = 90
	defaultSeasonPointsCap  = 1000
	defaultLoginRateWindow  = 5 * time.Minute
	defaultLoginRateMax     = 10
)

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	windowDays, err := intEnv("SEASON_WINDOW_DAYS", defaultSeasonWindowDays)
	if err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		return nil, fmt.Errorf("SEASON_WINDOW_DAYS must be positive, got %d", windowDays)
	}

	pointsCap, err := intEnv("SEASON_POINTS_CAP", defaultSeasonPointsCap)
	if err != nil {
		return nil, err
	}
	if pointsCap <= 0 {
		return nil, fmt.Errorf("SEASON_POINTS_CAP must be positive, got %d", pointsCap)
	}

	rateWindowSec, err := intEnv("LOGIN_RATE_WINDOW_SECONDS", int(defaultLoginRateWindow.Seconds()))
	if err != nil {
		return nil, err
	}
	rateMax, err := intEnv("LOGIN_RATE_MAX_ATTEMPTS", defaultLoginRateMax)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:          dbURL,
		JWTSecretKey:         jwtKey,
		ServerPort:           port,
		CORSOrigins:          splitOrigins(os.Getenv("CORS_ORIGINS")),
		SeasonWindowDays:     windowDays,
		SeasonPointsCap:      pointsCap,
		SeasonPublishedOnly:  os.Getenv("SEASON_PUBLISHED_ONLY") == "true",
		LoginRateWindow:      time.Duration(rateWindowSec) * time.Second,
		LoginRateMaxAttempts: rateMax,
		R2AccountID:          os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:        os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:    os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:         os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:      os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// R2Enabled reports whether all Cloudflare R2 credentials are present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return []string{"http://localhost:5173", "http://localhost:3000"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
