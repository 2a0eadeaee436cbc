package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	"vantage/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	Environment string
	ServerPort  string
	LogLevel    string

	DBPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SteamAPIKey   string
	FaceitAPIKey  string
	LeetifyAPIKey string

	RecaptchaSecret    string
	RecaptchaVerifyURL string

	RateLimitWindow time.Duration
	RateLimitMax    int
	CacheTTL        time.Duration
}

// IsProduction gates the real captcha check; everywhere else the
// verifier bypasses the oracle entirely.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		Environment:        getEnv("APP_ENV", "development"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DBPath:             getEnv("DB_PATH", "vantage.db"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		SteamAPIKey:        getEnv("STEAM_API_KEY", ""),
		FaceitAPIKey:       getEnv("FACEIT_API_KEY", ""),
		LeetifyAPIKey:      getEnv("LEETIFY_API_KEY", ""),
		RecaptchaSecret:    getEnv("RECAPTCHA_SECRET_KEY", ""),
		RecaptchaVerifyURL: getEnv("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", constants.RateLimitWindow),
		RateLimitMax:       getEnvInt("RATE_LIMIT_MAX", constants.RateLimitMax),
		CacheTTL:           getEnvDuration("CACHE_TTL", constants.ProfileCacheTTL),
	}

	if cfg.SteamAPIKey == "" {
		return nil, fmt.Errorf("STEAM_API_KEY is required")
	}
	if cfg.IsProduction() && cfg.RecaptchaSecret == "" {
		logger.Warn().Msg("RECAPTCHA_SECRET_KEY not set, captcha verification will be bypassed")
	}
	if cfg.RateLimitMax <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", cfg.RateLimitMax)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("server_port", cfg.ServerPort).
		Str("db_path", cfg.DBPath).
		Str("redis_addr", cfg.RedisAddr).
		Dur("rate_limit_window", cfg.RateLimitWindow).
		Int("rate_limit_max", cfg.RateLimitMax).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
