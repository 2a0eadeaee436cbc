package constants

import "time"

const (
	ProfileCacheTTL = 5 * time.Minute
	RateLimitWindow = 1 * time.Minute
	RateLimitMax    = 10
	CleanupInterval = 5 * time.Minute
)

const (
	ExternalAPITimeout = 10 * time.Second
	OracleTimeout      = 5 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RedisTimeout       = 2 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	TeammateEnrichmentLimit = 6
)
