// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and the environment.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// DBMaxOpenConns bounds the SQLite connection pool.
	DBMaxOpenConns int `koanf:"db_max_open_conns"`

	// DBBusyTimeoutMS is how long a writer waits on a locked database.
	DBBusyTimeoutMS int `koanf:"db_busy_timeout_ms"`

	// AnonymousFeedback lets callers without an identity post comments.
	AnonymousFeedback bool `koanf:"anonymous_feedback"`

	// JWTSecret verifies HS256 bearer tokens. Empty disables identity; every caller is anonymous.
	JWTSecret string `koanf:"jwt_secret"`

	// JWTIssuer, when set, must match the token's iss claim.
	JWTIssuer string `koanf:"jwt_issuer"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DefaultLeaderboardLimit applies when limit is omitted. Zero returns the full ranking.
	DefaultLeaderboardLimit int `koanf:"default_leaderboard_limit"`

	// MaxCommentLength caps comment text in runes.
	MaxCommentLength int `koanf:"max_comment_length"`

	// MaxPageSize caps the comment page size on GET /feedback.
	MaxPageSize int `koanf:"max_page_size"`

	// CacheTTLSeconds is the read-through cache entry lifetime.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheSize bounds the in-memory cache entry count.
	CacheSize int `koanf:"cache_size"`

	// RedisAddr switches the cache to Redis when set.
	RedisAddr string `koanf:"redis_addr"`

	// RedisDB selects the Redis logical database.
	RedisDB int `koanf:"redis_db"`

	// FeedbackRatePerSec and FeedbackBurst shape the per-identity limiter on POST /feedback.
	FeedbackRatePerSec float64 `koanf:"feedback_rate_per_sec"`
	FeedbackBurst      int     `koanf:"feedback_burst"`

	// TrendEpsilon is the points-per-match margin that separates up/down from stable.
	TrendEpsilon float64 `koanf:"trend_epsilon"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		DBPath:                  "data/papermatch.db",
		DBMaxOpenConns:          8,
		DBBusyTimeoutMS:         5000,
		AnonymousFeedback:       false,
		MaxLeaderboardLimit:     100,
		DefaultLeaderboardLimit: 10,
		MaxCommentLength:        1000,
		MaxPageSize:             100,
		CacheTTLSeconds:         3600,
		CacheSize:               10_000,
		FeedbackRatePerSec:      5,
		FeedbackBurst:           10,
		TrendEpsilon:            0.1,
	}
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// BusyTimeout returns the SQLite busy timeout as a duration.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.DBBusyTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.DefaultLeaderboardLimit < 0 || c.DefaultLeaderboardLimit > c.MaxLeaderboardLimit:
		return fmt.Errorf("%w: default_leaderboard_limit must be within [0, max_leaderboard_limit]", ErrInvalidConfig)
	case c.MaxCommentLength < 1:
		return fmt.Errorf("%w: max_comment_length must be positive", ErrInvalidConfig)
	case c.MaxPageSize < 1:
		return fmt.Errorf("%w: max_page_size must be positive", ErrInvalidConfig)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.FeedbackRatePerSec < 0 || c.FeedbackBurst < 0:
		return fmt.Errorf("%w: feedback rate limits must not be negative", ErrInvalidConfig)
	case c.TrendEpsilon < 0:
		return fmt.Errorf("%w: trend_epsilon must not be negative", ErrInvalidConfig)
	}
	return nil
}
