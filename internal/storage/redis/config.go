package redis

import "time"

// Config holds the settings for the live match status store
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// KeyPrefix namespaces every key, so several match servers can share
	// one Redis
	KeyPrefix string

	PoolSize     int
	MinIdleConns int

	// PingTimeout bounds the connection check in New
	PingTimeout time.Duration

	// StatusTTL is how long a match status outlives its last turn; spectators
	// can still read the final score until it expires
	StatusTTL time.Duration
}

// DefaultConfig returns defaults sized for one match server
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		KeyPrefix:    "cwc",
		PoolSize:     4,
		MinIdleConns: 1,
		PingTimeout:  5 * time.Second,
		StatusTTL:    6 * time.Hour,
	}
}
