package internal

import (
	"fmt"
	"time"
)

// Config is loaded from the environment at process start (cmd/server).
// Defaults keep a development instance runnable with only JWT_SECRET set.
type Config struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,default=8080"`

	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=.data/tripchat"`
	JWTSecret      string `env:"JWT_SECRET,required=true"`

	// Channel sizing for the per-room processors and the fanout pipeline.
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`

	// Gateway admission and per-connection rate limiting.
	PoolCapacity      int           `env:"POOL_CAPACITY,default=1024"`
	RateLimitEvents   int           `env:"RATE_LIMIT_EVENTS,default=30"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW,default=10s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	HeartbeatMisses   int           `env:"HEARTBEAT_MISSES,default=3"`

	// Message constraints.
	MaxContentLength int    `env:"MAX_CONTENT_LENGTH,default=1000"`
	CensorChar       string `env:"CENSOR_CHARACTER,default=*"`

	// AI response orchestration.
	ContextWindowSize int           `env:"CONTEXT_WINDOW_SIZE,default=8"`
	MinConfidence     float64       `env:"MIN_CONFIDENCE,default=0.35"`
	BackendTimeout    time.Duration `env:"BACKEND_TIMEOUT,default=5s"`

	// Shared retry policy for persistence and the AI backend call.
	RetryAttempts int           `env:"RETRY_ATTEMPTS,default=3"`
	RetryBackoff  time.Duration `env:"RETRY_BACKOFF,default=100ms"`
}

// CensorRune converts the configured replacement character, rejecting
// anything that is not exactly one rune.
func (c Config) CensorRune() (rune, error) {
	r := []rune(c.CensorChar)
	if len(r) != 1 {
		return 0, fmt.Errorf("CENSOR_CHARACTER must be a single character, got %q", c.CensorChar)
	}
	return r[0], nil
}
