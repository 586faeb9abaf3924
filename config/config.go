package config

import (
	"errors"
	"time"
)

// Config is the top-level configuration struct.  All fields have safe defaults
// so callers can start with Default() and override only what they need.
type Config struct {
	// Cache.
	CacheCapacityBytes   int64 // byte budget for resident images; default 64 MiB
	AllowAnimatedStorage bool  // when false, animated images are never cached

	// Animation builder pool.
	BuilderCount   int           // default: runtime.NumCPU()
	BuildQueueSize int           // max queued builds before refusal; default 64
	BuildTimeout   time.Duration // per-build deadline; 0 = none

	// Input limits for the reader entry point.
	MaxImageBytes int64 // 0 = no limit
	ChunkSize     int   // draining chunk size in bytes; default 32 KiB

	// Default encode quality for the optional libvips decode backend.
	DefaultQuality int // 1-100; default 85

	// Logging.
	LogLevel string // "debug", "info", "warn", "error"
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		CacheCapacityBytes:   64 * 1024 * 1024,
		AllowAnimatedStorage: true,
		BuilderCount:         0, // resolved at runtime to NumCPU
		BuildQueueSize:       64,
		ChunkSize:            32 * 1024,
		DefaultQuality:       85,
		LogLevel:             "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.CacheCapacityBytes <= 0 {
		return errors.New("config: CacheCapacityBytes must be positive")
	}
	if c.ChunkSize <= 0 {
		return errors.New("config: ChunkSize must be positive")
	}
	if c.BuildQueueSize <= 0 {
		return errors.New("config: BuildQueueSize must be positive")
	}
	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return errors.New("config: DefaultQuality must be between 1 and 100")
	}
	return nil
}
