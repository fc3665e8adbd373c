// Package config holds the coder configuration.
package config

import "errors"

// Config is the top-level configuration struct.  All fields have safe
// defaults so callers can start with Default() and override what they need.
type Config struct {
	// BufferExtent is the capacity of the reusable streaming chunk buffers:
	// the decoder input buffer and the encoder output buffer.  Both are
	// allocated once per call and reused across refill/drain iterations.
	BufferExtent int

	// DefaultQuality is applied when an Image carries no quality (1-100).
	// Quality 100 selects lossless encoding.
	DefaultQuality int

	// MaxMemoryBytes caps the total outstanding codec buffer memory per
	// call; 0 = no cap.  Exceeding it surfaces as an allocation failure
	// through the error sink rather than aborting.
	MaxMemoryBytes int64

	// LogLevel selects the trace verbosity: "debug", "info", "warn", "error".
	LogLevel string
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		BufferExtent:   64 * 1024,
		DefaultQuality: 92,
		LogLevel:       "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.BufferExtent <= 0 {
		return errors.New("config: BufferExtent must be positive")
	}
	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return errors.New("config: DefaultQuality must be between 1 and 100")
	}
	if c.MaxMemoryBytes < 0 {
		return errors.New("config: MaxMemoryBytes must not be negative")
	}
	return nil
}
