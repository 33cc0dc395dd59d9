// Package api serves synthesis, transcription and tagging over HTTP.
package api

import (
	"fmt"
	"time"

	"github.com/labstack/gommon/bytes"

	"github.com/tphakala/sherpa-go/internal/conf"
	"github.com/tphakala/sherpa-go/internal/logger"
)

// GetLogger returns the api package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("api")
}

// Default constants for the HTTP server.
const (
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPublishTimeout  = 5 * time.Second
)

// SynthesisDefaults fill request fields a client leaves out.
type SynthesisDefaults struct {
	SpeakerID int
	Speed     float32
	NumSteps  int
}

// Config holds the HTTP server configuration.
type Config struct {
	Listen string

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	PublishTimeout  time.Duration // MQTT publish of tagging results

	BodyLimit string        // maximum request body size, e.g. "32M"
	CacheTTL  time.Duration // synthesis cache entry lifetime, 0 disables it
	Metrics   bool          // serve /metrics when a registry is attached

	Synthesis SynthesisDefaults
	Debug     bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:8080",
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		PublishTimeout:  DefaultPublishTimeout,
		BodyLimit:       "32M",
		CacheTTL:        10 * time.Minute,
		Metrics:         true,
		Synthesis:       SynthesisDefaults{Speed: 1, NumSteps: 4},
	}
}

// ConfigFromSettings creates a Config from the application settings.
func ConfigFromSettings(settings *conf.Settings) *Config {
	cfg := DefaultConfig()
	if settings.Server.Listen != "" {
		cfg.Listen = settings.Server.Listen
	}
	if settings.Server.MaxUploadSize != "" {
		cfg.BodyLimit = settings.Server.MaxUploadSize
	}
	cfg.CacheTTL = settings.Server.CacheTTL
	cfg.Metrics = settings.Server.Metrics
	cfg.Debug = settings.Debug
	cfg.Synthesis = SynthesisDefaults{
		SpeakerID: settings.TTS.SpeakerID,
		Speed:     settings.TTS.Speed,
		NumSteps:  settings.TTS.NumSteps,
	}
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if _, err := bytes.Parse(c.BodyLimit); err != nil {
		return fmt.Errorf("invalid body limit %q: %w", c.BodyLimit, err)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}

// String returns a human-readable representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Server Config: address=%s, body_limit=%s, cache_ttl=%s, debug=%v",
		c.Listen, c.BodyLimit, c.CacheTTL, c.Debug)
}
