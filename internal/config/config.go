// Package config loads server settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// Log output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config holds the settings of the morabaraba server.
type Config struct {
	Addr             string        `yaml:"addr"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`
	Heartbeat        time.Duration `yaml:"heartbeat"`
	SubscriberBuffer int           `yaml:"subscriber_buffer"`
	MaxGames         int           `yaml:"max_games"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:             ":8080",
		LogLevel:         "info",
		LogFormat:        FormatConsole,
		Heartbeat:        15 * time.Second,
		SubscriberBuffer: 1,
		MaxGames:         1000,
	}
}

// Load reads path on top of the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr is empty", ErrInvalid)
	}
	if c.LogLevel == "" {
		return fmt.Errorf("%w: log_level is empty", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if c.LogFormat != FormatJSON && c.LogFormat != FormatConsole {
		return fmt.Errorf("%w: log_format %q must be %s or %s", ErrInvalid, c.LogFormat, FormatJSON, FormatConsole)
	}
	if c.Heartbeat <= 0 {
		return fmt.Errorf("%w: heartbeat must be positive", ErrInvalid)
	}
	if c.SubscriberBuffer < 1 {
		return fmt.Errorf("%w: subscriber_buffer must be at least 1", ErrInvalid)
	}
	if c.MaxGames < 1 {
		return fmt.Errorf("%w: max_games must be at least 1", ErrInvalid)
	}
	return nil
}

// NewLogger builds the logger described by c, writing to w.
func (c Config) NewLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.Nop(), fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if c.LogFormat == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
