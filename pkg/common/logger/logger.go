package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the logger configuration. It is read from the optional
// "log" section of the service config file.
type Config struct {
	Level      string `json:"level" yaml:"level" mapstructure:"level"`
	Format     string `json:"format" yaml:"format" mapstructure:"format"` // "json" or "console"
	TimeFormat string `json:"time_format" yaml:"time_format" mapstructure:"time_format"`
	Output     string `json:"output" yaml:"output" mapstructure:"output"` // "stdout", "stderr", or file path
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     "stdout",
	}
}

// Merge fills empty fields of c from the defaults and returns c.
func (c *Config) Merge() *Config {
	def := DefaultConfig()
	if c.Level == "" {
		c.Level = def.Level
	}
	if c.Format == "" {
		c.Format = def.Format
	}
	if c.TimeFormat == "" {
		c.TimeFormat = def.TimeFormat
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	return c
}

// Init configures the global zerolog logger.
func Init(config *Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", config.Level, err)
	}

	var output io.Writer
	switch config.Output {
	case "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		output = file
	}

	switch config.Format {
	case "console":
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: config.TimeFormat}
	case "json":
	default:
		return fmt.Errorf("unknown log format %q", config.Format)
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = config.TimeFormat
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return nil
}

// SetOutput replaces the global logger with a JSON logger writing to w.
func SetOutput(w io.Writer) {
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// GetLogger returns the global logger
func GetLogger() *zerolog.Logger {
	return &log.Logger
}

// WithComponent returns a logger with a component field
func WithComponent(component string) *zerolog.Logger {
	l := log.Logger.With().Str("component", component).Logger()
	return &l
}
