// Package config provides the configuration for the Strata server. A single
// Config structure covers the HTTP listener, logging and response
// compression; it loads from a YAML file with ${VAR} environment
// substitution.
package config

import (
	"fmt"
	"time"

	"github.com/stratadb/strata/pkg/compression"
)

// Config is the complete server configuration.
type Config struct {
	// Server holds HTTP listener settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Logging holds logger settings
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Compression holds response compression settings
	Compression CompressionConfig `yaml:"compression" json:"compression"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	// Address is the listen address, e.g. ":8086"
	Address string `yaml:"address" json:"address"`
	// ReadTimeout bounds how long reading a request may take
	ReadTimeout time.Duration `yaml:"read_timeout" json:"read_timeout"`
	// WriteTimeout bounds how long writing a response may take
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	// MaxBodyBytes caps the size of an ingest request body
	MaxBodyBytes int64 `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level" json:"level"`
	// Encoding is json or console
	Encoding string `yaml:"encoding" json:"encoding"`
	// Development enables colored, stack-traced output
	Development bool `yaml:"development" json:"development"`
}

// CompressionConfig contains response compression settings.
type CompressionConfig struct {
	// Algorithm compresses query responses when the client accepts it.
	// One of none, gzip, snappy, lz4.
	Algorithm compression.Algorithm `yaml:"algorithm" json:"algorithm"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8086",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    64 << 20, // 64MB
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Compression: CompressionConfig{
			Algorithm: compression.Gzip,
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("logging.encoding must be json or console, got %q", c.Logging.Encoding)
	}
	switch c.Compression.Algorithm {
	case compression.None, compression.Gzip, compression.Snappy, compression.LZ4:
	default:
		return fmt.Errorf("compression.algorithm %q is not supported", c.Compression.Algorithm)
	}
	return nil
}
