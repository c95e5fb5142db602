// Package config provides configuration management for girder servers
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the servlet configuration structure
type Config struct {
	Server  ServerConfig `yaml:"server" env:"SERVER"`
	Logger  LoggerConfig `yaml:"logger" env:"LOGGER"`
	Modules []ModuleSpec `yaml:"modules" validate:"dive"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address      string          `yaml:"address" env:"ADDRESS" default:":8080"`
	ReadTimeout  time.Duration   `yaml:"read_timeout" env:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration   `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration   `yaml:"idle_timeout" env:"IDLE_TIMEOUT" default:"120s"`
	GZip         bool            `yaml:"gzip" env:"GZIP" default:"true"`
	CORS         bool            `yaml:"cors" env:"CORS" default:"true"`
	Recovery     bool            `yaml:"recovery" env:"RECOVERY" default:"true"`
	RateLimit    RateLimitConfig `yaml:"rate_limit" env:"RATE_LIMIT"`
}

// RateLimitConfig holds the per-client request rate limit. Disabled
// when Rate is zero.
type RateLimitConfig struct {
	Rate  int `yaml:"rate" env:"RATE" default:"0" validate:"min=0"`
	Burst int `yaml:"burst" env:"BURST" default:"0" validate:"min=0"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level            string   `yaml:"level" env:"LEVEL" default:"info"`
	Encoding         string   `yaml:"encoding" env:"ENCODING" default:"json"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS" default:"stdout"`
	ErrorOutputPaths []string `yaml:"error_output_paths" env:"ERROR_OUTPUT_PATHS" default:"stderr"`
}

// ModuleSpec declares one dispatch module: its path prefix, its action
// mappings and its message resource files.
type ModuleSpec struct {
	Prefix   string        `yaml:"prefix"`
	Locale   string        `yaml:"locale"`
	Messages []string      `yaml:"messages"`
	Mappings []MappingSpec `yaml:"mappings" validate:"dive"`
}

// MappingSpec declares one action mapping inside a module.
type MappingSpec struct {
	Path      string `yaml:"path" validate:"required,startswith=/"`
	Type      string `yaml:"type"`
	Parameter string `yaml:"parameter"`
}

// LoaderFunc is a function that loads configuration
type LoaderFunc func(*Config) error

// Loader interface for configuration loading
type Loader interface {
	Load(cfg *Config) error
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
			GZip:         true,
			CORS:         true,
			Recovery:     true,
		},
		Logger: LoggerConfig{
			Level:            "info",
			Encoding:         "json",
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		},
	}
}

// Validate checks the configuration for structural errors: malformed
// mapping paths, duplicate module prefixes, duplicate mapping paths
// within a module.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	prefixes := make(map[string]struct{}, len(c.Modules))
	for _, mod := range c.Modules {
		if _, ok := prefixes[mod.Prefix]; ok {
			return fmt.Errorf("duplicate module prefix %q", mod.Prefix)
		}
		prefixes[mod.Prefix] = struct{}{}

		paths := make(map[string]struct{}, len(mod.Mappings))
		for _, m := range mod.Mappings {
			if _, ok := paths[m.Path]; ok {
				return fmt.Errorf("duplicate mapping path %q in module %q", m.Path, mod.Prefix)
			}
			paths[m.Path] = struct{}{}
		}
	}
	return nil
}
