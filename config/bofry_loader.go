package config

import (
	"fmt"
	"os"
	"strings"

	bofryconfig "github.com/Bofry/config"
)

// BofryLoader is a configuration loader using the Bofry/config library
// with support for:
// - YAML files
// - Environment variables
// - .env files
// - Command line arguments
type BofryLoader struct {
	yamlFile       string
	dotEnvFile     string
	envPrefix      string
	useCommandArgs bool
}

// NewBofryLoader creates a new Bofry configuration loader
func NewBofryLoader() *BofryLoader {
	return &BofryLoader{
		envPrefix: "GIRDER_",
	}
}

// WithCommandArguments enables parsing command line arguments
func (l *BofryLoader) WithCommandArguments() *BofryLoader {
	l.useCommandArgs = true
	return l
}

// WithYAMLFile sets the YAML configuration file path
func (l *BofryLoader) WithYAMLFile(path string) *BofryLoader {
	l.yamlFile = path
	return l
}

// WithDotEnvFile sets the .env file path
func (l *BofryLoader) WithDotEnvFile(path string) *BofryLoader {
	l.dotEnvFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix
func (l *BofryLoader) WithEnvPrefix(prefix string) *BofryLoader {
	l.envPrefix = prefix
	return l
}

// Load loads configuration from the configured sources, starting from
// defaults. Missing files are skipped silently; the merged result is
// validated before it is returned.
func (l *BofryLoader) Load(cfg *Config) error {
	*cfg = *DefaultConfig()

	if l.useCommandArgs {
		l.applyCommandArgs()
	}

	// Bofry/config panics on errors, so we need to recover
	var loadErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					loadErr = err
				} else {
					loadErr = fmt.Errorf("configuration loading panic: %v", r)
				}
			}
		}()

		configService := bofryconfig.NewConfigurationService(cfg)

		if l.yamlFile != "" {
			if _, err := os.Stat(l.yamlFile); err == nil {
				configService.LoadYamlFile(l.yamlFile)
			} else if !os.IsNotExist(err) {
				loadErr = fmt.Errorf("failed to check YAML file: %w", err)
				return
			}
		}

		if l.dotEnvFile != "" {
			if _, err := os.Stat(l.dotEnvFile); err == nil {
				configService.LoadDotEnvFile(l.dotEnvFile)
			} else if !os.IsNotExist(err) {
				loadErr = fmt.Errorf("failed to check .env file: %w", err)
				return
			}
		}

		envPrefix := strings.TrimSuffix(l.envPrefix, "_")
		configService.LoadEnvironmentVariables(envPrefix)
	}()

	if loadErr != nil {
		return loadErr
	}

	return cfg.Validate()
}

// applyCommandArgs parses command line arguments in the form --name=value
// and sets them as environment variables using the configured prefix.
func (l *BofryLoader) applyCommandArgs() {
	for _, arg := range os.Args[1:] {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		kv := strings.SplitN(arg[2:], "=", 2)
		if len(kv) != 2 {
			continue
		}
		name := strings.ToUpper(strings.ReplaceAll(kv[0], "-", "_"))
		os.Setenv(l.envPrefix+name, kv[1])
	}
}
