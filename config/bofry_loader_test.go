package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girderweb/girder/config"
)

// TestBofryLoader_LoadDefaults tests that the BofryLoader correctly loads default configuration
func TestBofryLoader_LoadDefaults(t *testing.T) {
	loader := config.NewBofryLoader().WithEnvPrefix("GIRDER_")
	cfg := &config.Config{}

	err := loader.Load(cfg)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.Recovery)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)
}

// TestBofryLoader_LoadFromYAML tests loading configuration from YAML file
func TestBofryLoader_LoadFromYAML(t *testing.T) {
	yamlContent := `
server:
  address: ":8888"
  gzip: false
  read_timeout: 45s
logger:
  level: "warn"
  encoding: "console"
modules:
  - prefix: ""
    mappings:
      - path: "/login"
  - prefix: "/admin"
    messages:
      - "messages/admin.yaml"
    mappings:
      - path: "/tools"
        type: "tools"
        parameter: "method"
`
	tmpFile, err := os.CreateTemp("", "girder-config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(yamlContent)
	require.NoError(t, err)
	tmpFile.Close()

	loader := config.NewBofryLoader().WithYAMLFile(tmpFile.Name())
	cfg := &config.Config{}
	err = loader.Load(cfg)
	require.NoError(t, err)

	assert.Equal(t, ":8888", cfg.Server.Address)
	assert.False(t, cfg.Server.GZip)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "warn", cfg.Logger.Level)

	require.Len(t, cfg.Modules, 2)
	assert.Equal(t, "/admin", cfg.Modules[1].Prefix)
	require.Len(t, cfg.Modules[1].Mappings, 1)
	assert.Equal(t, "/tools", cfg.Modules[1].Mappings[0].Path)
	assert.Equal(t, "method", cfg.Modules[1].Mappings[0].Parameter)
}

// TestBofryLoader_MissingYAMLIsSkipped tests that a missing YAML file is skipped silently
func TestBofryLoader_MissingYAMLIsSkipped(t *testing.T) {
	loader := config.NewBofryLoader().WithYAMLFile("does-not-exist.yaml")
	cfg := &config.Config{}

	err := loader.Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

// TestBofryLoader_InvalidConfigFailsValidation tests that loaded configuration is validated
func TestBofryLoader_InvalidConfigFailsValidation(t *testing.T) {
	yamlContent := `
modules:
  - prefix: "/admin"
    mappings:
      - path: "tools"
`
	tmpFile, err := os.CreateTemp("", "girder-config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(yamlContent)
	require.NoError(t, err)
	tmpFile.Close()

	loader := config.NewBofryLoader().WithYAMLFile(tmpFile.Name())
	err = loader.Load(&config.Config{})
	assert.Error(t, err)
}

func TestBuildLogger(t *testing.T) {
	logger, err := config.BuildLogger(config.DefaultConfig().Logger)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Sync()

	_, err = config.BuildLogger(config.LoggerConfig{Level: "nope"})
	assert.Error(t, err)
}
