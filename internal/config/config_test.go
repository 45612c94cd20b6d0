package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "proposals.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.BreakerThreshold)
	assert.Equal(t, 30, cfg.Server.BreakerResetSecs)
	assert.Equal(t, "anthropic", cfg.Narrative.Provider)
	assert.Equal(t, 5, cfg.Narrative.BatchSize)
	assert.Equal(t, 3, cfg.Narrative.MaxRetries)
	assert.Equal(t, 45, cfg.Narrative.RequestTimeoutSecs)
	assert.Equal(t, 500, cfg.Narrative.BatchDelayMillis)
	assert.InDelta(t, 0.7, cfg.Narrative.Temperature, 0.001)
	require.Len(t, cfg.Anthropic.Models, 3)
	assert.Equal(t, "claude-opus-4-1-20250805", cfg.Anthropic.Models[0])
	assert.Equal(t, 60, cfg.Anthropic.RetryAfterSecs)
	assert.Equal(t, 300, cfg.Anthropic.MaxRetryWaitSecs)
	require.Len(t, cfg.Gemini.Models, 3)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Models[0])
	assert.Equal(t, "rates.yaml", cfg.Rates.Path)
	assert.Equal(t, "Sells Group", cfg.Proposal.Producer)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/proposals
log:
  level: debug
  format: console
narrative:
  provider: gemini
  batch_size: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "gemini", cfg.Narrative.Provider)
	assert.Equal(t, 3, cfg.Narrative.BatchSize)
	// Defaults still apply for unset values
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Narrative.MaxRetries)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PROPOSAL_STORE_DRIVER", "postgres")
	t.Setenv("PROPOSAL_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("PROPOSAL_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with enough populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Narrative.Provider = "anthropic"
	cfg.Narrative.BatchSize = 5
	cfg.Narrative.RequestTimeoutSecs = 45
	cfg.Anthropic.Models = []string{"claude-opus-4-1-20250805"}
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateGenerate_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = "sk-ant-key"

	assert.NoError(t, cfg.Validate("generate"))
}

func TestValidateGenerate_MissingKey(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("generate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestValidateGenerate_GeminiProvider(t *testing.T) {
	cfg := validDefaults()
	cfg.Narrative.Provider = "gemini"

	err := cfg.Validate("generate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.key is required")
	assert.Contains(t, err.Error(), "gemini.models")

	cfg.Gemini.Key = "AIza-key"
	cfg.Gemini.Models = []string{"gemini-2.5-flash"}
	assert.NoError(t, cfg.Validate("generate"))
}

func TestValidateGenerate_UnknownProvider(t *testing.T) {
	cfg := validDefaults()
	cfg.Narrative.Provider = "cohere"

	err := cfg.Validate("generate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `narrative.provider "cohere" is not supported`)
}

func TestValidateBatchSizeBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = "sk-ant-key"

	cfg.Narrative.BatchSize = 0
	err := cfg.Validate("generate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "narrative.batch_size must be between 1 and 20")

	cfg.Narrative.BatchSize = 21
	err = cfg.Validate("generate")
	assert.Error(t, err)

	cfg.Narrative.BatchSize = 20
	assert.NoError(t, cfg.Validate("generate"))
}

func TestValidatePriceNeedsNoKeys(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate("price"))
	assert.NoError(t, cfg.Validate("runs"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = "sk-ant-key"
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
