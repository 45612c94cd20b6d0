package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Narrative NarrativeConfig `yaml:"narrative" mapstructure:"narrative"`
	Rates     RatesConfig     `yaml:"rates" mapstructure:"rates"`
	Proposal  ProposalConfig  `yaml:"proposal" mapstructure:"proposal"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-ledger database backend. The conn
// bounds apply to postgres only; zero values take the pool's defaults.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings. Models is the fallback
// chain in priority order.
type AnthropicConfig struct {
	Key              string   `yaml:"key" mapstructure:"key"`
	Models           []string `yaml:"models" mapstructure:"models"`
	RetryAfterSecs   int      `yaml:"retry_after_secs" mapstructure:"retry_after_secs"`
	MaxRetryWaitSecs int      `yaml:"max_retry_wait_secs" mapstructure:"max_retry_wait_secs"`
}

// GeminiConfig holds Gemini API settings. Models is the fallback chain in
// priority order; rate limits switch models immediately, no wait.
type GeminiConfig struct {
	Key    string   `yaml:"key" mapstructure:"key"`
	Models []string `yaml:"models" mapstructure:"models"`
}

// NarrativeConfig configures the slot-fill executor.
type NarrativeConfig struct {
	Provider           string  `yaml:"provider" mapstructure:"provider"`
	BatchSize          int     `yaml:"batch_size" mapstructure:"batch_size"`
	MaxRetries         int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestTimeoutSecs int     `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	BatchDelayMillis   int     `yaml:"batch_delay_millis" mapstructure:"batch_delay_millis"`
	Temperature        float64 `yaml:"temperature" mapstructure:"temperature"`
}

// RatesConfig locates the pricing rate tables.
type RatesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ProposalConfig holds producer identity and rendering defaults stamped
// into every document.
type ProposalConfig struct {
	Producer    string `yaml:"producer" mapstructure:"producer"`
	Contact     string `yaml:"contact" mapstructure:"contact"`
	Theme       string `yaml:"theme" mapstructure:"theme"`
	AccentColor string `yaml:"accent_color" mapstructure:"accent_color"`
}

// PricingConfig holds per-provider token pricing for cost attribution.
type PricingConfig struct {
	Anthropic map[string]ModelPricing `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    map[string]ModelPricing `yaml:"gemini" mapstructure:"gemini"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// ServerConfig configures the webhook server. The breaker settings guard
// the narrative provider: after BreakerThreshold consecutive transport
// failures the server fails slot fills fast for BreakerResetSecs instead
// of waiting out every retry.
type ServerConfig struct {
	Port             int `yaml:"port" mapstructure:"port"`
	BreakerThreshold int `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROPOSAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "proposals.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.breaker_threshold", 5)
	v.SetDefault("server.breaker_reset_secs", 30)
	v.SetDefault("anthropic.models", []string{
		"claude-opus-4-1-20250805",
		"claude-sonnet-4-5-20250929",
		"claude-haiku-4-5-20251001",
	})
	v.SetDefault("anthropic.retry_after_secs", 60)
	v.SetDefault("anthropic.max_retry_wait_secs", 300)
	v.SetDefault("gemini.models", []string{
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
	})
	v.SetDefault("narrative.provider", "anthropic")
	v.SetDefault("narrative.batch_size", 5)
	v.SetDefault("narrative.max_retries", 3)
	v.SetDefault("narrative.request_timeout_secs", 45)
	v.SetDefault("narrative.batch_delay_millis", 500)
	v.SetDefault("narrative.temperature", 0.7)
	v.SetDefault("rates.path", "rates.yaml")
	v.SetDefault("proposal.producer", "Sells Group")
	v.SetDefault("proposal.theme", "default")
	v.SetDefault("proposal.accent_color", "#1a5fb4")
	v.SetDefault("pricing.anthropic", map[string]ModelPricing{
		"claude-opus-4-1-20250805":   {Input: 15.00, Output: 75.00},
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		"claude-haiku-4-5-20251001":  {Input: 1.00, Output: 5.00},
	})
	v.SetDefault("pricing.gemini", map[string]ModelPricing{
		"gemini-2.5-pro":        {Input: 1.25, Output: 10.00},
		"gemini-2.5-flash":      {Input: 0.30, Output: 2.50},
		"gemini-2.5-flash-lite": {Input: 0.10, Output: 0.40},
	})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields required by the given command mode. Modes
// map to commands: "generate" and "serve" need backend credentials,
// "price" and "runs" run without them.
func (c *Config) Validate(mode string) error {
	var problems []string

	requireBackend := func() {
		switch c.Narrative.Provider {
		case "anthropic":
			if c.Anthropic.Key == "" {
				problems = append(problems, "anthropic.key is required")
			}
			if len(c.Anthropic.Models) == 0 {
				problems = append(problems, "anthropic.models must list at least one model")
			}
		case "gemini":
			if c.Gemini.Key == "" {
				problems = append(problems, "gemini.key is required")
			}
			if len(c.Gemini.Models) == 0 {
				problems = append(problems, "gemini.models must list at least one model")
			}
		default:
			problems = append(problems, fmt.Sprintf("narrative.provider %q is not supported", c.Narrative.Provider))
		}
		if c.Narrative.BatchSize < 1 || c.Narrative.BatchSize > 20 {
			problems = append(problems, "narrative.batch_size must be between 1 and 20")
		}
		if c.Narrative.RequestTimeoutSecs < 1 {
			problems = append(problems, "narrative.request_timeout_secs must be > 0")
		}
	}

	switch mode {
	case "generate":
		requireBackend()
	case "price", "runs":
		// No backend or server requirements.
	case "serve":
		requireBackend()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
