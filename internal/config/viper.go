// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Fallback strategies accepted by categorization.fallback.
const (
	FallbackAI     = "ai"
	FallbackManual = "manual"
	FallbackNone   = "none"
)

// Failure policies accepted by categorization.on_failure.
const (
	OnFailureAbort       = "abort"
	OnFailurePlaceholder = "placeholder"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		// Empty means comma, or tab for .tsv files.
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Files struct {
		Mappings   string `mapstructure:"mappings" yaml:"mappings"`
		Categories string `mapstructure:"categories" yaml:"categories"`
		Accounts   string `mapstructure:"accounts" yaml:"accounts"`
		History    string `mapstructure:"history" yaml:"history"`
	} `mapstructure:"files" yaml:"files"`

	AI struct {
		Model             string `mapstructure:"model" yaml:"model"`
		RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxAttempts       int    `mapstructure:"max_attempts" yaml:"max_attempts"`
		RetryDelayMS      int    `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
		APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Categorization struct {
		Fallback         string `mapstructure:"fallback" yaml:"fallback"`
		PersistAIResults bool   `mapstructure:"persist_ai_results" yaml:"persist_ai_results"`
		OnFailure        string `mapstructure:"on_failure" yaml:"on_failure"`
		Currency         string `mapstructure:"currency" yaml:"currency"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Reconcile struct {
		Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
		Tolerance         float64 `mapstructure:"tolerance" yaml:"tolerance"`
		LegacyDenominator bool    `mapstructure:"legacy_denominator" yaml:"legacy_denominator"`
	} `mapstructure:"reconcile" yaml:"reconcile"`

	Upload struct {
		Credentials string `mapstructure:"credentials" yaml:"credentials"`
		Token       string `mapstructure:"token" yaml:"token"`
		FolderID    string `mapstructure:"folder_id" yaml:"folder_id"`
	} `mapstructure:"upload" yaml:"upload"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig loads configuration, reading configFile instead of searching the
// default locations when it is set.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.rbc2mm")
		v.AddConfigPath(".rbc2mm")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("RBC2MM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. API key comes from the unprefixed variable
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", "")

	v.SetDefault("files.mappings", "config/descriptions.csv")
	v.SetDefault("files.categories", "config/categories.csv")
	v.SetDefault("files.accounts", "config/accounts.csv")
	v.SetDefault("files.history", "")

	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.max_attempts", 3)
	v.SetDefault("ai.retry_delay_ms", 1000)

	v.SetDefault("categorization.fallback", FallbackAI)
	v.SetDefault("categorization.persist_ai_results", false)
	v.SetDefault("categorization.on_failure", OnFailureAbort)
	v.SetDefault("categorization.currency", "CAD")

	v.SetDefault("reconcile.enabled", true)
	v.SetDefault("reconcile.tolerance", 0.1)
	v.SetDefault("reconcile.legacy_denominator", false)

	v.SetDefault("upload.credentials", "config/credentials.json")
	v.SetDefault("upload.token", "config/token.json")
	v.SetDefault("upload.folder_id", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if d := config.CSV.Delimiter; d != "" && d != `\t` && len([]rune(d)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", d)
	}

	if config.Files.Mappings == "" {
		return fmt.Errorf("files.mappings must be set")
	}

	switch config.Categorization.Fallback {
	case FallbackAI:
		if config.AI.RequestsPerMinute < 0 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 0 and 1000, got: %d", config.AI.RequestsPerMinute)
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
		if config.AI.MaxAttempts < 1 || config.AI.MaxAttempts > 10 {
			return fmt.Errorf("ai.max_attempts must be between 1 and 10, got: %d", config.AI.MaxAttempts)
		}
		if config.AI.RetryDelayMS < 0 {
			return fmt.Errorf("ai.retry_delay_ms must not be negative, got: %d", config.AI.RetryDelayMS)
		}
	case FallbackManual, FallbackNone:
	default:
		return fmt.Errorf("categorization.fallback must be one of ai, manual, none, got: %s", config.Categorization.Fallback)
	}

	switch config.Categorization.OnFailure {
	case OnFailureAbort, OnFailurePlaceholder:
	default:
		return fmt.Errorf("categorization.on_failure must be abort or placeholder, got: %s", config.Categorization.OnFailure)
	}

	if config.Reconcile.Tolerance <= 0 || config.Reconcile.Tolerance >= 1 {
		return fmt.Errorf("reconcile.tolerance must be between 0 and 1 (exclusive), got: %f", config.Reconcile.Tolerance)
	}

	return nil
}

// ToYAML renders the effective configuration. The API key is never included.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
