// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported authentication schemes for the REST service.
const (
	AuthAPIKey = "apikey"
	AuthBasic  = "basic"
	AuthToken  = "token"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Spira   SpiraConfig
	LogFile bool
}

// SpiraConfig holds SpiraTeam specific configuration.
type SpiraConfig struct {
	URL       string
	Username  string
	APIKey    string
	Token     string
	Auth      string
	Timeout   time.Duration
	RateLimit float64
}

// LoadConfig initializes and loads configuration from environment variables
// and, when present, a YAML config file. An empty path means ~/.spira.yaml.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("spira")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("spira.auth", AuthAPIKey)
	v.SetDefault("spira.timeout", 30*time.Second)
	v.SetDefault("spira.rate_limit", 5.0)
	v.SetDefault("log_file", false)

	// Map specific environment variables
	v.BindEnv("spira.url", "SPIRA_URL")
	v.BindEnv("spira.username", "SPIRA_USERNAME")
	v.BindEnv("spira.api_key", "SPIRA_API_KEY")
	v.BindEnv("spira.token", "SPIRA_TOKEN")
	v.BindEnv("spira.auth", "SPIRA_AUTH")
	v.BindEnv("spira.timeout", "SPIRA_TIMEOUT")
	v.BindEnv("spira.rate_limit", "SPIRA_RATE_LIMIT")
	v.BindEnv("log_file", "SPIRA_LOG_FILE")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".spira")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit path must exist; the default file is optional
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Spira: SpiraConfig{
			URL:       strings.TrimRight(v.GetString("spira.url"), "/"),
			Username:  v.GetString("spira.username"),
			APIKey:    v.GetString("spira.api_key"),
			Token:     v.GetString("spira.token"),
			Auth:      strings.ToLower(v.GetString("spira.auth")),
			Timeout:   v.GetDuration("spira.timeout"),
			RateLimit: v.GetFloat64("spira.rate_limit"),
		},
		LogFile: v.GetBool("log_file"),
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig rejects values that can never work, regardless of command.
func validateConfig(config *Config) error {
	switch config.Spira.Auth {
	case AuthAPIKey, AuthBasic, AuthToken:
	default:
		return fmt.Errorf("unsupported SPIRA_AUTH %q, expected one of: %s, %s, %s",
			config.Spira.Auth, AuthAPIKey, AuthBasic, AuthToken)
	}

	if config.Spira.Timeout < 0 {
		return fmt.Errorf("SPIRA_TIMEOUT must not be negative: %s", config.Spira.Timeout)
	}

	if config.Spira.RateLimit < 0 {
		return fmt.Errorf("SPIRA_RATE_LIMIT must not be negative: %v", config.Spira.RateLimit)
	}

	return nil
}

// ValidateSpiraConfig validates the settings needed to talk to the REST service.
func ValidateSpiraConfig(config *Config) error {
	var missingVars []string

	if config.Spira.URL == "" {
		missingVars = append(missingVars, "SPIRA_URL")
	}

	switch config.Spira.Auth {
	case AuthToken:
		if config.Spira.Token == "" {
			missingVars = append(missingVars, "SPIRA_TOKEN")
		}
	default:
		if config.Spira.Username == "" {
			missingVars = append(missingVars, "SPIRA_USERNAME")
		}
		if config.Spira.APIKey == "" {
			missingVars = append(missingVars, "SPIRA_API_KEY")
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
