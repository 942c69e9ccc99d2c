package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"easyselenium/internal/core"
)

// EnvPrefix is prepended to every environment override, e.g. EASYSELENIUM_SELENIUM_HOST
const EnvPrefix = "EASYSELENIUM"

// Load loads configuration from config.yaml and environment variables
func Load(configPath string) (*core.Config, error) {
	v := viper.New()
	cfg := &core.Config{}

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults and env vars only
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Selenium server and browser
	v.SetDefault("selenium.host", "http://localhost:4444/wd/hub")
	v.SetDefault("selenium.platform", "Linux")
	// Appended to the built-in headless flags
	v.SetDefault("selenium.arguments", []string{})
	v.SetDefault("selenium.debug", false)
	v.SetDefault("selenium.debug_arguments", []string{})
	v.SetDefault("selenium.connection_timeout_ms", 0)
	v.SetDefault("selenium.request_timeout_ms", 0)
	v.SetDefault("selenium.binary_path", "")
	v.SetDefault("selenium.stealth", false)
	v.SetDefault("selenium.wire_debug", false)

	// Proxy (disabled unless set)
	v.SetDefault("proxy.type", "")
	v.SetDefault("proxy.http", "")
	v.SetDefault("proxy.ssl", "")
	v.SetDefault("proxy.socks_username", "")
	v.SetDefault("proxy.socks_password", "")

	// Typing cadence
	v.SetDefault("typing.delay_min_ms", 30)
	v.SetDefault("typing.delay_max_ms", 50)

	// Session registry
	v.SetDefault("database.path", "data/sessions.db")
	v.SetDefault("reaper.max_idle", 30*time.Minute)
}

// validateConfig validates that required configuration fields are set
func validateConfig(cfg *core.Config) error {
	if cfg.Selenium.Host == "" {
		return fmt.Errorf("selenium.host is required")
	}
	if cfg.Selenium.ConnectionTimeoutMs < 0 || cfg.Selenium.RequestTimeoutMs < 0 {
		return fmt.Errorf("selenium timeouts must not be negative")
	}
	if cfg.Typing.DelayMinMs <= 0 || cfg.Typing.DelayMaxMs <= cfg.Typing.DelayMinMs {
		return fmt.Errorf("typing delays must satisfy 0 < delay_min_ms < delay_max_ms (got %d, %d)",
			cfg.Typing.DelayMinMs, cfg.Typing.DelayMaxMs)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if cfg.Reaper.MaxIdle <= 0 {
		return fmt.Errorf("reaper.max_idle must be positive")
	}
	return nil
}
