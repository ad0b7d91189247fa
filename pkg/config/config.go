// Package config provides configuration file support for chainlog.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/model"
)

// Config represents the chainlog configuration, stored at
// .chainlog/config.yaml.
type Config struct {
	Algo    string        `yaml:"algo"`
	Lock    LockConfig    `yaml:"lock"`
	Logging LoggingConfig `yaml:"logging"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// LockConfig configures the journal writer lock.
type LockConfig struct {
	LeaseTTL string `yaml:"lease_ttl"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// WebhookConfig configures outbound integrity notifications.
type WebhookConfig struct {
	Enabled bool         `yaml:"enabled"`
	Hooks   []HookConfig `yaml:"hooks"`
}

// HookConfig is a single webhook endpoint.
type HookConfig struct {
	URL     string   `yaml:"url"`
	Secret  string   `yaml:"secret,omitempty"`
	Events  []string `yaml:"events"`
	Timeout string   `yaml:"timeout,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Algo: string(model.AlgoSHA256),
		Lock: LockConfig{
			LeaseTTL: "5m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from .chainlog/config.yaml.
// Returns default config if the file doesn't exist.
func Load(ledgerRoot string) (*Config, error) {
	cfg := Default()
	cfgPath := filepath.Join(ledgerRoot, ".chainlog", "config.yaml")

	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return cfg, nil // No config file is OK, use defaults
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Algo != string(model.AlgoSHA256) {
		return nil, errclass.ErrAlgoUnsupported.WithMessagef("algo %q (format v1 supports sha256 only)", cfg.Algo)
	}

	return cfg, nil
}

// Save writes configuration to .chainlog/config.yaml.
func Save(ledgerRoot string, cfg *Config) error {
	cfgPath := filepath.Join(ledgerRoot, ".chainlog", "config.yaml")

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// LeaseTTL parses the configured lock lease duration, falling back to
// the default on empty or invalid values.
func (c *Config) LeaseTTL() time.Duration {
	d, err := time.ParseDuration(c.Lock.LeaseTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}
