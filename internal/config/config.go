// Package config loads the voicerecog configuration document.
// The config is read once at plugin construction and never reloaded;
// everything downstream treats it as immutable.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when the config document has no language key.
const DefaultLanguage = "zh"

// Credentials holds the per-provider credential fields from speech_api.
// Providers use the subset they need: Baidu reads api_key/secret_key,
// Bing reads subscription_key.
type Credentials struct {
	APIKey          string `yaml:"api_key"`
	SecretKey       string `yaml:"secret_key"`
	SubscriptionKey string `yaml:"subscription_key"`
}

// Config is the parsed configuration document.
type Config struct {
	Language  string                 `yaml:"language"`
	SpeechAPI map[string]Credentials `yaml:"speech_api"`
}

// DefaultPath returns the config file location used when no explicit
// path is given: ~/.voicerecog/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".voicerecog", "config.yaml"), nil
}

// Load reads and parses the config file at path.
// An empty path resolves to DefaultPath().
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("config file %s is empty", path)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	return cfg, nil
}
