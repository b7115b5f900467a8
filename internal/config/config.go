// Package config loads the catalogsmith configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration structure.
type Config struct {
	RepoURL          string   `yaml:"repoURL"`
	Concurrency      int      `yaml:"concurrency"`
	Force            bool     `yaml:"force"`
	SkipPayloadCheck bool     `yaml:"skipPayloadCheck"`
	IgnorePatterns   []string `yaml:"ignorePatterns"`
}

// DefaultIgnorePatterns skips hidden files and editor droppings when
// walking the record listing.
var DefaultIgnorePatterns = []string{".*", "*.swp", "*~"}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Concurrency:    5,
		IgnorePatterns: append([]string(nil), DefaultIgnorePatterns...),
	}
}

// Load reads the configuration from a file, expanding ${VAR} environment
// references first. A .env file in the working directory is loaded when
// present so object-store credentials can live outside the config.
func Load(path string) (*Config, error) {
	// A missing .env is not an error.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	expanded := os.Expand(string(data), os.Getenv)

	config := Default()
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0")
	}
	if config.RepoURL == "" {
		return fmt.Errorf("repo URL must be specified")
	}
	return nil
}
