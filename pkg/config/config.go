package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all askrepo configuration.
type Config struct {
	DBPath string       `yaml:"db_path"`
	Model  string       `yaml:"model"`
	LLM    LLMConfig    `yaml:"llm"`
	GitHub GitHubConfig `yaml:"github"`
	Cache  CacheConfig  `yaml:"cache"`
}

// LLMConfig defines the OpenAI-compatible chat endpoint.
type LLMConfig struct {
	URL         string  `yaml:"url"`
	APIKey      string  `yaml:"api_key"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// GitHubConfig identifies the repository under analysis.
type GitHubConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// CacheConfig controls the query cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DBPath: "askrepo.db",
		Model:  "gpt-4o-mini",
		LLM: LLMConfig{
			URL:         "https://api.openai.com/v1",
			Temperature: 0.7,
			MaxTokens:   1000,
		},
		GitHub: GitHubConfig{
			URL: "https://api.github.com",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
