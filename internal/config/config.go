// Package config loads agent settings from a YAML file, falling back to
// defaults when the file is absent.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type LLMConfig struct {
	Provider  string `yaml:"provider"` // anthropic or none
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
	System    string `yaml:"system,omitempty"`
}

type EmbeddingsConfig struct {
	Provider  string `yaml:"provider"` // local, ollama, or openai
	Model     string `yaml:"model,omitempty"`
	Dimension int    `yaml:"dimension,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
}

type RetrievalConfig struct {
	Mode       string `yaml:"mode"` // recency or semantic
	K          int    `yaml:"k"`
	WindowDays int    `yaml:"window_days"`
}

type Config struct {
	LLM           LLMConfig        `yaml:"llm"`
	Embeddings    EmbeddingsConfig `yaml:"embeddings"`
	Retrieval     RetrievalConfig  `yaml:"retrieval"`
	RetentionDays int              `yaml:"retention_days"`
}

func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "anthropic",
			Model:     "claude-3-5-haiku-latest",
			MaxTokens: 1024,
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "local",
			Dimension: 384,
		},
		Retrieval: RetrievalConfig{
			Mode:       "recency",
			K:          8,
			WindowDays: 3,
		},
		RetentionDays: 30,
	}
}

// Load reads the config at path. A missing file yields defaults; a file
// that exists but does not parse is an error. Fields left unset in the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Retrieval.K <= 0 {
		cfg.Retrieval.K = 8
	}
	if cfg.Retrieval.WindowDays <= 0 {
		cfg.Retrieval.WindowDays = 3
	}
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
