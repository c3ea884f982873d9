package ai

import (
	"fmt"
	"time"
)

type Config struct {
	APIKey  string
	BaseURL string // empty means the provider default
	Model   string

	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "gpt-5-mini",
		Temperature: 0.7,
		MaxTokens:   2000,
		Timeout:     60 * time.Second,
	}
}
