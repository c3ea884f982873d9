package chat

import (
	"fmt"
	"time"
)

const DefaultTitle = "New Chat"

type Config struct {
	// SystemPrompt is sent with every model request.
	SystemPrompt string

	// TitleMaxLength bounds the conversation title derived from the
	// first message.
	TitleMaxLength int

	// StreamTimeout bounds one full streaming turn.
	StreamTimeout time.Duration

	// SaveTimeout bounds each store write.
	SaveTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.TitleMaxLength <= 0 {
		return fmt.Errorf("title_max_length must be positive")
	}
	if c.StreamTimeout <= 0 {
		return fmt.Errorf("stream_timeout must be positive")
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("save_timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		SystemPrompt:   "You are a helpful assistant. Be concise and clear.",
		TitleMaxLength: 100,
		StreamTimeout:  120 * time.Second,
		SaveTimeout:    5 * time.Second,
	}
}
