package llm

import "time"

// Config holds configuration for creating an LLM provider.
type Config struct {
	// Name identifies this provider instance (e.g., "screening-llm").
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the provider's API base URL (e.g., "http://localhost:11434").
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Model is the default model to use (e.g., "llama3", "qwen2.5:1.5b").
	Model string `yaml:"model" mapstructure:"model"`

	// Temperature is the default sampling temperature (0.0-1.0).
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens is the default maximum tokens for responses. 0 means provider default.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout for HTTP requests. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets default values for unset config fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.Name == "" {
		c.Name = "screening-llm"
	}
}
