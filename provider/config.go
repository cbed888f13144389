package provider

import "time"

// Names of the built-in providers.
const (
	NameGemini = "gemini"
	NameMock   = "mock"
)

// Config selects a provider and its model. Timeout is zero by default: the
// caller's context bounds the call.
type Config struct {
	Name    string        `json:"name,omitempty" yaml:"name,omitempty"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultConfig returns the Gemini provider configuration.
func DefaultConfig() Config {
	return Config{
		Name:  NameGemini,
		Model: "gemini-2.0-flash",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
}

// RequiresCredential reports whether the configured provider needs an API key.
func (c *Config) RequiresCredential() bool {
	return c.Name != NameMock
}
