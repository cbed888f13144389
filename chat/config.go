package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/querymind/credential"
	"github.com/tailored-agentic-units/querymind/provider"
	"github.com/tailored-agentic-units/querymind/session"
)

// Config holds initialization parameters for every pipeline subsystem.
// Each section delegates to that subsystem's config-driven constructor.
type Config struct {
	Provider     provider.Config   `json:"provider" yaml:"provider"`
	Session      session.Config    `json:"session" yaml:"session"`
	Credential   credential.Config `json:"credential" yaml:"credential"`
	SystemPrompt string            `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}

// DefaultConfig returns a Config with defaults for all subsystems. An empty
// SystemPrompt selects prompt.DefaultSystemInstruction.
func DefaultConfig() Config {
	return Config{
		Provider:   provider.DefaultConfig(),
		Session:    session.DefaultConfig(),
		Credential: credential.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Provider.Merge(&source.Provider)
	c.Session.Merge(&source.Session)
	c.Credential.Merge(&source.Credential)

	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
}

// LoadConfig reads a JSON or YAML config file (chosen by extension), merges
// it with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
