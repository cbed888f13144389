package credential

// Config describes where the credential comes from. The env file, when set,
// is consulted after the process environment.
type Config struct {
	EnvVar  string `json:"env_var,omitempty" yaml:"env_var,omitempty"`
	EnvFile string `json:"env_file,omitempty" yaml:"env_file,omitempty"`
}

// DefaultConfig reads GOOGLE_API_KEY from the environment or ./.env.
func DefaultConfig() Config {
	return Config{
		EnvVar:  DefaultEnvVar,
		EnvFile: ".env",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.EnvVar != "" {
		c.EnvVar = source.EnvVar
	}
	if source.EnvFile != "" {
		c.EnvFile = source.EnvFile
	}
}

// NewSource builds the Source described by cfg.
func NewSource(cfg *Config) Source {
	sources := []Source{EnvSource{Var: cfg.EnvVar}}
	if cfg.EnvFile != "" {
		sources = append(sources, DotenvSource{Path: cfg.EnvFile, Var: cfg.EnvVar})
	}
	return Chain(sources...)
}
