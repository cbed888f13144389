// Package credential resolves the API key a completion provider needs. A
// missing or malformed key surfaces as a *ConfigurationError before any
// conversation turn is attempted.
package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvVar is the variable consulted when no other is configured.
const DefaultEnvVar = "GOOGLE_API_KEY"

var (
	ErrMissingCredential = errors.New("credential not found")
	ErrInvalidCredential = errors.New("credential is invalid")
)

// ConfigurationError reports that a credential could not be obtained from
// Source. It halts startup; nothing downstream is created.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Source supplies the raw credential string.
type Source interface {
	// Credential returns the credential, or "" with a nil error when the
	// source simply has none.
	Credential(ctx context.Context) (string, error)
	// String names the source for error messages. It must not include the
	// credential itself.
	String() string
}

// EnvSource reads the credential from an environment variable.
type EnvSource struct {
	Var string
}

func (s EnvSource) name() string {
	if s.Var == "" {
		return DefaultEnvVar
	}
	return s.Var
}

func (s EnvSource) Credential(context.Context) (string, error) {
	return os.Getenv(s.name()), nil
}

func (s EnvSource) String() string {
	return "env:" + s.name()
}

// DotenvSource reads the credential from a .env style file.
type DotenvSource struct {
	Path string
	Var  string
}

func (s DotenvSource) Credential(context.Context) (string, error) {
	values, err := godotenv.Read(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", s.Path, err)
	}
	return values[EnvSource{Var: s.Var}.name()], nil
}

func (s DotenvSource) String() string {
	return fmt.Sprintf("dotenv:%s:%s", s.Path, EnvSource{Var: s.Var}.name())
}

// StaticSource returns a fixed credential, typically from a command-line flag.
type StaticSource string

func (s StaticSource) Credential(context.Context) (string, error) {
	return string(s), nil
}

func (s StaticSource) String() string {
	return "static"
}

type chain []Source

// Chain returns a Source that consults each source in order and returns the
// first non-empty credential. Errors from a source stop the chain.
func Chain(sources ...Source) Source {
	filtered := make(chain, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func (c chain) Credential(ctx context.Context) (string, error) {
	for _, s := range c {
		v, err := s.Credential(ctx)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	return "", nil
}

func (c chain) String() string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.String()
	}
	return strings.Join(names, ",")
}

// Resolve obtains and validates a credential from src. Any failure is
// returned as a *ConfigurationError.
func Resolve(ctx context.Context, src Source) (string, error) {
	if src == nil {
		return "", &ConfigurationError{Source: "none", Err: ErrMissingCredential}
	}

	v, err := src.Credential(ctx)
	if err != nil {
		return "", &ConfigurationError{Source: src.String(), Err: err}
	}

	v = strings.TrimSpace(v)
	if v == "" {
		return "", &ConfigurationError{Source: src.String(), Err: ErrMissingCredential}
	}
	if strings.ContainsAny(v, " \t\r\n") {
		return "", &ConfigurationError{Source: src.String(), Err: ErrInvalidCredential}
	}
	return v, nil
}
